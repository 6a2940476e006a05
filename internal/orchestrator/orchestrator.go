// Package orchestrator runs unattended periodic extraction: it lists pending
// work from the backend, gates it on plan entitlement and staleness, and
// drives one background tab at a time through the extraction pipeline.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mounirl1/replystack-sub000/internal/browser"
	"github.com/mounirl1/replystack-sub000/internal/kvstore"
	"github.com/mounirl1/replystack-sub000/pkg/logger"
	"github.com/mounirl1/replystack-sub000/pkg/models"
)

// TaskSource supplies pending extraction work and the acting user's profile.
type TaskSource interface {
	ExtractionTasks(ctx context.Context) ([]models.ExtractionTask, error)
	Profile(ctx context.Context) (models.UserProfile, error)
}

// autoExtractPlans lists plans entitled to unattended extraction. Free users
// never get background tabs opened on their behalf.
var autoExtractPlans = map[string]bool{
	"starter": true,
	"pro":     true,
	"agency":  true,
}

type Config struct {
	TaskTimeout        time.Duration
	InterTaskDelay     time.Duration
	MinRefreshInterval time.Duration
	// TaskWatchWindow holds each tab open under mutation observation after a
	// successful cycle, so late-rendering reviews still get extracted. Zero
	// disables the watch.
	TaskWatchWindow time.Duration
}

type Orchestrator struct {
	host  browser.TabHost
	tasks TaskSource
	kv    kvstore.Store
	cfg   Config
	now   func() time.Time

	mu      sync.Mutex
	running bool
	last    RunSummary
	lastRun time.Time
}

func New(host browser.TabHost, tasks TaskSource, kv kvstore.Store, cfg Config) *Orchestrator {
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 30 * time.Second
	}
	if cfg.MinRefreshInterval <= 0 {
		cfg.MinRefreshInterval = 24 * time.Hour
	}
	return &Orchestrator{
		host:  host,
		tasks: tasks,
		kv:    kv,
		cfg:   cfg,
		now:   time.Now,
	}
}

// RunSummary reports one auto-extraction pass.
type RunSummary struct {
	Eligible  int `json:"eligible"`
	Ran       int `json:"ran"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

// Run executes one full auto-extraction pass. Tasks run strictly
// sequentially, one tab at a time, with a pause between tabs. A Run started
// while another is in flight returns immediately with an empty summary.
func (o *Orchestrator) Run(ctx context.Context) (RunSummary, error) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		logger.Log.Debug().Msg("auto-extraction already running, skipping")
		return RunSummary{}, nil
	}
	o.running = true
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.running = false
		o.mu.Unlock()
	}()

	profile, err := o.profile(ctx)
	if err != nil {
		return RunSummary{}, fmt.Errorf("load profile: %w", err)
	}
	if !autoExtractPlans[profile.Plan] {
		logger.Log.Info().Str("plan", profile.Plan).Msg("plan not entitled to auto-extraction")
		return RunSummary{}, nil
	}

	tasks, err := o.tasks.ExtractionTasks(ctx)
	if err != nil {
		return RunSummary{}, fmt.Errorf("list extraction tasks: %w", err)
	}

	var sum RunSummary
	for _, task := range tasks {
		if ctx.Err() != nil {
			break
		}
		if !o.due(task) {
			sum.Skipped++
			continue
		}
		sum.Eligible++

		if sum.Ran > 0 && o.cfg.InterTaskDelay > 0 {
			select {
			case <-time.After(o.cfg.InterTaskDelay):
			case <-ctx.Done():
				return sum, ctx.Err()
			}
		}

		sum.Ran++
		if err := o.runTask(ctx, task); err != nil {
			sum.Failed++
			logger.Log.Warn().Err(err).
				Str("location", task.LocationID).
				Str("platform", string(task.Platform)).
				Msg("auto-extraction task failed")
			continue
		}
		sum.Succeeded++
	}

	o.mu.Lock()
	o.last = sum
	o.lastRun = o.now()
	o.mu.Unlock()

	logger.Log.Info().
		Int("eligible", sum.Eligible).
		Int("succeeded", sum.Succeeded).
		Int("failed", sum.Failed).
		Int("skipped", sum.Skipped).
		Msg("auto-extraction pass finished")
	return sum, nil
}

// LastSummary reports the most recent finished pass and when it ran. The zero
// time means no pass has finished yet.
func (o *Orchestrator) LastSummary() (RunSummary, time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last, o.lastRun
}

// due applies the staleness gate: a task without a management URL can never
// run, one never fetched is always due, otherwise the last fetch must be at
// least MinRefreshInterval old.
func (o *Orchestrator) due(t models.ExtractionTask) bool {
	if t.ManagementURL == "" {
		return false
	}
	if t.LastFetchedAt == nil {
		return true
	}
	return o.now().Sub(*t.LastFetchedAt) >= o.cfg.MinRefreshInterval
}

type taskReply struct {
	reply models.ExtractionComplete
	err   error
}

func (o *Orchestrator) runTask(ctx context.Context, task models.ExtractionTask) error {
	tab, err := o.host.OpenBackground(ctx, task.ManagementURL)
	if err != nil {
		return fmt.Errorf("open tab: %w", err)
	}
	defer tab.Close()

	reqCtx, cancel := context.WithTimeout(ctx, o.cfg.TaskTimeout)
	defer cancel()

	done := make(chan taskReply, 1)
	go func() {
		reply, err := tab.Extract(reqCtx, models.ExtractionRequest{
			Type:           models.MsgRequestExtraction,
			Platform:       task.Platform,
			LocationID:     task.LocationID,
			AutoExtraction: true,
		})
		done <- taskReply{reply: reply, err: err}
	}()

	timer := time.NewTimer(o.cfg.TaskTimeout)
	defer timer.Stop()

	select {
	case r := <-done:
		if r.err != nil {
			return fmt.Errorf("extract: %w", r.err)
		}
		if r.reply.Gated {
			return fmt.Errorf("cycle gated: missing credential or unknown location")
		}
		logger.Log.Info().
			Str("location", task.LocationID).
			Str("platform", string(task.Platform)).
			Int("created", r.reply.Result.Created).
			Int("updated", r.reply.Result.Updated).
			Msg("auto-extraction task done")
		o.watch(ctx, tab)
		return nil
	case <-timer.C:
		// A wedged tab must not stall the run; the deferred Close tears it
		// down and the loop moves on.
		return fmt.Errorf("task timed out after %s", o.cfg.TaskTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// watch keeps a finished tab open briefly so reviews rendered after the
// first cycle still flow through the tab's debounced session.
func (o *Orchestrator) watch(ctx context.Context, tab browser.TabSession) {
	if o.cfg.TaskWatchWindow <= 0 {
		return
	}
	watchCtx, cancel := context.WithTimeout(ctx, o.cfg.TaskWatchWindow)
	defer cancel()
	tab.Watch(watchCtx)
}

// profile prefers the cached snapshot the scheduler refreshes; a cache miss
// falls through to the backend and repopulates it.
func (o *Orchestrator) profile(ctx context.Context) (models.UserProfile, error) {
	var p models.UserProfile
	if found, err := o.kv.Get(ctx, kvstore.KeyUser, &p); err == nil && found {
		return p, nil
	}

	p, err := o.tasks.Profile(ctx)
	if err != nil {
		return models.UserProfile{}, err
	}
	if err := o.kv.Set(ctx, kvstore.KeyUser, p); err != nil {
		logger.Log.Debug().Err(err).Msg("cache profile failed")
	}
	return p, nil
}
