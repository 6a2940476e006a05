package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/mounirl1/replystack-sub000/pkg/logger"
	"github.com/mounirl1/replystack-sub000/pkg/models"
)

// PageLoader re-reads the live page; the session calls it before each cycle
// so mutation-triggered re-extractions see the current markup.
type PageLoader func(ctx context.Context) (*Page, error)

// Session ties a pipeline to one open page. It runs a silent initial cycle,
// then re-extracts on document mutations behind a trailing-edge debounce.
// At most one cycle is in flight; a burst arriving mid-cycle collapses into a
// single follow-up.
type Session struct {
	p      *Pipeline
	loader PageLoader
	deb    *Debouncer
	seen   *bloom.BloomFilter

	mu             sync.Mutex
	running        bool
	pending        bool
	firstCycleDone bool
	lastState      State
	lastResult     models.SyncResult

	auto       bool
	locationID string
}

func NewSession(p *Pipeline, loader PageLoader, quiet time.Duration) *Session {
	s := &Session{
		p:      p,
		loader: loader,
		seen:   NewSeenFilter(),
	}
	s.deb = NewDebouncer(quiet, func() {
		s.cycle(context.Background())
	})
	return s
}

// Bind pins every cycle of this session to a known location and auto flag,
// for tabs opened on behalf of a backend task rather than a user-visited page.
func (s *Session) Bind(req models.ExtractionRequest) {
	s.mu.Lock()
	s.auto = req.AutoExtraction
	s.locationID = req.LocationID
	s.mu.Unlock()
}

// Start runs the initial extraction cycle and reports its outcome. The cycle
// is intentionally silent: every page visit would otherwise produce a
// notification.
func (s *Session) Start(ctx context.Context) (models.SyncResult, State) {
	s.cycle(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastResult, s.lastState
}

// OnMutation is called by the document-change watcher; it is safe to call at
// any rate.
func (s *Session) OnMutation() {
	s.deb.Trigger()
}

func (s *Session) Stop() {
	s.deb.Stop()
}

func (s *Session) cycle(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.pending = true
		s.mu.Unlock()
		return
	}
	s.running = true
	notify := s.firstCycleDone
	s.mu.Unlock()

	result, state := s.runOnce(ctx, notify)

	s.mu.Lock()
	s.running = false
	s.firstCycleDone = true
	s.lastState = state
	s.lastResult = result
	rerun := s.pending
	s.pending = false
	s.mu.Unlock()

	if rerun {
		s.deb.Trigger()
	}
}

func (s *Session) runOnce(ctx context.Context, notify bool) (models.SyncResult, State) {
	page, err := s.loader(ctx)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("page load failed, skipping cycle")
		return models.SyncResult{}, StateFailed
	}

	s.mu.Lock()
	auto, locationID := s.auto, s.locationID
	s.mu.Unlock()

	result, state, _ := s.p.RunCycle(ctx, page, CycleOptions{
		Notify:         notify,
		Seen:           s.seen,
		AutoExtraction: auto,
		LocationID:     locationID,
	})
	return result, state
}
