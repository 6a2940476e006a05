package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/mounirl1/replystack-sub000/internal/browser"
	"github.com/mounirl1/replystack-sub000/internal/kvstore"
	"github.com/mounirl1/replystack-sub000/pkg/models"
)

type fakeTab struct {
	block   bool
	gated   bool
	closed  bool
	watched bool
}

func (t *fakeTab) Extract(ctx context.Context, req models.ExtractionRequest) (models.ExtractionComplete, error) {
	if t.block {
		// Simulates a wedged page that ignores cancellation.
		<-make(chan struct{})
	}
	if t.gated {
		return models.ExtractionComplete{
			Type:           models.MsgExtractionComplete,
			AutoExtraction: req.AutoExtraction,
			Gated:          true,
		}, nil
	}
	return models.ExtractionComplete{
		Type:           models.MsgExtractionComplete,
		Result:         models.SyncResult{Created: 1},
		AutoExtraction: req.AutoExtraction,
	}, nil
}

func (t *fakeTab) Watch(ctx context.Context) {
	t.watched = true
	<-ctx.Done()
}

func (t *fakeTab) Close() {
	t.closed = true
}

type fakeHost struct {
	opened     []string
	tabs       []*fakeTab
	blockFirst bool
	gateFirst  bool
}

func (h *fakeHost) OpenBackground(ctx context.Context, url string) (browser.TabSession, error) {
	tab := &fakeTab{
		block: h.blockFirst && len(h.tabs) == 0,
		gated: h.gateFirst && len(h.tabs) == 0,
	}
	h.opened = append(h.opened, url)
	h.tabs = append(h.tabs, tab)
	return tab, nil
}

type fakeTaskSource struct {
	profile models.UserProfile
	tasks   []models.ExtractionTask
}

func (f *fakeTaskSource) ExtractionTasks(ctx context.Context) ([]models.ExtractionTask, error) {
	return f.tasks, nil
}

func (f *fakeTaskSource) Profile(ctx context.Context) (models.UserProfile, error) {
	return f.profile, nil
}

func testConfig() Config {
	return Config{
		TaskTimeout:        100 * time.Millisecond,
		MinRefreshInterval: 24 * time.Hour,
	}
}

func taskFor(location string, last *time.Time) models.ExtractionTask {
	return models.ExtractionTask{
		LocationID:    location,
		Platform:      models.PlatformGoogle,
		ManagementURL: "https://business.google.com/reviews",
		LastFetchedAt: last,
	}
}

func TestRun_FreePlanOpensNoTabs(t *testing.T) {
	host := &fakeHost{}
	src := &fakeTaskSource{
		profile: models.UserProfile{Plan: "free"},
		tasks:   []models.ExtractionTask{taskFor("loc-1", nil)},
	}
	o := New(host, src, kvstore.NewMemory(), testConfig())

	sum, err := o.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(host.opened) != 0 {
		t.Errorf("free plan opened %d tabs", len(host.opened))
	}
	if sum.Ran != 0 {
		t.Errorf("summary: %+v", sum)
	}
}

func TestRun_PaidPlanRunsDueTask(t *testing.T) {
	host := &fakeHost{}
	src := &fakeTaskSource{
		profile: models.UserProfile{Plan: "starter"},
		tasks:   []models.ExtractionTask{taskFor("loc-1", nil)},
	}
	o := New(host, src, kvstore.NewMemory(), testConfig())

	sum, err := o.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(host.opened) != 1 {
		t.Fatalf("opened %d tabs, want 1", len(host.opened))
	}
	if !host.tabs[0].closed {
		t.Error("tab left open after task")
	}
	if sum.Succeeded != 1 || sum.Failed != 0 {
		t.Errorf("summary: %+v", sum)
	}

	last, lastRun := o.LastSummary()
	if last != sum || lastRun.IsZero() {
		t.Errorf("last summary not recorded: %+v at %v", last, lastRun)
	}
}

func TestRun_StalenessGate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fresh := now.Add(-23 * time.Hour)
	stale := now.Add(-25 * time.Hour)

	noURL := taskFor("loc-no-url", nil)
	noURL.ManagementURL = ""

	host := &fakeHost{}
	src := &fakeTaskSource{
		profile: models.UserProfile{Plan: "pro"},
		tasks: []models.ExtractionTask{
			taskFor("loc-fresh", &fresh),
			taskFor("loc-stale", &stale),
			taskFor("loc-never", nil),
			noURL,
		},
	}
	o := New(host, src, kvstore.NewMemory(), testConfig())
	o.now = func() time.Time { return now }

	sum, err := o.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sum.Ran != 2 || sum.Skipped != 2 {
		t.Errorf("summary: %+v", sum)
	}
	if len(host.opened) != 2 {
		t.Errorf("opened %d tabs, want 2", len(host.opened))
	}
}

func TestRun_TimedOutTabIsClosedAndRunContinues(t *testing.T) {
	host := &fakeHost{blockFirst: true}
	src := &fakeTaskSource{
		profile: models.UserProfile{Plan: "agency"},
		tasks: []models.ExtractionTask{
			taskFor("loc-wedged", nil),
			taskFor("loc-healthy", nil),
		},
	}
	o := New(host, src, kvstore.NewMemory(), testConfig())

	sum, err := o.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sum.Failed != 1 || sum.Succeeded != 1 {
		t.Errorf("summary: %+v", sum)
	}
	if len(host.tabs) != 2 {
		t.Fatalf("opened %d tabs", len(host.tabs))
	}
	if !host.tabs[0].closed {
		t.Error("wedged tab not closed")
	}
	if !host.tabs[1].closed {
		t.Error("healthy tab not closed")
	}
}

func TestRun_GatedCycleIsNotSuccess(t *testing.T) {
	host := &fakeHost{gateFirst: true}
	src := &fakeTaskSource{
		profile: models.UserProfile{Plan: "starter"},
		tasks: []models.ExtractionTask{
			taskFor("loc-gated", nil),
			taskFor("loc-healthy", nil),
		},
	}
	o := New(host, src, kvstore.NewMemory(), testConfig())

	sum, err := o.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sum.Succeeded != 1 || sum.Failed != 1 {
		t.Errorf("gated cycle must not count as success: %+v", sum)
	}
}

func TestRun_WatchWindowHoldsTabOpen(t *testing.T) {
	cfg := testConfig()
	cfg.TaskWatchWindow = 10 * time.Millisecond

	host := &fakeHost{}
	src := &fakeTaskSource{
		profile: models.UserProfile{Plan: "pro"},
		tasks:   []models.ExtractionTask{taskFor("loc-1", nil)},
	}
	o := New(host, src, kvstore.NewMemory(), cfg)

	if _, err := o.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !host.tabs[0].watched {
		t.Error("tab was not put under mutation watch after the cycle")
	}
	if !host.tabs[0].closed {
		t.Error("tab left open after the watch window")
	}
}

func TestRun_ProfileCacheMissRepopulates(t *testing.T) {
	kv := kvstore.NewMemory()
	host := &fakeHost{}
	src := &fakeTaskSource{profile: models.UserProfile{Plan: "starter", Email: "o@example.com"}}
	o := New(host, src, kv, testConfig())

	if _, err := o.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	var cached models.UserProfile
	found, err := kv.Get(context.Background(), kvstore.KeyUser, &cached)
	if err != nil || !found {
		t.Fatalf("profile not cached: found=%v err=%v", found, err)
	}
	if cached.Email != "o@example.com" {
		t.Errorf("cached profile: %+v", cached)
	}
}

func TestDue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	o := New(&fakeHost{}, &fakeTaskSource{}, kvstore.NewMemory(), testConfig())
	o.now = func() time.Time { return now }

	exactly := now.Add(-24 * time.Hour)
	if !o.due(taskFor("l", &exactly)) {
		t.Error("exactly at the interval should be due")
	}
	almost := now.Add(-24*time.Hour + time.Minute)
	if o.due(taskFor("l", &almost)) {
		t.Error("one minute short should not be due")
	}
	if !o.due(taskFor("l", nil)) {
		t.Error("never fetched should be due")
	}
}
