package browser

import (
	"context"
	"errors"
	"time"

	"github.com/mounirl1/replystack-sub000/internal/pipeline"
	"github.com/mounirl1/replystack-sub000/pkg/models"
)

// mutationPollInterval is how often an open tab's mutation counter is read
// while a watch is active.
const mutationPollInterval = 500 * time.Millisecond

// TabSession is one open background tab able to serve extraction requests.
// Watch keeps the tab under mutation observation so reviews that render after
// the initial cycle still get extracted; it blocks until ctx ends.
type TabSession interface {
	Extract(ctx context.Context, req models.ExtractionRequest) (models.ExtractionComplete, error)
	Watch(ctx context.Context)
	Close()
}

// TabHost opens background tabs for unattended extraction. The orchestrator
// only talks to tabs through this interface.
type TabHost interface {
	OpenBackground(ctx context.Context, url string) (TabSession, error)
}

// Host binds the global browser to an extraction pipeline.
type Host struct {
	b      *Browser
	p      *pipeline.Pipeline
	settle time.Duration
	quiet  time.Duration
}

func NewHost(b *Browser, p *pipeline.Pipeline, settle, quiet time.Duration) *Host {
	return &Host{b: b, p: p, settle: settle, quiet: quiet}
}

func (h *Host) OpenBackground(ctx context.Context, url string) (TabSession, error) {
	tab, err := h.b.OpenBackground(ctx, url)
	if err != nil {
		return nil, err
	}
	return &hostTab{tab: tab, host: h}, nil
}

// hostTab runs all of a tab's cycles through one pipeline session, so the
// seen-filter spans the initial extraction and any later watched cycles.
type hostTab struct {
	tab     *Tab
	host    *Host
	session *pipeline.Session
}

func (t *hostTab) Extract(ctx context.Context, req models.ExtractionRequest) (models.ExtractionComplete, error) {
	// Give late-rendering review widgets a moment before reading the DOM.
	select {
	case <-time.After(t.host.settle):
	case <-ctx.Done():
		return models.ExtractionComplete{Type: models.MsgExtractionComplete, AutoExtraction: req.AutoExtraction}, ctx.Err()
	}

	if t.session == nil {
		t.session = pipeline.NewSession(t.host.p, t.tab.Snapshot, t.host.quiet)
	}
	t.session.Bind(req)

	result, state := t.session.Start(ctx)
	reply := models.ExtractionComplete{
		Type:           models.MsgExtractionComplete,
		Result:         result,
		AutoExtraction: req.AutoExtraction,
		Gated:          state == pipeline.StateGated,
	}
	if state == pipeline.StateFailed {
		return reply, errors.New("extraction cycle failed")
	}
	return reply, nil
}

// Watch feeds DOM mutations into the tab's session until ctx ends. Extract
// must have run first; without a session there is nothing to watch.
func (t *hostTab) Watch(ctx context.Context) {
	if t.session == nil {
		return
	}
	t.tab.WatchMutations(ctx, mutationPollInterval, t.session.OnMutation)
}

func (t *hostTab) Close() {
	if t.session != nil {
		t.session.Stop()
	}
	t.tab.Close()
}
