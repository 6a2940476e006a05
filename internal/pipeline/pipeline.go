// Package pipeline runs one page-side extraction and synchronization cycle:
// gate on authentication, resolve the acting location, extract, upload,
// reconcile, optionally notify. Failures are scoped to the cycle; the next
// trigger is the retry mechanism.
package pipeline

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/bits-and-blooms/bloom/v3"

	"github.com/mounirl1/replystack-sub000/internal/extractor"
	"github.com/mounirl1/replystack-sub000/internal/kvstore"
	"github.com/mounirl1/replystack-sub000/internal/locations"
	"github.com/mounirl1/replystack-sub000/pkg/logger"
	"github.com/mounirl1/replystack-sub000/pkg/models"
)

// ReviewStore is the slice of the remote store the pipeline needs.
type ReviewStore interface {
	SyncReviews(ctx context.Context, locationID string, platform models.Platform, reviews []models.ExtractedReview) (models.SyncResult, error)
	TouchLocation(ctx context.Context, locationID string, platform models.Platform)
}

// Page is one loaded provider page: its URL plus parsed markup.
type Page struct {
	URL string
	Doc *goquery.Document
}

const (
	seenFilterCapacity = 100_000
	seenFilterFPRate   = 0.001
)

type Pipeline struct {
	kv       kvstore.Store
	store    ReviewStore
	registry *extractor.Registry
	resolver *locations.Resolver
	notifier Notifier
}

func New(kv kvstore.Store, store ReviewStore, registry *extractor.Registry, resolver *locations.Resolver, notifier Notifier) *Pipeline {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Pipeline{
		kv:       kv,
		store:    store,
		registry: registry,
		resolver: resolver,
		notifier: notifier,
	}
}

// CycleOptions controls one cycle's behavior.
type CycleOptions struct {
	// Notify allows a user-visible notification when the reconciliation
	// produced changes. The first cycle after page load stays silent.
	Notify bool
	// Seen suppresses reviews already uploaded earlier in the same page
	// session. Nil disables suppression.
	Seen *bloom.BloomFilter
	// AutoExtraction marks orchestrator-driven cycles.
	AutoExtraction bool
	// LocationID pins the acting location when the caller already knows it
	// (backend-issued tasks). Empty falls back to URL resolution.
	LocationID string
}

// NewSeenFilter returns a session-scoped filter for CycleOptions.Seen.
func NewSeenFilter() *bloom.BloomFilter {
	return bloom.NewWithEstimates(seenFilterCapacity, seenFilterFPRate)
}

// RunCycle executes one extraction+sync cycle against an already loaded page.
func (p *Pipeline) RunCycle(ctx context.Context, page *Page, opts CycleOptions) (models.SyncResult, State, error) {
	log := logger.Log

	var token string
	if found, err := p.kv.Get(ctx, kvstore.KeyToken, &token); err != nil || !found || token == "" {
		log.Debug().Str("url", page.URL).Msg("not authenticated, skipping extraction")
		return models.SyncResult{}, StateGated, nil
	}

	platform := p.registry.DetectPlatform(page.URL)
	ext := p.registry.ForPlatform(platform)
	if ext == nil {
		log.Debug().Str("url", page.URL).Msg("no extractor for page, skipping")
		return models.SyncResult{}, StateGated, nil
	}

	locationID := opts.LocationID
	if locationID == "" {
		var ok bool
		locationID, ok = p.resolver.Resolve(ctx, page.URL)
		if !ok {
			log.Debug().Str("url", page.URL).Msg("location unresolved, skipping sync")
			return models.SyncResult{}, StateGated, nil
		}
	}

	reviews := ext.ExtractAll(page.Doc)
	if opts.Seen != nil {
		reviews = filterSeen(opts.Seen, string(platform), locationID, reviews)
	}
	if len(reviews) == 0 {
		log.Debug().Str("url", page.URL).Str("platform", string(platform)).Msg("no reviews extracted")
		return models.SyncResult{}, StateDone, nil
	}

	result, err := p.store.SyncReviews(ctx, locationID, platform, reviews)
	if err != nil {
		log.Warn().Err(err).Str("location", locationID).Str("platform", string(platform)).Msg("review upload failed")
		return models.SyncResult{}, StateFailed, err
	}
	markSeen(opts.Seen, string(platform), locationID, reviews)
	p.store.TouchLocation(ctx, locationID, platform)

	log.Info().
		Str("location", locationID).
		Str("platform", string(platform)).
		Int("extracted", len(reviews)).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("unchanged", result.Unchanged).
		Bool("auto", opts.AutoExtraction).
		Msg("reviews reconciled")

	if opts.Notify && result.Created+result.Updated > 0 {
		p.notifier.Notify("Reviews synced", fmt.Sprintf("%d new, %d updated reviews", result.Created, result.Updated))
	}

	return result, StateDone, nil
}

// HandleExtractionRequest serves an immediate, non-debounced cycle requested
// over the cross-context protocol and answers on the reply channel.
func (p *Pipeline) HandleExtractionRequest(ctx context.Context, page *Page, req models.ExtractionRequest) models.ExtractionComplete {
	result, state, _ := p.RunCycle(ctx, page, CycleOptions{
		Notify:         false,
		AutoExtraction: req.AutoExtraction,
		LocationID:     req.LocationID,
	})
	return models.ExtractionComplete{
		Type:           models.MsgExtractionComplete,
		Result:         result,
		AutoExtraction: req.AutoExtraction,
		Gated:          state == StateGated,
	}
}

func seenKey(platform, locationID, externalID string) string {
	return platform + "|" + locationID + "|" + externalID
}

func filterSeen(seen *bloom.BloomFilter, platform, locationID string, reviews []models.ExtractedReview) []models.ExtractedReview {
	fresh := reviews[:0]
	for _, r := range reviews {
		if seen.TestString(seenKey(platform, locationID, r.ExternalID)) {
			continue
		}
		fresh = append(fresh, r)
	}
	return fresh
}

func markSeen(seen *bloom.BloomFilter, platform, locationID string, reviews []models.ExtractedReview) {
	if seen == nil {
		return
	}
	for _, r := range reviews {
		seen.AddString(seenKey(platform, locationID, r.ExternalID))
	}
}
