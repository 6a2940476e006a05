package locations

import (
	"context"

	"github.com/mounirl1/replystack-sub000/internal/kvstore"
	"github.com/mounirl1/replystack-sub000/internal/store"
	"github.com/mounirl1/replystack-sub000/pkg/logger"
)

// Refresher rebuilds the cached location projection from the remote store.
// The cache is disposable: every refresh overwrites the whole set.
type Refresher struct {
	store *store.Client
	kv    kvstore.Store
}

func NewRefresher(s *store.Client, kv kvstore.Store) *Refresher {
	return &Refresher{store: s, kv: kv}
}

func (r *Refresher) Refresh(ctx context.Context) error {
	locations, err := r.store.Locations(ctx)
	if err != nil {
		return err
	}
	if err := r.kv.Set(ctx, kvstore.KeyLocations, locations); err != nil {
		return err
	}
	logger.Log.Debug().Int("locations", len(locations)).Msg("location cache refreshed")
	return nil
}
