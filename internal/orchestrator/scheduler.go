package orchestrator

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/mounirl1/replystack-sub000/internal/kvstore"
	"github.com/mounirl1/replystack-sub000/internal/locations"
	"github.com/mounirl1/replystack-sub000/pkg/logger"
)

// Scheduler owns the periodic jobs: the auto-extraction pass plus the
// profile/locations cache refresh that feeds it.
type Scheduler struct {
	orch      *Orchestrator
	refresher *locations.Refresher
	kv        kvstore.Store

	autoExtractInterval time.Duration
	refreshInterval     time.Duration
	startupDelay        time.Duration

	scheduler gocron.Scheduler
}

func NewScheduler(orch *Orchestrator, refresher *locations.Refresher, kv kvstore.Store, autoExtractInterval, refreshInterval, startupDelay time.Duration) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		orch:                orch,
		refresher:           refresher,
		kv:                  kv,
		autoExtractInterval: autoExtractInterval,
		refreshInterval:     refreshInterval,
		startupDelay:        startupDelay,
		scheduler:           s,
	}, nil
}

func (s *Scheduler) Start(ctx context.Context) error {
	log := logger.Log

	_, err := s.scheduler.NewJob(
		gocron.DurationJob(s.autoExtractInterval),
		gocron.NewTask(func() {
			s.runAutoExtraction(ctx)
		}),
	)
	if err != nil {
		return err
	}

	_, err = s.scheduler.NewJob(
		gocron.DurationJob(s.refreshInterval),
		gocron.NewTask(func() {
			s.refreshAccount(ctx)
		}),
	)
	if err != nil {
		return err
	}

	s.scheduler.Start()
	log.Info().
		Dur("auto_extract_interval", s.autoExtractInterval).
		Dur("refresh_interval", s.refreshInterval).
		Msg("scheduler started")

	go func() {
		s.refreshAccount(ctx)

		// Let the browser and caches warm up before the first pass.
		select {
		case <-time.After(s.startupDelay):
		case <-ctx.Done():
			return
		}
		s.runAutoExtraction(ctx)
	}()

	return nil
}

func (s *Scheduler) Stop() {
	if err := s.scheduler.Shutdown(); err != nil {
		logger.Log.Error().Err(err).Msg("scheduler shutdown error")
	}
}

func (s *Scheduler) runAutoExtraction(ctx context.Context) {
	if _, err := s.orch.Run(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("auto-extraction pass failed")
	}
}

// refreshAccount re-fetches the profile and location caches so plan changes
// and newly connected platforms take effect without a restart.
func (s *Scheduler) refreshAccount(ctx context.Context) {
	log := logger.Log

	profile, err := s.orch.tasks.Profile(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("profile refresh failed")
	} else if err := s.kv.Set(ctx, kvstore.KeyUser, profile); err != nil {
		log.Warn().Err(err).Msg("profile cache write failed")
	}

	if err := s.refresher.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("locations refresh failed")
	}
}
