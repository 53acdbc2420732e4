package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/studio-atelier/site-backend/internal/logging"
)

// Scheduler runs the cache warmer on a cron schedule (with seconds field).
type Scheduler struct {
	cron   *cron.Cron
	warmer *Warmer
}

func NewScheduler(spec string, warmer *Warmer) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		warmer: warmer,
	}

	if _, err := s.cron.AddFunc(spec, s.warm); err != nil {
		return nil, fmt.Errorf("invalid cache warm schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) warm() {
	ctx := logging.WithRequestID(context.Background(), "cron-cache-warm")
	n, err := s.warmer.Run(ctx)
	if err != nil {
		logging.NewLogger(ctx).LogError("cache.warm", err)
		return
	}
	log.Debug().Int("keys", n).Msg("cache warmed")
}

// Start runs the warmer once in the background and then starts the schedule.
func (s *Scheduler) Start() {
	go s.warm()
	s.cron.Start()
	log.Info().Strs("keys", s.warmer.Keys()).Msg("cache warm scheduler started")
}

// Stop halts the schedule; the returned context is done once a running job finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
