package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/lromero/covid-data-pipeline/internal/covid"
	"github.com/lromero/covid-data-pipeline/internal/store"
)

// jobTimeout bounds one full pipeline pass, fetch and push included.
const jobTimeout = 10 * time.Minute

// Scheduler periodically runs the pipeline and records each outcome.
type Scheduler struct {
	scheduler *gocron.Scheduler
	pipeline  *covid.Pipeline
	history   *store.RunHistory
	interval  time.Duration
	log       *slog.Logger
}

// New creates a new Scheduler.
func New(pipeline *covid.Pipeline, history *store.RunHistory, interval time.Duration, log *slog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		pipeline:  pipeline,
		history:   history,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run fires immediately.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	_, err := s.scheduler.Every(minutes).Minutes().StartImmediately().Do(func() {
		s.log.Info("scheduler: starting pipeline run")

		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		res, err := s.pipeline.Run(ctx)
		s.history.Record(res, err)
		if err != nil {
			s.log.Error("scheduler: pipeline run failed", "error", err)
			return
		}
		s.log.Info("scheduler: pipeline run finished", "rows", res.Rows)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
