package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"inplayrs/backoffice/internal/feeds"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs feed loader passes on a fixed interval.
// A pass that is still running when the next one is due is skipped.
type Scheduler struct {
	loader   *feeds.Loader
	feeds    []feeds.Feed
	interval time.Duration
	cron     *cron.Cron
	entry    cron.EntryID
	first    sync.WaitGroup

	mu     sync.Mutex
	ctx    context.Context
	passes int
}

// NewScheduler creates a scheduler for the given feeds
func NewScheduler(loader *feeds.Loader, list []feeds.Feed, interval time.Duration) *Scheduler {
	logger := cronLogger{}
	return &Scheduler{
		loader:   loader,
		feeds:    list,
		interval: interval,
		cron:     cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))),
	}
}

// Start schedules the passes and runs the first one straight away
func (s *Scheduler) Start(ctx context.Context) error {
	if len(s.feeds) == 0 {
		return fmt.Errorf("no feeds to load")
	}
	log.Info().Int("feeds", len(s.feeds)).Dur("interval", s.interval).Msg("Scheduler starting...")

	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	id, err := s.cron.AddFunc("@every "+s.interval.String(), s.runPass)
	if err != nil {
		return fmt.Errorf("failed to schedule feed loading: %w", err)
	}
	s.entry = id

	s.cron.Start()

	// the wrapped job shares the skip-if-running guard with scheduled runs
	job := s.cron.Entry(id).WrappedJob
	s.first.Add(1)
	go func() {
		defer s.first.Done()
		job.Run()
	}()

	return nil
}

// Stop stops scheduling new passes and waits for a running pass to finish
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")
	<-s.cron.Stop().Done()
	s.first.Wait()
	log.Info().Int("passes", s.Passes()).Msg("Scheduler stopped")
}

// RunOnce performs a single pass synchronously
func (s *Scheduler) RunOnce(ctx context.Context) []feeds.Result {
	results := s.loader.LoadAll(ctx, s.feeds)

	s.mu.Lock()
	s.passes++
	s.mu.Unlock()

	return results
}

// Passes returns the number of completed passes
func (s *Scheduler) Passes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.passes
}

func (s *Scheduler) runPass() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	s.RunOnce(ctx)
	log.Debug().Dur("next_in", s.interval).Msg("Sleeping until next pass")
}

// cronLogger sends cron's own messages to zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
