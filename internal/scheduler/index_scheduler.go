package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/basekick-labs/pqdif/internal/indexer"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Indexer is the part of indexer.Indexer the scheduler drives
type Indexer interface {
	IndexPrefix(ctx context.Context, prefix string) (*indexer.Result, error)
}

// IndexScheduler runs catalog indexing of a storage prefix on a cron schedule
type IndexScheduler struct {
	indexer  Indexer
	prefix   string
	schedule string // Cron schedule (e.g., "*/15 * * * *")
	timeout  time.Duration
	cron     *cron.Cron
	running  bool
	lastRun  *indexer.Result
	lastErr  error
	mu       sync.Mutex
	logger   zerolog.Logger
}

// IndexSchedulerConfig holds configuration for the index scheduler
type IndexSchedulerConfig struct {
	Indexer  Indexer
	Prefix   string
	Schedule string        // Cron schedule string
	Timeout  time.Duration // Limit for one run (default 30m)
	Logger   zerolog.Logger
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NewIndexScheduler validates the schedule and creates a stopped scheduler
func NewIndexScheduler(cfg *IndexSchedulerConfig) (*IndexScheduler, error) {
	if cfg.Indexer == nil {
		return nil, errors.New("index scheduler requires an indexer")
	}

	schedule := cfg.Schedule
	if schedule == "" {
		schedule = "*/15 * * * *"
	}
	if _, err := cronParser.Parse(schedule); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}

	s := &IndexScheduler{
		indexer:  cfg.Indexer,
		prefix:   cfg.Prefix,
		schedule: schedule,
		timeout:  timeout,
		logger:   cfg.Logger.With().Str("component", "index-scheduler").Logger(),
	}

	s.logger.Info().
		Str("schedule", schedule).
		Str("prefix", cfg.Prefix).
		Msg("Index scheduler initialized")

	return s, nil
}

// Start starts the scheduler
func (s *IndexScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.logger.Warn().Msg("Index scheduler already running")
		return nil
	}

	s.cron = cron.New(cron.WithParser(cronParser))
	if _, err := s.cron.AddFunc(s.schedule, s.runIndex); err != nil {
		return err
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", s.schedule).
		Time("next_run", s.nextRun()).
		Msg("Index scheduler started")

	return nil
}

// Stop stops the scheduler and waits for a running job
func (s *IndexScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	c := s.cron
	s.running = false
	s.mu.Unlock()

	// A running job records its result under mu, so wait unlocked
	if c != nil {
		<-c.Stop().Done()
	}

	s.logger.Info().Msg("Index scheduler stopped")
}

// Close stops the scheduler so it can join a shutdown sequence.
func (s *IndexScheduler) Close() error {
	s.Stop()
	return nil
}

func (s *IndexScheduler) runIndex() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.logger.Info().Msg("Triggering scheduled indexing")
	if _, err := s.TriggerNow(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Scheduled indexing failed")
	}
}

// TriggerNow indexes the prefix immediately
func (s *IndexScheduler) TriggerNow(ctx context.Context) (*indexer.Result, error) {
	res, err := s.indexer.IndexPrefix(ctx, s.prefix)

	// A run already in progress is not a failed run
	if errors.Is(err, indexer.ErrAlreadyRunning) {
		return nil, err
	}

	s.mu.Lock()
	s.lastRun, s.lastErr = res, err
	s.mu.Unlock()
	return res, err
}

func (s *IndexScheduler) nextRun() time.Time {
	schedule, err := cronParser.Parse(s.schedule)
	if err != nil {
		return time.Time{}
	}
	return schedule.Next(time.Now())
}

// Status returns scheduler status
func (s *IndexScheduler) Status() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]interface{}{
		"running":  s.running,
		"schedule": s.schedule,
		"prefix":   s.prefix,
	}
	if s.running {
		status["next_run"] = s.nextRun().Format(time.RFC3339)
	}
	if s.lastRun != nil {
		status["last_run"] = s.lastRun
	}
	if s.lastErr != nil {
		status["last_error"] = s.lastErr.Error()
	}
	return status
}

// IsRunning returns whether the scheduler is running
func (s *IndexScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
