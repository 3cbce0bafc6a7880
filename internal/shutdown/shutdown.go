package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// Shutdownable is an interface for components that can be shut down gracefully
type Shutdownable interface {
	Close() error
}

// ShutdownFunc is a function that performs cleanup during shutdown
type ShutdownFunc func(ctx context.Context) error

// Priorities for the serve process. Lower values stop first.
const (
	PriorityHTTPServer = 10 // Stop accepting requests
	PriorityScheduler  = 20 // Stop scheduling and wait for a running index
	PriorityCatalog    = 80 // Close the catalog database
	PriorityStorage    = 90 // Storage backends last
)

// Coordinator runs registered hooks and components in priority order when
// the process is asked to stop.
type Coordinator struct {
	timeout time.Duration
	logger  zerolog.Logger

	mu    sync.Mutex
	steps []step

	shutdownOnce sync.Once
	triggerOnce  sync.Once
	shutdownCh   chan struct{}
}

type step struct {
	name     string
	kind     string // "hook" or "component"
	priority int
	run      ShutdownFunc
}

// New creates a new shutdown coordinator
func New(timeout time.Duration, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		timeout:    timeout,
		logger:     logger.With().Str("component", "shutdown").Logger(),
		shutdownCh: make(chan struct{}),
	}
}

// Register adds a component whose Close runs at the given priority
func (c *Coordinator) Register(name string, component Shutdownable, priority int) {
	c.add(step{
		name:     name,
		kind:     "component",
		priority: priority,
		run:      func(context.Context) error { return component.Close() },
	})
}

// RegisterHook adds a hook. At equal priority hooks run before components.
func (c *Coordinator) RegisterHook(name string, hook ShutdownFunc, priority int) {
	c.add(step{name: name, kind: "hook", priority: priority, run: hook})
}

func (c *Coordinator) add(s step) {
	c.mu.Lock()
	c.steps = append(c.steps, s)
	c.mu.Unlock()

	c.logger.Debug().
		Str("name", s.name).
		Str("kind", s.kind).
		Int("priority", s.priority).
		Msg("Registered for shutdown")
}

// Done is closed once shutdown has been triggered
func (c *Coordinator) Done() <-chan struct{} {
	return c.shutdownCh
}

// WaitForSignal blocks until a shutdown signal is received or
// TriggerShutdown is called
func (c *Coordinator) WaitForSignal() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		c.logger.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		return sig
	case <-c.shutdownCh:
		return syscall.SIGTERM
	}
}

// TriggerShutdown releases WaitForSignal. Safe for concurrent use.
func (c *Coordinator) TriggerShutdown() {
	c.triggerOnce.Do(func() {
		c.logger.Info().Msg("Programmatic shutdown triggered")
		close(c.shutdownCh)
	})
}

// Shutdown runs every registered step once. The first error is returned;
// steps not reached before the timeout are skipped.
func (c *Coordinator) Shutdown() error {
	var shutdownErr error

	c.shutdownOnce.Do(func() {
		c.triggerOnce.Do(func() { close(c.shutdownCh) })

		c.mu.Lock()
		steps := make([]step, len(c.steps))
		copy(steps, c.steps)
		c.mu.Unlock()

		sort.SliceStable(steps, func(i, j int) bool {
			if steps[i].priority != steps[j].priority {
				return steps[i].priority < steps[j].priority
			}
			return steps[i].kind == "hook" && steps[j].kind != "hook"
		})

		c.logger.Info().
			Dur("timeout", c.timeout).
			Int("steps", len(steps)).
			Msg("Starting graceful shutdown")

		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()
		start := time.Now()

		for _, s := range steps {
			if err := ctx.Err(); err != nil {
				c.logger.Warn().
					Str("name", s.name).
					Msg("Shutdown timeout reached, skipping remaining steps")
				shutdownErr = err
				return
			}

			if err := s.run(ctx); err != nil {
				c.logger.Error().
					Err(err).
					Str("name", s.name).
					Str("kind", s.kind).
					Msg("Shutdown step failed")
				if shutdownErr == nil {
					shutdownErr = err
				}
				continue
			}
			c.logger.Debug().Str("name", s.name).Msg("Shutdown step complete")
		}

		c.logger.Info().
			Dur("duration", time.Since(start)).
			Msg("Graceful shutdown complete")
	})

	return shutdownErr
}
