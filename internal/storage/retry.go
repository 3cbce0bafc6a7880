package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// RetryConfig holds retry settings for remote backends
type RetryConfig struct {
	MaxRetries    int
	RetryDelay    time.Duration
	RetryMaxDelay time.Duration
}

// DefaultRetryConfig returns default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:    3,
		RetryDelay:    100 * time.Millisecond,
		RetryMaxDelay: 5 * time.Second,
	}
}

// RetryingBackend wraps a backend and retries failed calls with exponential
// backoff. Missing objects are not retried.
type RetryingBackend struct {
	backend Backend
	cfg     RetryConfig
	logger  zerolog.Logger
}

// NewRetryingBackend wraps backend. A nil cfg uses DefaultRetryConfig.
func NewRetryingBackend(backend Backend, cfg *RetryConfig, logger zerolog.Logger) *RetryingBackend {
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}
	return &RetryingBackend{
		backend: backend,
		cfg:     *cfg,
		logger:  logger.With().Str("component", "retrying-storage").Logger(),
	}
}

func (r *RetryingBackend) do(ctx context.Context, op, path string, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if errors.Is(err, ErrNotFound) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt == r.cfg.MaxRetries {
			break
		}

		delay := r.cfg.RetryDelay * time.Duration(1<<uint(attempt))
		if delay > r.cfg.RetryMaxDelay {
			delay = r.cfg.RetryMaxDelay
		}

		r.logger.Warn().
			Err(err).
			Str("op", op).
			Str("path", path).
			Int("attempt", attempt+1).
			Int("max_retries", r.cfg.MaxRetries).
			Dur("retry_delay", delay).
			Msg("Storage operation failed, retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return fmt.Errorf("storage %s failed after %d retries: %w", op, r.cfg.MaxRetries, lastErr)
}

func (r *RetryingBackend) Write(ctx context.Context, path string, data []byte) error {
	return r.do(ctx, "write", path, func() error {
		return r.backend.Write(ctx, path, data)
	})
}

// WriteReader is not retried: the reader cannot be rewound.
func (r *RetryingBackend) WriteReader(ctx context.Context, path string, reader io.Reader, size int64) error {
	return r.backend.WriteReader(ctx, path, reader, size)
}

func (r *RetryingBackend) Read(ctx context.Context, path string) ([]byte, error) {
	var data []byte
	err := r.do(ctx, "read", path, func() error {
		var err error
		data, err = r.backend.Read(ctx, path)
		return err
	})
	return data, err
}

// ReadTo is not retried: a partial copy may already have reached writer.
func (r *RetryingBackend) ReadTo(ctx context.Context, path string, writer io.Writer) error {
	return r.backend.ReadTo(ctx, path, writer)
}

func (r *RetryingBackend) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := r.do(ctx, "list", prefix, func() error {
		var err error
		keys, err = r.backend.List(ctx, prefix)
		return err
	})
	return keys, err
}

// ListObjects lists through the wrapped backend when it supports metadata.
func (r *RetryingBackend) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	lister, ok := r.backend.(ObjectLister)
	if !ok {
		return nil, fmt.Errorf("%s backend does not list object metadata", r.backend.Type())
	}
	var objects []ObjectInfo
	err := r.do(ctx, "list", prefix, func() error {
		var err error
		objects, err = lister.ListObjects(ctx, prefix)
		return err
	})
	return objects, err
}

func (r *RetryingBackend) Delete(ctx context.Context, path string) error {
	return r.do(ctx, "delete", path, func() error {
		return r.backend.Delete(ctx, path)
	})
}

func (r *RetryingBackend) Exists(ctx context.Context, path string) (bool, error) {
	var exists bool
	err := r.do(ctx, "exists", path, func() error {
		var err error
		exists, err = r.backend.Exists(ctx, path)
		return err
	})
	return exists, err
}

func (r *RetryingBackend) Close() error { return r.backend.Close() }
func (r *RetryingBackend) Type() string { return r.backend.Type() }
