package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/basekick-labs/pqdif/internal/catalog"
	"github.com/basekick-labs/pqdif/internal/metrics"
	"github.com/basekick-labs/pqdif/internal/storage"
	"github.com/basekick-labs/pqdif/pkg/logical"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Indexer parses PQDIF objects from storage into the catalog
type Indexer struct {
	backend       storage.Backend
	catalog       *catalog.Catalog
	workers       int
	maxObjectSize int64
	logger        zerolog.Logger

	mu      sync.Mutex
	running bool
}

// Config holds indexer configuration
type Config struct {
	Backend       storage.Backend
	Catalog       *catalog.Catalog
	Workers       int   // Files parsed concurrently
	MaxObjectSize int64 // Largest remote object buffered for parsing
	Logger        zerolog.Logger
}

// Result summarizes one indexing run
type Result struct {
	Indexed      int           `json:"indexed"`
	Skipped      int           `json:"skipped"`
	Failed       int           `json:"failed"`
	Observations int           `json:"observations"`
	Duration     time.Duration `json:"duration_ns"`
}

// ErrAlreadyRunning is returned when an indexing run is requested while
// another is in progress.
var ErrAlreadyRunning = errors.New("indexing already in progress")

// New creates an indexer
func New(cfg *Config) *Indexer {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &Indexer{
		backend:       cfg.Backend,
		catalog:       cfg.Catalog,
		workers:       workers,
		maxObjectSize: cfg.MaxObjectSize,
		logger:        cfg.Logger.With().Str("component", "indexer").Logger(),
	}
}

type job struct {
	path string
	info catalog.FileInfo
}

// IndexPaths indexes the given objects unconditionally.
func (ix *Indexer) IndexPaths(ctx context.Context, paths []string) (*Result, error) {
	jobs := make([]job, len(paths))
	for i, p := range paths {
		jobs[i] = job{path: p}
	}
	return ix.run(ctx, jobs, 0)
}

// IndexPrefix indexes every PQDIF object under prefix. When the backend
// reports object metadata, objects unchanged since they were cataloged are
// skipped.
func (ix *Indexer) IndexPrefix(ctx context.Context, prefix string) (*Result, error) {
	var jobs []job
	skipped := 0

	if lister, ok := ix.backend.(storage.ObjectLister); ok {
		objects, err := lister.ListObjects(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range objects {
			if !storage.IsPQDIF(obj.Path) {
				continue
			}
			info := catalog.FileInfo{Size: obj.Size, Modified: obj.LastModified}
			needs, err := ix.catalog.NeedsIndex(ctx, obj.Path, info)
			if err != nil {
				return nil, err
			}
			if !needs {
				skipped++
				continue
			}
			jobs = append(jobs, job{path: obj.Path, info: info})
		}
	} else {
		paths, err := ix.backend.List(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, p := range paths {
			if storage.IsPQDIF(p) {
				jobs = append(jobs, job{path: p})
			}
		}
	}

	return ix.run(ctx, jobs, skipped)
}

func (ix *Indexer) run(ctx context.Context, jobs []job, skipped int) (*Result, error) {
	ix.mu.Lock()
	if ix.running {
		ix.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	ix.running = true
	ix.mu.Unlock()
	defer func() {
		ix.mu.Lock()
		ix.running = false
		ix.mu.Unlock()
	}()

	start := time.Now()
	res := &Result{Skipped: skipped}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.workers)

	for _, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			observations, err := ix.indexOne(gctx, j)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				ix.logger.Error().Err(err).Str("path", j.path).Msg("Failed to index file")
				res.Failed++
				return nil
			}
			res.Indexed++
			res.Observations += observations
			return nil
		})
	}

	err := g.Wait()
	res.Duration = time.Since(start)
	metrics.Get().RecordIndexRun(res.Indexed, res.Skipped, res.Failed, res.Observations)

	ix.logger.Info().
		Int("indexed", res.Indexed).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Int("observations", res.Observations).
		Dur("duration", res.Duration).
		Msg("Indexing completed")

	return res, err
}

// indexOne parses one object and returns its observation count.
func (ix *Indexer) indexOne(ctx context.Context, j job) (int, error) {
	rs, err := storage.Open(ctx, ix.backend, j.path, ix.maxObjectSize)
	if err != nil {
		return 0, err
	}

	p, err := logical.NewParser(rs, false, ix.logger)
	if err != nil {
		rs.Close()
		return 0, err
	}
	defer p.Close()

	summary, err := ix.catalog.IndexFile(ctx, j.path, j.info, p)
	if err != nil {
		return 0, err
	}
	return summary.Observations, nil
}
