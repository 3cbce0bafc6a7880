package main

import (
	"time"

	"github.com/basekick-labs/pqdif/internal/api"
	"github.com/basekick-labs/pqdif/internal/catalog"
	"github.com/basekick-labs/pqdif/internal/indexer"
	"github.com/basekick-labs/pqdif/internal/logger"
	"github.com/basekick-labs/pqdif/internal/metrics"
	"github.com/basekick-labs/pqdif/internal/scheduler"
	"github.com/basekick-labs/pqdif/internal/shutdown"
	"github.com/spf13/cobra"
)

func newServeCommand(c *cli) *cobra.Command {
	var noSchedule bool
	var shutdownTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog and export API and index storage on a schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.logger.Info().Str("version", Version).Msg("Starting PQDIF server...")
			metrics.Init(logger.Get("metrics"))

			backend, err := c.backend()
			if err != nil {
				return err
			}
			coordinator := shutdown.New(shutdownTimeout, logger.Get("shutdown"))
			coordinator.Register("storage", backend, shutdown.PriorityStorage)

			cat, err := catalog.Open(c.cfg.Catalog.DBPath, logger.Get("catalog"))
			if err != nil {
				coordinator.Shutdown()
				return err
			}
			coordinator.Register("catalog", cat, shutdown.PriorityCatalog)

			ix := indexer.New(&indexer.Config{
				Backend:       backend,
				Catalog:       cat,
				Workers:       c.cfg.Index.Workers,
				MaxObjectSize: c.cfg.Storage.MaxObjectSize,
				Logger:        logger.Get("indexer"),
			})

			sched, err := scheduler.NewIndexScheduler(&scheduler.IndexSchedulerConfig{
				Indexer:  ix,
				Prefix:   c.cfg.Index.Prefix,
				Schedule: c.cfg.Index.Schedule,
				Logger:   logger.Get("scheduler"),
			})
			if err != nil {
				coordinator.Shutdown()
				return err
			}
			if !noSchedule {
				if err := sched.Start(); err != nil {
					coordinator.Shutdown()
					return err
				}
			}
			coordinator.Register("index-scheduler", sched, shutdown.PriorityScheduler)

			serverLogger := logger.Get("api")
			server := api.NewServer(&c.cfg.Server, serverLogger)
			app := server.GetApp()
			api.NewCatalogHandler(cat, serverLogger).RegisterRoutes(app)
			api.NewIndexHandler(sched, serverLogger).RegisterRoutes(app)
			api.NewExportHandler(backend, c.cfg.Storage.MaxObjectSize, c.cfg.Export, serverLogger).RegisterRoutes(app)

			errCh, err := server.Start()
			if err != nil {
				coordinator.Shutdown()
				return err
			}
			coordinator.RegisterHook("http-server", server.Shutdown, shutdown.PriorityHTTPServer)

			failed := make(chan error, 1)
			go func() {
				if err := <-errCh; err != nil {
					c.logger.Error().Err(err).Msg("HTTP server failed")
					failed <- err
					coordinator.TriggerShutdown()
				}
			}()

			coordinator.WaitForSignal()
			if err := coordinator.Shutdown(); err != nil {
				c.logger.Error().Err(err).Msg("Shutdown error")
			}

			select {
			case err := <-failed:
				return err
			default:
				return nil
			}
		},
	}

	cmd.Flags().BoolVar(&noSchedule, "no-schedule", false, "Disable scheduled indexing (POST /api/v1/index still works)")
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 30*time.Second, "Time allowed for graceful shutdown")
	return cmd
}
