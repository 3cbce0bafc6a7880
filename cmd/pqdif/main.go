package main

import (
	"context"
	"fmt"
	"os"

	"github.com/basekick-labs/pqdif/internal/config"
	"github.com/basekick-labs/pqdif/internal/logger"
	"github.com/basekick-labs/pqdif/internal/storage"
	"github.com/basekick-labs/pqdif/pkg/logical"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version is set at build time
var Version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries the loaded configuration to every subcommand
type cli struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger zerolog.Logger
}

func newRootCommand() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:          "pqdif",
		Short:        "Read, write, export and catalog PQDIF power quality files",
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.load()
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to a pqdif.toml config file")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Override log.level (debug, info, warn, error, disabled)")

	root.AddCommand(
		newDumpCommand(c),
		newConvertCommand(c),
		newAuditCommand(c),
		newExportCommand(c),
		newIndexCommand(c),
		newSearchCommand(c),
		newServeCommand(c),
	)
	return root
}

func (c *cli) load() error {
	cfg, err := config.LoadFile(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}

	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	c.cfg = cfg
	c.logger = logger.Get("cli")
	return nil
}

func (c *cli) backend() (storage.Backend, error) {
	b, err := storage.New(c.cfg.Storage, c.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s storage: %w", c.cfg.Storage.Backend, err)
	}
	return b, nil
}

// openParser opens a PQDIF object for reading. The parser owns the stream.
func (c *cli) openParser(ctx context.Context, backend storage.Backend, path string) (*logical.Parser, error) {
	rs, err := storage.Open(ctx, backend, path, c.cfg.Storage.MaxObjectSize)
	if err != nil {
		return nil, err
	}
	p, err := logical.NewParser(rs, false, c.logger)
	if err != nil {
		rs.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
