package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/basekick-labs/pqdif/internal/catalog"
	"github.com/basekick-labs/pqdif/internal/indexer"
	"github.com/spf13/cobra"
)

func newIndexCommand(c *cli) *cobra.Command {
	var prefix string
	var workers int

	cmd := &cobra.Command{
		Use:   "index [objects...]",
		Short: "Parse PQDIF files into the observation catalog",
		Long: `Parse PQDIF files into the observation catalog.

With object arguments each is indexed unconditionally. Without them every
PQDIF object under --prefix is indexed, skipping objects unchanged since
they were last cataloged.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("prefix") {
				prefix = c.cfg.Index.Prefix
			}
			if workers < 1 {
				workers = c.cfg.Index.Workers
			}

			backend, err := c.backend()
			if err != nil {
				return err
			}
			defer backend.Close()

			cat, err := catalog.Open(c.cfg.Catalog.DBPath, c.logger)
			if err != nil {
				return err
			}
			defer cat.Close()

			ix := indexer.New(&indexer.Config{
				Backend:       backend,
				Catalog:       cat,
				Workers:       workers,
				MaxObjectSize: c.cfg.Storage.MaxObjectSize,
				Logger:        c.logger,
			})

			var res *indexer.Result
			if len(args) > 0 {
				res, err = ix.IndexPaths(cmd.Context(), args)
			} else {
				res, err = ix.IndexPrefix(cmd.Context(), prefix)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d files (%d observations), skipped %d, failed %d in %s\n",
				res.Indexed, res.Observations, res.Skipped, res.Failed, res.Duration.Round(time.Millisecond))
			if res.Failed > 0 {
				return fmt.Errorf("%d files failed to index", res.Failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "Storage prefix to index (default index.prefix)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Files parsed concurrently (default index.workers)")
	return cmd
}

func newSearchCommand(c *cli) *cobra.Command {
	var filter catalog.Filter
	var from, to string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search cataloged observations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if from != "" {
				if filter.From, err = time.Parse(time.RFC3339, from); err != nil {
					return fmt.Errorf("invalid --from: %w", err)
				}
			}
			if to != "" {
				if filter.To, err = time.Parse(time.RFC3339, to); err != nil {
					return fmt.Errorf("invalid --to: %w", err)
				}
			}

			cat, err := catalog.Open(c.cfg.Catalog.DBPath, c.logger)
			if err != nil {
				return err
			}
			defer cat.Close()

			observations, err := cat.Search(cmd.Context(), filter)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(observations)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "START\tNAME\tDATA SOURCE\tCHANNELS\tFILE\t#")
			for _, o := range observations {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%d\n",
					formatTime(o.Start), o.Name, o.DataSource, o.ChannelCount, o.File, o.Ordinal)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&filter.Name, "name", "", "Substring of the observation name")
	cmd.Flags().StringVar(&filter.DataSource, "data-source", "", "Exact data source name")
	cmd.Flags().StringVar(&filter.File, "file", "", "Exact object path")
	cmd.Flags().StringVar(&from, "from", "", "Earliest start time, RFC3339 (inclusive)")
	cmd.Flags().StringVar(&to, "to", "", "Latest start time, RFC3339 (exclusive)")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Maximum number of results (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}
