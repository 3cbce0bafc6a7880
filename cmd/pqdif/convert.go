package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/basekick-labs/pqdif/internal/config"
	"github.com/basekick-labs/pqdif/pkg/logical"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newConvertCommand(c *cli) *cobra.Command {
	var compression string

	cmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Rewrite a PQDIF file through the logical writer",
		Long: `Rewrite a PQDIF file through the logical writer.

Data source and monitor settings records are written once per run of
observations sharing them, and the container compression is replaced by
--compression. Missing tags found while writing are printed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if compression == "" {
				compression = c.cfg.Writer.Compression
			}
			style, algorithm, err := config.ParseWriterCompression(compression)
			if err != nil {
				return err
			}

			backend, err := c.backend()
			if err != nil {
				return err
			}
			defer backend.Close()

			p, err := c.openParser(cmd.Context(), backend, args[0])
			if err != nil {
				return err
			}
			defer p.Close()

			container := p.ContainerRecord()
			container.SetCompressionStyle(style)
			container.SetCompressionAlgorithm(algorithm)

			var buf bytes.Buffer
			w := logical.NewWriter(&buf, true, c.logger)
			skipped, err := rewrite(p, w, c.logger)
			if err != nil {
				w.Close()
				return err
			}
			if err := w.Close(); err != nil {
				return err
			}

			if err := backend.WriteReader(cmd.Context(), args[1], &buf, int64(buf.Len())); err != nil {
				return fmt.Errorf("failed to write %s: %w", args[1], err)
			}

			out := cmd.OutOrStdout()
			stats := w.Stats()
			fmt.Fprintf(out, "Wrote %s: %d observations, %d data sources, %d monitor settings (%d skipped)\n",
				args[1], stats.Observations, stats.DataSources, stats.MonitorSettings, skipped)
			printMissingTags(out, w.MissingTags())
			return nil
		},
	}

	cmd.Flags().StringVar(&compression, "compression", "", "Output compression: none or zlib (default writer.compression)")
	return cmd
}

func newAuditCommand(c *cli) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "audit <object>",
		Short: "Report tags the format expects that a PQDIF file does not carry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := c.backend()
			if err != nil {
				return err
			}
			defer backend.Close()

			p, err := c.openParser(cmd.Context(), backend, args[0])
			if err != nil {
				return err
			}
			defer p.Close()

			w := logical.NewWriter(io.Discard, true, c.logger)
			defer w.Close()
			skipped, err := rewrite(p, w, c.logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			missing := w.MissingTags()
			fmt.Fprintf(out, "Audited %d observations (%d skipped)\n", w.Stats().Observations, skipped)
			printMissingTags(out, missing)

			if strict && len(missing) > 0 {
				return fmt.Errorf("%s: %d missing tags", args[0], len(missing))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when any tag is missing")
	return cmd
}

// rewrite copies the container and every readable observation of p into w
// and returns how many observations were skipped.
func rewrite(p *logical.Parser, w *logical.Writer, logger zerolog.Logger) (int, error) {
	if err := w.WriteContainer(p.ContainerRecord()); err != nil {
		return 0, err
	}

	skipped := 0
	var pending *logical.ObservationRecord
	for {
		ok, err := p.HasNextObservationRecord()
		if err != nil {
			if logical.IsFatal(err) {
				return skipped, err
			}
			skipped++
			logger.Warn().Err(err).Msg("Skipping unreadable observation")
			continue
		}
		if !ok {
			break
		}

		obs, err := p.NextObservationRecord()
		if err != nil {
			return skipped, err
		}
		// The last observation is only known once the parser runs dry
		if pending != nil {
			if err := w.WriteObservation(pending, false); err != nil {
				return skipped, err
			}
		}
		pending = obs
	}

	if pending != nil {
		return skipped, w.WriteObservation(pending, true)
	}
	return skipped, nil
}

func printMissingTags(out io.Writer, missing []logical.MissingTag) {
	if len(missing) == 0 {
		fmt.Fprintln(out, "No missing tags")
		return
	}
	fmt.Fprintf(out, "%d missing tags:\n", len(missing))
	for _, m := range missing {
		fmt.Fprintf(out, "  %s\n", m)
	}
}
