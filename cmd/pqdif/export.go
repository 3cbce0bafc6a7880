package main

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/basekick-labs/pqdif/internal/export"
	"github.com/spf13/cobra"
)

func newExportCommand(c *cli) *cobra.Command {
	var format, compression, measurement string

	cmd := &cobra.Command{
		Use:   "export <object> [out]",
		Short: "Flatten the observations of a PQDIF file into MessagePack or Arrow",
		Long: `Flatten the observations of a PQDIF file into MessagePack or Arrow.

The output is written to storage next to the input unless [out] is given.
Use "-" to write to stdout.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = c.cfg.Export.Format
			}
			if compression == "" {
				compression = c.cfg.Export.Compression
			}
			if measurement == "" {
				measurement = c.cfg.Export.Measurement
			}

			enc, err := export.NewEncoder(format, measurement, c.logger)
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

			tables, res, err := export.ReadTables(p, c.logger)
			if err != nil {
				return err
			}

			out := strings.TrimSuffix(args[0], path.Ext(args[0])) + enc.Extension() + export.CompressionExtension(compression)
			if len(args) == 2 {
				out = args[1]
			}

			if out == "-" {
				return export.Write(cmd.OutOrStdout(), enc, compression, tables)
			}

			var buf bytes.Buffer
			if err := export.Write(&buf, enc, compression, tables); err != nil {
				return err
			}
			if err := backend.WriteReader(cmd.Context(), out, &buf, int64(buf.Len())); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %d observations, %d rows (%d failed)\n",
				out, res.Observations, res.Rows, res.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Output format: msgpack or arrow (default export.format)")
	cmd.Flags().StringVar(&compression, "compression", "", "Output compression: none, gzip or zstd (default export.compression)")
	cmd.Flags().StringVar(&measurement, "measurement", "", "MessagePack measurement name (default export.measurement)")
	return cmd
}
