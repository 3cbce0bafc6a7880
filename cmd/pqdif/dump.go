package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/basekick-labs/pqdif/pkg/logical"
	"github.com/spf13/cobra"
)

func newDumpCommand(c *cli) *cobra.Command {
	var channels bool

	cmd := &cobra.Command{
		Use:   "dump <object>",
		Short: "Print the container, observations and data sources of a PQDIF file",
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

			return dump(cmd.OutOrStdout(), p, channels)
		},
	}

	cmd.Flags().BoolVar(&channels, "channels", false, "List the channel definitions of each data source")
	return cmd
}

func dump(out io.Writer, p *logical.Parser, channels bool) error {
	container := p.ContainerRecord()
	fileName, _ := container.FileName()
	created, _ := container.Creation()
	version, _ := container.WriterVersion()
	style, _ := container.CompressionStyle()
	algorithm, _ := container.CompressionAlgorithm()

	fmt.Fprintln(out, "Container")
	fmt.Fprintf(out, "  File name:   %s\n", fileName)
	fmt.Fprintf(out, "  Created:     %s\n", formatTime(created))
	fmt.Fprintf(out, "  Version:     %s\n", version)
	fmt.Fprintf(out, "  Compression: %s/%s\n", style, algorithm)
	fmt.Fprintln(out)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNAME\tSTART\tTRIGGER\tDATA SOURCE\tCHANNELS")
	for ordinal := 0; ; ordinal++ {
		ok, err := p.HasNextObservationRecord()
		if err != nil {
			if logical.IsFatal(err) {
				tw.Flush()
				return err
			}
			fmt.Fprintf(tw, "-\t(unreadable: %v)\t\t\t\t\n", err)
			continue
		}
		if !ok {
			break
		}
		obs, err := p.NextObservationRecord()
		if err != nil {
			tw.Flush()
			return err
		}

		name, _ := obs.Name()
		start, _ := obs.StartTime()
		trigger := "-"
		if t, err := obs.TimeTriggered(); err == nil {
			trigger = formatTime(t)
		}
		source := ""
		if ds := obs.DataSource(); ds != nil {
			source, _ = ds.Name()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\n",
			ordinal, name, formatTime(start), trigger, source, len(obs.ChannelInstances()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	stats := p.Stats()
	fmt.Fprintf(out, "\n%d observations, %d data sources, %d monitor settings, %d skipped records, %d failed observations\n",
		stats.Observations, stats.DataSources, stats.MonitorSettings, stats.SkippedRecords, stats.FailedObservations)

	for i, ds := range p.DataSourceRecords() {
		name, _ := ds.Name()
		effective, _ := ds.Effective()
		fmt.Fprintf(out, "\nData source %d: %s (effective %s, %d channels)\n",
			i, name, formatTime(effective), len(ds.ChannelDefinitions()))
		if !channels {
			continue
		}
		for _, cd := range ds.ChannelDefinitions() {
			cname, _ := cd.Name()
			phase, _ := cd.PhaseID()
			measured, _ := cd.QuantityMeasured()
			fmt.Fprintf(out, "  [%d] %s phase=%s quantity=%s series=%d\n",
				cd.Index(), cname, phase, measured, len(cd.SeriesDefinitions()))
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339Nano)
}
