package logical

import (
	"fmt"
	"io"

	"github.com/basekick-labs/pqdif/pkg/physical"
	"github.com/rs/zerolog"
)

// WriterStats counts the physical records emitted by a Writer.
type WriterStats struct {
	Observations    int
	DataSources     int
	MonitorSettings int
}

// Writer writes a container followed by observations. Data source and
// monitor settings records are emitted only when an observation references a
// different one than the previous observation, compared by identity.
//
// Every written record is audited for missing required tags. Findings are
// advisory and never fail a write.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	writer *physical.Writer
	logger zerolog.Logger
	audit  *auditor

	containerWritten  bool
	currentDataSource *DataSourceRecord
	currentSettings   *MonitorSettingsRecord
	finished          bool
	closed            bool

	stats WriterStats
}

// CreateWriter creates or truncates the file at path.
func CreateWriter(path string, logger zerolog.Logger) (*Writer, error) {
	w, err := physical.Create(path, logger)
	if err != nil {
		return nil, err
	}
	return newWriter(w, logger), nil
}

// NewWriter writes to w. Unless leaveOpen is set, Close also closes w when it
// implements io.Closer.
func NewWriter(w io.Writer, leaveOpen bool, logger zerolog.Logger) *Writer {
	return newWriter(physical.NewWriter(w, leaveOpen, logger), logger)
}

func newWriter(w *physical.Writer, logger zerolog.Logger) *Writer {
	return &Writer{
		writer: w,
		logger: logger.With().Str("component", "pqdif-writer").Logger(),
		audit:  newAuditor(),
	}
}

// WriteContainer writes the container record. It must be the first write and
// happen exactly once. The container's compression settings apply to every
// record written after it.
func (w *Writer) WriteContainer(c *ContainerRecord) error {
	if err := w.checkWritable(); err != nil {
		return err
	}
	if w.containerWritten {
		return ErrContainerAlreadyWritten
	}

	style, err := c.CompressionStyle()
	if err != nil {
		return fmt.Errorf("container compression style: %w", err)
	}
	algorithm, err := c.CompressionAlgorithm()
	if err != nil {
		return fmt.Errorf("container compression algorithm: %w", err)
	}

	w.audit.container(c)
	if err := w.writer.WriteRecord(c.PhysicalRecord(), false); err != nil {
		return err
	}
	w.writer.SetCompressionStyle(style)
	w.writer.SetCompressionAlgorithm(algorithm)
	w.containerWritten = true
	return nil
}

// WriteObservation writes obs, preceded by its data source and monitor
// settings when they differ from the ones last written. When last is set the
// observation ends the file and further writes fail with ErrWriterFinished.
func (w *Writer) WriteObservation(obs *ObservationRecord, last bool) error {
	if err := w.checkWritable(); err != nil {
		return err
	}
	if !w.containerWritten {
		return ErrContainerRequired
	}
	ds := obs.DataSource()
	if ds == nil {
		return ErrNoDataSource
	}

	if !ds.Equal(w.currentDataSource) {
		w.audit.dataSource(ds)
		if err := w.writer.WriteRecord(ds.PhysicalRecord(), false); err != nil {
			return fmt.Errorf("failed to write data source: %w", err)
		}
		w.currentDataSource = ds
		w.currentSettings = nil
		w.stats.DataSources++
	}

	if settings := obs.Settings(); settings != nil && !settings.Equal(w.currentSettings) {
		w.audit.monitorSettings(settings)
		if err := w.writer.WriteRecord(settings.PhysicalRecord(), false); err != nil {
			return fmt.Errorf("failed to write monitor settings: %w", err)
		}
		w.currentSettings = settings
		w.stats.MonitorSettings++
	}

	w.audit.observation(obs)
	if err := w.writer.WriteRecord(obs.PhysicalRecord(), last); err != nil {
		return fmt.Errorf("failed to write observation: %w", err)
	}
	w.stats.Observations++
	w.finished = last
	return nil
}

func (w *Writer) checkWritable() error {
	if w.closed {
		return physical.ErrClosed
	}
	if w.finished {
		return ErrWriterFinished
	}
	return nil
}

// MissingTags returns the audit findings of every record written so far.
func (w *Writer) MissingTags() []MissingTag {
	return w.audit.results()
}

// Stats returns counters for the records written so far.
func (w *Writer) Stats() WriterStats { return w.stats }

// Close flushes buffered output and releases the underlying stream when the
// writer owns it.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if len(w.audit.missing) > 0 {
		w.logger.Debug().Int("missing_tags", len(w.audit.missing)).Msg("Writer closed with audit findings")
	}
	return w.writer.Close()
}
