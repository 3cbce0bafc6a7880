package logical

import (
	"errors"
	"fmt"
	"io"

	"github.com/basekick-labs/pqdif/pkg/physical"
	"github.com/rs/zerolog"
)

// ParserStats counts what a parser has seen since it was opened or reset.
type ParserStats struct {
	Observations       int
	DataSources        int
	MonitorSettings    int
	SkippedRecords     int
	FailedObservations int
}

// Parser reads observations from a PQDIF stream. Each observation is bound to
// the data source and monitor settings most recently read before it.
//
// A Parser is not safe for concurrent use.
type Parser struct {
	reader *physical.Reader
	logger zerolog.Logger

	container   *ContainerRecord
	dataSources []*DataSourceRecord

	currentDataSource *DataSourceRecord
	currentSettings   *MonitorSettingsRecord
	pending           *ObservationRecord

	stats  ParserStats
	fatal  error
	closed bool
}

// OpenParser opens the file at path and reads its container record.
func OpenParser(path string, logger zerolog.Logger) (*Parser, error) {
	reader, err := physical.Open(path, logger)
	if err != nil {
		return nil, err
	}
	return newParser(reader, logger)
}

// NewParser reads from rs and consumes its container record. Unless leaveOpen
// is set, Close also closes rs when it implements io.Closer.
func NewParser(rs io.ReadSeeker, leaveOpen bool, logger zerolog.Logger) (*Parser, error) {
	reader, err := physical.NewReader(rs, leaveOpen, logger)
	if err != nil {
		return nil, err
	}
	return newParser(reader, logger)
}

func newParser(reader *physical.Reader, logger zerolog.Logger) (*Parser, error) {
	p := &Parser{
		reader: reader,
		logger: logger.With().Str("component", "pqdif-parser").Logger(),
	}
	if err := p.readContainer(); err != nil {
		reader.Close()
		return nil, err
	}
	return p, nil
}

// readContainer reads the first record and configures decompression for the
// records after it.
func (p *Parser) readContainer() error {
	if !p.reader.HasNextRecord() {
		return fmt.Errorf("%w: file is empty", ErrMissingContainer)
	}
	rec, err := p.reader.NextRecord()
	if err != nil {
		return fmt.Errorf("failed to read container record: %w", err)
	}
	container, ok := NewContainerRecord(rec)
	if !ok {
		return fmt.Errorf("%w: found %s", ErrMissingContainer, rec.Type())
	}

	style, err := container.CompressionStyle()
	if err != nil {
		return fmt.Errorf("container compression style: %w", err)
	}
	algorithm, err := container.CompressionAlgorithm()
	if err != nil {
		return fmt.Errorf("container compression algorithm: %w", err)
	}
	p.reader.SetCompressionStyle(style)
	p.reader.SetCompressionAlgorithm(algorithm)

	p.container = container
	p.logger.Debug().
		Str("compression_style", style.String()).
		Str("compression_algorithm", algorithm.String()).
		Msg("Read container record")
	return nil
}

// ContainerRecord returns the file's container record.
func (p *Parser) ContainerRecord() *ContainerRecord { return p.container }

// DataSourceRecords returns every data source read so far, in file order.
func (p *Parser) DataSourceRecords() []*DataSourceRecord {
	out := make([]*DataSourceRecord, len(p.dataSources))
	copy(out, p.dataSources)
	return out
}

// Stats returns counters for the records read so far.
func (p *Parser) Stats() ParserStats { return p.stats }

// HasNextObservationRecord scans forward to the next observation. It returns
// false with a nil error at the end of the file.
//
// An error about a single record (a corrupt body, or an observation read
// before any data source) leaves the parser usable: calling again resumes
// with the following record. An unreadable data source also drops the
// current data source and settings, so the observations after it fail with
// ErrNoDataSource rather than bind to an earlier device. A second container record is fatal and every
// later call returns the same error.
func (p *Parser) HasNextObservationRecord() (bool, error) {
	if p.closed {
		return false, ErrParserClosed
	}
	if p.fatal != nil {
		return false, p.fatal
	}

	for p.pending == nil {
		if !p.reader.HasNextRecord() {
			return false, nil
		}

		rec, err := p.reader.NextRecord()
		if err != nil {
			p.logger.Warn().Err(err).Msg("Failed to read record")
			p.dropLost(err)
			return false, err
		}

		switch rec.Type() {
		case physical.RecordTypeContainer:
			p.fatal = ErrDuplicateContainer
			return false, p.fatal

		case physical.RecordTypeDataSource:
			ds, _ := NewDataSourceRecord(rec)
			p.currentDataSource = ds
			p.dataSources = append(p.dataSources, ds)
			p.stats.DataSources++

		case physical.RecordTypeMonitorSettings:
			p.currentSettings, _ = NewMonitorSettingsRecord(rec)
			p.stats.MonitorSettings++

		case physical.RecordTypeObservation:
			if p.currentDataSource == nil {
				p.stats.FailedObservations++
				return false, fmt.Errorf("observation record: %w", ErrNoDataSource)
			}
			p.pending, _ = NewObservationRecord(rec, p.currentDataSource, p.currentSettings)

		default:
			p.stats.SkippedRecords++
			p.logger.Debug().
				Str("type", rec.Type().String()).
				Str("type_tag", rec.Header.TypeTag.String()).
				Msg("Skipping record")
		}
	}
	return true, nil
}

// dropLost forgets the association state an unreadable record replaced, so
// the observations that follow it are not bound to an earlier device.
func (p *Parser) dropLost(err error) {
	var recErr *physical.RecordError
	if !errors.As(err, &recErr) {
		return
	}
	switch recErr.Type {
	case physical.RecordTypeDataSource:
		p.currentDataSource = nil
		p.currentSettings = nil
	case physical.RecordTypeMonitorSettings:
		p.currentSettings = nil
	case physical.RecordTypeObservation:
		p.stats.FailedObservations++
	}
}

// NextObservationRecord returns the next observation. It returns
// ErrNoMoreObservations at the end of the file.
func (p *Parser) NextObservationRecord() (*ObservationRecord, error) {
	if p.pending == nil {
		ok, err := p.HasNextObservationRecord()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNoMoreObservations
		}
	}
	obs := p.pending
	p.pending = nil
	p.stats.Observations++
	return obs, nil
}

// Reset rewinds to the first record after the container and forgets every
// data source, monitor settings and pending observation.
func (p *Parser) Reset() error {
	if p.closed {
		return ErrParserClosed
	}
	p.reader.Reset()
	if _, err := p.reader.NextRecord(); err != nil {
		return fmt.Errorf("failed to skip container record: %w", err)
	}

	p.dataSources = nil
	p.currentDataSource = nil
	p.currentSettings = nil
	p.pending = nil
	p.stats = ParserStats{}
	p.fatal = nil
	return nil
}

// Close releases the underlying stream when the parser owns it.
func (p *Parser) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	if err := p.reader.Close(); err != nil && !errors.Is(err, physical.ErrClosed) {
		return err
	}
	return nil
}

// IsFatal reports whether err from HasNextObservationRecord ends reading of
// the file. Other errors concern one record and reading may continue.
func IsFatal(err error) bool {
	return errors.Is(err, ErrDuplicateContainer) || errors.Is(err, ErrParserClosed)
}
