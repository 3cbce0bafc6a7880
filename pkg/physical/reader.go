package physical

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Reader reads records sequentially from a PQDIF stream by following each
// header's next-record position.
type Reader struct {
	rs     io.ReadSeeker
	closer io.Closer
	logger zerolog.Logger

	compression compression
	size        int64
	next        int64
	hasNext     bool
	closed      bool

	// Metrics
	TotalRecords     int64
	TotalBytes       int64
	CorruptedRecords int64
}

// Open opens the file at path. The returned Reader owns the file handle.
func Open(path string, logger zerolog.Logger) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PQDIF file: %w", err)
	}
	r, err := NewReader(f, false, logger)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// NewReader reads records from rs. Unless leaveOpen is set, Close also closes
// rs when it implements io.Closer.
func NewReader(rs io.ReadSeeker, leaveOpen bool, logger zerolog.Logger) (*Reader, error) {
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to determine stream size: %w", err)
	}

	r := &Reader{
		rs:     rs,
		logger: logger.With().Str("component", "pqdif-reader").Logger(),
		size:   size,
	}
	if c, ok := rs.(io.Closer); ok && !leaveOpen {
		r.closer = c
	}
	r.Reset()
	return r, nil
}

// SetCompressionStyle sets the style applied to every non-container record
// read from now on.
func (r *Reader) SetCompressionStyle(style CompressionStyle) {
	r.compression.style = style
}

// SetCompressionAlgorithm sets the algorithm applied to every non-container
// record read from now on.
func (r *Reader) SetCompressionAlgorithm(algorithm CompressionAlgorithm) {
	r.compression.algorithm = algorithm
}

// HasNextRecord reports whether another record follows the cursor.
func (r *Reader) HasNextRecord() bool {
	return !r.closed && r.hasNext
}

// NextRecord reads the record at the cursor and advances past it. When the
// header is readable but the body is not, the cursor still advances so the
// caller may continue with the following record.
func (r *Reader) NextRecord() (*Record, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if !r.hasNext {
		return nil, ErrNoMoreRecords
	}

	pos := r.next
	header, err := r.readHeader(pos)
	if err != nil {
		r.hasNext = false
		r.CorruptedRecords++
		return nil, err
	}
	r.advance(pos, header)

	recordType := header.RecordType()
	body, err := r.readBody(pos, header)
	if err != nil {
		r.CorruptedRecords++
		if recordType == RecordTypeUnknown {
			// Unknown kinds are skipped by callers; keep the header usable.
			r.logger.Debug().Err(err).Str("type_tag", header.TypeTag.String()).Msg("Ignoring unreadable body of unknown record")
			return &Record{Header: header, Body: &RecordBody{Collection: NewCollectionElement(header.TypeTag)}}, nil
		}
		return nil, &RecordError{Type: recordType, Offset: pos, Err: err}
	}

	r.TotalRecords++
	r.TotalBytes += int64(header.HeaderSize) + int64(header.BodySize)
	return &Record{Header: header, Body: body}, nil
}

func (r *Reader) readHeader(pos int64) (*RecordHeader, error) {
	if pos+HeaderSize > r.size {
		return nil, fmt.Errorf("%w: record header at offset %d exceeds stream size %d", ErrCorruptBody, pos, r.size)
	}
	if _, err := r.rs.Seek(pos, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to record: %w", err)
	}
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r.rs, buf); err != nil {
		return nil, fmt.Errorf("failed to read record header: %w", err)
	}
	return decodeHeader(buf)
}

// advance moves the cursor to the record following the one at pos.
func (r *Reader) advance(pos int64, header *RecordHeader) {
	next := int64(header.NextRecordPosition)
	switch {
	case next <= 0:
		r.hasNext = false
	case next <= pos:
		r.logger.Warn().
			Int64("offset", pos).
			Int64("next", next).
			Msg("Record points backwards, stopping")
		r.hasNext = false
	default:
		r.next = next
		r.hasNext = next+HeaderSize <= r.size
	}
}

func (r *Reader) readBody(pos int64, header *RecordHeader) (*RecordBody, error) {
	start := pos + int64(header.HeaderSize)
	if start+int64(header.BodySize) > r.size {
		return nil, fmt.Errorf("%w: body of %d bytes exceeds stream size", ErrCorruptBody, header.BodySize)
	}
	if _, err := r.rs.Seek(start, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to record body: %w", err)
	}
	stored := make([]byte, header.BodySize)
	if _, err := io.ReadFull(r.rs, stored); err != nil {
		return nil, fmt.Errorf("failed to read record body: %w", err)
	}

	if actual := checksum(stored); actual != header.Checksum {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrChecksumMismatch, header.Checksum, actual)
	}

	recordType := header.RecordType()
	raw := stored
	if recordType != RecordTypeContainer {
		if err := r.compression.validate(); err != nil {
			return nil, err
		}
	}
	if r.compression.active(recordType) {
		var err error
		if raw, err = decompressBody(stored); err != nil {
			return nil, err
		}
	}

	root, err := decodeBody(raw, header.TypeTag)
	if err != nil {
		return nil, err
	}
	return &RecordBody{Collection: root}, nil
}

// Reset moves the cursor back to the first record. Compression settings are kept.
func (r *Reader) Reset() {
	r.next = 0
	r.hasNext = r.size >= HeaderSize
}

// Close releases the underlying stream when the Reader owns it.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
