package physical

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Writer appends records to a PQDIF stream, linking each header to the next.
type Writer struct {
	w      io.Writer
	buf    *bufio.Writer
	closer io.Closer
	logger zerolog.Logger

	compression compression
	position    int64
	finished    bool
	closed      bool

	// Metrics
	TotalRecords int64
	TotalBytes   int64
}

// Create creates or truncates the file at path. The returned Writer owns the file handle.
func Create(path string, logger zerolog.Logger) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create PQDIF file: %w", err)
	}
	w := NewWriter(f, false, logger)
	w.buf = bufio.NewWriterSize(f, 64*1024)
	w.w = w.buf
	return w, nil
}

// NewWriter writes records to w. Unless leaveOpen is set, Close also closes w
// when it implements io.Closer.
func NewWriter(w io.Writer, leaveOpen bool, logger zerolog.Logger) *Writer {
	pw := &Writer{
		w:      w,
		logger: logger.With().Str("component", "pqdif-writer").Logger(),
	}
	if c, ok := w.(io.Closer); ok && !leaveOpen {
		pw.closer = c
	}
	return pw
}

// SetCompressionStyle sets the style applied to every non-container record written from now on.
func (w *Writer) SetCompressionStyle(style CompressionStyle) {
	w.compression.style = style
}

// SetCompressionAlgorithm sets the algorithm applied to every non-container record written from now on.
func (w *Writer) SetCompressionAlgorithm(algorithm CompressionAlgorithm) {
	w.compression.algorithm = algorithm
}

// WriteRecord encodes rec and appends it. The header of rec is updated with
// the sizes, link and checksum actually written. When last is set the record
// terminates the chain and further writes fail.
func (w *Writer) WriteRecord(rec *Record, last bool) error {
	if w.closed {
		return ErrClosed
	}
	if w.finished {
		return ErrWriteAfterLast
	}
	if rec == nil || rec.Header == nil || rec.Body == nil || rec.Body.Collection == nil {
		return fmt.Errorf("incomplete record")
	}

	recordType := rec.Type()
	body, err := encodeBody(rec.Body.Collection)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", recordType, err)
	}

	if recordType != RecordTypeContainer {
		if err := w.compression.validate(); err != nil {
			return err
		}
	}
	if w.compression.active(recordType) {
		if body, err = compressBody(body); err != nil {
			return err
		}
	}
	if len(body) > MaxBodySize {
		return fmt.Errorf("%w: %d bytes", ErrBodyTooLarge, len(body))
	}

	h := rec.Header
	h.Signature = RecordSignature
	h.HeaderSize = HeaderSize
	h.BodySize = int32(len(body))
	h.Checksum = checksum(body)
	h.NextRecordPosition = 0
	if !last {
		h.NextRecordPosition = int32(w.position + HeaderSize + int64(len(body)))
	}

	data := make([]byte, 0, HeaderSize+len(body))
	data = append(data, h.encode()...)
	data = append(data, body...)
	n, err := w.w.Write(data)
	w.position += int64(n)
	if err != nil {
		return fmt.Errorf("failed to write %s record: %w", recordType, err)
	}

	w.TotalRecords++
	w.TotalBytes += int64(n)
	w.finished = last

	w.logger.Debug().
		Str("type", recordType.String()).
		Int("size", n).
		Bool("last", last).
		Msg("Wrote record")
	return nil
}

// Close flushes buffered output and releases the underlying stream when the
// Writer owns it.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var flushErr error
	if w.buf != nil {
		flushErr = w.buf.Flush()
	}
	if w.closer != nil {
		if err := w.closer.Close(); err != nil && flushErr == nil {
			return err
		}
	}
	return flushErr
}
