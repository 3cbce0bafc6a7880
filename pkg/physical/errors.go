package physical

import (
	"errors"
	"fmt"
)

// Physical layer errors.
var (
	// ErrInvalidSignature indicates a record header without the PQDIF signature GUID.
	ErrInvalidSignature = errors.New("invalid PQDIF record signature")

	// ErrChecksumMismatch indicates a record body whose Adler-32 checksum does not match its header.
	ErrChecksumMismatch = errors.New("record checksum mismatch")

	// ErrCorruptBody indicates a record body whose element tree cannot be decoded.
	ErrCorruptBody = errors.New("corrupt record body")

	// ErrUnsupportedCompression indicates a compression style or algorithm this package cannot handle.
	ErrUnsupportedCompression = errors.New("unsupported compression")

	// ErrTypeMismatch indicates a typed accessor used on a value of another physical type.
	ErrTypeMismatch = errors.New("physical type mismatch")

	// ErrIndexOutOfRange indicates a vector index outside the vector's bounds.
	ErrIndexOutOfRange = errors.New("vector index out of range")

	// ErrNoMoreRecords indicates NextRecord was called after the last record.
	ErrNoMoreRecords = errors.New("no more records")

	// ErrClosed indicates use of a reader or writer after Close.
	ErrClosed = errors.New("file already closed")

	// ErrWriteAfterLast indicates a write after the record flagged as the file's last.
	ErrWriteAfterLast = errors.New("record written after last record")

	// ErrBodyTooLarge indicates a record body beyond MaxBodySize.
	ErrBodyTooLarge = errors.New("record body exceeds maximum allowed size")
)

// RecordError reports a record whose header was read but whose body was not.
// Type is the kind the header declares, so callers can tell which record
// they lost.
type RecordError struct {
	Type   RecordType
	Offset int64
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s record at offset %d: %v", e.Type, e.Offset, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }
