package physical

import (
	"bytes"
	"fmt"
	"hash/adler32"
	"io"

	"github.com/klauspost/compress/zlib"
)

// CompressionStyle selects which part of a file is compressed.
type CompressionStyle uint32

const (
	CompressionStyleNone        CompressionStyle = 0
	CompressionStyleTotalFile   CompressionStyle = 1
	CompressionStyleRecordLevel CompressionStyle = 2
)

func (s CompressionStyle) String() string {
	switch s {
	case CompressionStyleNone:
		return "None"
	case CompressionStyleTotalFile:
		return "TotalFile"
	case CompressionStyleRecordLevel:
		return "RecordLevel"
	default:
		return fmt.Sprintf("CompressionStyle(%d)", uint32(s))
	}
}

// CompressionAlgorithm selects the codec used for compressed bodies.
type CompressionAlgorithm uint32

const (
	CompressionAlgorithmNone  CompressionAlgorithm = 0
	CompressionAlgorithmZlib  CompressionAlgorithm = 1
	CompressionAlgorithmPKZIP CompressionAlgorithm = 64
)

func (a CompressionAlgorithm) String() string {
	switch a {
	case CompressionAlgorithmNone:
		return "None"
	case CompressionAlgorithmZlib:
		return "Zlib"
	case CompressionAlgorithmPKZIP:
		return "PKZIP"
	default:
		return fmt.Sprintf("CompressionAlgorithm(%d)", uint32(a))
	}
}

// compression is the settable pair shared by Reader and Writer.
type compression struct {
	style     CompressionStyle
	algorithm CompressionAlgorithm
}

// validate rejects combinations this package cannot read or write.
func (c compression) validate() error {
	switch c.style {
	case CompressionStyleNone:
		return nil
	case CompressionStyleRecordLevel:
		if c.algorithm == CompressionAlgorithmNone || c.algorithm == CompressionAlgorithmZlib {
			return nil
		}
		return fmt.Errorf("%w: algorithm %s", ErrUnsupportedCompression, c.algorithm)
	default:
		return fmt.Errorf("%w: style %s", ErrUnsupportedCompression, c.style)
	}
}

// active reports whether bodies of the given record type are compressed.
// Container records always stay plain because they carry the settings.
func (c compression) active(t RecordType) bool {
	return t != RecordTypeContainer &&
		c.style == CompressionStyleRecordLevel &&
		c.algorithm == CompressionAlgorithmZlib
}

func compressBody(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(body); err != nil {
		return nil, fmt.Errorf("failed to compress record body: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish record body compression: %w", err)
	}
	return buf.Bytes(), nil
}

func decompressBody(stored []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(stored))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptBody, err)
	}
	defer zr.Close()

	body, err := io.ReadAll(io.LimitReader(zr, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptBody, err)
	}
	if len(body) > MaxBodySize {
		return nil, ErrBodyTooLarge
	}
	return body, nil
}

func checksum(stored []byte) uint32 {
	return adler32.Checksum(stored)
}
