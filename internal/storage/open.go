package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadSeekCloser is what the PQDIF parser consumes.
type ReadSeekCloser interface {
	io.ReadSeeker
	io.Closer
}

type nopReadSeekCloser struct {
	*bytes.Reader
}

func (nopReadSeekCloser) Close() error { return nil }

// Open returns a seekable stream over the object at path. Local objects are
// opened directly; remote objects are buffered in memory and refused when
// larger than maxSize (when maxSize is positive).
func Open(ctx context.Context, backend Backend, path string, maxSize int64) (ReadSeekCloser, error) {
	if local, ok := unwrap(backend).(*LocalBackend); ok {
		fullPath, err := local.validatePath(path)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		f, err := os.Open(fullPath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
			}
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		return f, nil
	}

	var buf bytes.Buffer
	var w io.Writer = &buf
	if maxSize > 0 {
		w = &limitedWriter{w: &buf, remaining: maxSize, path: path}
	}
	if err := backend.ReadTo(ctx, path, w); err != nil {
		return nil, err
	}
	return nopReadSeekCloser{bytes.NewReader(buf.Bytes())}, nil
}

type limitedWriter struct {
	w         io.Writer
	remaining int64
	path      string
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	if int64(len(p)) > l.remaining {
		return 0, fmt.Errorf("object %s exceeds maximum size for in-memory parsing", l.path)
	}
	l.remaining -= int64(len(p))
	return l.w.Write(p)
}

// unwrap returns the backend under any retry wrapper.
func unwrap(b Backend) Backend {
	if r, ok := b.(*RetryingBackend); ok {
		return r.backend
	}
	return b
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}

// IsPQDIF reports whether path looks like a PQDIF file by extension.
func IsPQDIF(path string) bool {
	return hasSuffixFold(path, ".pqd") || hasSuffixFold(path, ".pqdif")
}
