package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/basekick-labs/pqdif/internal/config"
	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

func TestLocalBackend_BasicOperations(t *testing.T) {
	backend, err := NewLocalBackend(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("failed to create LocalBackend: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	t.Run("Write and Read", func(t *testing.T) {
		testData := []byte("pqdif bytes")
		if err := backend.Write(ctx, "site/a.pqd", testData); err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		data, err := backend.Read(ctx, "site/a.pqd")
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if !bytes.Equal(data, testData) {
			t.Errorf("Read data = %q, want %q", data, testData)
		}

		var buf bytes.Buffer
		if err := backend.ReadTo(ctx, "site/a.pqd", &buf); err != nil {
			t.Fatalf("ReadTo failed: %v", err)
		}
		if !bytes.Equal(buf.Bytes(), testData) {
			t.Errorf("ReadTo data = %q, want %q", buf.Bytes(), testData)
		}
	})

	t.Run("Read missing", func(t *testing.T) {
		_, err := backend.Read(ctx, "site/missing.pqd")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Read error = %v, want ErrNotFound", err)
		}
	})

	t.Run("Exists and Delete", func(t *testing.T) {
		if err := backend.Write(ctx, "tmp/x.pqd", []byte("x")); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		exists, err := backend.Exists(ctx, "tmp/x.pqd")
		if err != nil || !exists {
			t.Fatalf("Exists = %v, %v; want true", exists, err)
		}
		if err := backend.Delete(ctx, "tmp/x.pqd"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		exists, err = backend.Exists(ctx, "tmp/x.pqd")
		if err != nil || exists {
			t.Errorf("Exists after delete = %v, %v; want false", exists, err)
		}
		// Deleting twice is fine
		if err := backend.Delete(ctx, "tmp/x.pqd"); err != nil {
			t.Errorf("second Delete failed: %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		for _, f := range []string{"list/one.pqd", "list/two.pqd", "list/sub/three.pqd"} {
			if err := backend.Write(ctx, f, []byte("data")); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
		}

		listed, err := backend.List(ctx, "list/")
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		sort.Strings(listed)
		want := []string{"list/one.pqd", "list/sub/three.pqd", "list/two.pqd"}
		if fmt.Sprint(listed) != fmt.Sprint(want) {
			t.Errorf("List = %v, want %v", listed, want)
		}

		objects, err := backend.ListObjects(ctx, "list/sub")
		if err != nil {
			t.Fatalf("ListObjects failed: %v", err)
		}
		if len(objects) != 1 || objects[0].Size != 4 || objects[0].LastModified.IsZero() {
			t.Errorf("ListObjects = %+v", objects)
		}

		empty, err := backend.List(ctx, "nothing-here/")
		if err != nil || len(empty) != 0 {
			t.Errorf("List of missing prefix = %v, %v", empty, err)
		}
	})
}

func TestLocalBackend_PathTraversal(t *testing.T) {
	base := t.TempDir()
	backend, err := NewLocalBackend(filepath.Join(base, "root"), testLogger())
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	if err := backend.Write(ctx, "../escape.pqd", []byte("x")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "escape.pqd")); !os.IsNotExist(err) {
		t.Error("write escaped the base directory")
	}
}

func TestOpen_Local(t *testing.T) {
	backend, err := NewLocalBackend(t.TempDir(), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := backend.Write(ctx, "event.pqd", []byte("0123456789")); err != nil {
		t.Fatal(err)
	}

	rs, err := Open(ctx, backend, "event.pqd", 4)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer rs.Close()

	// Local files are not size limited
	if _, err := rs.Seek(6, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	rest, _ := io.ReadAll(rs)
	if string(rest) != "6789" {
		t.Errorf("read after seek = %q", rest)
	}

	if _, err := Open(ctx, backend, "missing.pqd", 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open missing error = %v, want ErrNotFound", err)
	}
}

// memBackend is an in-memory remote stand-in that can fail a number of calls.
type memBackend struct {
	objects  map[string][]byte
	failures int
	calls    int
}

func newMemBackend() *memBackend {
	return &memBackend{objects: make(map[string][]byte)}
}

func (m *memBackend) fail() error {
	m.calls++
	if m.failures > 0 {
		m.failures--
		return errors.New("transient failure")
	}
	return nil
}

func (m *memBackend) Write(ctx context.Context, path string, data []byte) error {
	if err := m.fail(); err != nil {
		return err
	}
	m.objects[path] = append([]byte(nil), data...)
	return nil
}

func (m *memBackend) WriteReader(ctx context.Context, path string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return m.Write(ctx, path, data)
}

func (m *memBackend) Read(ctx context.Context, path string) ([]byte, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	data, ok := m.objects[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return data, nil
}

func (m *memBackend) ReadTo(ctx context.Context, path string, w io.Writer) error {
	data, err := m.Read(ctx, path)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func (m *memBackend) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys, nil
}

func (m *memBackend) Delete(ctx context.Context, path string) error {
	delete(m.objects, path)
	return nil
}

func (m *memBackend) Exists(ctx context.Context, path string) (bool, error) {
	_, ok := m.objects[path]
	return ok, nil
}

func (m *memBackend) Close() error { return nil }
func (m *memBackend) Type() string { return "memory" }

func TestOpen_RemoteSizeLimit(t *testing.T) {
	mem := newMemBackend()
	mem.objects["big.pqd"] = bytes.Repeat([]byte{1}, 100)
	ctx := context.Background()

	rs, err := Open(ctx, mem, "big.pqd", 100)
	if err != nil {
		t.Fatalf("Open at limit failed: %v", err)
	}
	data, _ := io.ReadAll(rs)
	if len(data) != 100 {
		t.Errorf("read %d bytes, want 100", len(data))
	}

	if _, err := Open(ctx, mem, "big.pqd", 99); err == nil {
		t.Error("Open beyond limit should fail")
	}
}

func TestRetryingBackend(t *testing.T) {
	mem := newMemBackend()
	r := NewRetryingBackend(mem, &RetryConfig{MaxRetries: 3, RetryDelay: time.Millisecond, RetryMaxDelay: 2 * time.Millisecond}, testLogger())
	ctx := context.Background()

	mem.failures = 2
	if err := r.Write(ctx, "a.pqd", []byte("a")); err != nil {
		t.Fatalf("Write with transient failures: %v", err)
	}
	if mem.calls != 3 {
		t.Errorf("calls = %d, want 3", mem.calls)
	}

	mem.calls, mem.failures = 0, 10
	if err := r.Write(ctx, "b.pqd", []byte("b")); err == nil {
		t.Error("Write should fail after exhausting retries")
	}
	if mem.calls != 4 {
		t.Errorf("calls = %d, want 4", mem.calls)
	}

	mem.calls, mem.failures = 0, 0
	if _, err := r.Read(ctx, "missing.pqd"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read error = %v, want ErrNotFound", err)
	}
	if mem.calls != 1 {
		t.Errorf("missing objects should not be retried, calls = %d", mem.calls)
	}

	if _, err := r.ListObjects(ctx, ""); err == nil {
		t.Error("ListObjects should fail for a backend without metadata")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	mem.failures = 5
	if err := r.Write(cancelled, "c.pqd", []byte("c")); !errors.Is(err, context.Canceled) {
		t.Errorf("Write with cancelled context = %v, want context.Canceled", err)
	}
}

func TestOpen_UnwrapsRetryingLocal(t *testing.T) {
	local, err := NewLocalBackend(t.TempDir(), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	wrapped := NewRetryingBackend(local, nil, testLogger())
	if err := wrapped.Write(context.Background(), "x.pqd", []byte("xyz")); err != nil {
		t.Fatal(err)
	}

	rs, err := Open(context.Background(), wrapped, "x.pqd", 0)
	if err != nil {
		t.Fatal(err)
	}
	defer rs.Close()
	if _, ok := rs.(*os.File); !ok {
		t.Errorf("Open returned %T, want *os.File", rs)
	}
}

func TestNew_Local(t *testing.T) {
	b, err := New(config.StorageConfig{Backend: "local", LocalPath: t.TempDir()}, testLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if b.Type() != "local" {
		t.Errorf("Type() = %s, want local", b.Type())
	}

	if _, err := New(config.StorageConfig{Backend: "gcs"}, testLogger()); err == nil {
		t.Error("New with unknown backend should fail")
	}
	if _, err := New(config.StorageConfig{Backend: "s3"}, testLogger()); err == nil {
		t.Error("New s3 without a bucket should fail")
	}
	if _, err := New(config.StorageConfig{Backend: "azure", AzureContainer: "c"}, testLogger()); err == nil {
		t.Error("New azure without credentials should fail")
	}
}

func TestContentTypeAndIsPQDIF(t *testing.T) {
	tests := []struct {
		path  string
		ct    string
		pqdif bool
	}{
		{"a/event.pqd", "application/x-pqdif", true},
		{"a/EVENT.PQD", "application/x-pqdif", true},
		{"a/log.pqdif", "application/octet-stream", true},
		{"out/event.arrow", "application/vnd.apache.arrow.stream", false},
		{"out/event.msgpack", "application/msgpack", false},
		{"out/event.msgpack.zst", "application/octet-stream", false},
	}
	for _, tt := range tests {
		if got := contentType(tt.path); got != tt.ct {
			t.Errorf("contentType(%s) = %s, want %s", tt.path, got, tt.ct)
		}
		if got := IsPQDIF(tt.path); got != tt.pqdif {
			t.Errorf("IsPQDIF(%s) = %v, want %v", tt.path, got, tt.pqdif)
		}
	}
}
