package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/basekick-labs/pqdif/internal/catalog"
	"github.com/basekick-labs/pqdif/internal/config"
	"github.com/basekick-labs/pqdif/internal/indexer"
	"github.com/basekick-labs/pqdif/internal/scheduler"
	"github.com/basekick-labs/pqdif/internal/storage"
	"github.com/basekick-labs/pqdif/pkg/logical"
	"github.com/basekick-labs/pqdif/pkg/models"
	"github.com/gofiber/fiber/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

var eventStart = time.Date(2025, time.June, 1, 6, 30, 0, 0, time.UTC)

// writeEventFile stores a PQDIF file holding one observation per name.
func writeEventFile(t *testing.T, backend storage.Backend, path string, names ...string) {
	t.Helper()
	ds := logical.CreateDataSourceRecord("Substation 4")
	cd := ds.AddNewChannelDefinition()
	cd.SetName("Vb")
	cd.AddNewSeriesDefinition()

	container := logical.CreateContainerRecord()
	container.SetFileName(filepath.Base(path))

	var buf bytes.Buffer
	w := logical.NewWriter(&buf, true, zerolog.Nop())
	if err := w.WriteContainer(container); err != nil {
		t.Fatalf("WriteContainer: %v", err)
	}
	for i, name := range names {
		obs := logical.CreateObservationRecord(ds, nil)
		obs.SetName(name)
		obs.SetStartTime(eventStart.Add(time.Duration(i) * time.Minute))
		si, err := obs.AddNewChannelInstance(cd).AddNewSeriesInstance()
		if err != nil {
			t.Fatalf("AddNewSeriesInstance: %v", err)
		}
		si.SetValues([]float64{120.1, 119.8, 64.2})
		if err := w.WriteObservation(obs, i == len(names)-1); err != nil {
			t.Fatalf("WriteObservation: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := backend.Write(context.Background(), path, buf.Bytes()); err != nil {
		t.Fatalf("Write: %v", err)
	}
}

type testEnv struct {
	app     *fiber.App
	backend storage.Backend
	catalog *catalog.Catalog
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.New(os.Stderr).Level(zerolog.Disabled)

	backend, err := storage.NewLocalBackend(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("failed to create LocalBackend: %v", err)
	}
	cat, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"), logger)
	if err != nil {
		t.Fatalf("failed to open catalog: %v", err)
	}
	t.Cleanup(func() { cat.Close() })

	ix := indexer.New(&indexer.Config{Backend: backend, Catalog: cat, Workers: 2, Logger: logger})
	sched, err := scheduler.NewIndexScheduler(&scheduler.IndexSchedulerConfig{Indexer: ix, Logger: logger})
	if err != nil {
		t.Fatalf("failed to create scheduler: %v", err)
	}

	server := NewServer(&config.ServerConfig{Host: "127.0.0.1", Port: 0, ReadTimeout: 5, WriteTimeout: 5}, logger)
	app := server.GetApp()
	NewCatalogHandler(cat, logger).RegisterRoutes(app)
	NewIndexHandler(sched, logger).RegisterRoutes(app)
	NewExportHandler(backend, 0, config.ExportConfig{Format: "msgpack", Compression: "none", Measurement: "pqdif"}, logger).RegisterRoutes(app)

	return &testEnv{app: app, backend: backend, catalog: cat}
}

func doRequest(t *testing.T, app *fiber.App, method, target string) (int, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, target, nil), -1)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}
	return resp.StatusCode, body
}

func TestHealth(t *testing.T) {
	env := setupTestServer(t)

	for _, target := range []string{"/health", "/ready", "/metrics"} {
		status, body := doRequest(t, env.app, "GET", target)
		if status != fiber.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", target, status, body)
		}
	}

	resp, err := env.app.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if got := resp.Header.Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("expected security headers, got X-Frame-Options %q", got)
	}

	_, body := doRequest(t, env.app, "GET", "/metrics")
	if !bytes.Contains(body, []byte("# TYPE pqdif_http_requests_total counter")) {
		t.Errorf("expected Prometheus output, got %s", body)
	}
}

func TestIndexThenSearch(t *testing.T) {
	env := setupTestServer(t)
	writeEventFile(t, env.backend, "feeder/events.pqd", "Sag", "Swell")

	status, body := doRequest(t, env.app, "POST", "/api/v1/index")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var res indexer.Result
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("Failed to decode result: %v", err)
	}
	if res.Indexed != 1 || res.Observations != 2 {
		t.Errorf("expected 1 file with 2 observations, got %+v", res)
	}

	status, body = doRequest(t, env.app, "GET", "/api/v1/files")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var files struct {
		Count int                  `json:"count"`
		Files []models.FileSummary `json:"files"`
	}
	if err := json.Unmarshal(body, &files); err != nil {
		t.Fatalf("Failed to decode files: %v", err)
	}
	if files.Count != 1 || files.Files[0].Path != "feeder/events.pqd" {
		t.Errorf("unexpected files: %+v", files)
	}

	t.Run("filters", func(t *testing.T) {
		tests := []struct {
			query string
			want  int
		}{
			{"", 2},
			{"?name=swe", 1},
			{"?data_source=Substation%204", 2},
			{"?from=2025-06-01T06:31:00Z", 1},
			{"?to=2025-06-01T06:31:00Z", 1},
			{"?limit=1", 1},
			{"?file=other.pqd", 0},
		}
		for _, tt := range tests {
			status, body := doRequest(t, env.app, "GET", "/api/v1/observations"+tt.query)
			if status != fiber.StatusOK {
				t.Fatalf("%q: expected 200, got %d: %s", tt.query, status, body)
			}
			var got struct {
				Count        int                         `json:"count"`
				Observations []models.ObservationSummary `json:"observations"`
			}
			if err := json.Unmarshal(body, &got); err != nil {
				t.Fatalf("Failed to decode observations: %v", err)
			}
			if got.Count != tt.want {
				t.Errorf("%q: expected %d observations, got %d", tt.query, tt.want, got.Count)
			}
		}
	})

	t.Run("invalid parameters", func(t *testing.T) {
		for _, query := range []string{"?from=yesterday", "?to=1", "?limit=0", "?limit=abc"} {
			status, _ := doRequest(t, env.app, "GET", "/api/v1/observations"+query)
			if status != fiber.StatusBadRequest {
				t.Errorf("%q: expected 400, got %d", query, status)
			}
		}
	})

	status, body = doRequest(t, env.app, "GET", "/api/v1/index/status")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var schedStatus map[string]interface{}
	if err := json.Unmarshal(body, &schedStatus); err != nil {
		t.Fatalf("Failed to decode status: %v", err)
	}
	if _, ok := schedStatus["last_run"]; !ok {
		t.Errorf("expected last_run in status, got %v", schedStatus)
	}
}

type busyScheduler struct{}

func (busyScheduler) Status() map[string]interface{} { return map[string]interface{}{} }

func (busyScheduler) TriggerNow(ctx context.Context) (*indexer.Result, error) {
	return nil, indexer.ErrAlreadyRunning
}

func TestIndexConflict(t *testing.T) {
	app := fiber.New()
	NewIndexHandler(busyScheduler{}, zerolog.Nop()).RegisterRoutes(app)

	status, body := doRequest(t, app, "POST", "/api/v1/index")
	if status != fiber.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", status, body)
	}
}

func TestExport(t *testing.T) {
	env := setupTestServer(t)
	writeEventFile(t, env.backend, "feeder/events.pqd", "Sag")

	resp, err := env.app.Test(httptest.NewRequest("GET", "/api/v1/export?path=feeder/events.pqd", nil), -1)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	if got := resp.Header.Get("Content-Type"); got != "application/msgpack" {
		t.Errorf("expected msgpack content type, got %q", got)
	}
	if got := resp.Header.Get("X-PQDIF-Rows"); got != "3" {
		t.Errorf("expected 3 rows, got %q", got)
	}

	var payload models.ColumnarPayload
	if err := msgpack.Unmarshal(body, &payload); err != nil {
		t.Fatalf("Failed to decode msgpack: %v", err)
	}
	if payload.M != "pqdif" {
		t.Errorf("expected measurement pqdif, got %q", payload.M)
	}
	if len(payload.Columns["Vb.Val"]) != 3 {
		t.Errorf("expected 3 values in Vb.Val, got %v", payload.Columns["Vb.Val"])
	}

	t.Run("zstd", func(t *testing.T) {
		resp, err := env.app.Test(httptest.NewRequest("GET", "/api/v1/export?path=feeder/events.pqd&compression=zstd", nil), -1)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		dec, err := zstd.NewReader(resp.Body)
		if err != nil {
			t.Fatalf("zstd reader: %v", err)
		}
		defer dec.Close()
		var got models.ColumnarPayload
		if err := msgpack.NewDecoder(dec).Decode(&got); err != nil {
			t.Fatalf("Failed to decode msgpack: %v", err)
		}
		if got.M != "pqdif" {
			t.Errorf("expected measurement pqdif, got %q", got.M)
		}
	})

	t.Run("errors", func(t *testing.T) {
		if err := env.backend.Write(context.Background(), "broken.pqd", []byte("nope")); err != nil {
			t.Fatalf("Write: %v", err)
		}
		tests := []struct {
			target string
			want   int
		}{
			{"/api/v1/export", fiber.StatusBadRequest},
			{"/api/v1/export?path=feeder/events.pqd&format=csv", fiber.StatusBadRequest},
			{"/api/v1/export?path=feeder/events.pqd&compression=lz4", fiber.StatusBadRequest},
			{"/api/v1/export?path=missing.pqd", fiber.StatusNotFound},
			{"/api/v1/export?path=broken.pqd", fiber.StatusUnprocessableEntity},
		}
		for _, tt := range tests {
			status, body := doRequest(t, env.app, "GET", tt.target)
			if status != tt.want {
				t.Errorf("%s: expected %d, got %d: %s", tt.target, tt.want, status, body)
			}
		}
	})
}
