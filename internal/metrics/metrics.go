package metrics

import (
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Metrics holds process counters for Prometheus export
type Metrics struct {
	startTime time.Time

	// HTTP request metrics
	httpRequestsTotal   atomic.Int64
	httpRequestsSuccess atomic.Int64
	httpRequestsError   atomic.Int64

	// HTTP latency histogram buckets (microseconds)
	httpLatencyBuckets [len(latencyBounds) + 1]atomic.Int64
	httpLatencySum     atomic.Int64
	httpLatencyCount   atomic.Int64

	// Indexing
	indexRunsTotal         atomic.Int64
	indexFilesIndexed      atomic.Int64
	indexFilesSkipped      atomic.Int64
	indexFilesFailed       atomic.Int64
	indexObservationsTotal atomic.Int64

	// Export
	exportRequestsTotal     atomic.Int64
	exportObservationsTotal atomic.Int64
	exportFailedTotal       atomic.Int64
	exportRowsTotal         atomic.Int64
	exportBytesTotal        atomic.Int64

	logger zerolog.Logger
}

// Upper bounds of the latency buckets in microseconds: 1ms to 1s, then +Inf
var latencyBounds = [...]int64{1000, 5000, 10000, 25000, 50000, 100000, 250000, 500000, 1000000}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			startTime: time.Now(),
		}
	})
	return instance
}

// Init initializes the metrics with a logger
func Init(logger zerolog.Logger) *Metrics {
	m := Get()
	m.logger = logger.With().Str("component", "metrics").Logger()
	m.logger.Debug().Msg("Metrics collector initialized")
	return m
}

// RecordHTTPRequest counts one request with its status and latency
func (m *Metrics) RecordHTTPRequest(status int, durationMicros int64) {
	m.httpRequestsTotal.Add(1)
	if status >= 400 {
		m.httpRequestsError.Add(1)
	} else {
		m.httpRequestsSuccess.Add(1)
	}

	m.httpLatencySum.Add(durationMicros)
	m.httpLatencyCount.Add(1)
	m.httpLatencyBuckets[latencyBucket(durationMicros)].Add(1)
}

func latencyBucket(micros int64) int {
	for i, bound := range latencyBounds {
		if micros <= bound {
			return i
		}
	}
	return len(latencyBounds)
}

// RecordIndexRun adds the outcome of one indexing run
func (m *Metrics) RecordIndexRun(indexed, skipped, failed, observations int) {
	m.indexRunsTotal.Add(1)
	m.indexFilesIndexed.Add(int64(indexed))
	m.indexFilesSkipped.Add(int64(skipped))
	m.indexFilesFailed.Add(int64(failed))
	m.indexObservationsTotal.Add(int64(observations))
}

// RecordExport adds the outcome of one export
func (m *Metrics) RecordExport(observations, failed, rows int, bytes int64) {
	m.exportRequestsTotal.Add(1)
	m.exportObservationsTotal.Add(int64(observations))
	m.exportFailedTotal.Add(int64(failed))
	m.exportRowsTotal.Add(int64(rows))
	m.exportBytesTotal.Add(bytes)
}

// Snapshot returns current counter values keyed by name
func (m *Metrics) Snapshot() map[string]int64 {
	return map[string]int64{
		"http_requests_total":      m.httpRequestsTotal.Load(),
		"http_requests_success":    m.httpRequestsSuccess.Load(),
		"http_requests_error":      m.httpRequestsError.Load(),
		"http_latency_sum_us":      m.httpLatencySum.Load(),
		"http_latency_count":       m.httpLatencyCount.Load(),
		"index_runs_total":         m.indexRunsTotal.Load(),
		"index_files_indexed":      m.indexFilesIndexed.Load(),
		"index_files_skipped":      m.indexFilesSkipped.Load(),
		"index_files_failed":       m.indexFilesFailed.Load(),
		"index_observations_total": m.indexObservationsTotal.Load(),
		"export_requests_total":    m.exportRequestsTotal.Load(),
		"export_observations":      m.exportObservationsTotal.Load(),
		"export_failed":            m.exportFailedTotal.Load(),
		"export_rows_total":        m.exportRowsTotal.Load(),
		"export_bytes_total":       m.exportBytesTotal.Load(),
	}
}

type family struct {
	name, kind, help string
	value            float64
}

// PrometheusFormat returns metrics in Prometheus text exposition format
func (m *Metrics) PrometheusFormat() string {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	families := []family{
		{"pqdif_uptime_seconds", "gauge", "Time since the process started", time.Since(m.startTime).Seconds()},
		{"pqdif_goroutines", "gauge", "Number of goroutines", float64(runtime.NumGoroutine())},
		{"pqdif_memory_heap_alloc_bytes", "gauge", "Heap memory allocated", float64(memStats.HeapAlloc)},
		{"pqdif_http_requests_total", "counter", "Total HTTP requests", float64(m.httpRequestsTotal.Load())},
		{"pqdif_http_requests_error_total", "counter", "HTTP requests answered with status 400 or above", float64(m.httpRequestsError.Load())},
		{"pqdif_index_runs_total", "counter", "Indexing runs", float64(m.indexRunsTotal.Load())},
		{"pqdif_index_files_indexed_total", "counter", "Files parsed into the catalog", float64(m.indexFilesIndexed.Load())},
		{"pqdif_index_files_skipped_total", "counter", "Files unchanged since they were cataloged", float64(m.indexFilesSkipped.Load())},
		{"pqdif_index_files_failed_total", "counter", "Files that failed to index", float64(m.indexFilesFailed.Load())},
		{"pqdif_index_observations_total", "counter", "Observations cataloged", float64(m.indexObservationsTotal.Load())},
		{"pqdif_export_requests_total", "counter", "Exports served", float64(m.exportRequestsTotal.Load())},
		{"pqdif_export_observations_total", "counter", "Observations exported", float64(m.exportObservationsTotal.Load())},
		{"pqdif_export_failed_observations_total", "counter", "Observations that could not be exported", float64(m.exportFailedTotal.Load())},
		{"pqdif_export_rows_total", "counter", "Rows exported", float64(m.exportRowsTotal.Load())},
		{"pqdif_export_bytes_total", "counter", "Bytes of export output", float64(m.exportBytesTotal.Load())},
	}

	var b []byte
	for _, f := range families {
		b = appendHeader(b, f.name, f.kind, f.help)
		b = appendMetric(b, f.name, "", f.value)
	}

	// HTTP latency histogram
	const latency = "pqdif_http_latency_seconds"
	b = appendHeader(b, latency, "histogram", "HTTP request latency")
	var cumulative int64
	for i := range m.httpLatencyBuckets {
		cumulative += m.httpLatencyBuckets[i].Load()
		le := "+Inf"
		if i < len(latencyBounds) {
			le = strconv.FormatFloat(float64(latencyBounds[i])/1e6, 'g', -1, 64)
		}
		b = appendMetric(b, latency+"_bucket", le, float64(cumulative))
	}
	b = appendMetric(b, latency+"_sum", "", float64(m.httpLatencySum.Load())/1e6)
	b = appendMetric(b, latency+"_count", "", float64(m.httpLatencyCount.Load()))

	return string(b)
}

func appendHeader(b []byte, name, kind, help string) []byte {
	b = append(b, "# HELP "...)
	b = append(b, name...)
	b = append(b, ' ')
	b = append(b, help...)
	b = append(b, "\n# TYPE "...)
	b = append(b, name...)
	b = append(b, ' ')
	b = append(b, kind...)
	return append(b, '\n')
}

// appendMetric writes one sample; le, when set, becomes the bucket label
func appendMetric(b []byte, name, le string, value float64) []byte {
	b = append(b, name...)
	if le != "" {
		b = append(b, `{le="`...)
		b = append(b, le...)
		b = append(b, `"}`...)
	}
	b = append(b, ' ')
	b = strconv.AppendFloat(b, value, 'g', -1, 64)
	return append(b, '\n')
}
