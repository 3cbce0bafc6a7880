package models

import "time"

// ColumnarPayload is one measurement in the columnar MessagePack ingest
// format: {m: "pqdif", columns: {time: [...], "Va.Val": [...]}}.
// Time values are microseconds since the Unix epoch.
type ColumnarPayload struct {
	M       string                   `msgpack:"m"`
	Columns map[string][]interface{} `msgpack:"columns"`
}

// BatchPayload groups several columnar payloads in one message
type BatchPayload struct {
	Batch []ColumnarPayload `msgpack:"batch"`
}

// ObservationSummary describes one cataloged observation
type ObservationSummary struct {
	File         string     `json:"file"`
	Ordinal      int        `json:"ordinal"`
	Name         string     `json:"name"`
	Start        time.Time  `json:"start"`
	TriggerTime  *time.Time `json:"trigger_time,omitempty"`
	DataSource   string     `json:"data_source"`
	ChannelCount int        `json:"channel_count"`
}

// FileSummary describes one cataloged PQDIF file
type FileSummary struct {
	Path         string    `json:"path"`
	FileName     string    `json:"file_name"`
	Created      time.Time `json:"created"`
	Observations int       `json:"observations"`
	Size         int64     `json:"size"`
	Modified     time.Time `json:"modified"`
	IndexedAt    time.Time `json:"indexed_at"`
}
