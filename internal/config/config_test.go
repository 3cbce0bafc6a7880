package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/basekick-labs/pqdif/pkg/physical"
)

func TestGetDefaultIndexWorkers(t *testing.T) {
	expected := runtime.NumCPU()
	if expected < 2 {
		expected = 2
	}
	if expected > 16 {
		expected = 16
	}
	if actual := getDefaultIndexWorkers(); actual != expected {
		t.Errorf("getDefaultIndexWorkers() = %d, want %d", actual, expected)
	}
}

func TestLoad_Defaults(t *testing.T) {
	// No config file in an empty working directory
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Storage.Backend != "local" {
		t.Errorf("Storage.Backend = %s, want local", cfg.Storage.Backend)
	}
	if cfg.Storage.MaxObjectSize != 512*1024*1024 {
		t.Errorf("Storage.MaxObjectSize = %d, want 512MB", cfg.Storage.MaxObjectSize)
	}
	if cfg.Export.Format != "msgpack" {
		t.Errorf("Export.Format = %s, want msgpack", cfg.Export.Format)
	}
	if cfg.Writer.Compression != "none" {
		t.Errorf("Writer.Compression = %s, want none", cfg.Writer.Compression)
	}
	if cfg.Index.Workers != getDefaultIndexWorkers() {
		t.Errorf("Index.Workers = %d, want %d", cfg.Index.Workers, getDefaultIndexWorkers())
	}
	if cfg.Server.Addr() != "127.0.0.1:8090" {
		t.Errorf("Server.Addr() = %s, want 127.0.0.1:8090", cfg.Server.Addr())
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PQDIF_EXPORT_FORMAT", "arrow")
	t.Setenv("PQDIF_EXPORT_COMPRESSION", "zstd")
	t.Setenv("PQDIF_INDEX_WORKERS", "3")
	t.Setenv("PQDIF_CATALOG_DB_PATH", "/tmp/catalog.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Export.Format != "arrow" {
		t.Errorf("Export.Format = %s, want arrow (from env)", cfg.Export.Format)
	}
	if cfg.Export.Compression != "zstd" {
		t.Errorf("Export.Compression = %s, want zstd (from env)", cfg.Export.Compression)
	}
	if cfg.Index.Workers != 3 {
		t.Errorf("Index.Workers = %d, want 3 (from env)", cfg.Index.Workers)
	}
	if cfg.Catalog.DBPath != "/tmp/catalog.db" {
		t.Errorf("Catalog.DBPath = %s, want /tmp/catalog.db (from env)", cfg.Catalog.DBPath)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	content := `
[storage]
backend = "s3"
s3_bucket = "pq-archive"
s3_path_style = true

[writer]
compression = "zlib"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Storage.Backend != "s3" || cfg.Storage.S3Bucket != "pq-archive" || !cfg.Storage.S3PathStyle {
		t.Errorf("unexpected storage config: %+v", cfg.Storage)
	}
	if cfg.Writer.Compression != "zlib" {
		t.Errorf("Writer.Compression = %s, want zlib", cfg.Writer.Compression)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("LoadFile() with a missing explicit file should error")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		env   string
		value string
		want  string
	}{
		{"PQDIF_STORAGE_BACKEND", "gcs", "storage.backend"},
		{"PQDIF_WRITER_COMPRESSION", "pkzip", "writer compression"},
		{"PQDIF_EXPORT_FORMAT", "csv", "export.format"},
		{"PQDIF_EXPORT_COMPRESSION", "lz4", "export.compression"},
		{"PQDIF_INDEX_WORKERS", "0", "index.workers"},
		{"PQDIF_STORAGE_MAX_OBJECT_SIZE", "1TB", "max_object_size"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.env, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatalf("Load() with %s=%s should error", tt.env, tt.value)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestParseWriterCompression(t *testing.T) {
	style, algorithm, err := ParseWriterCompression("ZLIB")
	if err != nil {
		t.Fatalf("ParseWriterCompression() error = %v", err)
	}
	if style != physical.CompressionStyleRecordLevel || algorithm != physical.CompressionAlgorithmZlib {
		t.Errorf("got %v/%v, want record-level zlib", style, algorithm)
	}

	style, algorithm, err = ParseWriterCompression("")
	if err != nil || style != physical.CompressionStyleNone || algorithm != physical.CompressionAlgorithmNone {
		t.Errorf("empty name should mean no compression, got %v/%v/%v", style, algorithm, err)
	}
}

func TestServerConfig_ValidateTLS(t *testing.T) {
	dir := t.TempDir()
	cert := filepath.Join(dir, "cert.pem")
	key := filepath.Join(dir, "key.pem")
	for _, f := range []string{cert, key} {
		if err := os.WriteFile(f, []byte("pem"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name    string
		cfg     ServerConfig
		wantErr string
	}{
		{"disabled", ServerConfig{}, ""},
		{"valid", ServerConfig{TLSEnabled: true, TLSCertFile: cert, TLSKeyFile: key}, ""},
		{"missing cert", ServerConfig{TLSEnabled: true, TLSKeyFile: key}, "tls_cert_file"},
		{"missing key", ServerConfig{TLSEnabled: true, TLSCertFile: cert}, "tls_key_file"},
		{"cert not found", ServerConfig{TLSEnabled: true, TLSCertFile: filepath.Join(dir, "nope.pem"), TLSKeyFile: key}, "not found"},
		{"key is dir", ServerConfig{TLSEnabled: true, TLSCertFile: cert, TLSKeyFile: dir}, "directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateTLS()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateTLS() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateTLS() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
		wantErr  bool
	}{
		{"1GB", 1024 * 1024 * 1024, false},
		{"512mb", 512 * 1024 * 1024, false},
		{"1.5KB", 1536, false},
		{"100B", 100, false},
		{"2048", 2048, false},
		{"", 0, true},
		{"1TB", 0, true},
		{"-1MB", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.expected)
			}
		})
	}
}
