package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/basekick-labs/pqdif/pkg/physical"
	"github.com/spf13/viper"
)

// Config holds all configuration for the pqdif tool
type Config struct {
	Log     LogConfig
	Storage StorageConfig
	Writer  WriterConfig
	Export  ExportConfig
	Catalog CatalogConfig
	Index   IndexConfig
	Server  ServerConfig
}

type LogConfig struct {
	Level  string
	Format string
}

type StorageConfig struct {
	Backend       string
	LocalPath     string
	MaxObjectSize int64 // Largest remote object read into memory for parsing
	// S3/MinIO configuration
	S3Bucket    string
	S3Region    string
	S3Endpoint  string // Custom endpoint for MinIO (e.g., "http://localhost:9000")
	S3AccessKey string // AWS access key (or use AWS_ACCESS_KEY_ID env var)
	S3SecretKey string // AWS secret key (or use AWS_SECRET_ACCESS_KEY env var)
	S3UseSSL    bool
	S3PathStyle bool // Use path-style addressing (required for MinIO)
	// Azure Blob Storage configuration
	AzureConnectionString   string
	AzureAccountName        string
	AzureAccountKey         string
	AzureSASToken           string
	AzureContainer          string
	AzureEndpoint           string // Custom endpoint (for Azurite testing)
	AzureUseManagedIdentity bool
}

type WriterConfig struct {
	Compression string // Record compression for rewritten files: none, zlib
}

type ExportConfig struct {
	Format      string // msgpack or arrow
	Compression string // Output compression: none, gzip, zstd
	Measurement string // Measurement name written into msgpack payloads
}

type CatalogConfig struct {
	DBPath string // SQLite database path
}

type IndexConfig struct {
	Workers  int    // Files parsed concurrently (default: CPU count, min 2, max 16)
	Prefix   string // Storage prefix scanned by scheduled indexing
	Schedule string // Cron schedule for indexing under serve (empty means every 15 minutes)
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	TLSEnabled   bool
	TLSCertFile  string // PEM certificate
	TLSKeyFile   string // PEM private key
}

// Load loads configuration from environment and config file
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration like Load, reading path instead of searching
// the default locations when path is set.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("PQDIF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("pqdif")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/pqdif/")
		v.AddConfigPath("$HOME/.pqdif/")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	maxObjectSize, err := ParseSize(v.GetString("storage.max_object_size"))
	if err != nil {
		return nil, fmt.Errorf("invalid storage.max_object_size: %w", err)
	}

	cfg := &Config{
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Storage: StorageConfig{
			Backend:       v.GetString("storage.backend"),
			LocalPath:     v.GetString("storage.local_path"),
			MaxObjectSize: maxObjectSize,
			S3Bucket:      v.GetString("storage.s3_bucket"),
			S3Region:      v.GetString("storage.s3_region"),
			S3Endpoint:    v.GetString("storage.s3_endpoint"),
			S3AccessKey:   v.GetString("storage.s3_access_key"),
			S3SecretKey:   v.GetString("storage.s3_secret_key"),
			S3UseSSL:      v.GetBool("storage.s3_use_ssl"),
			S3PathStyle:   v.GetBool("storage.s3_path_style"),
			// Azure Blob Storage
			AzureConnectionString:   v.GetString("storage.azure_connection_string"),
			AzureAccountName:        v.GetString("storage.azure_account_name"),
			AzureAccountKey:         v.GetString("storage.azure_account_key"),
			AzureSASToken:           v.GetString("storage.azure_sas_token"),
			AzureContainer:          v.GetString("storage.azure_container"),
			AzureEndpoint:           v.GetString("storage.azure_endpoint"),
			AzureUseManagedIdentity: v.GetBool("storage.azure_use_managed_identity"),
		},
		Writer: WriterConfig{
			Compression: v.GetString("writer.compression"),
		},
		Export: ExportConfig{
			Format:      v.GetString("export.format"),
			Compression: v.GetString("export.compression"),
			Measurement: v.GetString("export.measurement"),
		},
		Catalog: CatalogConfig{
			DBPath: v.GetString("catalog.db_path"),
		},
		Index: IndexConfig{
			Workers:  v.GetInt("index.workers"),
			Prefix:   v.GetString("index.prefix"),
			Schedule: v.GetString("index.schedule"),
		},
		Server: ServerConfig{
			Host:         v.GetString("server.host"),
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetInt("server.read_timeout"),
			WriteTimeout: v.GetInt("server.write_timeout"),
			TLSEnabled:   v.GetBool("server.tls_enabled"),
			TLSCertFile:  v.GetString("server.tls_cert_file"),
			TLSKeyFile:   v.GetString("server.tls_key_file"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Storage defaults
	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.local_path", ".")
	v.SetDefault("storage.max_object_size", "512MB")
	v.SetDefault("storage.s3_region", "us-east-1")
	v.SetDefault("storage.s3_use_ssl", true)
	v.SetDefault("storage.s3_path_style", false) // Set true for MinIO

	v.SetDefault("writer.compression", "none")

	// Export defaults
	v.SetDefault("export.format", "msgpack")
	v.SetDefault("export.compression", "none")
	v.SetDefault("export.measurement", "pqdif")

	v.SetDefault("catalog.db_path", "./data/pqdif.db")

	// Index defaults
	v.SetDefault("index.workers", getDefaultIndexWorkers())
	v.SetDefault("index.prefix", "")
	v.SetDefault("index.schedule", "*/15 * * * *") // Every 15 minutes

	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.tls_enabled", false)
	v.SetDefault("server.tls_cert_file", "")
	v.SetDefault("server.tls_key_file", "")
}

func getDefaultIndexWorkers() int {
	// Parsing is CPU bound once the object is in memory
	workers := runtime.NumCPU()
	if workers < 2 {
		return 2
	}
	if workers > 16 {
		return 16
	}
	return workers
}

// Validate checks the enumerated settings.
func (cfg *Config) Validate() error {
	switch cfg.Storage.Backend {
	case "local", "s3", "azure":
	default:
		return fmt.Errorf("invalid storage.backend %q (use local, s3 or azure)", cfg.Storage.Backend)
	}
	if _, _, err := ParseWriterCompression(cfg.Writer.Compression); err != nil {
		return err
	}
	switch cfg.Export.Format {
	case "msgpack", "arrow":
	default:
		return fmt.Errorf("invalid export.format %q (use msgpack or arrow)", cfg.Export.Format)
	}
	switch cfg.Export.Compression {
	case "none", "gzip", "zstd":
	default:
		return fmt.Errorf("invalid export.compression %q (use none, gzip or zstd)", cfg.Export.Compression)
	}
	if cfg.Index.Workers < 1 {
		return fmt.Errorf("index.workers must be at least 1, got %d", cfg.Index.Workers)
	}
	return nil
}

// ParseWriterCompression maps a writer compression name to the container
// compression settings. Only record-level zlib is written.
func ParseWriterCompression(name string) (physical.CompressionStyle, physical.CompressionAlgorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return physical.CompressionStyleNone, physical.CompressionAlgorithmNone, nil
	case "zlib":
		return physical.CompressionStyleRecordLevel, physical.CompressionAlgorithmZlib, nil
	default:
		return 0, 0, fmt.Errorf("invalid writer compression %q (use none or zlib)", name)
	}
}

// ValidateTLS validates TLS configuration when TLS is enabled.
// Returns nil if TLS is disabled or if configuration is valid.
func (cfg *ServerConfig) ValidateTLS() error {
	if !cfg.TLSEnabled {
		return nil
	}

	if cfg.TLSCertFile == "" {
		return fmt.Errorf("TLS enabled but server.tls_cert_file not specified")
	}
	if cfg.TLSKeyFile == "" {
		return fmt.Errorf("TLS enabled but server.tls_key_file not specified")
	}

	for _, f := range []struct{ kind, path string }{
		{"certificate", cfg.TLSCertFile},
		{"key", cfg.TLSKeyFile},
	} {
		info, err := os.Stat(f.path)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("TLS %s file not found: %s", f.kind, f.path)
			}
			return fmt.Errorf("cannot access TLS %s file %s: %w", f.kind, f.path, err)
		}
		if info.IsDir() {
			return fmt.Errorf("TLS %s path is a directory, not a file: %s", f.kind, f.path)
		}
	}
	return nil
}

// Addr returns the listen address.
func (cfg *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// ParseSize parses a human-readable size string (e.g., "1GB", "500MB", "100KB") to bytes.
// Supports: B, KB, MB, GB (case-insensitive).
func ParseSize(sizeStr string) (int64, error) {
	sizeStr = strings.TrimSpace(strings.ToUpper(sizeStr))
	if sizeStr == "" {
		return 0, fmt.Errorf("empty size string")
	}

	// Longer suffixes first
	units := []struct {
		suffix     string
		multiplier int64
	}{
		{"GB", 1024 * 1024 * 1024},
		{"MB", 1024 * 1024},
		{"KB", 1024},
		{"B", 1},
	}

	for _, unit := range units {
		if !strings.HasSuffix(sizeStr, unit.suffix) {
			continue
		}
		numStr := strings.TrimSpace(strings.TrimSuffix(sizeStr, unit.suffix))

		var num float64
		var trailing string
		n, _ := fmt.Sscanf(numStr, "%f%s", &num, &trailing)
		if n == 0 {
			return 0, fmt.Errorf("invalid size number: %s", numStr)
		}
		if trailing != "" {
			// e.g. the "T" in "1TB"
			return 0, fmt.Errorf("invalid size format: %s (use e.g., '1GB', '500MB', '100KB')", sizeStr)
		}
		if num < 0 {
			return 0, fmt.Errorf("size cannot be negative: %s", sizeStr)
		}
		return int64(num * float64(unit.multiplier)), nil
	}

	// Plain number of bytes
	var num int64
	var trailing string
	n, _ := fmt.Sscanf(sizeStr, "%d%s", &num, &trailing)
	if n == 0 || trailing != "" {
		return 0, fmt.Errorf("invalid size format: %s (use e.g., '1GB', '500MB', '100KB')", sizeStr)
	}
	if num < 0 {
		return 0, fmt.Errorf("size cannot be negative: %s", sizeStr)
	}
	return num, nil
}
