package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/basekick-labs/pqdif/internal/config"
	"github.com/rs/zerolog"
)

// ErrNotFound indicates a missing object.
var ErrNotFound = errors.New("object not found")

// Backend defines the interface for object storage holding PQDIF files and
// export outputs (local, S3, Azure Blob)
type Backend interface {
	// Write writes data to the specified path
	Write(ctx context.Context, path string, data []byte) error

	// WriteReader writes data from a reader to the specified path. A size
	// of zero or less means unknown.
	WriteReader(ctx context.Context, path string, reader io.Reader, size int64) error

	// Read reads data from the specified path
	Read(ctx context.Context, path string) ([]byte, error)

	// ReadTo reads data from the specified path and writes it to the writer
	ReadTo(ctx context.Context, path string, writer io.Writer) error

	// List lists all objects with the given prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete deletes the object at the specified path
	Delete(ctx context.Context, path string) error

	// Exists checks if an object exists at the specified path
	Exists(ctx context.Context, path string) (bool, error)

	// Close closes any resources held by the backend
	Close() error

	// Type returns the storage type identifier ("local", "s3", "azure")
	Type() string
}

// ObjectInfo provides metadata about a storage object.
type ObjectInfo struct {
	Path         string
	Size         int64
	LastModified time.Time
}

// ObjectLister lists objects with their metadata. Indexing uses it to skip
// objects that have not changed since they were cataloged.
type ObjectLister interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// New creates the backend selected by cfg.Backend. Remote backends are
// wrapped with retries.
func New(cfg config.StorageConfig, logger zerolog.Logger) (Backend, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalBackend(cfg.LocalPath, logger)

	case "s3":
		b, err := NewS3Backend(&S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			PathStyle: cfg.S3PathStyle,
		}, logger)
		if err != nil {
			return nil, err
		}
		return NewRetryingBackend(b, nil, logger), nil

	case "azure":
		b, err := NewAzureBlobBackend(&AzureBlobConfig{
			ConnectionString:   cfg.AzureConnectionString,
			AccountName:        cfg.AzureAccountName,
			AccountKey:         cfg.AzureAccountKey,
			SASToken:           cfg.AzureSASToken,
			UseManagedIdentity: cfg.AzureUseManagedIdentity,
			ContainerName:      cfg.AzureContainer,
			Endpoint:           cfg.AzureEndpoint,
		}, logger)
		if err != nil {
			return nil, err
		}
		return NewRetryingBackend(b, nil, logger), nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}

// contentType picks the stored content type from the path extension.
func contentType(path string) string {
	switch {
	case hasSuffixFold(path, ".pqd"):
		return "application/x-pqdif"
	case hasSuffixFold(path, ".arrow"), hasSuffixFold(path, ".arrows"):
		return "application/vnd.apache.arrow.stream"
	case hasSuffixFold(path, ".msgpack"):
		return "application/msgpack"
	default:
		return "application/octet-stream"
	}
}
