// Package storage provides the compliance report archive abstraction.
//
// This package defines a Storage interface with implementations for:
// - LocalStorage: File system storage for development
// - R2Storage: Cloudflare R2 (S3-compatible) storage for production
//
// The archive holds serialized compliance check results as JSON objects so
// past checks can be retrieved for audits. Archiving is optional; the
// service layer treats a nil Storage as "archiving off".
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Storage defines the interface for report archive operations.
//
// Implementations:
// - LocalStorage: Stores reports on the local filesystem
// - R2Storage: Stores reports in Cloudflare R2 object storage
//
// All methods are context-aware for timeout and cancellation support.
type Storage interface {
	// Put stores data at the specified key with the given options.
	// Returns an error if the operation fails or if the key already exists
	// (unless overwrite is enabled in opts).
	Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error

	// Get retrieves the data at the specified key.
	// Returns the data as an io.ReadCloser (caller must close), object metadata,
	// and an error. Returns ErrNotFound if the key doesn't exist.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)

	// Delete removes the object at the specified key.
	// This operation is idempotent - no error is returned if the key doesn't exist.
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists at the specified key.
	// Returns true if the object exists, false otherwise.
	Exists(ctx context.Context, key string) (bool, error)
}

// =============================================================================
// Data Types
// =============================================================================

// PutOptions configures how an object is stored.
type PutOptions struct {
	// ContentType specifies the MIME type of the object.
	// Reports are stored as "application/json".
	ContentType string

	// MaxSize specifies the maximum allowed size in bytes.
	// If the data exceeds this size, ErrTooLarge is returned.
	// A value of 0 means no limit.
	MaxSize int64

	// Overwrite allows replacing an existing object at the same key.
	// If false and the key exists, ErrKeyExists is returned.
	Overwrite bool
}

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Key          string    // Object key/path
	Size         int64     // Size in bytes
	ContentType  string    // MIME type
	LastModified time.Time // Last modification time
	ETag         string    // Entity tag (if available)
}

// =============================================================================
// Configuration Types
// =============================================================================

// LocalConfig holds configuration for local filesystem storage.
type LocalConfig struct {
	// BasePath is the root directory where reports are stored.
	// Example: "./archive" or "/var/lib/rizzads/reports"
	BasePath string
}

// R2Config holds configuration for Cloudflare R2 storage.
type R2Config struct {
	// AccountID is your Cloudflare account ID.
	AccountID string

	// AccessKeyID is the R2 API access key ID.
	AccessKeyID string

	// SecretAccessKey is the R2 API secret key.
	SecretAccessKey string

	// BucketName is the name of the R2 bucket to use.
	BucketName string

	// Region is the AWS region to use (required by AWS SDK).
	// For R2, this can be any valid region string as R2 is globally distributed.
	// Default: "auto"
	Region string
}

// =============================================================================
// Provider Constants
// =============================================================================

const (
	// ProviderLocal identifies the local filesystem storage provider.
	ProviderLocal = "local"

	// ProviderR2 identifies the Cloudflare R2 storage provider.
	ProviderR2 = "r2"

	// ProviderOff disables report archiving.
	ProviderOff = "off"
)

// =============================================================================
// Key Generation Helpers
// =============================================================================

// ReportKey generates a storage key for an archived compliance report.
// Format: reports/{date}/{resultID}.json
//
// Example: "reports/2026-08-29/123e4567-e89b-12d3-a456-426614174000.json"
func ReportKey(ts time.Time, resultID uuid.UUID) string {
	return fmt.Sprintf("reports/%s/%s.json", ts.Format("2006-01-02"), resultID)
}
