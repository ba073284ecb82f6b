// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// LockFileName is the name of the build record written after a successful
// provision.
const LockFileName = "authprov.lock.toml"

// LockRecord captures the resolved inputs of a completed build. For pinned
// builds the record is sufficient to reproduce the image; for source builds
// it documents which origin head the build captured, since the next build of
// the same spec may observe a different head.
type LockRecord struct {
	// Image is the provisioned image tag.
	Image string `toml:"image"`

	// Mode is the acquisition mode used.
	Mode AcquisitionMode `toml:"mode"`

	// Package is the tool's package index name.
	Package string `toml:"package"`

	// PinnedVersion is set for pinned builds.
	PinnedVersion string `toml:"pinned_version,omitempty"`

	// SourceOrigin and SourceRevision are set for source builds.
	SourceOrigin   string `toml:"source_origin,omitempty"`
	SourceRevision string `toml:"source_revision,omitempty"`

	// Base is the base runtime reference the image was built from.
	Base string `toml:"base"`

	// Engine is the container engine that performed the build.
	Engine string `toml:"engine"`

	// BuiltAt is when the build completed.
	BuiltAt time.Time `toml:"built_at"`
}

// WriteLock writes the record into dir, creating it if needed.
// Returns the path of the written file.
func WriteLock(dir string, record *LockRecord) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("lock record directory is not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create lock record directory: %w", err)
	}

	data, err := toml.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to encode lock record: %w", err)
	}

	path := filepath.Join(dir, LockFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write lock record: %w", err)
	}
	return path, nil
}

// ReadLock reads a lock record written by WriteLock.
func ReadLock(path string) (*LockRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lock record: %w", err)
	}

	var record LockRecord
	if err := toml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse lock record: %w", err)
	}
	return &record, nil
}
