// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"testing"
	"time"
)

func TestLockRecord_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	want := &LockRecord{
		Image:         "authprov:ab12cd34ef56",
		Mode:          ModePinned,
		Package:       DefaultPackage,
		PinnedVersion: "1.1.1",
		Base:          "python:3.12-slim",
		Engine:        "docker",
		BuiltAt:       time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
	}

	path, err := WriteLock(dir, want)
	if err != nil {
		t.Fatalf("WriteLock() error = %v", err)
	}

	got, err := ReadLock(path)
	if err != nil {
		t.Fatalf("ReadLock() error = %v", err)
	}

	if got.Image != want.Image || got.Mode != want.Mode || got.PinnedVersion != want.PinnedVersion {
		t.Errorf("ReadLock() = %+v, want %+v", got, want)
	}
	if !got.BuiltAt.Equal(want.BuiltAt) {
		t.Errorf("BuiltAt = %v, want %v", got.BuiltAt, want.BuiltAt)
	}
}

func TestLockRecord_SourceBuild(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	record := &LockRecord{
		Image:          "authprov:ff00aa11bb22",
		Mode:           ModeSource,
		Package:        DefaultPackage,
		SourceOrigin:   DefaultOrigin,
		SourceRevision: "0123456789abcdef0123456789abcdef01234567",
		Base:           "python:3.12-slim",
		Engine:         "podman",
		BuiltAt:        time.Now().UTC(),
	}

	path, err := WriteLock(dir, record)
	if err != nil {
		t.Fatalf("WriteLock() error = %v", err)
	}

	got, err := ReadLock(path)
	if err != nil {
		t.Fatalf("ReadLock() error = %v", err)
	}
	if got.SourceRevision != record.SourceRevision {
		t.Errorf("SourceRevision = %q, want %q", got.SourceRevision, record.SourceRevision)
	}
	if got.PinnedVersion != "" {
		t.Errorf("source record must not carry a pinned version, got %q", got.PinnedVersion)
	}
}

func TestWriteLock_NoDirectory(t *testing.T) {
	t.Parallel()

	if _, err := WriteLock("", &LockRecord{}); err == nil {
		t.Error("WriteLock() expected error for empty directory")
	}
}
