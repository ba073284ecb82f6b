// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"testing"

	"authprov/internal/launch"
)

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version takes priority", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2026-01-15T10:00:00Z"

		got := getVersionString()
		want := "v1.2.3 (commit: abc1234, built: 2026-01-15T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev fallback", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got := getVersionString(); got != "dev (built from source)" {
			t.Errorf("getVersionString() = %q", got)
		}
	})
}

func TestExitError(t *testing.T) {
	t.Parallel()

	plain := &ExitError{Code: 3}
	if plain.Error() != "exit status 3" {
		t.Errorf("Error() = %q", plain.Error())
	}

	cause := errors.New("tool crashed")
	wrapped := &ExitError{Code: launch.ExitCode(1), Err: cause}
	if wrapped.Error() != "tool crashed" {
		t.Errorf("Error() = %q, want cause message", wrapped.Error())
	}
	if !errors.Is(wrapped, cause) {
		t.Error("ExitError should unwrap to its cause")
	}
}
