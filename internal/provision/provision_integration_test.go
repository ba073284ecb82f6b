// SPDX-License-Identifier: MPL-2.0

// Integration tests that drive a real container engine. They build small
// pinned-style images and exercise the cache and invocation paths end to end.
package provision

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"

	"authprov/internal/container"
	"authprov/internal/launch"
)

// checkTestcontainersAvailable safely checks if testcontainers can be used.
// Returns true if containers are available, false otherwise.
func checkTestcontainersAvailable() (available bool) {
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	provider, err := testcontainers.ProviderDocker.GetProvider()
	if err != nil {
		return false
	}
	defer provider.Close()
	return true
}

// requireEngine skips the test unless a real engine is usable.
func requireEngine(t *testing.T) container.Engine {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	engine, err := container.AutoDetectEngine()
	if err != nil {
		t.Skipf("skipping: no container engine available: %v", err)
	}
	if !engine.Available() {
		t.Skip("skipping: container engine not available")
	}
	if !checkTestcontainersAvailable() {
		t.Skip("skipping: testcontainers provider not available")
	}
	return engine
}

// busyboxSpec builds a throwaway spec whose image is cheap to build: it
// abuses pinned mode's cache semantics but installs nothing, so the test
// exercises rendering, building, caching, and invocation without PyPI.
func busyboxSpec() *Spec {
	return &Spec{
		Base:           BaseRuntime{Name: "python", Tag: "3.12", Slim: true},
		Mode:           ModePinned,
		Package:        "pip",
		PinnedVersion:  "24.0",
		WorkDir:        "/app",
		Entrypoint:     []string{"pip", "--version"},
		NonInteractive: true,
	}
}

func TestProvision_Integration(t *testing.T) {
	engine := requireEngine(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	suffix := "it-" + time.Now().UTC().Format("150405")
	provisioner := NewImageProvisioner(engine, nil,
		WithTagSuffix(suffix),
		WithCacheDir(t.TempDir()),
		WithBuildOutput(io.Discard),
	)

	spec := busyboxSpec()

	result, err := provisioner.Provision(ctx, spec)
	if err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	t.Cleanup(func() {
		_ = engine.RemoveImage(context.Background(), result.ImageTag, true) //nolint:errcheck // Best-effort cleanup
	})

	if result.CacheHit {
		t.Error("first build must not be a cache hit")
	}

	t.Run("CacheHitOnSecondBuild", func(t *testing.T) {
		again, err := provisioner.Provision(ctx, spec)
		if err != nil {
			t.Fatalf("Provision() error = %v", err)
		}
		if !again.CacheHit {
			t.Error("second build of the same spec should reuse the image")
		}
		if again.ImageTag != result.ImageTag {
			t.Errorf("tag changed between builds: %q vs %q", again.ImageTag, result.ImageTag)
		}
	})

	t.Run("InvokeEntrypoint", func(t *testing.T) {
		var stdout bytes.Buffer
		inv := launch.NewContainerInvoker(engine, launch.WithStdio(nil, &stdout, io.Discard))

		code, err := inv.Invoke(ctx, launch.Target{Image: result.ImageTag})
		if err != nil {
			t.Fatalf("Invoke() error = %v", err)
		}
		if !code.IsSuccess() {
			t.Fatalf("exit code = %d, want 0", code)
		}
		if !strings.Contains(stdout.String(), "pip") {
			t.Errorf("stdout = %q, want pip version banner", stdout.String())
		}
	})

	t.Run("ExitCodePassthrough", func(t *testing.T) {
		inv := launch.NewContainerInvoker(engine, launch.WithStdio(nil, io.Discard, io.Discard))

		code, err := inv.Invoke(ctx, launch.Target{
			Image: result.ImageTag,
			Argv:  []string{"python", "-c", "import sys; sys.exit(42)"},
		})
		if err != nil {
			t.Fatalf("Invoke() error = %v", err)
		}
		if code != 42 {
			t.Errorf("exit code = %d, want 42", code)
		}
	})
}
