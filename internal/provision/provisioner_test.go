// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"errors"
	"strings"
	"testing"

	"authprov/internal/container"
)

// mockEngine implements container.Engine for testing provisioner logic
// without requiring real Docker/Podman.
type mockEngine struct {
	// imageExistsResult controls what ImageExists returns
	imageExistsResult bool
	// buildErr controls the error Build returns
	buildErr error

	// buildCalls records Build invocations for assertion
	buildCalls []container.BuildOptions
	// imageExistsCalls records ImageExists invocations
	imageExistsCalls []string
}

func (m *mockEngine) Name() string    { return "mock" }
func (m *mockEngine) Available() bool { return true }

func (m *mockEngine) Version(_ context.Context) (string, error) {
	return "mock-1.0.0", nil
}

func (m *mockEngine) Build(_ context.Context, opts container.BuildOptions) error {
	m.buildCalls = append(m.buildCalls, opts)
	return m.buildErr
}

func (m *mockEngine) Run(_ context.Context, _ container.RunOptions) (*container.RunResult, error) {
	return &container.RunResult{}, nil
}

func (m *mockEngine) ImageExists(_ context.Context, image string) (bool, error) {
	m.imageExistsCalls = append(m.imageExistsCalls, image)
	return m.imageExistsResult, nil
}

func (m *mockEngine) RemoveImage(_ context.Context, _ string, _ bool) error {
	return nil
}

func (m *mockEngine) InspectImage(_ context.Context, _ string) (string, error) {
	return "{}", nil
}

func newProvisioner(engine *mockEngine, opts ...Option) *ImageProvisioner {
	return NewImageProvisioner(engine, nil, opts...)
}

func TestProvision_Pinned_BuildsImage(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{}
	p := newProvisioner(engine)

	result, err := p.Provision(context.Background(), PinnedSpec("1.1.1"))
	if err != nil {
		t.Fatalf("Provision() error = %v", err)
	}

	if result.CacheHit {
		t.Error("fresh build should not report a cache hit")
	}
	if len(engine.buildCalls) != 1 {
		t.Fatalf("Build called %d times, want 1", len(engine.buildCalls))
	}
	opts := engine.buildCalls[0]
	if opts.Tag != result.ImageTag {
		t.Errorf("built tag %q != result tag %q", opts.Tag, result.ImageTag)
	}
	if opts.NoCache {
		t.Error("pinned build should use the layer cache")
	}
	if !strings.HasPrefix(result.ImageTag, "authprov:") {
		t.Errorf("unexpected tag format %q", result.ImageTag)
	}
	if !strings.Contains(result.Dockerfile, "spotizerr-auth==1.1.1") {
		t.Errorf("result missing rendered descriptor:\n%s", result.Dockerfile)
	}
}

func TestProvision_Pinned_CacheHit(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{imageExistsResult: true}
	p := newProvisioner(engine)

	result, err := p.Provision(context.Background(), PinnedSpec("1.1.1"))
	if err != nil {
		t.Fatalf("Provision() error = %v", err)
	}

	if !result.CacheHit {
		t.Error("expected a cache hit")
	}
	if len(engine.buildCalls) != 0 {
		t.Errorf("Build called %d times, want 0", len(engine.buildCalls))
	}
}

func TestProvision_Pinned_ForceRebuildBypassesCache(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{imageExistsResult: true}
	p := newProvisioner(engine, WithForceRebuild(true))

	result, err := p.Provision(context.Background(), PinnedSpec("1.1.1"))
	if err != nil {
		t.Fatalf("Provision() error = %v", err)
	}

	if result.CacheHit {
		t.Error("forced rebuild must not report a cache hit")
	}
	if len(engine.imageExistsCalls) != 0 {
		t.Error("forced rebuild must not consult the image cache")
	}
	if len(engine.buildCalls) != 1 {
		t.Errorf("Build called %d times, want 1", len(engine.buildCalls))
	}
}

func TestProvision_Source_AlwaysRebuilds(t *testing.T) {
	t.Parallel()

	// Even with a matching image present, source mode rebuilds so the clone
	// captures the origin's current head.
	engine := &mockEngine{imageExistsResult: true}
	p := newProvisioner(engine)

	result, err := p.Provision(context.Background(), SourceSpec(DefaultOrigin))
	if err != nil {
		t.Fatalf("Provision() error = %v", err)
	}

	if result.CacheHit {
		t.Error("source build must never be served from cache")
	}
	if len(engine.buildCalls) != 1 {
		t.Fatalf("Build called %d times, want 1", len(engine.buildCalls))
	}
	if !engine.buildCalls[0].NoCache {
		t.Error("source build must disable the layer cache")
	}
	if !engine.buildCalls[0].Pull {
		t.Error("source build should refresh the base image")
	}
}

func TestProvision_BuildFailureIsFatal(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{buildErr: errors.New("network unreachable")}
	p := newProvisioner(engine)

	_, err := p.Provision(context.Background(), PinnedSpec("1.1.1"))
	if err == nil {
		t.Fatal("Provision() expected error")
	}
	if !strings.Contains(err.Error(), "failed to provision image") {
		t.Errorf("error lacks operation context: %v", err)
	}
}

func TestProvision_InvalidSpecFailsBeforeEngine(t *testing.T) {
	t.Parallel()

	engine := &mockEngine{}
	p := newProvisioner(engine)

	spec := PinnedSpec("1.1.1")
	spec.SourceOrigin = DefaultOrigin

	if _, err := p.Provision(context.Background(), spec); err == nil {
		t.Fatal("Provision() expected error for invalid spec")
	}
	if len(engine.buildCalls) != 0 || len(engine.imageExistsCalls) != 0 {
		t.Error("invalid spec must fail before any engine call")
	}
}

func TestImageTagFor_StableAcrossCalls(t *testing.T) {
	t.Parallel()

	p := newProvisioner(&mockEngine{})

	a, err := p.ImageTagFor(PinnedSpec("1.1.1"))
	if err != nil {
		t.Fatalf("ImageTagFor() error = %v", err)
	}
	b, err := p.ImageTagFor(PinnedSpec("1.1.1"))
	if err != nil {
		t.Fatalf("ImageTagFor() error = %v", err)
	}
	if a != b {
		t.Errorf("tag not stable: %q vs %q", a, b)
	}

	c, err := p.ImageTagFor(PinnedSpec("1.1.2"))
	if err != nil {
		t.Fatalf("ImageTagFor() error = %v", err)
	}
	if a == c {
		t.Error("different pins must produce different tags")
	}
}

func TestImageTagFor_SuffixIsolation(t *testing.T) {
	t.Parallel()

	plain := newProvisioner(&mockEngine{})
	suffixed := newProvisioner(&mockEngine{}, WithTagSuffix("t1"))

	a, _ := plain.ImageTagFor(PinnedSpec("1.1.1"))
	b, _ := suffixed.ImageTagFor(PinnedSpec("1.1.1"))
	if a == b {
		t.Error("tag suffix should isolate image tags")
	}
	if !strings.HasSuffix(b, "-t1") {
		t.Errorf("suffixed tag %q should end in -t1", b)
	}
}
