// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"strings"
	"testing"
)

func TestRenderDockerfile_Pinned(t *testing.T) {
	t.Parallel()

	got, err := RenderDockerfile(PinnedSpec("1.1.1"))
	if err != nil {
		t.Fatalf("RenderDockerfile() error = %v", err)
	}

	wantLines := []string{
		"FROM python:3.12-slim",
		"ENV DEBIAN_FRONTEND=noninteractive",
		"apt-get install -y --no-install-recommends git",
		"rm -rf /var/lib/apt/lists/*",
		"WORKDIR /app",
		"RUN pip install --no-cache-dir spotizerr-auth==1.1.1",
		`CMD ["spotizerr-auth"]`,
	}
	for _, want := range wantLines {
		if !strings.Contains(got, want) {
			t.Errorf("pinned Dockerfile missing %q:\n%s", want, got)
		}
	}

	// No trace of the other acquisition mode.
	if strings.Contains(got, "git clone") {
		t.Errorf("pinned Dockerfile must not clone a source tree:\n%s", got)
	}
	if strings.Contains(got, "requirements.txt") {
		t.Errorf("pinned Dockerfile must not install from a manifest:\n%s", got)
	}
}

func TestRenderDockerfile_Source(t *testing.T) {
	t.Parallel()

	got, err := RenderDockerfile(SourceSpec(DefaultOrigin))
	if err != nil {
		t.Fatalf("RenderDockerfile() error = %v", err)
	}

	wantLines := []string{
		"FROM python:3.12-slim",
		"RUN git clone https://github.com/spotizerr-music/spotizerr-auth.git .",
		"RUN pip install --no-cache-dir -r requirements.txt",
		`CMD ["python", "spotizerr-auth.py"]`,
	}
	for _, want := range wantLines {
		if !strings.Contains(got, want) {
			t.Errorf("source Dockerfile missing %q:\n%s", want, got)
		}
	}

	// No trace of the other acquisition mode.
	if strings.Contains(got, "==") {
		t.Errorf("source Dockerfile must not pin a package version:\n%s", got)
	}
}

func TestRenderDockerfile_StageOrdering(t *testing.T) {
	t.Parallel()

	got, err := RenderDockerfile(SourceSpec(DefaultOrigin))
	if err != nil {
		t.Fatalf("RenderDockerfile() error = %v", err)
	}

	// The working directory must exist before acquisition and before the
	// entrypoint stanza.
	workdir := strings.Index(got, "WORKDIR /app")
	clone := strings.Index(got, "git clone")
	cmd := strings.Index(got, "CMD [")
	if workdir == -1 || clone == -1 || cmd == -1 {
		t.Fatalf("missing stages in:\n%s", got)
	}
	if !(workdir < clone && clone < cmd) {
		t.Errorf("stages out of order (WORKDIR=%d, clone=%d, CMD=%d):\n%s", workdir, clone, cmd, got)
	}
}

func TestRenderDockerfile_InteractiveSuppression(t *testing.T) {
	t.Parallel()

	spec := PinnedSpec("1.1.1")
	spec.NonInteractive = false

	got, err := RenderDockerfile(spec)
	if err != nil {
		t.Fatalf("RenderDockerfile() error = %v", err)
	}
	if strings.Contains(got, "DEBIAN_FRONTEND") {
		t.Errorf("prompt suppression must follow the spec value, not ambient state:\n%s", got)
	}
}

func TestRenderDockerfile_NoSystemPackages(t *testing.T) {
	t.Parallel()

	spec := PinnedSpec("1.1.1")
	spec.SystemPackages = nil

	got, err := RenderDockerfile(spec)
	if err != nil {
		t.Fatalf("RenderDockerfile() error = %v", err)
	}
	if strings.Contains(got, "apt-get") {
		t.Errorf("no apt stanza expected without system packages:\n%s", got)
	}
}

func TestRenderDockerfile_InvalidSpec(t *testing.T) {
	t.Parallel()

	spec := PinnedSpec("")
	if _, err := RenderDockerfile(spec); err == nil {
		t.Error("RenderDockerfile() expected error for invalid spec")
	}
}
