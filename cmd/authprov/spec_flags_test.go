// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"strings"
	"testing"

	"authprov/internal/config"
	"authprov/internal/provision"
)

func TestBuildSpec_PinnedMode(t *testing.T) {
	t.Parallel()

	flags := &specFlags{pin: "1.1.1", nonInteractive: true}
	spec, err := flags.buildSpec(config.DefaultConfig())
	if err != nil {
		t.Fatalf("buildSpec() error = %v", err)
	}

	if spec.Mode != provision.ModePinned {
		t.Errorf("Mode = %q, want pinned", spec.Mode)
	}
	if spec.PinnedVersion != "1.1.1" {
		t.Errorf("PinnedVersion = %q", spec.PinnedVersion)
	}
	if spec.SourceOrigin != "" {
		t.Error("pinned spec must not carry a source origin")
	}
	if spec.Base.Reference() != "python:3.12-slim" {
		t.Errorf("Base = %q, want config default", spec.Base.Reference())
	}
}

func TestBuildSpec_SourceMode(t *testing.T) {
	t.Parallel()

	flags := &specFlags{source: true, nonInteractive: true}
	spec, err := flags.buildSpec(config.DefaultConfig())
	if err != nil {
		t.Fatalf("buildSpec() error = %v", err)
	}

	if spec.Mode != provision.ModeSource {
		t.Errorf("Mode = %q, want source", spec.Mode)
	}
	if spec.SourceOrigin != config.DefaultConfig().SourceOrigin {
		t.Errorf("SourceOrigin = %q, want config default", spec.SourceOrigin)
	}
	if spec.PinnedVersion != "" {
		t.Error("source spec must not pin a version")
	}
}

func TestBuildSpec_OriginImpliesSource(t *testing.T) {
	t.Parallel()

	flags := &specFlags{origin: "https://example.com/fork.git", nonInteractive: true}
	spec, err := flags.buildSpec(config.DefaultConfig())
	if err != nil {
		t.Fatalf("buildSpec() error = %v", err)
	}
	if spec.Mode != provision.ModeSource {
		t.Errorf("Mode = %q, want source", spec.Mode)
	}
	if spec.SourceOrigin != "https://example.com/fork.git" {
		t.Errorf("SourceOrigin = %q", spec.SourceOrigin)
	}
}

func TestBuildSpec_ModeExclusivity(t *testing.T) {
	t.Parallel()

	flags := &specFlags{pin: "1.1.1", source: true, nonInteractive: true}
	_, err := flags.buildSpec(config.DefaultConfig())
	if err == nil {
		t.Fatal("buildSpec() expected error when both modes are requested")
	}
	if !strings.Contains(err.Error(), "mutually exclusive") {
		t.Errorf("error should explain the exclusivity, got %v", err)
	}
}

func TestBuildSpec_NoModeChosen(t *testing.T) {
	t.Parallel()

	flags := &specFlags{nonInteractive: true}
	if _, err := flags.buildSpec(config.DefaultConfig()); err == nil {
		t.Fatal("buildSpec() expected error when no mode is chosen")
	}
}

func TestBuildSpec_EntrypointShellParsing(t *testing.T) {
	t.Parallel()

	flags := &specFlags{
		pin:            "1.1.1",
		entrypoint:     `spotizerr-auth --output "/data/creds dir"`,
		nonInteractive: true,
	}
	spec, err := flags.buildSpec(config.DefaultConfig())
	if err != nil {
		t.Fatalf("buildSpec() error = %v", err)
	}

	want := []string{"spotizerr-auth", "--output", "/data/creds dir"}
	if len(spec.Entrypoint) != len(want) {
		t.Fatalf("Entrypoint = %v, want %v", spec.Entrypoint, want)
	}
	for i := range want {
		if spec.Entrypoint[i] != want[i] {
			t.Errorf("Entrypoint[%d] = %q, want %q", i, spec.Entrypoint[i], want[i])
		}
	}
}

func TestBuildSpec_BaseOverride(t *testing.T) {
	t.Parallel()

	flags := &specFlags{pin: "1.1.1", base: "python:3.13", nonInteractive: true}
	spec, err := flags.buildSpec(config.DefaultConfig())
	if err != nil {
		t.Fatalf("buildSpec() error = %v", err)
	}
	if spec.Base.Reference() != "python:3.13" {
		t.Errorf("Base = %q, want flag override", spec.Base.Reference())
	}
}

func TestBuildSpec_InvalidBase(t *testing.T) {
	t.Parallel()

	flags := &specFlags{pin: "1.1.1", base: "python", nonInteractive: true}
	if _, err := flags.buildSpec(config.DefaultConfig()); err == nil {
		t.Fatal("buildSpec() expected error for untagged base reference")
	}
}

func TestBuildSpec_NonInteractiveThreading(t *testing.T) {
	t.Parallel()

	flags := &specFlags{pin: "1.1.1", nonInteractive: false}
	spec, err := flags.buildSpec(config.DefaultConfig())
	if err != nil {
		t.Fatalf("buildSpec() error = %v", err)
	}
	if spec.NonInteractive {
		t.Error("NonInteractive should follow the flag value")
	}
}
