// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"mvdan.cc/sh/v3/shell"

	"authprov/internal/config"
	"authprov/internal/provision"
)

// specFlags holds the per-command flag values that shape a build spec.
// Each command that builds gets its own instance so flag state never leaks
// between subcommands.
type specFlags struct {
	pin            string
	source         bool
	origin         string
	base           string
	entrypoint     string
	workDir        string
	manifest       string
	nonInteractive bool
}

// register wires the spec flags onto a command.
func (f *specFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.pin, "pin", "", "exact published version to install (pinned mode)")
	cmd.Flags().BoolVar(&f.source, "source", false, "build from the repository's default-branch head (source mode)")
	cmd.Flags().StringVar(&f.origin, "origin", "", "source repository URL (implies --source)")
	cmd.Flags().StringVar(&f.base, "base", "", "base runtime image (default from config, python:3.12-slim)")
	cmd.Flags().StringVar(&f.entrypoint, "entrypoint", "", "override the image entrypoint (parsed with shell word splitting)")
	cmd.Flags().StringVar(&f.workDir, "workdir", "", "working directory inside the image (default /app)")
	cmd.Flags().StringVar(&f.manifest, "manifest", "", "dependency manifest path for source builds (default requirements.txt)")
	cmd.Flags().BoolVar(&f.nonInteractive, "non-interactive", true, "suppress package-manager prompts during the build")
}

// buildSpec turns flags plus configuration into a validated build spec.
// --pin and --source/--origin are mutually exclusive; one must be chosen.
func (f *specFlags) buildSpec(cfg *config.Config) (*provision.Spec, error) {
	sourceMode := f.source || f.origin != ""

	switch {
	case f.pin != "" && sourceMode:
		return nil, fmt.Errorf("--pin and --source/--origin are mutually exclusive: choose one acquisition mode")
	case f.pin == "" && !sourceMode:
		return nil, fmt.Errorf("choose an acquisition mode: --pin <version> or --source")
	}

	var spec *provision.Spec
	if f.pin != "" {
		spec = provision.PinnedSpec(f.pin)
		spec.Package = cfg.Package
	} else {
		origin := f.origin
		if origin == "" {
			origin = cfg.SourceOrigin
		}
		spec = provision.SourceSpec(origin)
	}

	baseRef := f.base
	if baseRef == "" {
		baseRef = cfg.BaseImage
	}
	base, err := provision.ParseBase(baseRef)
	if err != nil {
		return nil, err
	}
	spec.Base = base

	if f.workDir != "" {
		spec.WorkDir = f.workDir
	}
	if f.manifest != "" {
		spec.Manifest = f.manifest
	}
	spec.NonInteractive = f.nonInteractive

	if f.entrypoint != "" {
		argv, err := shell.Fields(f.entrypoint, nil)
		if err != nil {
			return nil, fmt.Errorf("invalid --entrypoint value: %w", err)
		}
		spec.Entrypoint = argv
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}
