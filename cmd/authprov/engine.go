// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"authprov/internal/config"
	"authprov/internal/container"
)

// resolveEngine picks the container engine per configuration. "auto" tries
// docker first, then podman; a named engine falls back to the other one
// before failing.
func resolveEngine(cfg *config.Config) (container.Engine, error) {
	switch cfg.ContainerEngine {
	case config.ContainerEngineDocker:
		return container.NewEngine(container.EngineTypeDocker)
	case config.ContainerEnginePodman:
		return container.NewEngine(container.EngineTypePodman)
	default:
		return container.AutoDetectEngine()
	}
}
