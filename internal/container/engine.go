// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"io"
)

// Engine defines the interface for container operations.
type Engine interface {
	// Name returns the engine name (docker or podman)
	Name() string
	// Available checks if the engine is available on the system
	Available() bool
	// Version returns the engine version
	Version(ctx context.Context) (string, error)

	// Build builds an image from a Dockerfile
	Build(ctx context.Context, opts BuildOptions) error
	// Run runs a container to completion
	Run(ctx context.Context, opts RunOptions) (*RunResult, error)
	// ImageExists checks if an image exists locally
	ImageExists(ctx context.Context, image string) (bool, error)
	// RemoveImage removes an image
	RemoveImage(ctx context.Context, image string, force bool) error
	// InspectImage returns the raw inspect output for an image
	InspectImage(ctx context.Context, image string) (string, error)
}

// BuildOptions contains options for building an image.
type BuildOptions struct {
	// ContextDir is the build context directory
	ContextDir string
	// Dockerfile is the path to the Dockerfile (relative to ContextDir)
	Dockerfile string
	// Tag is the image tag
	Tag string
	// BuildArgs are build-time variables
	BuildArgs map[string]string
	// NoCache disables the build cache
	NoCache bool
	// Pull always attempts to pull a newer version of the base image
	Pull bool
	// Stdout is where to write build output
	Stdout io.Writer
	// Stderr is where to write build errors
	Stderr io.Writer
}

// RunOptions contains options for running a container.
type RunOptions struct {
	// Image is the image to run
	Image string
	// Entrypoint overrides the image entrypoint when non-empty
	Entrypoint string
	// Command is the command (or entrypoint arguments) to run;
	// empty means the image's own CMD
	Command []string
	// WorkDir is the working directory inside the container
	WorkDir string
	// Env contains environment variables
	Env map[string]string
	// Remove automatically removes the container after exit
	Remove bool
	// Name is the container name
	Name string
	// Stdin is the standard input
	Stdin io.Reader
	// Stdout is where to write standard output
	Stdout io.Writer
	// Stderr is where to write standard error
	Stderr io.Writer
	// Interactive keeps stdin open
	Interactive bool
	// TTY allocates a pseudo-TTY
	TTY bool
}

// RunResult contains the result of running a container.
// A non-zero exit code is data, not an error: the bootstrap layer forwards
// the tool's exit status without interpreting it.
type RunResult struct {
	// ExitCode is the container process exit code
	ExitCode int
	// Error contains infrastructure failures (engine binary missing, etc.)
	Error error
}

// EngineType identifies the container engine type.
type EngineType string

const (
	EngineTypePodman EngineType = "podman"
	EngineTypeDocker EngineType = "docker"
)

// ErrEngineNotAvailable is returned when a container engine is not available.
type ErrEngineNotAvailable struct {
	Engine string
	Reason string
}

func (e *ErrEngineNotAvailable) Error() string {
	return fmt.Sprintf("container engine '%s' is not available: %s", e.Engine, e.Reason)
}

// NewEngine creates a new container engine based on preference.
// If the preferred engine is unavailable, the other one is tried before
// giving up.
func NewEngine(preferredType EngineType) (Engine, error) {
	switch preferredType {
	case EngineTypePodman:
		engine := NewPodmanEngine()
		if engine.Available() {
			return engine, nil
		}
		dockerEngine := NewDockerEngine()
		if dockerEngine.Available() {
			return dockerEngine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "podman",
			Reason: "podman is not installed or not accessible, and docker fallback is also not available",
		}

	case EngineTypeDocker:
		engine := NewDockerEngine()
		if engine.Available() {
			return engine, nil
		}
		podmanEngine := NewPodmanEngine()
		if podmanEngine.Available() {
			return podmanEngine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: "docker",
			Reason: "docker is not installed or not accessible, and podman fallback is also not available",
		}

	default:
		return nil, fmt.Errorf("unknown container engine type: %s", preferredType)
	}
}

// AutoDetectEngine tries to find an available container engine.
func AutoDetectEngine() (Engine, error) {
	// Docker first: the common case for this tool's users
	docker := NewDockerEngine()
	if docker.Available() {
		return docker, nil
	}

	podman := NewPodmanEngine()
	if podman.Available() {
		return podman, nil
	}

	return nil, &ErrEngineNotAvailable{
		Engine: "any",
		Reason: "no container engine (docker or podman) is available on this system",
	}
}
