// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"authprov/internal/container"
)

type (
	// Target identifies the image whose entrypoint receives control.
	Target struct {
		// Image is the provisioned image tag.
		Image string

		// Argv optionally overrides the image's entrypoint: Argv[0] is the
		// program, the rest are its arguments. Empty means "run the image's
		// own CMD", which is the normal handoff path.
		Argv []string

		// Interactive keeps stdin open and allocates a TTY.
		Interactive bool
	}

	// Invoker is the capability the bootstrap layer depends on to hand
	// control to the auth tool. Implementations run the target's argument
	// vector and report the resulting exit code; they never interpret it.
	Invoker interface {
		Invoke(ctx context.Context, target Target) (ExitCode, error)
	}

	// ContainerInvoker invokes the auth tool inside a container.
	ContainerInvoker struct {
		engine container.Engine

		stdin          io.Reader
		stdout, stderr io.Writer
	}

	// InvokerOption configures a ContainerInvoker.
	InvokerOption func(*ContainerInvoker)
)

// Compile-time interface check
var _ Invoker = (*ContainerInvoker)(nil)

// WithStdio overrides the invoker's standard streams.
// Used by tests to capture the tool's output.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) InvokerOption {
	return func(i *ContainerInvoker) {
		i.stdin = stdin
		i.stdout = stdout
		i.stderr = stderr
	}
}

// NewContainerInvoker creates an invoker that runs targets through the given
// engine with the process's own stdio.
func NewContainerInvoker(engine container.Engine, opts ...InvokerOption) *ContainerInvoker {
	inv := &ContainerInvoker{
		engine: engine,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Invoke runs the target and returns the tool's exit code. The container is
// removed after exit; a unique name allows repeated invocations. An error is
// returned only for infrastructure failures — a non-zero exit code from the
// tool is a normal result.
func (i *ContainerInvoker) Invoke(ctx context.Context, target Target) (ExitCode, error) {
	if target.Image == "" {
		return 1, fmt.Errorf("no image to invoke")
	}

	opts := container.RunOptions{
		Image:       target.Image,
		Remove:      true,
		Name:        containerName(),
		Stdin:       i.stdin,
		Stdout:      i.stdout,
		Stderr:      i.stderr,
		Interactive: target.Interactive,
		TTY:         target.Interactive,
	}

	if len(target.Argv) > 0 {
		opts.Entrypoint = target.Argv[0]
		opts.Command = target.Argv[1:]
	}

	result, err := i.engine.Run(ctx, opts)
	if err != nil {
		return 1, err
	}
	if result.Error != nil {
		return ExitCode(result.ExitCode), result.Error
	}

	return ExitCode(result.ExitCode), nil
}

// containerName generates a unique container name for one invocation.
func containerName() string {
	return "authprov-run-" + uuid.NewString()[:8]
}
