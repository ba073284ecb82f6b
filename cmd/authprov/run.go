// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"authprov/internal/launch"
)

var (
	runFlags struct {
		specFlags
		forceRebuild  bool
		skipPreflight bool
		interactive   bool
	}

	runCmd = &cobra.Command{
		Use:   "run [-- tool args...]",
		Short: "Build (or reuse) an image and hand control to the auth tool",
		Long: `Build the provisioned image if needed, then run the auth tool inside it.

Your terminal is forwarded to the tool so it can prompt for credentials.
The tool's exit code becomes authprov's exit code: a non-zero code means
the tool failed, not authprov.

Arguments after -- are passed to the tool.`,
		Example: `  authprov run --pin 1.1.1
  authprov run --source -- --headless
  authprov run --pin 1.1.1 --entrypoint "spotizerr-auth --debug"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			result, engine, err := runBuild(ctx, &runFlags.specFlags, runFlags.forceRebuild, runFlags.skipPreflight, false)
			if err != nil {
				return err
			}

			target := launch.Target{
				Image:       result.ImageTag,
				Interactive: runFlags.interactive,
			}
			// The image's own CMD is the default handoff; extra args or an
			// explicit entrypoint switch to an overridden argument vector.
			if len(args) > 0 || runFlags.entrypoint != "" {
				spec, err := runFlags.buildSpec(cfg)
				if err != nil {
					return err
				}
				target.Argv = append(spec.Entrypoint, args...)
			}

			logger.Debug("invoking auth tool", "image", target.Image, "argv", target.Argv)

			code, err := launch.NewContainerInvoker(engine).Invoke(ctx, target)
			if err != nil {
				return err
			}
			if !code.IsSuccess() {
				// Forward the tool's exit code without treating it as our failure.
				return &ExitError{Code: code}
			}
			return nil
		},
	}
)

func init() {
	runFlags.register(runCmd)
	runCmd.Flags().BoolVar(&runFlags.forceRebuild, "force-rebuild", false, "bypass the image cache and rebuild")
	runCmd.Flags().BoolVar(&runFlags.skipPreflight, "skip-preflight", false, "skip the registry check of the base image")
	runCmd.Flags().BoolVarP(&runFlags.interactive, "interactive", "i", stdinIsTerminal(), "keep stdin open and allocate a TTY")
}

// stdinIsTerminal reports whether stdin is attached to a terminal. It is the
// default for --interactive: requesting a TTY with piped input makes the
// engine refuse to start the container.
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
