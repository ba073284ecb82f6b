// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"authprov/internal/provision"
)

var (
	renderFlags specFlags

	renderCmd = &cobra.Command{
		Use:   "render",
		Short: "Print the image descriptor for a build without building it",
		Long: `Print the Dockerfile that a build with the same flags would use.

The output is deterministic for a given set of inputs: the same flags
always yield the same descriptor, which is also what the image cache
key is derived from.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			spec, err := renderFlags.buildSpec(cfg)
			if err != nil {
				return err
			}

			dockerfile, err := provision.RenderDockerfile(spec)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), dockerfile)
			return nil
		},
	}
)

func init() {
	renderFlags.register(renderCmd)
}
