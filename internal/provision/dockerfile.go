// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"fmt"
	"strings"
)

// RenderDockerfile generates the build descriptor for a Spec. One routine
// serves both acquisition modes; the mode enum selects the acquisition
// stanza, so the pinned/source trade-off lives in configuration rather than
// in duplicated build paths.
//
// Stage order is fixed: base runtime selection, system dependency
// installation, working directory creation, dependency acquisition,
// entrypoint. Each stage is a precondition for the next.
func RenderDockerfile(spec *Spec) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "FROM %s\n", spec.Base.Reference())

	if spec.NonInteractive {
		// Suppresses debconf prompts so installs never block on operator
		// input under a non-interactive build runner.
		sb.WriteString("\nENV DEBIAN_FRONTEND=noninteractive\n")
	}

	if len(spec.SystemPackages) > 0 {
		sb.WriteString("\nRUN apt-get update \\\n")
		fmt.Fprintf(&sb, "    && apt-get install -y --no-install-recommends %s \\\n", strings.Join(spec.SystemPackages, " "))
		// The package-index cache never reaches the final layer.
		sb.WriteString("    && rm -rf /var/lib/apt/lists/*\n")
	}

	fmt.Fprintf(&sb, "\nWORKDIR %s\n", spec.WorkDir)

	switch spec.Mode {
	case ModePinned:
		fmt.Fprintf(&sb, "\nRUN pip install --no-cache-dir %s==%s\n", spec.Package, spec.PinnedVersion)
	case ModeSource:
		fmt.Fprintf(&sb, "\nRUN git clone %s .\n", spec.SourceOrigin)
		fmt.Fprintf(&sb, "RUN pip install --no-cache-dir -r %s\n", spec.Manifest)
	}

	fmt.Fprintf(&sb, "\nCMD [%s]\n", quoteArgv(spec.Entrypoint))

	return sb.String(), nil
}

// quoteArgv renders an argument vector in Dockerfile exec form.
func quoteArgv(argv []string) string {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		quoted[i] = fmt.Sprintf("%q", arg)
	}
	return strings.Join(quoted, ", ")
}
