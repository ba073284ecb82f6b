// SPDX-License-Identifier: MPL-2.0

package source

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"authprov/internal/container"
)

var hashPattern = regexp.MustCompile(`^[0-9a-f]{7,64}$`)

// ImageProber reads the git revision baked into a provisioned image by
// running git inside a throwaway container.
type ImageProber struct {
	engine container.Engine
}

// NewImageProber creates a prober backed by the given engine.
func NewImageProber(engine container.Engine) *ImageProber {
	return &ImageProber{engine: engine}
}

// Revision returns the commit checked out at workDir inside the image.
// Only images provisioned from source carry a repository; probing a
// pinned-install image fails with the engine's error.
func (p *ImageProber) Revision(ctx context.Context, image, workDir string) (Revision, error) {
	var stdout, stderr bytes.Buffer

	result, err := p.engine.Run(ctx, container.RunOptions{
		Image:      image,
		Entrypoint: "git",
		Command:    []string{"-C", workDir, "rev-parse", "HEAD"},
		Remove:     true,
		Stdin:      nil,
		Stdout:     &stdout,
		Stderr:     &stderr,
	})
	if err != nil {
		return "", fmt.Errorf("failed to probe image %s: %w", image, err)
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("git rev-parse exited %d in image %s: %s",
			result.ExitCode, image, strings.TrimSpace(stderr.String()))
	}

	return ParseRevision(stdout.String())
}

// ParseRevision extracts a commit hash from command output.
func ParseRevision(out string) (Revision, error) {
	line := firstLine(out)
	if !hashPattern.MatchString(line) {
		return "", fmt.Errorf("output %q is not a commit hash", line)
	}
	return Revision(line), nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
