// SPDX-License-Identifier: MPL-2.0

package pkgindex

import (
	"fmt"
	"strings"
)

// ParsePipShowVersion extracts the Version field from `pip show` output.
// pip prints RFC 822 style headers, one per line.
func ParsePipShowVersion(out string) (string, error) {
	for line := range strings.Lines(out) {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(key), "Version") {
			version := strings.TrimSpace(value)
			if version == "" {
				return "", fmt.Errorf("pip show reported an empty version")
			}
			return version, nil
		}
	}
	return "", fmt.Errorf("no Version field in pip show output")
}
