// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
)

type (
	// Provisioner turns a build Spec into a runnable image.
	// Implementations may cache built images keyed on the rendered
	// descriptor; source-mode builds must not be served from cache, since
	// they track the origin's default-branch head at build time.
	Provisioner interface {
		// Provision builds (or reuses) the image for the given spec.
		Provision(ctx context.Context, spec *Spec) (*Result, error)
	}

	// Result contains the output of a provisioning operation.
	Result struct {
		// ImageTag is the tag of the provisioned image (e.g., "authprov:ab12cd34ef56")
		ImageTag string

		// CacheHit reports whether an existing image was reused.
		CacheHit bool

		// Dockerfile is the rendered build descriptor.
		Dockerfile string
	}
)
