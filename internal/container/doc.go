// SPDX-License-Identifier: MPL-2.0

// Package container provides an abstraction layer for container engines
// (Docker/Podman). The provisioner builds images through it and the launcher
// runs them through it; nothing above this package shells out directly.
package container
