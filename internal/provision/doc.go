// SPDX-License-Identifier: MPL-2.0

// Package provision assembles container images that bootstrap the
// spotizerr-auth utility.
//
// A build is described by a Spec: a base runtime, exactly one dependency
// acquisition mode (pinned package index install, or source checkout from the
// tool's origin repository), a working directory, and an entrypoint argument
// vector. The Spec is rendered to a Dockerfile by a single routine and built
// through the container engine abstraction. The two acquisition modes are
// mutually exclusive alternatives, never composed within one image.
package provision
