// SPDX-License-Identifier: MPL-2.0

// Package source resolves the state of a git origin that source-mode
// provisioning clones from, and probes what revision a built image actually
// carries. Comparing the two tells whether an image is current with respect
// to its origin's default branch.
package source
