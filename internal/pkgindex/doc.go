// SPDX-License-Identifier: MPL-2.0

// Package pkgindex queries the Python package index for release metadata.
// The verify path uses it to confirm that a pinned version actually exists
// upstream before (or after) an image is built around it.
package pkgindex
