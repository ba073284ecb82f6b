// SPDX-License-Identifier: MPL-2.0

// Package oci checks base image references against their registry before a
// build starts. A manifest HEAD request is enough to catch a typoed Python
// tag without pulling anything.
package oci
