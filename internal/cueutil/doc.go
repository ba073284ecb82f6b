// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared helpers for validating user files against
// embedded CUE schemas and formatting CUE errors with JSON-path context.
package cueutil
