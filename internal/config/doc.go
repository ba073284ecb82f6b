// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/authprov/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/authprov/config.cue on macOS, %APPDATA%\authprov\config.cue
// on Windows). Settings cover the container engine, the base runtime image, the package
// and origin defaults for provisioning, and UI preferences.
//
// Files are validated against an embedded CUE schema (config_schema.cue) so that a typo
// in a field name or an out-of-range value fails with a clear, path-qualified message.
package config
