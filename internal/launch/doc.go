// SPDX-License-Identifier: MPL-2.0

// Package launch hands control to the provisioned auth tool.
//
// Its responsibility ends at process handoff: the tool's stdio is passed
// through unmodified and its exit code is surfaced as-is. No retry, no
// supervision, no interpretation of the tool's behavior.
package launch
