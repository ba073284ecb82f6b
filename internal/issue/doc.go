// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// Provisioning failures are fatal and non-retried, so the error a user sees is
// often the only diagnostic they get. Errors in this package carry the failed
// operation, the resource involved, and concrete remediation steps.
package issue
