// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and the catalog of user-facing
// issue pages shown by the finetune CLI.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. The catalog maps an Id to a Markdown page that is
// rendered with glamour when a command fails.
package issue
