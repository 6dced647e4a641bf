// SPDX-License-Identifier: MPL-2.0

// Package platform holds the few operating-system specific conventions the
// CLI depends on, such as where per-user configuration lives.
package platform
