// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that touch process
// state (working directory, environment, HOME) or the filesystem, failing the
// test immediately when setup goes wrong and returning cleanup functions that
// restore the original state.
package testutil
