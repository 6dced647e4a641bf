// SPDX-License-Identifier: MPL-2.0

// Package fspath provides typed wrappers around path/filepath functions that
// accept and return types.FilesystemPath, so callers keep typed paths end to
// end instead of converting at every call site.
package fspath

import (
	"fmt"
	"path/filepath"

	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/pkg/types"
)

// JoinStr wraps filepath.Join, accepting a typed base path and raw string
// segments such as OS-provided file names (e.g., from afero.ReadDir).
func JoinStr(base types.FilesystemPath, elem ...string) types.FilesystemPath {
	parts := make([]string, 1, 1+len(elem))
	parts[0] = string(base)
	parts = append(parts, elem...)
	return types.FilesystemPath(filepath.Join(parts...))
}

// Abs wraps filepath.Abs for FilesystemPath. Relative paths are resolved
// against the current working directory; absolute paths are only cleaned.
func Abs(p types.FilesystemPath) (types.FilesystemPath, error) {
	abs, err := filepath.Abs(string(p))
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	return types.FilesystemPath(abs), nil
}

// Ext wraps filepath.Ext for FilesystemPath.
func Ext(p types.FilesystemPath) string {
	return filepath.Ext(string(p))
}
