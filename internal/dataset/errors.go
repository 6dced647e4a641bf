// SPDX-License-Identifier: MPL-2.0

package dataset

import (
	"errors"
	"fmt"

	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/pkg/types"
)

var (
	// ErrMalformedSpec is the sentinel error wrapped by MalformedSpecError.
	ErrMalformedSpec = errors.New("malformed dataset spec")
	// ErrFilesystem is the sentinel error wrapped by FilesystemError.
	ErrFilesystem = errors.New("filesystem error")
)

type (
	// MalformedSpecError is returned when a dataset reference cannot be
	// mapped to name, language and split.
	MalformedSpecError struct {
		Spec Spec
		// Segments is the number of segments the reference was split into.
		Segments int
		Reason   string
	}

	// FilesystemError is returned when checking or listing a train path fails
	// for a reason other than the path not existing.
	FilesystemError struct {
		Op   string
		Path types.FilesystemPath
		Err  error
	}
)

// Error implements the error interface for MalformedSpecError.
func (e *MalformedSpecError) Error() string {
	return fmt.Sprintf("malformed dataset spec %q (%d segments): %s", e.Spec, e.Segments, e.Reason)
}

// Unwrap returns ErrMalformedSpec for errors.Is() compatibility.
func (e *MalformedSpecError) Unwrap() error { return ErrMalformedSpec }

// Error implements the error interface for FilesystemError.
func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns both ErrFilesystem and the underlying cause, so callers can
// match either with errors.Is.
func (e *FilesystemError) Unwrap() []error { return []error{ErrFilesystem, e.Err} }
