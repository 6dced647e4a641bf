// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/internal/config"
	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/internal/dataset"
	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/internal/issue"
	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/pkg/types"

	"github.com/spf13/cobra"
)

// ServiceError is an error that carries optional rendering information for
// the CLI layer. When the CLI layer receives a ServiceError, it renders the
// styled error message (if present) before the matching issue help text.
// Always create via newServiceError to enforce the Err-must-be-non-nil invariant.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
// All construction sites must use this instead of struct literals.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// renderServiceError renders a ServiceError in the CLI layer.
// It prints any styled message first, then the optional issue help section.
func renderServiceError(stderr io.Writer, svcErr *ServiceError) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render("dark")
		if renderErr != nil {
			slog.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", renderErr)
		} else {
			fmt.Fprint(stderr, rendered)
		}
	}
}

// issueForError picks the catalog entry explaining err, or 0 when none fits.
// Config errors are checked first since they may also wrap filesystem errors.
func issueForError(err error) issue.Id {
	switch {
	case errors.Is(err, config.ErrConfigFileNotFound):
		return issue.ConfigFileNotFoundId
	case errors.Is(err, config.ErrConfigFileInvalid):
		return issue.ConfigLoadFailedId
	case errors.Is(err, config.ErrEnvFile):
		return issue.EnvFileLoadFailedId
	case errors.Is(err, config.ErrInvalidConfig):
		return issue.InvalidConfigId
	case errors.Is(err, dataset.ErrMalformedSpec):
		return issue.DatasetSpecMalformedId
	case errors.Is(err, fs.ErrPermission):
		return issue.PermissionDeniedId
	case errors.Is(err, dataset.ErrFilesystem):
		return issue.TrainPathUnreadableId
	case errors.Is(err, fs.ErrNotExist):
		return issue.FileNotFoundId
	default:
		return 0
	}
}

// fail renders err with its issue help to stderr and returns the ExitError
// that ends the command. Cobra's own error output is silenced.
func (a *App) fail(cmd *cobra.Command, err error) error {
	styled := ErrorStyle.Render("Error:") + " " + formatErrorForDisplay(err, a.flags.verbose) + "\n"
	svcErr := newServiceError(err, issueForError(err), styled)
	renderServiceError(a.stderr, svcErr)

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return &ExitError{Code: types.ExitFailure, Err: svcErr}
}
