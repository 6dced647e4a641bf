// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/internal/config"
	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/internal/dataset"
	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/internal/issue"
	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/pkg/types"

	"github.com/spf13/cobra"
)

func TestNewServiceError_PanicsOnNilErr(t *testing.T) {
	t.Parallel()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on nil Err, got none")
		}
		if msg, ok := r.(string); !ok || msg != "ServiceError: Err must not be nil" {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()

	newServiceError(nil, 0, "")
}

func TestServiceError_ErrorAndUnwrap(t *testing.T) {
	t.Parallel()

	underlying := errors.New("underlying error")
	svcErr := newServiceError(underlying, issue.DatasetSpecMalformedId, "styled")

	if svcErr.Error() != "underlying error" {
		t.Errorf("Error() = %q, want %q", svcErr.Error(), "underlying error")
	}
	if !errors.Is(svcErr, underlying) {
		t.Error("errors.Is should find underlying error via Unwrap")
	}
	if svcErr.IssueID != issue.DatasetSpecMalformedId || svcErr.StyledMessage != "styled" {
		t.Errorf("unexpected fields: %+v", svcErr)
	}
}

func TestRenderServiceError(t *testing.T) {
	t.Parallel()

	t.Run("nil", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		renderServiceError(&buf, nil)
		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})

	t.Run("zero issue id skips catalog", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		renderServiceError(&buf, newServiceError(errors.New("test"), 0, "only this"))
		if buf.String() != "only this" {
			t.Errorf("output = %q, want %q", buf.String(), "only this")
		}
	})

	t.Run("styled message and issue", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		renderServiceError(&buf, newServiceError(errors.New("test"), issue.TrainPathUnreadableId, "styled: "))
		if buf.Len() <= len("styled: ") {
			t.Errorf("expected styled message + issue content, got only %q", buf.String())
		}
	})
}

func TestIssueForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want issue.Id
	}{
		{"explicit config file missing", fmt.Errorf("%w: x.cue", config.ErrConfigFileNotFound), issue.ConfigFileNotFoundId},
		{"config file invalid", fmt.Errorf("%w: %w", config.ErrConfigFileInvalid, fs.ErrPermission), issue.ConfigLoadFailedId},
		{"env file", fmt.Errorf("%w: %w", config.ErrEnvFile, fs.ErrNotExist), issue.EnvFileLoadFailedId},
		{"validation", &config.InvalidConfigError{}, issue.InvalidConfigId},
		{"malformed dataset", &dataset.MalformedSpecError{Spec: "a:b:c:d", Segments: 4}, issue.DatasetSpecMalformedId},
		{"train path permission", &dataset.FilesystemError{Op: "list", Path: "/data", Err: fs.ErrPermission}, issue.PermissionDeniedId},
		{"train path unreadable", &dataset.FilesystemError{Op: "stat", Path: "/data", Err: errors.New("i/o error")}, issue.TrainPathUnreadableId},
		{"missing file", fs.ErrNotExist, issue.FileNotFoundId},
		{"unknown", errors.New("boom"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			wrapped := issue.NewErrorContext().WithOperation("test").Wrap(tt.err).BuildError()
			if got := issueForError(wrapped); got != tt.want {
				t.Errorf("issueForError() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestApp_Fail(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer
	app := NewApp(Dependencies{Config: newStubProvider(), Stdout: &bytes.Buffer{}, Stderr: &stderr})
	cmd := &cobra.Command{Use: "probe"}

	cause := &dataset.MalformedSpecError{Spec: "a:b:c:d", Segments: 4, Reason: "expected name:language"}
	err := app.fail(cmd, cause)

	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != types.ExitFailure {
		t.Fatalf("fail() = %v, want ExitError with failure code", err)
	}
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) || svcErr.IssueID != issue.DatasetSpecMalformedId {
		t.Fatalf("fail() should carry a ServiceError for the dataset issue, got %v", err)
	}
	if !errors.Is(err, dataset.ErrMalformedSpec) {
		t.Error("fail() should keep the cause reachable")
	}
	if !cmd.SilenceErrors || !cmd.SilenceUsage {
		t.Error("fail() should silence cobra error and usage output")
	}
	if !bytes.Contains(stderr.Bytes(), []byte("a:b:c:d")) {
		t.Errorf("stderr does not mention the spec: %q", stderr.String())
	}
}
