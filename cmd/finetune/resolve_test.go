// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/internal/config"
	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/internal/issue"
	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/internal/testutil"
	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/pkg/types"

	"github.com/google/go-cmp/cmp"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

func trainFs(t *testing.T, dir string, names ...string) afero.Fs {
	t.Helper()

	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		if err := afero.WriteFile(fsys, filepath.Join(dir, name), []byte("{}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return fsys
}

func TestResolve_Text(t *testing.T) {
	dir := filepath.Join(string(filepath.Separator), "train")
	provider := newStubProvider()
	provider.cfg.Data.DatasetName = "squad:en"
	provider.cfg.Data.TrainDir = types.FilesystemPath(dir)

	stdout, _, err := runCLI(t, Dependencies{Config: provider, Fs: trainFs(t, dir, "b.jsonl", "a.json", "notes.md")}, "resolve")
	if err != nil {
		t.Fatalf("resolve error = %v", err)
	}

	for _, want := range []string{
		"CohereForAI/aya-23-8B",
		"squad:en:train",
		"(colon)",
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.jsonl"),
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output does not contain %q:\n%s", want, stdout)
		}
	}
	if strings.Contains(stdout, "notes.md") {
		t.Errorf("output lists a non-train file:\n%s", stdout)
	}
}

func TestResolve_TextWithoutTrainPath(t *testing.T) {
	stdout, _, err := runCLI(t, Dependencies{Config: newStubProvider()}, "resolve")
	if err != nil {
		t.Fatalf("resolve error = %v", err)
	}
	if !strings.Contains(stdout, "json:default:train") || !strings.Contains(stdout, "(none configured)") {
		t.Errorf("unexpected output:\n%s", stdout)
	}
}

func TestResolve_JSON(t *testing.T) {
	dir := filepath.Join(string(filepath.Separator), "train")
	provider := newStubProvider()
	provider.cfg.Data.DatasetName = "org/squad/validation"
	provider.cfg.Data.TrainDir = types.FilesystemPath(dir)

	stdout, _, err := runCLI(t, Dependencies{Config: provider, Fs: trainFs(t, dir, "a.json")}, "resolve", "--format", "json")
	if err != nil {
		t.Fatalf("resolve error = %v", err)
	}

	var got resolvedView
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}

	want := datasetView{Name: "org/squad", Language: "default", Split: "validation", Mode: "slash"}
	if diff := cmp.Diff(want, got.Dataset); diff != "" {
		t.Errorf("dataset mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{filepath.Join(dir, "a.json")}, got.TrainPath); diff != "" {
		t.Errorf("train_path mismatch (-want +got):\n%s", diff)
	}
	if got.Model.ModelNameOrPath != "CohereForAI/aya-23-8B" || got.Data.QMaxLen != 512 {
		t.Errorf("raw fields not carried through: %+v", got)
	}
}

func TestResolve_JSONAbsentTrainPathIsNull(t *testing.T) {
	stdout, _, err := runCLI(t, Dependencies{Config: newStubProvider()}, "resolve", "--format=json")
	if err != nil {
		t.Fatalf("resolve error = %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stdout), &raw); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if string(raw["train_path"]) != "null" {
		t.Errorf("train_path = %s, want null", raw["train_path"])
	}
}

func TestResolve_TOML(t *testing.T) {
	provider := newStubProvider()
	provider.cfg.Data.DatasetName = "squad:ko:test"

	stdout, _, err := runCLI(t, Dependencies{Config: provider}, "resolve", "--format", "toml")
	if err != nil {
		t.Fatalf("resolve error = %v", err)
	}

	var got resolvedView
	if err := toml.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("output is not TOML: %v\n%s", err, stdout)
	}
	want := datasetView{Name: "squad", Language: "ko", Split: "test", Mode: "colon"}
	if diff := cmp.Diff(want, got.Dataset); diff != "" {
		t.Errorf("dataset mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_UnsupportedFormat(t *testing.T) {
	provider := newStubProvider()
	_, _, err := runCLI(t, Dependencies{Config: provider}, "resolve", "--format", "yaml")

	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != types.ExitUsage {
		t.Fatalf("error = %v, want usage ExitError", err)
	}
	if len(provider.loads) != 0 {
		t.Error("configuration should not be loaded for an unsupported format")
	}
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*stubProvider)
		wantID  issue.Id
		wantErr error
	}{
		{
			name: "load failure",
			setup: func(p *stubProvider) {
				p.err = issue.NewErrorContext().WithOperation("validate configuration").Wrap(&config.InvalidConfigError{}).BuildError()
			},
			wantID:  issue.InvalidConfigId,
			wantErr: config.ErrInvalidConfig,
		},
		{
			name:   "malformed dataset",
			setup:  func(p *stubProvider) { p.cfg.Data.DatasetName = "a:b:c:d" },
			wantID: issue.DatasetSpecMalformedId,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newStubProvider()
			tt.setup(provider)

			stdout, stderr, err := runCLI(t, Dependencies{Config: provider}, "resolve")

			var svcErr *ServiceError
			if !errors.As(err, &svcErr) || svcErr.IssueID != tt.wantID {
				t.Fatalf("error = %v, want ServiceError with issue %d", err, tt.wantID)
			}
			if exitCode(err) != types.ExitFailure {
				t.Errorf("exit code = %d, want %d", exitCode(err), types.ExitFailure)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error should wrap %v", tt.wantErr)
			}
			if stdout != "" {
				t.Errorf("nothing should be printed on stdout, got %q", stdout)
			}
			if !strings.Contains(stderr, "Error:") {
				t.Errorf("stderr should carry the error message, got %q", stderr)
			}
		})
	}
}

func TestResolve_PassesGlobalFlags(t *testing.T) {
	provider := newStubProvider()
	_, _, err := runCLI(t, Dependencies{Config: provider},
		"--config", "run.cue", "--env-file", "run.env", "resolve", "--lora-r", "8")
	if err != nil {
		t.Fatalf("resolve error = %v", err)
	}

	if len(provider.loads) != 1 {
		t.Fatalf("provider loaded %d times, want 1", len(provider.loads))
	}
	opts := provider.loads[0]
	if opts.ConfigFilePath != "run.cue" || opts.EnvFile != "run.env" || opts.AllowIncomplete {
		t.Errorf("unexpected load options: %+v", opts)
	}
	if opts.Flags == nil || !opts.Flags.Changed("lora-r") {
		t.Error("load options should carry the changed config flags")
	}
}

// TestResolve_EndToEnd runs the real provider: flags over env over file.
func TestResolve_EndToEnd(t *testing.T) {
	cfgDir := t.TempDir()
	workDir := t.TempDir()
	config.SetConfigDirOverride(cfgDir)
	t.Cleanup(config.Reset)
	t.Cleanup(testutil.MustChdir(t, workDir))
	for _, key := range config.Keys() {
		t.Cleanup(testutil.MustUnsetenv(t, config.EnvName(key)))
	}

	trainDir := filepath.Join(workDir, "train")
	testutil.MustWriteFile(t, filepath.Join(trainDir, "part-0.jsonl"), "{}\n")
	testutil.MustWriteFile(t, filepath.Join(cfgDir, "config.cue"), `
model: model_name_or_path: "from-file"
data: dataset_name: "file:xx"
`)
	t.Cleanup(testutil.MustSetenv(t, "FINETUNE_DATA_DATASET_NAME", "squad:ko"))

	stdout, _, err := runCLI(t, Dependencies{Fs: afero.NewOsFs()},
		"resolve", "--format", "json", "--train-dir", "train", "--model-name-or-path", "from-flag")
	if err != nil {
		t.Fatalf("resolve error = %v", err)
	}

	var got resolvedView
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	if got.Model.ModelNameOrPath != "from-flag" {
		t.Errorf("model = %q, want flag value", got.Model.ModelNameOrPath)
	}
	if got.Dataset.Name != "squad" || got.Dataset.Language != "ko" {
		t.Errorf("dataset = %+v, want env value", got.Dataset)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	wantFile := filepath.Join(wd, "train", "part-0.jsonl")
	if diff := cmp.Diff([]string{wantFile}, got.TrainPath); diff != "" {
		t.Errorf("train_path mismatch (-want +got):\n%s", diff)
	}
}
