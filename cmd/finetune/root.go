// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/internal/config"
	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/internal/issue"
	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/pkg/types"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the finetune command tree around app. Build one tree
// per App: the persistent flags are stored on it.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Resolve fine-tuning configuration",
		Long: TitleStyle.Render(config.AppName) + SubtitleStyle.Render(" - Resolve fine-tuning configuration") + `

finetune assembles the model and data arguments of a QLoRA fine-tuning run
from built-in defaults, a config file, a dotenv file, FINETUNE_* environment
variables and flags, in increasing order of precedence. It then normalizes
the dataset reference and expands the train directory into its files.

` + SubtitleStyle.Render("Dataset references:") + `
  squad                  squad, default language, train split
  squad:en               squad, language en, train split
  squad:en:validation    squad, language en, validation split
  org/squad/validation   org/squad, default language, validation split

` + SubtitleStyle.Render("Examples:") + `
  finetune resolve --model-name-or-path CohereForAI/aya-23-8B --dataset-name squad:en
  finetune dataset parse squad:ko:validation
  finetune dataset files ./data/train
  finetune config show`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(newLogger(app.stderr, app.flags.verbose))
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&app.flags.configFile, "config", "", "config file (default is the first of <config dir>/config.cue, ./finetune.cue, ./finetune.toml)")
	pf.StringVar(&app.flags.envFile, "env-file", "", "dotenv file read before FINETUNE_* environment variables")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &ExitError{Code: types.ExitUsage, Err: err}
	})

	rootCmd.AddCommand(newResolveCommand(app))
	rootCmd.AddCommand(newDatasetCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))
	rootCmd.AddCommand(newCompletionCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the command tree for the process and runs it. It is called
// by main.main and exits the process on error.
func Execute() {
	rootCmd := NewRootCommand(NewApp(Dependencies{}))

	// fang overrides rootCmd.Version, so the version is passed as an option.
	err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
	if code := exitCode(err); !code.IsSuccess() {
		os.Exit(int(code))
	}
}

// exitCode returns ExitSuccess for a nil err, the code carried by an
// ExitError in err, or ExitFailure.
func exitCode(err error) types.ExitCode {
	if err == nil {
		return types.ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code.Validate() == nil {
		return exitErr.Code
	}
	return types.ExitFailure
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
