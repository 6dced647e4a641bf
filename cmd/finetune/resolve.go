// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/internal/config"
	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/pkg/types"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatTOML = "toml"
)

var outputFormats = []string{formatText, formatJSON, formatTOML}

type (
	// resolvedView is the serialized form of a config.Resolved.
	resolvedView struct {
		Dataset datasetView `json:"dataset" toml:"dataset"`
		// TrainDir is empty when no train path is configured.
		TrainDir string `json:"train_dir" toml:"train_dir"`
		// TrainPath is null in JSON when no train path is configured, and
		// omitted from TOML whenever it is empty.
		TrainPath []string              `json:"train_path" toml:"train_path,omitempty"`
		Model     config.ModelArguments `json:"model" toml:"model"`
		Data      config.DataArguments  `json:"data" toml:"data"`
	}

	datasetView struct {
		Name     string `json:"name" toml:"name"`
		Language string `json:"language" toml:"language"`
		Split    string `json:"split" toml:"split"`
		Mode     string `json:"mode" toml:"mode"`
	}
)

// newResolveCommand creates the `finetune resolve` command. Every
// configuration key is also a flag of this command.
func newResolveCommand(app *App) *cobra.Command {
	var format string

	resolveCmd := &cobra.Command{
		Use:   "resolve",
		Short: "Load the configuration and resolve dataset and train path",
		Long: `Load the configuration and resolve the dataset reference and the train path.

The dataset reference is normalized to name, language and split. A train
directory is expanded into its .json and .jsonl files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, app, format)
		},
	}

	resolveCmd.Flags().StringVar(&format, "format", formatText, "output format (text, json, toml)")
	config.RegisterFlags(resolveCmd.Flags())

	return resolveCmd
}

func runResolve(cmd *cobra.Command, app *App, format string) error {
	if !slices.Contains(outputFormats, format) {
		return &ExitError{
			Code: types.ExitUsage,
			Err:  fmt.Errorf("unsupported format %q (want text, json or toml)", format),
		}
	}

	cfg, err := app.Config.Load(cmd.Context(), app.loadOptions(cmd.Flags(), false))
	if err != nil {
		return app.fail(cmd, err)
	}

	resolved, err := config.New(cfg, app.Fs)
	if err != nil {
		return app.fail(cmd, err)
	}

	switch format {
	case formatJSON:
		enc := json.NewEncoder(app.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(newResolvedView(resolved))
	case formatTOML:
		return toml.NewEncoder(app.stdout).SetIndentTables(true).Encode(newResolvedView(resolved))
	default:
		renderResolved(app.stdout, resolved)
		return nil
	}
}

func newResolvedView(r *config.Resolved) resolvedView {
	cfg := r.Config()
	view := resolvedView{
		Dataset: datasetView{
			Name:     r.DatasetName(),
			Language: r.DatasetLanguage(),
			Split:    r.DatasetSplit(),
			Mode:     r.DatasetMode().String(),
		},
		TrainDir: r.TrainDir().String(),
		Model:    cfg.Model,
		Data:     cfg.Data,
	}
	if files := r.TrainPath(); files != nil {
		view.TrainPath = make([]string, len(files))
		for i, f := range files {
			view.TrainPath[i] = f.String()
		}
	}
	return view
}

func renderResolved(w io.Writer, r *config.Resolved) {
	cfg := r.Config()
	label := func(s string) string { return CmdStyle.Render(fmt.Sprintf("%-12s", s)) }

	fmt.Fprintln(w, TitleStyle.Render("Resolved Configuration"))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s %s\n", label("Model"), SuccessStyle.Render(string(cfg.Model.ModelNameOrPath)))
	fmt.Fprintf(w, "%s %s\n", label("Config"), SuccessStyle.Render(string(cfg.Model.EffectiveConfigName())))
	fmt.Fprintf(w, "%s %s\n", label("Tokenizer"), SuccessStyle.Render(string(cfg.Model.EffectiveTokenizerName())))
	fmt.Fprintf(w, "%s %s\n", label("Output"), SuccessStyle.Render(cfg.Model.NewModelName))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s %s %s\n", label("Dataset"),
		SuccessStyle.Render(r.DatasetRef().String()),
		VerboseStyle.Render("("+r.DatasetMode().String()+")"))

	files := r.TrainPath()
	if files == nil {
		fmt.Fprintf(w, "%s %s\n", label("Train path"), SubtitleStyle.Render("(none configured)"))
		return
	}

	fmt.Fprintf(w, "%s %s\n", label("Train dir"), SuccessStyle.Render(r.TrainDir().String()))
	fmt.Fprintf(w, "%s %d\n", label("Train files"), len(files))
	for _, f := range files {
		fmt.Fprintf(w, "  - %s\n", SuccessStyle.Render(f.String()))
	}
}
