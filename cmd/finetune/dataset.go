// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/internal/dataset"
	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/pkg/types"

	"github.com/spf13/cobra"
)

// newDatasetCommand creates the `finetune dataset` command tree. Its
// subcommands run one resolution step without loading any configuration.
func newDatasetCommand(app *App) *cobra.Command {
	datasetCmd := &cobra.Command{
		Use:   "dataset",
		Short: "Inspect dataset references and train paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	datasetCmd.AddCommand(&cobra.Command{
		Use:   "parse <ref>",
		Short: "Resolve a dataset reference into name, language and split",
		Long: `Resolve a dataset reference into name, language and split.

References containing ':' are read as name:language[:split]. Otherwise a
reference of exactly three '/'-separated segments is read as
org/name/split, and anything else is the dataset name. An empty reference
selects local JSON files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return parseDataset(cmd, app, dataset.Spec(args[0]))
		},
	})

	datasetCmd.AddCommand(&cobra.Command{
		Use:   "files <path>",
		Short: "List the train files a train path expands to",
		Long: `List the train files a train path expands to, one per line.

A directory expands to its .json and .jsonl entries in name order. Any
other path is printed unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listTrainFiles(cmd, app, types.FilesystemPath(args[0]))
		},
	})

	return datasetCmd
}

func parseDataset(cmd *cobra.Command, app *App, spec dataset.Spec) error {
	res, err := dataset.Resolve(spec)
	if err != nil {
		return app.fail(cmd, err)
	}

	w := app.stdout
	fmt.Fprintf(w, "%s %s\n", CmdStyle.Render("name:    "), SuccessStyle.Render(res.Ref.Name))
	fmt.Fprintf(w, "%s %s\n", CmdStyle.Render("language:"), SuccessStyle.Render(res.Ref.Language))
	fmt.Fprintf(w, "%s %s\n", CmdStyle.Render("split:   "), SuccessStyle.Render(res.Ref.Split))
	fmt.Fprintf(w, "%s %s\n", CmdStyle.Render("mode:    "), VerboseStyle.Render(res.Mode.String()))
	return nil
}

func listTrainFiles(cmd *cobra.Command, app *App, path types.FilesystemPath) error {
	if strings.TrimSpace(path.String()) == "" {
		return &ExitError{Code: types.ExitUsage, Err: errors.New("train path must not be empty")}
	}

	paths, err := dataset.ResolveTrainPaths(app.Fs, path)
	if err != nil {
		return app.fail(cmd, err)
	}

	if len(paths.Files) == 0 {
		fmt.Fprintln(app.stderr, SubtitleStyle.Render("(no .json or .jsonl files in "+paths.Dir.String()+")"))
		return nil
	}
	for _, f := range paths.Files {
		fmt.Fprintln(app.stdout, f)
	}
	return nil
}
