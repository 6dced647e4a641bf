// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/internal/config"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `finetune config` command tree.
// Subcommands that read configuration use the App's config provider and skip
// validation, so an incomplete configuration can still be inspected.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage finetune configuration",
		Long: `Manage finetune configuration.

The configuration file is the first one found of:
  - <config dir>/config.cue, where the config dir is
      Linux:   $XDG_CONFIG_HOME/finetune (default ~/.config/finetune)
      macOS:   ~/Library/Application Support/finetune
      Windows: %APPDATA%\finetune
  - ./finetune.cue
  - ./finetune.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd, app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd, app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(cmd, app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.Config.Load(cmd.Context(), app.loadOptions(nil, true))
			if err != nil {
				return app.fail(cmd, err)
			}

			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(cmd *cobra.Command, app *App) error {
	opts := app.loadOptions(nil, true)
	cfg, err := app.Config.Load(cmd.Context(), opts)
	if err != nil {
		return app.fail(cmd, err)
	}

	w := app.stdout
	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	cfgPath, err := config.FindConfigFile(opts)
	switch {
	case err != nil:
		return app.fail(cmd, err)
	case cfgPath == "":
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	default:
		fmt.Fprintf(w, "%s: %s\n", CmdStyle.Render("Config file"), cfgPath)
	}

	group := ""
	for _, key := range config.Keys() {
		prefix, name, _ := strings.Cut(key, ".")
		if prefix != group {
			group = prefix
			fmt.Fprintln(w)
			fmt.Fprintf(w, "%s:\n", CmdStyle.Render(group))
		}

		value, _ := config.Value(cfg, key)
		fmt.Fprintf(w, "  %s: %s\n", name, SuccessStyle.Render(formatValue(value)))
	}

	return nil
}

// formatValue renders a configuration value the way it would be written in
// a config file.
func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case []string:
		quoted := make([]string, len(v))
		for i, s := range v {
			quoted[i] = fmt.Sprintf("%q", s)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func initConfig(cmd *cobra.Command, app *App) error {
	cfgPath, created, err := config.CreateDefaultConfig("")
	if err != nil {
		return app.fail(cmd, fmt.Errorf("failed to create config: %w", err))
	}

	if !created {
		fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), cfgPath)
		return nil
	}

	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), cfgPath)
	return nil
}

func showConfigPath(cmd *cobra.Command, app *App) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return app.fail(cmd, err)
	}

	candidates, err := config.SearchPaths(app.loadOptions(nil, true))
	if err != nil {
		return app.fail(cmd, err)
	}

	w := app.stdout
	fmt.Fprintf(w, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(w, "Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
	fmt.Fprintln(w, "Search order:")
	for i, path := range candidates {
		fmt.Fprintf(w, "  %d. %s\n", i+1, path)
	}

	return nil
}
