// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"os"

	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/internal/config"
	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/pkg/types"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: every Cobra command handler receives an App reference and
	// delegates loading and resolution through it.
	App struct {
		Config config.Provider
		Fs     afero.Fs
		stdout io.Writer
		stderr io.Writer
		flags  globalFlags
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Fs     afero.Fs
		Stdout io.Writer
		Stderr io.Writer
	}

	// globalFlags holds the values of the root persistent flags.
	globalFlags struct {
		configFile string
		envFile    string
		verbose    bool
	}
)

// NewApp creates an App from deps, filling unset dependencies with the
// file-backed config provider, the OS filesystem and the process streams.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config: deps.Config,
		Fs:     deps.Fs,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Fs == nil {
		app.Fs = afero.NewOsFs()
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// loadOptions maps the global flags onto config load options. flags, when
// non-nil, must carry the flags declared by config.RegisterFlags.
func (a *App) loadOptions(flags *pflag.FlagSet, allowIncomplete bool) config.LoadOptions {
	return config.LoadOptions{
		ConfigFilePath:  types.FilesystemPath(a.flags.configFile),
		EnvFile:         types.FilesystemPath(a.flags.envFile),
		Flags:           flags,
		AllowIncomplete: allowIncomplete,
	}
}
