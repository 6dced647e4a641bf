// SPDX-License-Identifier: MPL-2.0

// Package config declares the fine-tuning configuration and loads it with
// Viper from, lowest precedence first: built-in defaults, a CUE or TOML config
// file, an optional dotenv file, FINETUNE_* environment variables and
// command-line flags.
//
// The config file is looked up in the user config directory
// (~/.config/finetune/config.cue or the XDG equivalent on Linux,
// ~/Library/Application Support/finetune/config.cue on macOS,
// %APPDATA%\finetune\config.cue on Windows), then as finetune.cue or
// finetune.toml in the working directory. Both formats are validated against
// the embedded config_schema.cue.
//
// New turns a loaded Config into a Resolved view: the dataset reference and
// train path are normalized once and then only read.
package config
