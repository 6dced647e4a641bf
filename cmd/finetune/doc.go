// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for finetune.
//
// The root command loads the fine-tuning configuration from defaults, an
// optional config file, an optional dotenv file, FINETUNE_* environment
// variables and command-line flags, then resolves the dataset reference and
// the train path. Subcommands inspect each step on its own: dataset parses a
// single reference or lists a train directory, config shows where the
// configuration comes from.
package cmd
