// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides the CUE parsing steps shared by configuration
// files checked against an embedded schema:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify it with a schema definition
//  3. Validate and decode into a Go value
//
// # Usage
//
//	//go:embed config_schema.cue
//	var configSchema string
//
//	result, err := cueutil.ParseAndDecodeString[map[string]any](
//	    configSchema,
//	    data,
//	    "#Config",
//	    cueutil.WithFilename(path),
//	    cueutil.WithConcrete(false),
//	)
//
// Errors carry the file name and a JSON-path style location such as
// "finetune.cue: model.lora_r: conflicting values".
package cueutil
