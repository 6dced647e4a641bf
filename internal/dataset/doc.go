// SPDX-License-Identifier: MPL-2.0

// Package dataset resolves the loosely formatted dataset reference and train
// directory given on the command line into their canonical forms.
//
// A dataset reference names a hub dataset together with an optional language
// variant and split, using either ':' ("org/squad:ko:validation") or '/'
// ("org/squad/validation") as separator. When no reference is given the
// fallback "json" dataset is used, meaning local JSON/JSONL files are read
// instead of a hub lookup.
//
// A train path is either an existing directory, which is expanded into the
// absolute paths of the *.json and *.jsonl files it contains, or any other
// path, which is passed through unchanged.
package dataset
