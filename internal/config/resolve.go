// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"log/slog"
	"slices"

	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/internal/dataset"
	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/internal/issue"
	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/pkg/types"

	"github.com/spf13/afero"
)

// ErrNilConfig is returned by New when cfg is nil.
var ErrNilConfig = errors.New("config is nil")

// Resolved is a Config whose dataset reference and train path have been
// normalized. It is immutable: accessors return copies.
type Resolved struct {
	cfg        Config
	dataset    dataset.Resolution
	trainPaths dataset.TrainPaths
}

// New resolves the dataset reference and the train path of cfg, each exactly
// once, and returns the read-only view. fsys is consulted to check and list
// the train path; pass afero.NewOsFs() outside of tests.
func New(cfg *Config, fsys afero.Fs) (*Resolved, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	res, err := dataset.Resolve(cfg.Data.DatasetName)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("resolve dataset").
			WithResource(cfg.Data.DatasetName.String()).
			WithSuggestion("Use name:language, name:language:split or org/name/split").
			WithSuggestion("Leave the dataset name empty to read local JSON files").
			Wrap(err).
			BuildError()
	}

	trainPaths, err := dataset.ResolveTrainPaths(fsys, cfg.Data.TrainDir)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("resolve train path").
			WithResource(cfg.Data.TrainDir.String()).
			WithSuggestion("Check that the train directory is readable").
			Wrap(err).
			BuildError()
	}

	slog.Debug("resolved dataset",
		"name", res.Ref.Name,
		"language", res.Ref.Language,
		"split", res.Ref.Split,
		"mode", res.Mode.String(),
	)
	if !trainPaths.IsAbsent() {
		slog.Debug("resolved train path", "dir", trainPaths.Dir, "files", len(trainPaths.Files))
	}

	r := &Resolved{cfg: *cfg, dataset: res, trainPaths: trainPaths}
	r.cfg.Data.EncodeInPath = slices.Clone(cfg.Data.EncodeInPath)
	return r, nil
}

// Config returns a copy of the configuration the view was built from.
func (r *Resolved) Config() Config {
	cfg := r.cfg
	cfg.Data.EncodeInPath = slices.Clone(r.cfg.Data.EncodeInPath)
	return cfg
}

// DatasetRef returns the resolved dataset identity.
func (r *Resolved) DatasetRef() dataset.Ref { return r.dataset.Ref }

// DatasetName returns the resolved dataset name.
func (r *Resolved) DatasetName() string { return r.dataset.Ref.Name }

// DatasetLanguage returns the resolved dataset language variant.
func (r *Resolved) DatasetLanguage() string { return r.dataset.Ref.Language }

// DatasetSplit returns the resolved dataset split.
func (r *Resolved) DatasetSplit() string { return r.dataset.Ref.Split }

// DatasetMode reports which parsing branch produced the dataset ref.
func (r *Resolved) DatasetMode() dataset.Mode { return r.dataset.Mode }

// TrainDir returns the canonical train directory: absolute when the
// configured path is an existing directory, the configured value otherwise.
func (r *Resolved) TrainDir() types.FilesystemPath { return r.trainPaths.Dir }

// TrainPath returns the train files, or nil when no train path is configured.
func (r *Resolved) TrainPath() []types.FilesystemPath {
	return slices.Clone(r.trainPaths.Files)
}
