// SPDX-License-Identifier: MPL-2.0

package dataset

import (
	"errors"
	"io/fs"
	"strings"
	"syscall"

	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/pkg/fspath"
	"github.com/KatharinaTrinley/What-Language-Does-Aya-23-Think-In/pkg/types"

	"github.com/spf13/afero"
)

// TrainFileSuffixes lists the entry name suffixes picked up from a train directory.
var TrainFileSuffixes = []string{".json", ".jsonl"}

// TrainPaths is the resolved form of a train path.
type TrainPaths struct {
	// Dir is the canonical train location: the absolute directory when the
	// raw path named an existing directory, the raw path otherwise.
	Dir types.FilesystemPath
	// Files is nil when no train path was given.
	Files []types.FilesystemPath
}

// IsAbsent reports whether no train path was given.
func (p TrainPaths) IsAbsent() bool { return p.Files == nil }

// ResolveTrainPaths expands raw into the list of train files.
//
// If raw names an existing directory on fsys, its immediate entries ending in
// one of TrainFileSuffixes are returned in name order, each joined onto the
// absolute form of the directory. Any other path is returned verbatim as a
// single-element list without an existence check on the file itself. An empty
// raw path yields a TrainPaths with nil Files.
func ResolveTrainPaths(fsys afero.Fs, raw types.FilesystemPath) (TrainPaths, error) {
	if strings.TrimSpace(string(raw)) == "" {
		return TrainPaths{}, nil
	}

	info, err := fsys.Stat(string(raw))
	switch {
	case err == nil && info.IsDir():
		return listTrainDir(fsys, raw)
	case err == nil, isNotExist(err):
		return TrainPaths{Dir: raw, Files: []types.FilesystemPath{raw}}, nil
	default:
		return TrainPaths{}, &FilesystemError{Op: "stat", Path: raw, Err: err}
	}
}

func listTrainDir(fsys afero.Fs, dir types.FilesystemPath) (TrainPaths, error) {
	// afero.ReadDir returns entries sorted by name.
	entries, err := afero.ReadDir(fsys, string(dir))
	if err != nil {
		return TrainPaths{}, &FilesystemError{Op: "list", Path: dir, Err: err}
	}

	absDir, err := fspath.Abs(dir)
	if err != nil {
		return TrainPaths{}, &FilesystemError{Op: "resolve", Path: dir, Err: err}
	}

	files := make([]types.FilesystemPath, 0, len(entries))
	for _, entry := range entries {
		if IsTrainFile(entry.Name()) {
			files = append(files, fspath.JoinStr(absDir, entry.Name()))
		}
	}

	return TrainPaths{Dir: absDir, Files: files}, nil
}

// IsTrainFile reports whether name ends in one of TrainFileSuffixes.
func IsTrainFile(name string) bool {
	for _, suffix := range TrainFileSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// isNotExist treats a path through a regular file (ENOTDIR) like a missing one:
// neither names a directory.
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}
