package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// DataDirName marks a folio root and holds its data.
const DataDirName = ".folio"

// ErrRootNotFound is returned when no data directory exists above the start directory.
var ErrRootNotFound = errors.New("root not found")

// FindRoot walks upward from startDir looking for a .folio directory and
// returns the directory that contains it.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if isDir(filepath.Join(dir, DataDirName)) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", ErrRootNotFound
}

// ResolveDataDir returns the .folio directory of the nearest root, or
// startDir/.folio when there is none yet.
func ResolveDataDir(startDir string) (string, error) {
	root, err := FindRoot(startDir)
	if errors.Is(err, ErrRootNotFound) {
		abs, err := filepath.Abs(startDir)
		if err != nil {
			return "", err
		}
		return filepath.Join(abs, DataDirName), nil
	}
	if err != nil {
		return "", err
	}
	return filepath.Join(root, DataDirName), nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
