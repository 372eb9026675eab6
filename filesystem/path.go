package filesystem

import (
	"path"
	"path/filepath"

	"github.com/kbukum/filekit/errors"
)

// CheckPath rejects paths that are absolute on either slash or host
// conventions. It runs before any backend I/O.
func CheckPath(p string) error {
	if path.IsAbs(p) || filepath.IsAbs(p) {
		return errors.InvalidPath(p)
	}
	return nil
}

// CheckPaths applies CheckPath to each path in order.
func CheckPaths(paths ...string) error {
	for _, p := range paths {
		if err := CheckPath(p); err != nil {
			return err
		}
	}
	return nil
}
