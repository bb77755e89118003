package watch

import (
	"errors"
	"fmt"
	"os"
)

// ErrNotExist reports that the watch target does not exist. Errors returned
// for a missing target satisfy both errors.Is(err, ErrNotExist) and
// errors.Is(err, os.ErrNotExist).
var ErrNotExist = errors.New("fswatch: no such file or directory")

// ErrNotDirectory reports that the watch target exists but is not a
// directory.
var ErrNotDirectory = errors.New("fswatch: not a directory")

func notExistError(path string, cause error) error {
	return fmt.Errorf("fswatch: %s: %w: %w: %w", path, ErrNotExist, os.ErrNotExist, cause)
}

func notDirectoryError(path string) error {
	return fmt.Errorf("fswatch: %s: %w", path, ErrNotDirectory)
}
