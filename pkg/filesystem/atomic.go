package filesystem

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/qdirstat-go/qdirstat/pkg/logging"
	"github.com/qdirstat-go/qdirstat/pkg/must"
)

// TemporaryNamePrefix is the file name prefix used for intermediate files
// this package creates, so they're identifiable (and cleanable) if left
// behind by a crash.
const TemporaryNamePrefix = ".qdirstat-temporary-"

// WriteFileAtomic writes data to path by way of a temporary file in the same
// directory, swapped into place with a rename, so a reader never observes a
// partially written cache file.
func WriteFileAtomic(path string, data []byte, permissions os.FileMode, logger *logging.Logger) error {
	temporary, err := os.CreateTemp(filepath.Dir(path), TemporaryNamePrefix)
	if err != nil {
		return errors.Wrap(err, "unable to create temporary file")
	}

	if _, err := temporary.Write(data); err != nil {
		must.Close(temporary, logger)
		must.OSRemove(temporary.Name(), logger)
		return errors.Wrap(err, "unable to write temporary file")
	}
	if err := temporary.Close(); err != nil {
		must.OSRemove(temporary.Name(), logger)
		return errors.Wrap(err, "unable to close temporary file")
	}
	if err := os.Chmod(temporary.Name(), permissions); err != nil {
		must.OSRemove(temporary.Name(), logger)
		return errors.Wrap(err, "unable to set temporary file permissions")
	}
	if err := os.Rename(temporary.Name(), path); err != nil {
		must.OSRemove(temporary.Name(), logger)
		return errors.Wrap(err, "unable to rename temporary file into place")
	}
	return nil
}
