// Package must provides helpers for operations whose errors can't be handled
// meaningfully (usually cleanup in a defer) but shouldn't be silently
// swallowed either.
package must

import (
	"io"
	"os"

	"github.com/qdirstat-go/qdirstat/pkg/logging"
)

// Close closes c, logging a warning on failure.
func Close(c io.Closer, logger *logging.Logger) {
	if err := c.Close(); err != nil {
		logger.Warnf("unable to close: %s", err.Error())
	}
}

// OSRemove removes the named file, logging a warning on failure.
func OSRemove(name string, logger *logging.Logger) {
	if err := os.Remove(name); err != nil {
		logger.Warnf("unable to remove '%s': %s", name, err.Error())
	}
}
