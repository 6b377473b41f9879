// Package logging provides a minimal, always-safe-to-call logger used
// throughout the disk-usage core. A nil *Logger silently drops output, so
// components can be constructed without a logger in tests without special
// casing.
package logging

import (
	"log"
	"os"
)

func init() {
	// Set the global logger to use standard output.
	log.SetOutput(os.Stdout)
}
