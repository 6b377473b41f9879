package appinfo

import "os"

// DebugEnabled reports whether the QDIRSTAT_DEBUG environment variable was
// set to "1", evaluated once at init time. No package in this module reads
// it; logging.Logger's Debug methods are gated on the logger's Level.
var DebugEnabled bool

func init() {
	DebugEnabled = os.Getenv("QDIRSTAT_DEBUG") == "1"
}
