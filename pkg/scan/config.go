package scan

import (
	"github.com/qdirstat-go/qdirstat/pkg/exclude"
	"github.com/qdirstat-go/qdirstat/pkg/mountpoints"
)

// Config holds the policy a LocalDirReadJob consults while walking a
// directory: exclude rules, filters, mount-boundary behavior, and the cache
// drop-in filename.
type Config struct {
	// Mounts is the parsed mount table, used to classify a device-id
	// change as a genuine filesystem crossing versus a bind/duplicate
	// mount. May be nil, in which case every device-id change is treated
	// as a crossing.
	Mounts *mountpoints.Table
	// CrossFilesystem reports whether the scanner descends into a mount
	// point it discovers, rather than leaving it OnRequestOnly.
	CrossFilesystem bool
	// ExcludeRules, if a path matches one, routes the entry to
	// ReadStateOnRequestOnly (excluded) rather than reading its contents.
	ExcludeRules *exclude.List
	// Filters, if a path matches one, routes the entry into its parent's
	// Attic instead of its normal place in the tree.
	Filters *exclude.List
	// CacheFileName is the special filename that, if found among a
	// directory's entries, triggers a cache drop-in for that directory
	// (see LocalDirReadJob.Run). Conventionally ".qdirstat.cache.gz".
	CacheFileName string
}
