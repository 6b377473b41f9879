package cache

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/qdirstat-go/qdirstat/pkg/duerrors"
)

// headerVersion is the cache format version this package writes. Versions
// above 1.99 carry the uid/gid/permission fields (format "2.0" in the
// original cache format's own versioning); a reader still accepts the older
// form without those three fields so cache files written by other tools
// remain loadable.
const headerVersion = "2.0"

// uidGidPermThreshold is the version above which a header signals the
// uid/gid/permission fields are present.
const uidGidPermThreshold = 1.99

// writeHeader writes the bracketed version line and the descriptive comment
// block a reader skips over.
func writeHeader(w *lineWriter) {
	w.printf("[qdirstat %s cache file]\n", headerVersion)
	w.printf("# Do not edit!\n#\n")
	w.printf("# Type  path                            size     uid   gid  perm.       mtime      <optional fields>\n#\n")
}

// parseHeader validates the first non-comment line of a cache file and
// reports whether uid/gid/permission fields should be expected in every
// subsequent item line.
func parseHeader(line string) (withUIDGIDPerm bool, err error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return false, &duerrors.CacheFormatError{Reason: fmt.Sprintf("malformed header %q", line)}
	}
	if (fields[0] != "[qdirstat" && fields[0] != "[kdirstat") || fields[2] != "cache" || fields[3] != "file]" {
		return false, &duerrors.CacheFormatError{Reason: fmt.Sprintf("unrecognized header %q", line)}
	}
	version, convErr := strconv.ParseFloat(fields[1], 64)
	if convErr != nil {
		return false, &duerrors.CacheFormatError{Reason: fmt.Sprintf("unparseable cache version %q", fields[1]), Err: convErr}
	}
	return version > uidGidPermThreshold, nil
}
