package cache

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/qdirstat-go/qdirstat/pkg/filesystem"
	"github.com/qdirstat-go/qdirstat/pkg/logging"
	"github.com/qdirstat-go/qdirstat/pkg/must"
	"github.com/qdirstat-go/qdirstat/pkg/tree"
)

// lineWriter accumulates formatted cache lines, remembering the first error
// so callers only need to check it once at the end.
type lineWriter struct {
	w   *bufio.Writer
	err error
}

func (l *lineWriter) printf(format string, args ...interface{}) {
	if l.err != nil {
		return
	}
	_, l.err = fmt.Fprintf(l.w, format, args...)
}

// WriteTree serializes roots (and everything beneath them) to path as a
// gzip-compressed cache file, written atomically via a temporary file in the
// same directory. Each root is written as its own top-level entry, matching
// a tree that may hold more than one scanned subtree.
//
// An Attic is never serialized: the format has no ignored/excluded-file
// type code of its own, and round-tripping ignored files back in would
// require the exact same filter configuration to have produced them in the
// first place. Losing Attic contents on a cache round trip is an accepted
// and documented simplification.
func WriteTree(path string, roots []*tree.Node, logger *logging.Logger) error {
	temporary, err := os.CreateTemp(filepath.Dir(path), filesystem.TemporaryNamePrefix)
	if err != nil {
		return errors.Wrap(err, "unable to create temporary cache file")
	}
	tempName := temporary.Name()

	gz := gzip.NewWriter(temporary)
	lw := &lineWriter{w: bufio.NewWriter(gz)}

	writeHeader(lw)
	for _, root := range roots {
		writeSubtree(lw, root)
	}

	if lw.err == nil {
		lw.err = lw.w.Flush()
	}
	if lw.err == nil {
		lw.err = gz.Close()
	} else {
		must.Close(gz, logger)
	}
	if lw.err == nil {
		lw.err = temporary.Close()
	} else {
		must.Close(temporary, logger)
	}
	if lw.err != nil {
		must.OSRemove(tempName, logger)
		return errors.Wrap(lw.err, "unable to write cache file")
	}

	if err := os.Chmod(tempName, 0644); err != nil {
		must.OSRemove(tempName, logger)
		return errors.Wrap(err, "unable to set cache file permissions")
	}
	if err := os.Rename(tempName, path); err != nil {
		must.OSRemove(tempName, logger)
		return errors.Wrap(err, "unable to rename cache file into place")
	}
	return nil
}

// writeSubtree writes item (unless it is a DotEntry, which carries no
// filesystem entry of its own) followed by its DotEntry's file children and
// then its Dir-kind children, depth first and pre-order — the order a
// reader's parent-resolution rules (most recently created directory first)
// depend on.
func writeSubtree(lw *lineWriter, item *tree.Node) {
	if item == nil {
		return
	}
	if item.Kind() != tree.KindDotEntry {
		writeItem(lw, item)
	}
	if de := item.DotEntry(); de != nil {
		writeSubtree(lw, de)
	}
	for _, child := range item.Children() {
		writeSubtree(lw, child)
	}
}

// writeItem writes a single cache line for item.
func writeItem(lw *lineWriter, item *tree.Node) {
	code := typeCode(item.Mode())

	if item.Kind() == tree.KindDir {
		lw.printf("%s\t%s", code, encodePathField(item.Path()))
	} else {
		lw.printf("%s\t%s", code, encodePathField(item.Name()))
	}

	lw.printf("\t%s", FormatSize(item.ByteSize()))
	lw.printf("\t%d\t%d\t0%03o", item.UID(), item.GID(), item.Mode().Permissions())
	lw.printf("\t0x%x", item.Mtime().Unix())

	if item.IsSparseFile() {
		lw.printf("\tblocks: %d", item.Blocks())
	}
	if item.Kind() == tree.KindFile && item.LinkCount() > 1 {
		lw.printf("\tlinks: %d", item.LinkCount())
	}
	lw.printf("\n")
}
