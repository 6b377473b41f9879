package cache

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/qdirstat-go/qdirstat/pkg/duerrors"
	"github.com/qdirstat-go/qdirstat/pkg/exclude"
	"github.com/qdirstat-go/qdirstat/pkg/filesystem"
	"github.com/qdirstat-go/qdirstat/pkg/logging"
	"github.com/qdirstat-go/qdirstat/pkg/tree"
)

// chunkLines bounds how many cache lines a single DecodeChunk call replays,
// so a large cache file's read yields to the scan queue's cooperative
// scheduling the same way a live directory read does.
const chunkLines = 1000

// maxErrorCount is the number of recoverable per-line errors (bad field
// count, unresolvable parent) a Reader tolerates before giving up on the
// rest of the file as hopelessly inconsistent.
const maxErrorCount = 1000

// Reader decodes a cache file chunk by chunk, grafting the decoded subtree
// under parent (the Reader's own "anchor"). It satisfies
// pkg/scan.CacheDecoder.
type Reader struct {
	tr           *tree.Tree
	parent       *tree.Node
	excludeRules *exclude.List
	logger       *logging.Logger

	file *os.File
	gz   *gzip.Reader
	scan *bufio.Scanner

	headerChecked  bool
	withUIDGIDPerm bool

	toplevel        *tree.Node
	lastDir         *tree.Node
	lastExcludedDir *tree.Node
	lastExcludedPath string

	lineNo     int
	errorCount int
	done       bool
	fatalErr   error
}

// NewReader opens path and prepares to decode its contents onto tr, grafting
// the subtree under parent (which may be nil, meaning the tree is expected
// to be empty and the first D-line becomes a new top-level entry).
// excludeRules, if non-empty, is re-applied to every directory the cache
// describes, exactly as it would be for a live scan.
func NewReader(path string, tr *tree.Tree, parent *tree.Node, excludeRules *exclude.List, logger *logging.Logger) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening cache file %q", path)
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "opening cache file %q as gzip", path)
	}
	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 64*1024), 4<<20)

	return &Reader{
		tr:           tr,
		parent:       parent,
		excludeRules: excludeRules,
		logger:       logger.Sublogger("cachereader"),
		file:         f,
		gz:           gz,
		scan:         scanner,
	}, nil
}

// Toplevel returns the Dir created for the cache file's first D-line, or
// nil if decoding hasn't progressed that far yet.
func (r *Reader) Toplevel() *tree.Node { return r.toplevel }

// Close releases the underlying gzip and file handles.
func (r *Reader) Close() error {
	gzErr := r.gz.Close()
	fileErr := r.file.Close()
	if gzErr != nil {
		return gzErr
	}
	return fileErr
}

// DecodeChunk replays up to chunkLines cache lines.
func (r *Reader) DecodeChunk() (done bool, err error) {
	if r.done {
		return true, r.fatalErr
	}

	if !r.headerChecked {
		if err := r.checkHeader(); err != nil {
			r.fail(err)
			return true, err
		}
	}

	eof := false
	count := 0
	for count < chunkLines {
		line, ok := r.nextLine()
		if !ok {
			eof = true
			break
		}
		if line == "" {
			continue
		}
		if err := r.addItem(line); err != nil {
			r.fail(err)
			return true, err
		}
		count++
	}

	if err := r.scan.Err(); err != nil {
		wrapped := errors.Wrap(err, "reading cache file")
		r.fail(wrapped)
		return true, wrapped
	}

	if eof {
		r.finish()
		r.done = true
		return true, nil
	}
	return false, nil
}

// nextLine returns the next non-empty, non-comment, trimmed line, or
// ok=false at EOF.
func (r *Reader) nextLine() (line string, ok bool) {
	for r.scan.Scan() {
		r.lineNo++
		trimmed := strings.TrimSpace(r.scan.Text())
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		return trimmed, true
	}
	return "", false
}

// checkHeader reads and validates the bracketed version line.
func (r *Reader) checkHeader() error {
	line, ok := r.nextLine()
	if !ok {
		if err := r.scan.Err(); err != nil {
			return errors.Wrap(err, "reading cache file header")
		}
		return &duerrors.CacheFormatError{Reason: "empty cache file"}
	}
	withUIDGIDPerm, err := parseHeader(line)
	if err != nil {
		return err
	}
	r.withUIDGIDPerm = withUIDGIDPerm
	r.headerChecked = true
	return nil
}

// fail records a terminal error so subsequent DecodeChunk calls short
// circuit, and best-effort finalizes whatever subtree was built so far.
func (r *Reader) fail(err error) {
	r.done = true
	r.fatalErr = err
	r.finish()
}

// addItem parses one cache line and applies it to the tree. A recoverable
// problem (too few fields, an unresolvable parent) counts against
// errorCount and skips the line instead of returning an error; only
// exceeding maxErrorCount turns it into one.
func (r *Reader) addItem(line string) error {
	fields := strings.Fields(line)
	expected := 4
	if r.withUIDGIDPerm {
		expected = 7
	}
	if len(fields) < expected {
		r.setReadError(r.lastDir)
		return r.recoverable(fmt.Sprintf("expected at least %d fields, saw %d", expected, len(fields)))
	}

	n := 0
	typeStr := fields[n]
	n++
	rawPath := fields[n]
	n++
	sizeStr := fields[n]
	n++

	var uidStr, gidStr, permStr string
	if r.withUIDGIDPerm {
		uidStr, gidStr, permStr = fields[n], fields[n+1], fields[n+2]
		n += 3
	}
	mtimeStr := fields[n]
	n++

	var blocksStr, linksStr string
	for n+1 < len(fields) {
		keyword, val := fields[n], fields[n+1]
		n += 2
		switch strings.ToLower(keyword) {
		case "blocks:":
			blocksStr = val
		case "links:":
			linksStr = val
		}
	}

	if strings.HasPrefix(rawPath, "/") {
		r.lastDir = nil
	}

	size, err := ParseSize(sizeStr)
	if err != nil {
		return r.recoverable(fmt.Sprintf("bad size %q", sizeStr))
	}

	var uid, gid uint64
	var perm uint64
	if r.withUIDGIDPerm {
		uid, _ = strconv.ParseUint(uidStr, 10, 32)
		gid, _ = strconv.ParseUint(gidStr, 10, 32)
		perm, _ = strconv.ParseUint(permStr, 8, 32)
	}

	mtimeSec, err := strconv.ParseInt(strings.TrimPrefix(mtimeStr, "0x"), 16, 64)
	if err != nil {
		return r.recoverable(fmt.Sprintf("bad mtime %q", mtimeStr))
	}

	blocks := (size + 511) / 512
	if blocksStr != "" {
		if b, err := strconv.ParseInt(blocksStr, 10, 64); err == nil {
			blocks = b
		}
	}
	links := uint64(1)
	if linksStr != "" {
		if l, err := strconv.ParseUint(linksStr, 10, 32); err == nil {
			links = l
		}
	}

	isDir := isDirCode(typeStr)
	fullPath := decodePathField(rawPath)

	var parentPath, name string
	if isDir {
		parentPath, name = splitAbsolutePath(fullPath)
	} else {
		name = fullPath
		if r.lastDir != nil {
			parentPath = r.lastDir.Path()
		}
	}

	if r.lastExcludedDir != nil && strings.HasPrefix(parentPath, r.lastExcludedPath) {
		return nil
	}

	parent := r.resolveParent(parentPath)
	if parent == nil {
		return r.recoverable(fmt.Sprintf("could not locate parent %q for %q", parentPath, name))
	}

	raw := &filesystem.RawStat{
		Mode:              modeFromTypeCode(typeStr) | filesystem.Mode(perm),
		Size:              size,
		Blocks:            blocks,
		Nlink:             links,
		ModificationTime:  time.Unix(mtimeSec, 0),
		UID:               uint32(uid),
		GID:               uint32(gid),
	}

	if isDir {
		dirName := name
		if parent == r.tr.Root() {
			dirName = fullPath
		}
		dir := tree.NewDir(dirName, raw)
		r.tr.StartingRead(dir)
		dir.SetFromCache(true)
		if err := r.tr.InsertChild(parent, dir); err != nil {
			return err
		}
		r.lastDir = dir
		if r.toplevel == nil {
			r.toplevel = dir
		}
		r.applyExcludePolicy(dir)
	} else {
		file := tree.NewFile(name, raw)
		file.SetFromCache(true)
		if err := r.tr.InsertChild(parent, file); err != nil {
			return err
		}
	}

	return nil
}

// applyExcludePolicy re-applies the exclude rule set to a freshly created
// Dir, mirroring the policy a live scan would have applied, so a cache
// loaded back in looks the same as a fresh scan with the same rules.
func (r *Reader) applyExcludePolicy(dir *tree.Node) {
	if dir == r.toplevel || r.excludeRules.Empty() {
		return
	}
	if _, matched := r.excludeRules.Match(dir.Path()); matched {
		dir.SetExcluded(true)
		dir.SetReadState(tree.ReadStateOnRequestOnly)
		r.tr.FinalizeLocal(dir)
		r.tr.ReadJobFinished(dir)
		r.lastExcludedDir = dir
		r.lastExcludedPath = dir.Path()
		r.lastDir = nil
	}
}

// resolveParent finds the Dir that a just-decoded item with the given
// parent path belongs under, in the order: the most recently created
// directory (if its path matches), the tree's root (if still empty), this
// Reader's anchor subtree, then the whole tree.
func (r *Reader) resolveParent(parentPath string) *tree.Node {
	if r.lastDir != nil && r.lastDir.IsValid() && r.lastDir.Path() == parentPath {
		return r.lastDir
	}
	if len(r.tr.Root().Children()) == 0 {
		return r.tr.Root()
	}
	if r.parent != nil {
		if found := r.tr.LocateFrom(r.parent, parentPath); found != nil {
			return found
		}
	}
	return r.tr.Locate(parentPath, false)
}

// recoverable counts a non-fatal parse problem against errorCount, turning
// it into a fatal error once the budget is exhausted.
func (r *Reader) recoverable(reason string) error {
	r.errorCount++
	if r.errorCount > maxErrorCount {
		return &duerrors.CacheFormatError{Line: r.lineNo, Reason: "too many errors: " + reason}
	}
	return nil
}

// setReadError marks dir and its ancestors (up to and including this
// Reader's toplevel) as having encountered a read error.
func (r *Reader) setReadError(dir *tree.Node) {
	for cur := dir; cur != nil && cur.IsValid(); cur = cur.Parent() {
		cur.SetReadState(tree.ReadStateError)
		if cur == r.toplevel {
			return
		}
	}
}

// finish runs the two-phase completion sequence over the decoded subtree:
// every Dir not already in a terminal on-request-only or error state is
// marked Cached, then FinalizeLocal'd and notified, bottom available only
// after its own state is set (children are visited after their parent, but
// FinalizeLocal only touches a Dir's own DotEntry, so the order between
// parent and child doesn't matter here).
func (r *Reader) finish() {
	if r.toplevel == nil || !r.toplevel.IsValid() {
		return
	}
	r.finalizeRecursive(r.toplevel)
}

func (r *Reader) finalizeRecursive(dir *tree.Node) {
	if dir.ReadState() != tree.ReadStateOnRequestOnly {
		if dir.ReadState() != tree.ReadStateError {
			dir.SetReadState(tree.ReadStateCached)
		}
		r.tr.FinalizeLocal(dir)
		r.tr.ReadJobFinished(dir)
	}
	for _, c := range dir.Children() {
		if c.Kind() == tree.KindDir {
			r.finalizeRecursive(c)
		}
	}
}

// splitAbsolutePath splits full into its parent directory and base name,
// the way the cache format's D-line path field needs to be decomposed.
func splitAbsolutePath(full string) (dir, base string) {
	clean := strings.TrimRight(full, "/")
	if clean == "" {
		return "/", "/"
	}
	return filepath.Dir(clean), filepath.Base(clean)
}

