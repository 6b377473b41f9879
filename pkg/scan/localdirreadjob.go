package scan

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/qdirstat-go/qdirstat/pkg/duerrors"
	"github.com/qdirstat-go/qdirstat/pkg/filesystem"
	"github.com/qdirstat-go/qdirstat/pkg/logging"
	"github.com/qdirstat-go/qdirstat/pkg/tree"
)

// CacheOpener opens the cache file at path and, if its header names dir as
// the directory it anchors (the drop-in condition), returns a ready
// CacheDecoder. ok is false when the file exists but its header anchor does
// not match dir's path, meaning it is not a drop-in for this read.
// Implemented by pkg/cache; injected here to avoid pkg/scan depending on the
// codec package.
type CacheOpener func(path string, dir *tree.Node) (decoder CacheDecoder, ok bool, err error)

// LocalDirReadJob reads one directory's entries from the local filesystem in
// a single unit of work: opendir, then lstat each entry, applying
// mount-boundary, exclude, and filter policy as it goes. A subdirectory
// entry gets its own LocalDirReadJob enqueued at the tail of the queue.
type LocalDirReadJob struct {
	queue  *Queue
	tr     *tree.Tree
	dir    *tree.Node
	cfg    *Config
	opener CacheOpener
	logger *logging.Logger

	aborted bool
}

// NewLocalDirReadJob creates a job to read dir's entries. opener may be nil,
// in which case cache drop-in detection is disabled (a file matching
// cfg.CacheFileName is then treated as an ordinary file).
func NewLocalDirReadJob(queue *Queue, tr *tree.Tree, dir *tree.Node, cfg *Config, opener CacheOpener, logger *logging.Logger) *LocalDirReadJob {
	return &LocalDirReadJob{
		queue:  queue,
		tr:     tr,
		dir:    dir,
		cfg:    cfg,
		opener: opener,
		logger: logger.Sublogger("localdirreadjob"),
	}
}

// Dir returns the directory this job is reading.
func (j *LocalDirReadJob) Dir() *tree.Node { return j.dir }

// Abort marks the job dead and transitions its Dir to ReadStateAborted. Any
// entries already inserted remain in the tree with partial totals.
func (j *LocalDirReadJob) Abort() {
	j.aborted = true
	if j.dir.IsValid() {
		j.dir.SetReadState(tree.ReadStateAborted)
	}
}

// Run performs the entire unit of work: reading dir's entries to completion.
// Per the scheduling model, syscalls inside a unit are not interruptible;
// only the boundary between jobs is a suspension point.
func (j *LocalDirReadJob) Run() (Status, error) {
	if j.aborted || !j.dir.IsValid() {
		return StatusDone, nil
	}

	if j.dir.ReadState() == tree.ReadStateQueued {
		j.tr.StartingRead(j.dir)
	}

	path := j.dir.Path()
	entries, err := os.ReadDir(path)
	if err != nil {
		j.dir.SetReadState(tree.ReadStateError)
		j.tr.FinalizeLocal(j.dir)
		j.tr.ReadJobFinished(j.dir)
		return StatusDone, &duerrors.SysCallFailed{Call: "opendir", Path: path, Err: err}
	}

	for _, entry := range entries {
		if j.aborted {
			return StatusDone, nil
		}
		if replaced, err := j.handleEntry(path, entry); replaced {
			// A cache drop-in fired: this job, and every job queued
			// under it, has been superseded and killed. Stop reading
			// further entries of a directory that no longer exists
			// under this job's ownership.
			return StatusDone, err
		}
	}

	j.dir.SetReadState(tree.ReadStateFinished)
	j.tr.FinalizeLocal(j.dir)
	j.tr.ReadJobFinished(j.dir)
	return StatusDone, nil
}

// handleEntry processes a single directory entry. replaced is true if
// handling this entry triggered a cache drop-in, in which case the caller
// must stop processing further entries (this job's Dir may already be gone).
func (j *LocalDirReadJob) handleEntry(dirPath string, entry os.DirEntry) (replaced bool, err error) {
	name := entry.Name()
	fullPath := filepath.Join(dirPath, name)

	if !entry.IsDir() && j.cfg.CacheFileName != "" && name == j.cfg.CacheFileName {
		if dropped, err := j.tryCacheDropIn(fullPath); dropped {
			return true, err
		}
	}

	raw, err := filesystem.Lstat(fullPath)
	if err != nil {
		placeholder := tree.NewDir(name, &filesystem.RawStat{})
		placeholder.SetReadState(tree.ReadStateError)
		if ierr := j.tr.InsertChild(j.dir, placeholder); ierr != nil {
			j.logger.Warnf("inserting error placeholder for %s: %v", fullPath, ierr)
		}
		j.logger.Warn(&duerrors.SysCallFailed{Call: "lstat", Path: fullPath, Err: err})
		return false, nil
	}

	if raw.Mode.IsDir() {
		return false, j.handleSubdir(name, fullPath, raw)
	}

	child := tree.NewFile(name, raw)
	target := j.dir
	if j.ignored(fullPath) {
		child.SetIgnored(true)
		target = j.attic()
	}
	if err := j.tr.InsertChild(target, child); err != nil {
		j.logger.Warnf("inserting %s: %v", fullPath, err)
	}
	return false, nil
}

// handleSubdir applies mount-boundary and exclude policy to a subdirectory
// entry, inserts its Dir node, and — unless policy says otherwise — enqueues
// a new LocalDirReadJob for it.
func (j *LocalDirReadJob) handleSubdir(name, fullPath string, raw *filesystem.RawStat) error {
	child := tree.NewDir(name, raw)

	excludedByRule := j.excluded(fullPath)
	ignoredByFilter := !excludedByRule && j.ignored(fullPath)
	crossing := child.Device() != j.dir.Device()

	target := j.dir
	if ignoredByFilter {
		child.SetIgnored(true)
		target = j.attic()
	}

	if err := j.tr.InsertChild(target, child); err != nil {
		return err
	}

	switch {
	case excludedByRule:
		child.SetExcluded(true)
		child.SetReadState(tree.ReadStateOnRequestOnly)
	case crossing && !j.crossFilesystemAllowed(fullPath):
		child.SetMountPoint(true)
		child.SetReadState(tree.ReadStateOnRequestOnly)
	default:
		if crossing {
			child.SetMountPoint(true)
		}
		j.queue.Enqueue(NewLocalDirReadJob(j.queue, j.tr, child, j.cfg, j.opener, j.logger))
	}

	return nil
}

// crossFilesystemAllowed reports whether the scanner should descend into a
// mount point discovered at fullPath. A duplicate or bind mount (same
// device, re-mounted elsewhere) is always descended regardless of the
// cross-filesystem setting, since it contributes no new filesystem content.
func (j *LocalDirReadJob) crossFilesystemAllowed(fullPath string) bool {
	if j.cfg.CrossFilesystem {
		return true
	}
	if j.cfg.Mounts == nil {
		return false
	}
	if mp := j.cfg.Mounts.FindByPath(fullPath); mp != nil && mp.IsDuplicate() {
		return true
	}
	return false
}

func (j *LocalDirReadJob) excluded(fullPath string) bool {
	if j.cfg.ExcludeRules.Empty() {
		return false
	}
	_, matched := j.cfg.ExcludeRules.Match(fullPath)
	return matched
}

func (j *LocalDirReadJob) ignored(fullPath string) bool {
	if j.cfg.Filters.Empty() {
		return false
	}
	_, matched := j.cfg.Filters.Match(fullPath)
	return matched
}

// attic returns dir's Attic, creating it lazily.
func (j *LocalDirReadJob) attic() *tree.Node {
	if j.dir.Attic() == nil {
		j.dir.SetAttic(tree.NewAttic())
	}
	return j.dir.Attic()
}

// tryCacheDropIn opens the cache file at cachePath and, if its header
// anchors at j.dir's path, kills every job queued under j.dir, deletes the
// partial subtree built so far, and enqueues a CacheReadJob grafting the
// decoded subtree under j.dir's parent in its place.
func (j *LocalDirReadJob) tryCacheDropIn(cachePath string) (dropped bool, err error) {
	if j.opener == nil {
		return false, nil
	}

	decoder, ok, err := j.opener(cachePath, j.dir)
	if err != nil {
		j.logger.Warnf("opening cache file %s: %v", cachePath, err)
		return false, nil
	}
	if !ok {
		return false, nil
	}

	parent := j.dir.Parent()
	j.queue.KillSubtree(j.dir)
	if err := j.tr.DeleteSubtree(j.dir); err != nil {
		return true, errors.Wrapf(err, "replacing %s with cache drop-in", cachePath)
	}
	j.queue.Enqueue(NewCacheReadJob(parent, decoder, j.logger))
	return true, nil
}
