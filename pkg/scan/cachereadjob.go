package scan

import (
	"github.com/qdirstat-go/qdirstat/pkg/logging"
	"github.com/qdirstat-go/qdirstat/pkg/must"
	"github.com/qdirstat-go/qdirstat/pkg/tree"
)

// CacheDecoder is the chunked interface a cache-format reader presents to
// the scanner. A single call replays at most one bounded chunk of lines
// (conventionally 1000) against the tree, so the queue's cooperative
// scheduling applies to cache replay the same way it applies to a live
// directory read. The decoder owns every read-state transition and
// notification for the subtree it grafts (StartingRead, Cached, Error,
// FinalizeLocal, ReadJobFinished); CacheReadJob itself is just glue between
// the queue and the decoder. Implemented by pkg/cache.Reader.
type CacheDecoder interface {
	// DecodeChunk replays up to one bounded chunk of cache lines. done is
	// true once the codec has reached EOF or a fatal format error; err is
	// non-nil only for the latter.
	DecodeChunk() (done bool, err error)
	// Toplevel returns the Dir node created for the cache file's first
	// D-line, or nil if decoding has not progressed that far yet. Used
	// only so Abort can flag the in-progress subtree.
	Toplevel() *tree.Node
}

// CacheReadJob drives a CacheDecoder one bounded chunk per unit of work,
// re-enqueueing itself until the decoder reports completion.
type CacheReadJob struct {
	parent  *tree.Node // locate-fallback parent; see pkg/cache.NewReader
	decoder CacheDecoder
	logger  *logging.Logger
	aborted bool
}

// NewCacheReadJob creates a job that replays decoder's contents. parent is
// the pre-existing Dir under which the decoded subtree's root directory
// will be grafted — typically the directory whose child discovered the
// cache file (the drop-in case) or any Dir a "read cache" operation was
// pointed at directly. It is used here only for queue bookkeeping (FIFO
// ordering, KillSubtree ancestry); all tree mutation is the decoder's.
func NewCacheReadJob(parent *tree.Node, decoder CacheDecoder, logger *logging.Logger) *CacheReadJob {
	return &CacheReadJob{parent: parent, decoder: decoder, logger: logger.Sublogger("cachereadjob")}
}

// Dir returns the job's locate-fallback parent, used by the queue to decide
// whether this job lies under a subtree being killed or aborted.
func (j *CacheReadJob) Dir() *tree.Node { return j.parent }

// Run replays one bounded chunk of the cache file.
func (j *CacheReadJob) Run() (Status, error) {
	if j.aborted {
		return StatusDone, nil
	}

	done, err := j.decoder.DecodeChunk()
	if err != nil {
		j.closeIfCloser()
		return StatusDone, err
	}
	if done {
		j.closeIfCloser()
		return StatusDone, nil
	}

	return StatusContinue, nil
}

// Abort marks the job dead and flags the decoder's toplevel Dir, if it has
// been created yet, as aborted; Dirs below it keep their own read states.
// Its next (and final) Run call becomes a no-op.
func (j *CacheReadJob) Abort() {
	j.aborted = true
	if toplevel := j.decoder.Toplevel(); toplevel != nil && toplevel.IsValid() {
		toplevel.SetReadState(tree.ReadStateAborted)
	}
	j.closeIfCloser()
}

func (j *CacheReadJob) closeIfCloser() {
	if c, ok := j.decoder.(interface{ Close() error }); ok {
		must.Close(c, j.logger)
	}
}
