// Package scan implements the cooperative, single-threaded read-job queue
// that walks a local filesystem (or replays a cache file) and populates a
// pkg/tree.Tree one directory, or one bounded cache chunk, per unit of work.
package scan

import "github.com/qdirstat-go/qdirstat/pkg/tree"

// Status is the outcome of one unit of work on a Job.
type Status uint8

const (
	// StatusContinue means the job has more work to do and should be
	// re-enqueued at the tail of the ready queue.
	StatusContinue Status = iota
	// StatusDone means the job has completed and should be dropped.
	StatusDone
	// StatusBlocked means the job cannot make progress until an external
	// event arrives (e.g. a subprocess completing) and should move to the
	// queue's blocked list until Unblock is called on it.
	StatusBlocked
)

// Job is a single unit-of-work-at-a-time read task. Run is called by the
// queue's tick and MUST do a bounded amount of work: the complete reading of
// one directory's entries, or one bounded chunk of a cache replay.
type Job interface {
	// Run performs one unit of work and reports what should happen next.
	Run() (Status, error)
	// Abort tells the job to stop and relinquish any held resources
	// without completing. Called by Queue.Abort and Queue.KillSubtree.
	Abort()
	// Dir returns the directory node this job is reading, for ordering,
	// subtree-kill, and read-state bookkeeping.
	Dir() *tree.Node
}
