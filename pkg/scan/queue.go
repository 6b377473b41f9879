package scan

import (
	"github.com/qdirstat-go/qdirstat/pkg/logging"
	"github.com/qdirstat-go/qdirstat/pkg/tree"
)

// Queue is the cooperative, single-threaded read-job scheduler. It holds a
// ready list and a blocked list; a caller's timer tick calls Tick once,
// which runs exactly one unit of work on the job at the head of the ready
// list. There is no internal goroutine or timer: the surrounding event loop
// (or, in a test, a plain for loop) drives Tick.
type Queue struct {
	logger *logging.Logger
	tr     *tree.Tree

	ready   []Job
	blocked []Job
}

// NewQueue creates an empty Queue bound to tr, used only to emit the
// tree-level Finished and Aborted notifications (individual jobs talk to tr
// directly for per-Dir notifications).
func NewQueue(tr *tree.Tree, logger *logging.Logger) *Queue {
	return &Queue{
		logger: logger.Sublogger("scan"),
		tr:     tr,
	}
}

// Enqueue adds job to the tail of the ready list.
func (q *Queue) Enqueue(job Job) {
	q.ready = append(q.ready, job)
}

// Idle reports whether both the ready and blocked lists are empty, meaning
// the scan has nothing left to do.
func (q *Queue) Idle() bool {
	return len(q.ready) == 0 && len(q.blocked) == 0
}

// Tick pops the job at the head of the ready list and runs one unit of work
// on it. It reports whether a job was run at all (false means the ready list
// was empty, whether or not the blocked list still holds work). A
// StatusContinue job is re-enqueued at the tail; StatusBlocked moves it to
// the blocked list; StatusDone drops it. When the run leaves both lists
// empty, Tick emits the tree-level Finished notification.
func (q *Queue) Tick() (bool, error) {
	if len(q.ready) == 0 {
		return false, nil
	}

	job := q.ready[0]
	q.ready = q.ready[1:]

	status, err := job.Run()
	if err != nil {
		q.logger.Warnf("read job for %s: %v", job.Dir().DebugPath(), err)
	}

	switch status {
	case StatusContinue:
		q.ready = append(q.ready, job)
	case StatusBlocked:
		q.blocked = append(q.blocked, job)
	case StatusDone:
		// Dropped.
	}

	if q.Idle() {
		q.tr.EmitFinished()
	}

	return true, err
}

// Unblock moves job from the blocked list to the tail of the ready list. It
// reports false if job was not found in the blocked list (already
// unblocked, aborted, or never blocked).
func (q *Queue) Unblock(job Job) bool {
	for i, j := range q.blocked {
		if j == job {
			q.blocked = append(q.blocked[:i:i], q.blocked[i+1:]...)
			q.ready = append(q.ready, job)
			return true
		}
	}
	return false
}

// Abort empties both the ready and blocked lists, calls Abort on every job
// that was live, transitions each job's Dir to ReadStateAborted, and emits
// the tree-level Aborted notification exactly once. The next Tick after an
// Abort is a no-op since both lists are now empty.
func (q *Queue) Abort() {
	live := make([]Job, 0, len(q.ready)+len(q.blocked))
	live = append(live, q.ready...)
	live = append(live, q.blocked...)
	q.ready = nil
	q.blocked = nil

	for _, j := range live {
		j.Abort()
		if dir := j.Dir(); dir.IsValid() {
			dir.SetReadState(tree.ReadStateAborted)
		}
	}

	q.tr.EmitAborted()
}

// KillSubtree removes every queued or blocked job reading dir or any
// descendant of dir, calling Abort on each. Used when a cache file is
// discovered mid-scan and must replace the partial subtree already being
// built under dir's parent.
func (q *Queue) KillSubtree(dir *tree.Node) {
	q.ready = killUnder(q.ready, dir)
	q.blocked = killUnder(q.blocked, dir)
}

func killUnder(jobs []Job, ancestor *tree.Node) []Job {
	kept := jobs[:0:0]
	for _, j := range jobs {
		if isUnderOrEqual(j.Dir(), ancestor) {
			j.Abort()
			continue
		}
		kept = append(kept, j)
	}
	return kept
}

func isUnderOrEqual(n, ancestor *tree.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur == ancestor {
			return true
		}
	}
	return false
}
