package scan

import (
	"testing"

	"github.com/qdirstat-go/qdirstat/pkg/filesystem"
	"github.com/qdirstat-go/qdirstat/pkg/tree"
)

// fakeJob is a minimal Job used to test queue scheduling without touching
// the filesystem.
type fakeJob struct {
	dir     *tree.Node
	ticks   int
	runs    []Status
	aborted bool
}

func newFakeJob(dir *tree.Node, runs ...Status) *fakeJob {
	return &fakeJob{dir: dir, runs: runs}
}

func (f *fakeJob) Dir() *tree.Node { return f.dir }
func (f *fakeJob) Abort()          { f.aborted = true }
func (f *fakeJob) Run() (Status, error) {
	status := f.runs[f.ticks]
	if f.ticks < len(f.runs)-1 {
		f.ticks++
	}
	return status, nil
}

func dirNode(name string) *tree.Node {
	return tree.NewDir(name, &filesystem.RawStat{Mode: filesystem.ModeTypeDirectory})
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueueFIFOOrdering(t *testing.T) {
	tr := tree.NewTree(nil)
	q := NewQueue(tr, nil)

	var order []string
	a := &orderRecorder{name: "a", order: &order, status: StatusDone, dir: dirNode("a")}
	b := &orderRecorder{name: "b", order: &order, status: StatusDone, dir: dirNode("b")}
	q.Enqueue(a)
	q.Enqueue(b)

	for !q.Idle() {
		if _, err := q.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}

	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("expected FIFO order [a b], got %v", order)
	}
}

type orderRecorder struct {
	name   string
	order  *[]string
	status Status
	dir    *tree.Node
}

func (o *orderRecorder) Dir() *tree.Node { return o.dir }
func (o *orderRecorder) Abort()          {}
func (o *orderRecorder) Run() (Status, error) {
	*o.order = append(*o.order, o.name)
	return o.status, nil
}

func TestQueueContinueReenqueuesAtTail(t *testing.T) {
	tr := tree.NewTree(nil)
	q := NewQueue(tr, nil)

	job := newFakeJob(dirNode("x"), StatusContinue, StatusContinue, StatusDone)
	q.Enqueue(job)

	ticks := 0
	for !q.Idle() {
		if _, err := q.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
		ticks++
		if ticks > 10 {
			t.Fatal("queue never became idle")
		}
	}
	if ticks != 3 {
		t.Errorf("expected 3 ticks to drain a twice-continued job, got %d", ticks)
	}
}

func TestQueueAbortEmptiesAndMarksJobsAborted(t *testing.T) {
	tr := tree.NewTree(nil)
	q := NewQueue(tr, nil)

	d1, d2 := dirNode("a"), dirNode("b")
	j1 := newFakeJob(d1, StatusContinue)
	j2 := newFakeJob(d2, StatusContinue)
	q.Enqueue(j1)
	q.Enqueue(j2)
	// Move j1 (re-enqueued behind j2 by the tick) to blocked to exercise
	// both lists.
	q.Tick() // runs j1, re-enqueues it
	q.blocked = append(q.blocked, q.ready[1])
	q.ready = q.ready[:1]

	finishedCount := 0
	tr.Subscribe(&abortCounter{count: &finishedCount})

	q.Abort()

	if !q.Idle() {
		t.Error("queue should be empty after Abort")
	}
	if !j1.aborted || !j2.aborted {
		t.Error("Abort should call Abort on every live job")
	}
	if d1.ReadState() != tree.ReadStateAborted || d2.ReadState() != tree.ReadStateAborted {
		t.Error("Abort should set ReadStateAborted on every live job's Dir")
	}
	if finishedCount != 1 {
		t.Errorf("expected Aborted to be emitted exactly once, got %d", finishedCount)
	}
}

type abortCounter struct {
	tree.BaseObserver
	count *int
}

func (a *abortCounter) Aborted() { *a.count++ }

func TestQueueUnblock(t *testing.T) {
	tr := tree.NewTree(nil)
	q := NewQueue(tr, nil)

	job := newFakeJob(dirNode("x"), StatusBlocked, StatusDone)
	q.Enqueue(job)
	q.Tick() // moves to blocked

	if q.Idle() {
		t.Fatal("queue should not be idle while a job is blocked")
	}
	if ran, _ := q.Tick(); ran {
		t.Error("Tick should not run a blocked-only queue")
	}

	if !q.Unblock(job) {
		t.Fatal("Unblock should find the blocked job")
	}
	if ran, _ := q.Tick(); !ran {
		t.Error("Tick should run the job after Unblock")
	}
	if !q.Idle() {
		t.Error("queue should be idle after the unblocked job completes")
	}
}

func TestQueueKillSubtree(t *testing.T) {
	tr := tree.NewTree(nil)
	q := NewQueue(tr, nil)

	root := dirNode("/a")
	child := dirNode("b")
	must(t, tr.InsertChild(root, child))
	grandchild := dirNode("c")
	must(t, tr.InsertChild(child, grandchild))
	unrelated := dirNode("/z")

	jRoot := newFakeJob(root, StatusContinue)
	jChild := newFakeJob(child, StatusContinue)
	jGrand := newFakeJob(grandchild, StatusContinue)
	jOther := newFakeJob(unrelated, StatusContinue)
	q.Enqueue(jRoot)
	q.Enqueue(jChild)
	q.Enqueue(jGrand)
	q.Enqueue(jOther)

	q.KillSubtree(child)

	if len(q.ready) != 2 {
		t.Fatalf("expected 2 surviving jobs, got %d", len(q.ready))
	}
	if !jChild.aborted || !jGrand.aborted {
		t.Error("KillSubtree should abort the targeted dir and its descendants")
	}
	if jRoot.aborted || jOther.aborted {
		t.Error("KillSubtree should not touch jobs outside the target subtree")
	}
}
