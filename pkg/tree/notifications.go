package tree

// Observer receives change notifications from a Tree. Every method has a
// no-op default via the embedded BaseObserver, so a caller interested in only
// one or two events can embed BaseObserver and override just those.
//
// Observers MUST NOT mutate the tree from inside a notification callback
// except via Tree.Refresh; reentrant structural
// mutation during ChildAdded is forbidden and will corrupt the in-progress
// traversal that triggered the notification.
type Observer interface {
	StartingRead(dir *Node)
	ChildAdded(child *Node)
	DeletingChild(child *Node)
	ReadJobFinished(dir *Node)
	FinalizeLocal(dir *Node)
	Finished()
	Aborted()
	ClearingSubtree(dir *Node)
	SubtreeCleared(dir *Node)
}

// BaseObserver implements Observer with no-op methods, so concrete observers
// need only override the notifications they care about.
type BaseObserver struct{}

func (BaseObserver) StartingRead(*Node)     {}
func (BaseObserver) ChildAdded(*Node)       {}
func (BaseObserver) DeletingChild(*Node)    {}
func (BaseObserver) ReadJobFinished(*Node)  {}
func (BaseObserver) FinalizeLocal(*Node)    {}
func (BaseObserver) Finished()              {}
func (BaseObserver) Aborted()               {}
func (BaseObserver) ClearingSubtree(*Node)  {}
func (BaseObserver) SubtreeCleared(*Node)   {}

// Subscribe registers an observer to receive all future change
// notifications. It returns an unsubscribe function.
func (t *Tree) Subscribe(o Observer) (unsubscribe func()) {
	t.observers = append(t.observers, o)
	index := len(t.observers) - 1
	return func() {
		t.observers[index] = nil
	}
}

func (t *Tree) emitStartingRead(dir *Node) {
	for _, o := range t.observers {
		if o != nil {
			o.StartingRead(dir)
		}
	}
}

func (t *Tree) emitChildAdded(child *Node) {
	for _, o := range t.observers {
		if o != nil {
			o.ChildAdded(child)
		}
	}
}

func (t *Tree) emitDeletingChild(child *Node) {
	for _, o := range t.observers {
		if o != nil {
			o.DeletingChild(child)
		}
	}
}

func (t *Tree) emitReadJobFinished(dir *Node) {
	for _, o := range t.observers {
		if o != nil {
			o.ReadJobFinished(dir)
		}
	}
}

func (t *Tree) emitFinalizeLocal(dir *Node) {
	for _, o := range t.observers {
		if o != nil {
			o.FinalizeLocal(dir)
		}
	}
}

// EmitFinished notifies observers that the tree-level read has finished:
// the ready and blocked job queues are both empty. Called by the scanner,
// not the tree itself, since only the scanner knows queue state.
func (t *Tree) EmitFinished() {
	for _, o := range t.observers {
		if o != nil {
			o.Finished()
		}
	}
}

// EmitAborted notifies observers that the scanner's abort() completed.
func (t *Tree) EmitAborted() {
	for _, o := range t.observers {
		if o != nil {
			o.Aborted()
		}
	}
}

func (t *Tree) emitClearingSubtree(dir *Node) {
	for _, o := range t.observers {
		if o != nil {
			o.ClearingSubtree(dir)
		}
	}
}

func (t *Tree) emitSubtreeCleared(dir *Node) {
	for _, o := range t.observers {
		if o != nil {
			o.SubtreeCleared(dir)
		}
	}
}
