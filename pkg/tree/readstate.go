package tree

// ReadState tracks a Dir's progress through the scanner's read-job
// lifecycle: Queued -> Reading -> one of {Finished, Error, Aborted, Cached,
// OnRequestOnly}.
type ReadState uint8

const (
	// ReadStateQueued means a read job for this Dir has been created but
	// has not yet run its first unit of work.
	ReadStateQueued ReadState = iota
	// ReadStateReading means a read job for this Dir is currently running.
	ReadStateReading
	// ReadStateFinished means reading this Dir's own entries completed with
	// no error; its subdirectories carry read states of their own.
	ReadStateFinished
	// ReadStateError means a read error occurred somewhere in this Dir's
	// subtree; its totals are partial.
	ReadStateError
	// ReadStateAborted means the user requested termination while this
	// Dir's subtree was being read.
	ReadStateAborted
	// ReadStateCached means this Dir's subtree was populated from a cache
	// file rather than a live filesystem read.
	ReadStateCached
	// ReadStateOnRequestOnly means this Dir was deliberately not
	// recursed into (exclude rule, disabled cross-filesystem policy) and
	// its subtree remains empty until explicitly refreshed.
	ReadStateOnRequestOnly
)

// String returns a human-readable name for the read state.
func (s ReadState) String() string {
	switch s {
	case ReadStateQueued:
		return "queued"
	case ReadStateReading:
		return "reading"
	case ReadStateFinished:
		return "finished"
	case ReadStateError:
		return "error"
	case ReadStateAborted:
		return "aborted"
	case ReadStateCached:
		return "cached"
	case ReadStateOnRequestOnly:
		return "on-request-only"
	default:
		return "unknown"
	}
}

// IsBusy reports whether a Dir in this state still has outstanding read
// work (Queued or Reading).
func (s ReadState) IsBusy() bool {
	return s == ReadStateQueued || s == ReadStateReading
}

// IsDone reports whether a Dir in this state has no outstanding read work,
// whatever the outcome.
func (s ReadState) IsDone() bool {
	return !s.IsBusy()
}
