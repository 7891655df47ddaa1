package libsync

// State is a step in the per-library update protocol.
//
//	Clean -> Stashed -> Pulled -> Reapplied
//	                           -> ReapplyConflict
//	Clean -> Pulled                              (nothing to stash)
//
// Skipped and Failed are terminal states reachable from Clean, or from any
// step that returns an error.
type State int

const (
	StateClean State = iota
	StateStashed
	StatePulled
	StateReapplied
	StateReapplyConflict
	StateSkipped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateStashed:
		return "stashed"
	case StatePulled:
		return "pulled"
	case StateReapplied:
		return "reapplied"
	case StateReapplyConflict:
		return "reapply-conflict"
	case StateSkipped:
		return "skipped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Status is the reported result of updating one library.
type Status int

const (
	// Updated means the pull succeeded and any local edits were reapplied.
	Updated Status = iota
	// Skipped means the directory is not a repository.
	Skipped
	// Conflict means the pull succeeded but local edits conflicted on reapply.
	Conflict
	// Failed means the stash, pull, or reapply step failed.
	Failed
)

func (s Status) String() string {
	switch s {
	case Updated:
		return "updated"
	case Skipped:
		return "skipped"
	case Conflict:
		return "conflict"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// statusFor maps a terminal state to its reported status.
func statusFor(s State) Status {
	switch s {
	case StateSkipped:
		return Skipped
	case StateReapplyConflict:
		return Conflict
	case StateFailed:
		return Failed
	default:
		return Updated
	}
}
