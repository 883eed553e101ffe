package loader

import (
	"github.com/user/vrclog/pkg/logformat"
	"github.com/user/vrclog/pkg/notify"
)

// State is the lifecycle of a load session
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is a message published by a running session. The session ID lets a
// consumer drop events from a session it has already abandoned.
type Event interface {
	Session() string
}

// Progress reports pipeline advancement. Percent never decreases within
// one session.
type Progress struct {
	SessionID string
	Percent   int
	Message   string
}

func (p Progress) Session() string { return p.SessionID }

// Completed carries the full parse result and is the last event of a
// successful session
type Completed struct {
	SessionID string
	Result    *Result
}

func (c Completed) Session() string { return c.SessionID }

// Failed is the last event of a session that could not produce a result.
// A cancelled session emits nothing instead.
type Failed struct {
	SessionID string
	Err       error
}

func (f Failed) Session() string { return f.SessionID }

// Result is everything one full parse of a log file produces
type Result struct {
	Path       string
	Lines      []logformat.LogLine
	Records    []notify.Record
	Groups     []*notify.Group
	Size       int64
	Failures   int
	Checkpoint Checkpoint
}
