package launcher

import "time"

// EventKind distinguishes the events a Handle produces.
type EventKind int

const (
	// EventStdout carries one line the tool wrote to standard output.
	EventStdout EventKind = iota
	// EventStderr carries one line the tool wrote to standard error.
	EventStderr
	// EventExit is terminal: the tool ran and exited with ExitCode.
	EventExit
	// EventError is terminal: the tool could not be started.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventStdout:
		return "stdout"
	case EventStderr:
		return "stderr"
	case EventExit:
		return "exit"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one item of a launch's output stream. Text is set for output
// events, ExitCode for EventExit, Err for EventError (and for EventExit
// when output could not be fully collected).
type Event struct {
	Kind     EventKind
	Text     string
	ExitCode int
	Err      error
	Time     time.Time
}

// Terminal reports whether e ends the stream.
func (e Event) Terminal() bool {
	return e.Kind == EventExit || e.Kind == EventError
}

// Result summarises a finished launch. A nonzero ExitCode is reported, not
// judged: the caller decides whether it is a failure.
type Result struct {
	ExitCode int
	Err      error
	Duration time.Duration
}

// Success reports whether the tool started and exited with status 0.
func (r Result) Success() bool {
	return r.Err == nil && r.ExitCode == 0
}
