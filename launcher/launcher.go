package launcher

import (
	"bufio"
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grovetools/pybuild/command"
	"github.com/grovetools/pybuild/errors"
	"github.com/grovetools/pybuild/logging"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const eventBuffer = 64

// Launcher starts the freezer. It holds no per-launch state; every Launch
// is an independent child process.
type Launcher struct {
	builder *command.SafeBuilder
	env     map[string]string
	logger  *logrus.Entry
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithBuilder replaces the command builder (and so the Executor).
func WithBuilder(sb *command.SafeBuilder) Option {
	return func(l *Launcher) {
		l.builder = sb
	}
}

// WithEnv adds variables to the child's inherited environment.
func WithEnv(env map[string]string) Option {
	return func(l *Launcher) {
		l.env = env
	}
}

// WithLogger sets the structured logger.
func WithLogger(entry *logrus.Entry) Option {
	return func(l *Launcher) {
		l.logger = entry
	}
}

// New creates a Launcher.
func New(opts ...Option) *Launcher {
	l := &Launcher{}
	for _, opt := range opts {
		opt(l)
	}
	if l.builder == nil {
		l.builder = command.NewSafeBuilder()
	}
	if l.logger == nil {
		l.logger = logging.NewLogger("launcher")
	}
	return l
}

// Launch starts spec.Tool with spec.Args in spec.Paths.WorkingDir and
// returns without waiting. The only error returned here is an unusable
// tool name; a tool that cannot be started is reported as EventError on
// the handle. The child is not tied to ctx and runs to completion.
func (l *Launcher) Launch(ctx context.Context, spec Spec) (*Handle, error) {
	cmd, err := l.builder.Build(ctx, spec.Tool, spec.Args...)
	if err != nil {
		return nil, errors.InvalidInput("tool", err).WithDetail("tool", spec.Tool)
	}
	cmd.WithDir(spec.Paths.WorkingDir)
	if len(l.env) > 0 {
		cmd.WithEnv(mergeEnv(os.Environ(), l.env))
	}

	h := &Handle{
		ID:     uuid.New().String(),
		Tool:   spec.Tool,
		Args:   cmd.Args(),
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
	}

	log := l.logger.WithFields(logrus.Fields{
		"run_id": h.ID,
		"tool":   spec.Tool,
		"dir":    spec.Paths.WorkingDir,
	})
	log.WithField("args", strings.Join(h.Args, " ")).Debug("Launching tool")

	go h.run(cmd.Exec(), log)
	return h, nil
}

// Handle is a running (or finished) launch.
//
// Consume the stream with Events, or call Wait, or both: Wait drains any
// events nobody has read. Output events stop flowing if neither happens.
type Handle struct {
	ID   string
	Tool string
	Args []string

	events chan Event
	done   chan struct{}
	result Result
}

// Events returns the launch's event stream. Lines from each stream arrive
// in the order the tool wrote them; the two streams interleave freely. The
// last event is EventExit or EventError, then the channel is closed.
func (h *Handle) Events() <-chan Event {
	return h.events
}

// Done is closed once the launch has finished and its result is set.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the launch finishes and returns its result.
func (h *Handle) Wait() Result {
	for range h.events {
	}
	<-h.done
	return h.result
}

func (h *Handle) emit(ev Event) {
	ev.Time = time.Now()
	h.events <- ev
}

func (h *Handle) run(cmd *exec.Cmd, log *logrus.Entry) {
	defer close(h.done)
	defer close(h.events)

	start := time.Now()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		h.fail(errors.Wrap(err, errors.ErrCodeInternal, "failed to create stdout pipe"), start, log)
		return
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		h.fail(errors.Wrap(err, errors.ErrCodeInternal, "failed to create stderr pipe"), start, log)
		return
	}

	if err := cmd.Start(); err != nil {
		h.fail(errors.LaunchFailed(h.Tool, err), start, log)
		return
	}
	log.WithField("pid", cmd.Process.Pid).Debug("Tool started")

	// Both pipes must be drained before Wait closes them.
	var g errgroup.Group
	g.Go(func() error { return h.pump(stdout, EventStdout) })
	g.Go(func() error { return h.pump(stderr, EventStderr) })
	readErr := g.Wait()
	waitErr := cmd.Wait()

	res := Result{ExitCode: exitCode(cmd), Duration: time.Since(start)}
	var exitErr *exec.ExitError
	switch {
	case waitErr != nil && !stderrors.As(waitErr, &exitErr):
		res.Err = errors.Wrap(waitErr, errors.ErrCodeInternal, "failed waiting for tool")
	case readErr != nil:
		res.Err = errors.Wrap(readErr, errors.ErrCodeInternal, "failed reading tool output")
	}
	h.result = res

	log.WithFields(logrus.Fields{
		"exit_code": res.ExitCode,
		"duration":  res.Duration.Round(time.Millisecond).String(),
	}).Debug("Tool exited")

	h.emit(Event{Kind: EventExit, ExitCode: res.ExitCode, Err: res.Err})
}

func (h *Handle) fail(err error, start time.Time, log *logrus.Entry) {
	h.result = Result{ExitCode: -1, Err: err, Duration: time.Since(start)}
	log.WithError(err).Debug("Tool could not be started")
	h.emit(Event{Kind: EventError, ExitCode: -1, Err: err})
}

// pump turns r into line events. A final line without a newline is still
// delivered.
func (h *Handle) pump(r io.Reader, kind EventKind) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			h.emit(Event{Kind: kind, Text: strings.TrimRight(line, "\r\n")})
		}
		if err != nil {
			if err == io.EOF || stderrors.Is(err, os.ErrClosed) {
				return nil
			}
			return err
		}
	}
}

func exitCode(cmd *exec.Cmd) int {
	if cmd.ProcessState == nil {
		return -1
	}
	return cmd.ProcessState.ExitCode()
}
