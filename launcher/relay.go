package launcher

import (
	"context"
	"fmt"

	"github.com/grovetools/pybuild/logging"
)

// Notices printed by Relay.
const (
	ClosedNotice = "closed"
	ErrorNotice  = "error occurred"
)

// Relay prints a launch to the console writer carried by ctx: every output
// line as it arrives, then "closed" when the tool exits (whatever its exit
// status) or "error occurred: <err>" when it could not be started. It
// returns once the stream has ended.
func Relay(ctx context.Context, h *Handle) Result {
	out := logging.GetWriter(ctx)
	ulog := logging.NewUnifiedLogger("launcher")

	for ev := range h.Events() {
		switch ev.Kind {
		case EventStdout, EventStderr:
			fmt.Fprintln(out, ev.Text)
		case EventExit:
			ulog.Info(ClosedNotice).
				Field("run_id", h.ID).
				Field("exit_code", ev.ExitCode).
				Log(ctx)
		case EventError:
			ulog.Error(fmt.Sprintf("%s: %v", ErrorNotice, ev.Err)).
				Field("run_id", h.ID).
				Err(ev.Err).
				Log(ctx)
		}
	}

	return h.Wait()
}
