package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/grovetools/pybuild/logging"
	"github.com/grovetools/pybuild/pkg/watch"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Build, then rebuild whenever the project changes",
		Long: `Builds once, then watches the working directory and rebuilds after each
batch of changes. A running build is never interrupted; changes made while
it runs queue a single follow-up build. Paths listed under watch.ignore in
pybuild.yml (build/, dist/ and caches by default) never trigger a rebuild.

Press Ctrl-C to stop; an in-flight build finishes first.`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	rt := runtimeFrom(cmd)
	ctx, stop := signal.NotifyContext(consoleContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(rt.Dir, watch.Options{
		Debounce: time.Duration(rt.Config.Watch.DebounceMs) * time.Millisecond,
		Ignore:   rt.Config.Watch.Ignore,
		Logger:   logging.NewLogger("watch"),
	})
	if err != nil {
		return err
	}

	ulog := logging.NewUnifiedLogger("watch")
	ulog.Info(fmt.Sprintf("Watching %s", w.Root())).
		Field("debounce_ms", rt.Config.Watch.DebounceMs).
		Log(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx)
	})
	g.Go(func() error {
		rebuildLoop(gctx, w.Changes(), func(ctx context.Context) error {
			return build(ctx, rt)
		})
		return nil
	})
	return g.Wait()
}

// rebuildLoop builds once, then once per change until changes is closed.
// Builds run one at a time; a failed build is reported and watching
// continues.
func rebuildLoop(ctx context.Context, changes <-chan watch.Change, buildFn func(context.Context) error) {
	ulog := logging.NewUnifiedLogger("watch")

	run := func() {
		if err := buildFn(ctx); err != nil {
			ulog.Error("Build failed").Err(err).Log(ctx)
		}
	}

	run()
	for change := range changes {
		ulog.Progress(fmt.Sprintf("Change detected: %s", strings.Join(change.Paths, ", "))).
			Field("paths", change.Paths).
			Log(ctx)
		run()
	}
}
