package cmd

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/grovetools/pybuild/errors"
	"github.com/grovetools/pybuild/logging"
	"github.com/grovetools/pybuild/pkg/paths"
	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show pybuild's own log files",
		Long: `Prints the log files pybuild writes when logging.file.enabled is set in
pybuild.yml: the configured logging.file.path, or today's per-component
files under the state directory.

Examples:
  # Print today's logs
  pybuild logs

  # Follow them while a build runs elsewhere
  pybuild logs -f
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			follow, _ := cmd.Flags().GetBool("follow")

			files, err := logFiles(logging.LoadConfig(), time.Now())
			if err != nil {
				return err
			}

			ctx := consoleContext(cmd)
			if follow {
				var stop context.CancelFunc
				ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()
			}
			return tailFiles(ctx, files, follow)
		},
	}

	cmd.Flags().BoolP("follow", "f", false, "Follow log output")
	return cmd
}

// logFiles lists the files the file sink writes to for now's date.
func logFiles(logCfg logging.Config, now time.Time) ([]string, error) {
	if !logCfg.File.Enabled {
		return nil, errors.New(errors.ErrCodeConfigNotFound,
			"file logging is disabled; set logging.file.enabled: true in pybuild.yml")
	}
	if logCfg.File.Path != "" {
		return []string{paths.ExpandHome(logCfg.File.Path)}, nil
	}

	pattern := filepath.Join(paths.LogDir(), fmt.Sprintf("*-%s.log", now.Format("2006-01-02")))
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to list log files")
	}
	if len(files) == 0 {
		return nil, errors.New(errors.ErrCodeConfigNotFound, "no log files for today").
			WithDetail("pattern", pattern)
	}
	sort.Strings(files)
	return files, nil
}

// tailFiles copies each file to the console writer, prefixing lines with
// the file's component when there is more than one. With follow it keeps
// reading until ctx ends.
func tailFiles(ctx context.Context, files []string, follow bool) error {
	out := logging.GetWriter(ctx)
	lines := make(chan string)

	tails := make([]*tail.Tail, 0, len(files))
	for _, path := range files {
		t, err := tail.TailFile(path, tail.Config{
			Follow:    follow,
			ReOpen:    follow,
			MustExist: !follow,
			Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekStart},
			Logger:    stdlog.New(io.Discard, "", 0),
		})
		if err != nil {
			for _, open := range tails {
				_ = open.Stop()
			}
			return errors.Wrap(err, errors.ErrCodeConfigNotFound, "cannot read log file").
				WithDetail("path", path)
		}
		tails = append(tails, t)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range tails {
		prefix := ""
		if len(files) > 1 {
			prefix = "[" + componentOf(t.Filename) + "] "
		}

		g.Go(func() error {
			defer t.Cleanup()
			for {
				select {
				case line, ok := <-t.Lines:
					if !ok {
						return nil
					}
					if line.Err != nil {
						continue
					}
					select {
					case lines <- prefix + line.Text:
					case <-gctx.Done():
						return t.Stop()
					}
				case <-gctx.Done():
					return t.Stop()
				}
			}
		})
	}

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
		close(lines)
	}()

	for line := range lines {
		fmt.Fprintln(out, line)
	}
	return <-done
}

// componentOf turns "launcher-2026-10-19.log" into "launcher".
func componentOf(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), ".log")
	if len(base) > len("-2006-01-02") {
		return base[:len(base)-len("-2006-01-02")]
	}
	return base
}
