package cmd

import (
	"context"

	"github.com/grovetools/pybuild/cli"
	"github.com/grovetools/pybuild/config"
	"github.com/grovetools/pybuild/logging"
	"github.com/grovetools/pybuild/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Runtime is what every subcommand works from once flags and config are
// applied.
type Runtime struct {
	Options cli.CommandOptions
	Dir     string
	Config  *config.Config
}

type runtimeKey struct{}

// NewRootCmd creates the pybuild command tree. Running it without a
// subcommand freezes the backend.
func NewRootCmd() *cobra.Command {
	root := cli.NewStandardCommand(
		"pybuild",
		"Freeze the felionpy backend with PyInstaller",
	)
	root.Long = `Runs PyInstaller on main.py in the working directory with a fixed set of
arguments (one-folder console build named felionpy, icons/icon.ico, custom
hooks from hooks/, felionlib as a hidden import) and relays its output.

Examples:
  # Build from the current directory
  pybuild

  # Build another checkout with debug logs
  pybuild -C ~/src/felionpy -v

  # Rebuild whenever a source file changes
  pybuild watch
`
	root.Args = cobra.NoArgs
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.PersistentPreRunE = setupRuntime
	root.RunE = runBuild
	cli.SetVersionTemplate(root, version.GetInfo())

	root.AddCommand(
		newArgsCmd(),
		newCheckCmd(),
		newWatchCmd(),
		newLogsCmd(),
		newConfigCmd(),
		cli.NewVersionCommand("pybuild"),
	)

	cli.ApplyStyledHelpRecursive(root)
	return root
}

// setupRuntime resolves the working directory, loads configuration and
// points the loggers at it.
func setupRuntime(cmd *cobra.Command, args []string) error {
	opts := cli.GetOptions(cmd)

	dir, err := opts.WorkingDir()
	if err != nil {
		return err
	}

	cfg, err := cli.LoadConfig(opts, dir)
	if err != nil {
		return err
	}
	logging.UseConfig(cfg)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rt := &Runtime{Options: opts, Dir: dir, Config: cfg}
	cmd.SetContext(context.WithValue(ctx, runtimeKey{}, rt))

	cli.GetLogger(cmd).WithFields(logrus.Fields{
		"dir":     dir,
		"tool":    cfg.Tool,
		"sources": cfg.Sources,
	}).Debug("Configuration loaded")
	return nil
}

// runtimeFrom returns the Runtime set up for cmd.
func runtimeFrom(cmd *cobra.Command) *Runtime {
	if ctx := cmd.Context(); ctx != nil {
		if rt, ok := ctx.Value(runtimeKey{}).(*Runtime); ok {
			return rt
		}
	}
	return &Runtime{Config: config.Default(), Dir: "."}
}

// consoleContext carries cmd's stdout as the console writer.
func consoleContext(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return logging.WithWriter(ctx, cmd.OutOrStdout())
}
