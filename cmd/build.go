package cmd

import (
	"context"
	"fmt"

	"github.com/grovetools/pybuild/errors"
	"github.com/grovetools/pybuild/launcher"
	"github.com/grovetools/pybuild/logging"
	"github.com/spf13/cobra"
)

func runBuild(cmd *cobra.Command, args []string) error {
	return build(consoleContext(cmd), runtimeFrom(cmd))
}

// build runs one launch and relays it. Only strict_exit turns a nonzero
// exit or a failed start into an error.
func build(ctx context.Context, rt *Runtime) error {
	spec, err := launcher.NewSpec(rt.Config.Tool, rt.Dir)
	if err != nil {
		return err
	}

	var opts []launcher.Option
	if rt.Config.EnvFile != "" {
		env, err := launcher.LoadEnvFile(rt.Config.EnvFile, rt.Dir)
		if err != nil {
			return err
		}
		opts = append(opts, launcher.WithEnv(env))
	}

	fmt.Fprintf(logging.GetWriter(ctx), "%q\n", spec.Args)

	h, err := launcher.New(opts...).Launch(ctx, spec)
	if err != nil {
		return err
	}
	res := launcher.Relay(ctx, h)

	if !rt.Config.StrictExit {
		return nil
	}
	if res.Err != nil {
		return res.Err
	}
	if res.ExitCode != 0 {
		return errors.CommandFailed(spec.Tool, res.ExitCode)
	}
	return nil
}
