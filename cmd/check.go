package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/grovetools/pybuild/command"
	"github.com/grovetools/pybuild/errors"
	"github.com/grovetools/pybuild/launcher"
	"github.com/grovetools/pybuild/logging"
	"github.com/spf13/cobra"
)

const versionProbeTimeout = 15 * time.Second

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the freezer and build inputs without building",
		Long: `Checks that the freezer can be found and reports its version, that the
icon, hooks directory and entry file exist under the working directory,
and warns when the working directory contains whitespace.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(consoleContext(cmd), runtimeFrom(cmd), command.NewSafeBuilder())
		},
	}
}

func runCheck(ctx context.Context, rt *Runtime, sb *command.SafeBuilder) error {
	pretty := logging.NewPrettyLogger().WithWriter(logging.GetWriter(ctx))
	var problems []string

	p, err := launcher.ResolvePaths(rt.Dir)
	if err != nil {
		return err
	}
	pretty.Path("Working directory", p.WorkingDir)

	toolPath, err := sb.LookPath(rt.Config.Tool)
	if err != nil {
		pretty.ErrorPretty(fmt.Sprintf("%s not found", rt.Config.Tool), err)
		problems = append(problems, "tool")
	} else {
		pretty.Success(fmt.Sprintf("%s found at %s", rt.Config.Tool, toolPath))
		if v, err := probeVersion(ctx, sb, toolPath); err != nil {
			pretty.WarnPretty(fmt.Sprintf("could not read %s version: %v", rt.Config.Tool, err))
		} else {
			pretty.Field("Version", v)
		}
	}

	for _, in := range []struct {
		label string
		path  string
		dir   bool
	}{
		{"Icon", p.Icon, false},
		{"Hooks directory", p.HooksDir, true},
		{"Entry file", p.Entry, false},
	} {
		info, err := os.Stat(in.path)
		switch {
		case err != nil:
			pretty.ErrorPretty(fmt.Sprintf("%s missing: %s", in.label, in.path), nil)
			problems = append(problems, in.label)
		case info.IsDir() != in.dir:
			pretty.ErrorPretty(fmt.Sprintf("%s has the wrong type: %s", in.label, in.path), nil)
			problems = append(problems, in.label)
		default:
			pretty.Success(fmt.Sprintf("%s: %s", in.label, in.path))
		}
	}

	if err := sb.Validate("programName", launcher.ProgramName); err != nil {
		pretty.ErrorPretty("program name", err)
		problems = append(problems, "program name")
	}
	if err := sb.Validate("moduleName", launcher.HiddenImport); err != nil {
		pretty.ErrorPretty("hidden import", err)
		problems = append(problems, "hidden import")
	}

	if launcher.TemplateMisTokenized(p) {
		pretty.WarnPretty("working directory contains whitespace; pybuild passes it intact but tools that split on spaces will not")
	}

	if len(problems) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "check failed").
			WithDetail("problems", strings.Join(problems, ", "))
	}
	return nil
}

// probeVersion runs "<tool> --version" and returns its first line.
func probeVersion(ctx context.Context, sb *command.SafeBuilder, tool string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()

	c, err := sb.Build(ctx, tool, "--version")
	if err != nil {
		return "", err
	}
	out, err := c.ExecContext().Output()
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return line, nil
}
