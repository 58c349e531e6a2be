package command

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

var (
	programNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)
	moduleNameRe  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
)

// SafeBuilder builds tool invocations after validating the executable name.
// Arguments are passed through untouched as a discrete vector; nothing is
// ever joined into a shell string.
type SafeBuilder struct {
	validators map[string]func(string) error
	executor   Executor
}

// NewSafeBuilder creates a new SafeBuilder instance with a RealExecutor
func NewSafeBuilder() *SafeBuilder {
	return NewSafeBuilderWithExecutor(&RealExecutor{})
}

// NewSafeBuilderWithExecutor creates a new SafeBuilder with a custom Executor
func NewSafeBuilderWithExecutor(exec Executor) *SafeBuilder {
	return &SafeBuilder{
		validators: makeDefaultValidators(),
		executor:   exec,
	}
}

// makeDefaultValidators returns the default set of validators
func makeDefaultValidators() map[string]func(string) error {
	return map[string]func(string) error{
		"toolName":    validateToolName,
		"programName": validateProgramName,
		"moduleName":  validateModuleName,
	}
}

// validateToolName accepts a bare executable name or a path to one.
func validateToolName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("tool name cannot be empty")
	}

	// Prevent command injection via shell metacharacters
	if strings.ContainsAny(name, ";|&$`<>\n") {
		return fmt.Errorf("tool name contains invalid characters: %q", name)
	}

	return nil
}

// validateProgramName checks the value given to the freezer's --name flag
func validateProgramName(name string) error {
	if name == "" {
		return fmt.Errorf("program name cannot be empty")
	}
	if !programNameRe.MatchString(name) {
		return fmt.Errorf("invalid program name: %s", name)
	}
	return nil
}

// validateModuleName checks a dotted Python import path
func validateModuleName(name string) error {
	if name == "" {
		return fmt.Errorf("module name cannot be empty")
	}
	if !moduleNameRe.MatchString(name) {
		return fmt.Errorf("invalid module name: %s", name)
	}
	return nil
}

// Command represents a validated tool invocation
type Command struct {
	ctx      context.Context
	name     string
	args     []string
	dir      string
	env      []string
	executor Executor
}

// Build creates a new command with validation. The context is only carried
// for CommandContext callers; Exec starts the process without one.
func (sb *SafeBuilder) Build(ctx context.Context, name string, args ...string) (*Command, error) {
	if err := validateToolName(name); err != nil {
		return nil, err
	}

	argv := make([]string, len(args))
	copy(argv, args)

	return &Command{
		ctx:      ctx,
		name:     name,
		args:     argv,
		executor: sb.executor,
	}, nil
}

// Validate validates specific arguments
func (sb *SafeBuilder) Validate(argType string, value string) error {
	validator, exists := sb.validators[argType]
	if !exists {
		return fmt.Errorf("no validator for argument type: %s", argType)
	}

	return validator(value)
}

// LookPath resolves the tool through the builder's executor.
func (sb *SafeBuilder) LookPath(name string) (string, error) {
	if err := validateToolName(name); err != nil {
		return "", err
	}
	return sb.executor.LookPath(name)
}

// WithDir sets the child's working directory
func (c *Command) WithDir(dir string) *Command {
	c.dir = dir
	return c
}

// WithEnv sets the child's full environment (KEY=value entries)
func (c *Command) WithEnv(env []string) *Command {
	c.env = env
	return c
}

// Name returns the executable name
func (c *Command) Name() string {
	return c.name
}

// Args returns a copy of the argument vector
func (c *Command) Args() []string {
	out := make([]string, len(c.args))
	copy(out, c.args)
	return out
}

// Exec creates and returns an exec.Cmd. The process is not bound to the
// builder's context: once started it runs to completion.
func (c *Command) Exec() *exec.Cmd {
	cmd := c.executor.Command(c.name, c.args...) //nolint:gosec // SafeBuilder provides validation
	cmd.Dir = c.dir
	if c.env != nil {
		cmd.Env = c.env
	}
	return cmd
}

// ExecContext creates an exec.Cmd that is killed when the build context ends.
func (c *Command) ExecContext() *exec.Cmd {
	cmd := c.executor.CommandContext(c.ctx, c.name, c.args...) //nolint:gosec // SafeBuilder provides validation
	cmd.Dir = c.dir
	if c.env != nil {
		cmd.Env = c.env
	}
	return cmd
}
