package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os/exec"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *PybuildError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *PybuildError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// InvalidInput creates an invalid input error for a named value
func InvalidInput(field string, err error) *PybuildError {
	return Wrap(err, ErrCodeInvalidInput, fmt.Sprintf("invalid %s", field)).
		WithDetail("field", field)
}

// CommandNotFound creates an error for a tool that is not on PATH
func CommandNotFound(tool string, err error) *PybuildError {
	return Wrap(err, ErrCodeCommandNotFound, fmt.Sprintf("executable not found: %s", tool)).
		WithDetail("command", tool)
}

// LaunchFailed classifies a failure to start a child process.
func LaunchFailed(tool string, err error) *PybuildError {
	switch {
	case stderrors.Is(err, exec.ErrNotFound), stderrors.Is(err, fs.ErrNotExist):
		return CommandNotFound(tool, err)
	case stderrors.Is(err, fs.ErrPermission):
		return Wrap(err, ErrCodePermissionDenied, fmt.Sprintf("permission denied starting %s", tool)).
			WithDetail("command", tool)
	default:
		return Wrap(err, ErrCodeLaunchFailed, fmt.Sprintf("failed to start %s", tool)).
			WithDetail("command", tool)
	}
}

// CommandFailed creates a command execution failure error
func CommandFailed(cmd string, exitCode int) *PybuildError {
	return New(ErrCodeCommandFailed, fmt.Sprintf("command failed: %s (exit status %d)", cmd, exitCode)).
		WithDetail("command", cmd).
		WithDetail("exitCode", exitCode)
}
