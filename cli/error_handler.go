package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/grovetools/pybuild/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler creates a new error handler writing to stderr
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     os.Stderr,
	}
}

// Handle provides user-friendly error messages based on error type
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}
	out := h.Out
	if out == nil {
		out = os.Stderr
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(out, "✗ Configuration not found: %v\n", err)

	case errors.ErrCodeConfigInvalid, errors.ErrCodeConfigValidation:
		fmt.Fprintf(out, "✗ Invalid configuration: %v\n", err)
		if pe, ok := errors.As(err); ok {
			if problems, ok := pe.Details["problems"]; ok {
				fmt.Fprintf(out, "%v\n", problems)
			}
		}
		fmt.Fprintf(out, "Run 'pybuild config schema' to see the accepted keys.\n")

	case errors.ErrCodeCommandNotFound:
		if pe, ok := errors.As(err); ok {
			fmt.Fprintf(out, "✗ '%v' was not found.\n", pe.Details["command"])
		} else {
			fmt.Fprintf(out, "✗ Required command not found.\n")
		}
		fmt.Fprintf(out, "Make sure PyInstaller is installed (pip install pyinstaller) or set 'tool' in pybuild.yml.\n")

	case errors.ErrCodeCommandFailed:
		if pe, ok := errors.As(err); ok {
			fmt.Fprintf(out, "✗ %v exited with status %v (strict_exit is enabled)\n",
				pe.Details["command"], pe.Details["exitCode"])
		} else {
			fmt.Fprintf(out, "✗ %v\n", err)
		}

	default:
		fmt.Fprintf(out, "✗ Error: %v\n", err)
	}

	// If verbose mode, show full error details
	if h.Verbose {
		if pe, ok := errors.As(err); ok {
			fmt.Fprintf(out, "\nError details:\n%s\n", pe.ToJSON())
		}
	}
	return err
}
