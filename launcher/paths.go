// Package launcher builds the freezer invocation for a working directory and
// runs it as a child process, exposing its output as a stream of events.
package launcher

import (
	"path/filepath"

	"github.com/grovetools/pybuild/errors"
)

// Locations of the build inputs, relative to the working directory.
const (
	IconFile  = "icons/icon.ico"
	HooksDir  = "hooks"
	EntryFile = "main.py"
)

// Paths are the build inputs resolved against an absolute working directory.
// Nothing here touches the filesystem.
type Paths struct {
	WorkingDir string
	Icon       string
	HooksDir   string
	Entry      string
}

// ResolvePaths makes workingDir absolute and joins the build inputs onto it.
func ResolvePaths(workingDir string) (Paths, error) {
	abs, err := filepath.Abs(workingDir)
	if err != nil {
		return Paths{}, errors.InvalidInput("working directory", err).WithDetail("path", workingDir)
	}

	return Paths{
		WorkingDir: abs,
		Icon:       filepath.Join(abs, filepath.FromSlash(IconFile)),
		HooksDir:   filepath.Join(abs, HooksDir),
		Entry:      filepath.Join(abs, EntryFile),
	}, nil
}
