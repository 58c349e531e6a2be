// Package paths provides XDG-compliant path resolution for pybuild.
//
// Resolution order:
// 1. PYBUILD_HOME (portable root) → $PYBUILD_HOME/{config,state}
// 2. XDG env vars → $XDG_*_HOME/pybuild
// 3. Platform defaults → ~/.config/pybuild, ~/.local/state/pybuild
package paths

import (
	"os"
	"path/filepath"
)

const appName = "pybuild"

func getConfigHome() string {
	if home := os.Getenv("PYBUILD_HOME"); home != "" {
		return filepath.Join(home, "config")
	}
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config")
	}
	return ""
}

func getStateHome() string {
	if home := os.Getenv("PYBUILD_HOME"); home != "" {
		return filepath.Join(home, "state")
	}
	if xdgStateHome := os.Getenv("XDG_STATE_HOME"); xdgStateHome != "" {
		return xdgStateHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".local", "state")
	}
	return ""
}

// ConfigDir returns the directory holding the global pybuild.yml.
func ConfigDir() string {
	base := getConfigHome()
	if base == "" {
		return ""
	}
	if os.Getenv("PYBUILD_HOME") != "" {
		return base
	}
	return filepath.Join(base, appName)
}

// StateDir returns the pybuild state directory.
// Used as the default location for log files when file logging is enabled.
func StateDir() string {
	base := getStateHome()
	if base == "" {
		return ""
	}
	if os.Getenv("PYBUILD_HOME") != "" {
		return base
	}
	return filepath.Join(base, appName)
}

// LogDir returns the default directory for pybuild log files.
func LogDir() string {
	state := StateDir()
	if state == "" {
		return ""
	}
	return filepath.Join(state, "logs")
}

// ExpandHome expands a leading tilde to the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || (len(path) > 1 && path[0] == '~' && (path[1] == '/' || path[1] == filepath.Separator)) {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
