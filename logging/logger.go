package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/grovetools/pybuild/config"
	"github.com/grovetools/pybuild/pkg/paths"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex

	// activeConfig, when set, replaces loading pybuild.yml from the cwd.
	activeConfig *config.Config
)

// UseConfig makes subsequently created loggers read their settings from cfg
// and drops any cached loggers. The CLI calls this once the --config and
// --dir flags have been applied.
func UseConfig(cfg *config.Config) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	activeConfig = cfg
	loggers = make(map[string]*logrus.Entry)
}

// LoadConfig returns the logging section of the active configuration.
func LoadConfig() Config {
	loggersMu.Lock()
	cfg := activeConfig
	loggersMu.Unlock()

	return loadConfig(cfg)
}

func loadConfig(cfg *config.Config) Config {
	var logCfg Config
	if cfg == nil {
		loaded, err := config.LoadDefault()
		if err != nil {
			return logCfg
		}
		cfg = loaded
	}
	if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
		logrus.Warnf("Failed to parse 'logging' config: %v", err)
	}
	return logCfg
}

// FilePath returns where the file sink writes for component, or "" when
// file logging is disabled.
func FilePath(logCfg Config, component string, now time.Time) string {
	if !logCfg.File.Enabled {
		return ""
	}
	if logCfg.File.Path != "" {
		return paths.ExpandHome(logCfg.File.Path)
	}
	dir := paths.LogDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s.log", component, now.Format("2006-01-02")))
}

// NewLogger creates and returns a pre-configured logger for a specific component.
// It uses a singleton pattern per component to avoid re-initializing.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logCfg := loadConfig(activeConfig)
	logger := logrus.New()

	levelStr := "info"
	if env := os.Getenv("PYBUILD_LOG_LEVEL"); env != "" {
		levelStr = env
	} else if logCfg.Level != "" {
		levelStr = logCfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if os.Getenv("PYBUILD_LOG_CALLER") == "true" || logCfg.ReportCaller {
		logger.SetReportCaller(true)
	}

	switch logCfg.Format.Preset {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "simple":
		logger.SetFormatter(&TextFormatter{Config: FormatConfig{
			DisableTimestamp: true,
			DisableComponent: true,
		}})
	default:
		logger.SetFormatter(&TextFormatter{Config: logCfg.Format})
	}

	var writers []io.Writer

	// The launcher writes no files unless the user asks for a log file.
	if logFilePath := FilePath(logCfg, component, time.Now()); logFilePath != "" {
		dir := filepath.Dir(logFilePath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Warnf("Failed to create log directory %s: %v", dir, err)
		} else if file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
			writers = append(writers, file)
		} else {
			logger.Warnf("Failed to open log file %s: %v", logFilePath, err)
		}
	}

	if shouldLogToStderr(logCfg, logger.GetLevel()) {
		writers = append(writers, os.Stderr)
	}

	switch len(writers) {
	case 0:
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}

// shouldLogToStderr decides whether structured logs reach the terminal.
// In "auto" mode they only do when debugging or when stderr is not a TTY,
// so interactive runs show just the freezer's output and the notices.
func shouldLogToStderr(logCfg Config, level logrus.Level) bool {
	mode := logCfg.Format.StructuredToStderr
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		isDebug := os.Getenv("PYBUILD_DEBUG") == "1" || level >= logrus.DebugLevel
		isInteractive := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
		return isDebug || !isInteractive
	}
}
