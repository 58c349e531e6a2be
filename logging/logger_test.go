package logging

import (
	"bytes"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/grovetools/pybuild/config"
	"github.com/sirupsen/logrus"
)

func useDefaults(t *testing.T) {
	t.Helper()
	UseConfig(config.Default())
	t.Cleanup(func() { UseConfig(nil) })
}

func TestNewLogger(t *testing.T) {
	useDefaults(t)

	logger := NewLogger("test-component")
	if logger == nil {
		t.Fatal("Expected logger to be created")
	}
	if logger.Data["component"] != "test-component" {
		t.Errorf("Expected component to be 'test-component', got %v", logger.Data["component"])
	}

	if again := NewLogger("test-component"); again != logger {
		t.Error("Expected NewLogger to return the cached entry")
	}
}

func TestLoggerOutput(t *testing.T) {
	var buf bytes.Buffer

	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&TextFormatter{Config: FormatConfig{}})

	logger.WithField("component", "test").Info("Test message")

	output := buf.String()
	for _, want := range []string{"[INFO]", "[test]", "Test message"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, got: %s", want, output)
		}
	}
}

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		name    string
		config  FormatConfig
		entry   *logrus.Entry
		want    []string
		notWant []string
	}{
		{
			name:   "default format",
			config: FormatConfig{},
			entry: &logrus.Entry{
				Level:   logrus.InfoLevel,
				Message: "launching",
				Data: logrus.Fields{
					"component": "launcher",
					"tool":      "pyinstaller",
				},
			},
			want: []string{"[INFO]", "[launcher]", "launching", "tool=pyinstaller"},
		},
		{
			name: "simple format",
			config: FormatConfig{
				DisableTimestamp: true,
				DisableComponent: true,
			},
			entry: &logrus.Entry{
				Level:   logrus.WarnLevel,
				Message: "warning message",
				Data:    logrus.Fields{"component": "launcher"},
			},
			want:    []string{"[WARN]", "warning message"},
			notWant: []string{"[launcher]"},
		},
		{
			name:   "caller information with function name",
			config: FormatConfig{},
			entry: func() *logrus.Entry {
				logger := logrus.New()
				logger.SetReportCaller(true)
				return &logrus.Entry{
					Logger:  logger,
					Level:   logrus.InfoLevel,
					Message: "with caller",
					Data:    logrus.Fields{"component": "launcher"},
					Caller: &runtime.Frame{
						File:     "/path/to/launcher.go",
						Line:     42,
						Function: "github.com/grovetools/pybuild/launcher.Launch",
					},
				}
			}(),
			want: []string{"[launcher.go:42 launcher.Launch]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := &TextFormatter{Config: tt.config}
			output, err := formatter.Format(tt.entry)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			outputStr := string(output)
			for _, want := range tt.want {
				if !strings.Contains(outputStr, want) {
					t.Errorf("Expected output to contain '%s', got: %s", want, outputStr)
				}
			}
			for _, notWant := range tt.notWant {
				if strings.Contains(outputStr, notWant) {
					t.Errorf("Expected output NOT to contain '%s', got: %s", notWant, outputStr)
				}
			}
		})
	}
}

func TestTextFormatterFieldOrder(t *testing.T) {
	formatter := &TextFormatter{Config: FormatConfig{DisableTimestamp: true}}
	entry := &logrus.Entry{
		Level:   logrus.InfoLevel,
		Message: "m",
		Data:    logrus.Fields{"b": 2, "a": 1, "c": 3},
	}

	out, err := formatter.Format(entry)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "a=1 b=2 c=3") {
		t.Errorf("Expected sorted fields, got: %s", out)
	}
}

func TestEnvironmentVariables(t *testing.T) {
	useDefaults(t)
	t.Setenv("PYBUILD_LOG_LEVEL", "debug")
	t.Setenv("PYBUILD_LOG_CALLER", "true")

	logger := NewLogger("env-test")

	if logger.Logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("Expected debug level from env, got %v", logger.Logger.GetLevel())
	}
	if !logger.Logger.ReportCaller {
		t.Error("Expected ReportCaller to be enabled from env")
	}
}

func TestLoggingSectionFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Extensions = map[string]interface{}{
		"logging": map[string]interface{}{
			"level":  "warn",
			"format": map[string]interface{}{"preset": "json"},
		},
	}
	UseConfig(cfg)
	t.Cleanup(func() { UseConfig(nil) })
	t.Setenv("PYBUILD_LOG_LEVEL", "")

	logger := NewLogger("config-test")
	if logger.Logger.GetLevel() != logrus.WarnLevel {
		t.Errorf("Expected warn level from config, got %v", logger.Logger.GetLevel())
	}
	if _, ok := logger.Logger.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("Expected JSON formatter, got %T", logger.Logger.Formatter)
	}
}

func TestFilePath(t *testing.T) {
	t.Setenv("PYBUILD_HOME", "/tmp/pybuild-home")
	now := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	if got := FilePath(Config{}, "pybuild", now); got != "" {
		t.Errorf("Expected no file path when disabled, got %q", got)
	}

	got := FilePath(Config{File: FileSinkConfig{Enabled: true}}, "pybuild", now)
	want := filepath.Join("/tmp/pybuild-home", "state", "logs", "pybuild-2024-03-09.log")
	if got != want {
		t.Errorf("FilePath() = %q, want %q", got, want)
	}

	got = FilePath(Config{File: FileSinkConfig{Enabled: true, Path: "/var/log/pybuild.log"}}, "pybuild", now)
	if got != "/var/log/pybuild.log" {
		t.Errorf("Expected explicit path, got %q", got)
	}
}

func TestFileSinkWritesWhenEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "build.log")
	cfg := config.Default()
	cfg.Extensions = map[string]interface{}{
		"logging": map[string]interface{}{
			"file":   map[string]interface{}{"enabled": true, "path": path},
			"format": map[string]interface{}{"structured_to_stderr": "never"},
		},
	}
	UseConfig(cfg)
	t.Cleanup(func() { UseConfig(nil) })

	NewLogger("file-test").Info("written to file")

	data, err := readFile(path)
	if err != nil {
		t.Fatalf("Expected log file to exist: %v", err)
	}
	if !strings.Contains(data, "written to file") {
		t.Errorf("Expected message in log file, got: %s", data)
	}
}

func TestShouldLogToStderr(t *testing.T) {
	if !shouldLogToStderr(Config{Format: FormatConfig{StructuredToStderr: "always"}}, logrus.InfoLevel) {
		t.Error("always should log to stderr")
	}
	if shouldLogToStderr(Config{Format: FormatConfig{StructuredToStderr: "never"}}, logrus.DebugLevel) {
		t.Error("never should not log to stderr")
	}
	if !shouldLogToStderr(Config{}, logrus.DebugLevel) {
		t.Error("auto should log to stderr at debug level")
	}
}
