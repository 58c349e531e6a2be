package logging

import (
	"context"
	"fmt"
	"regexp"
	"runtime"

	"github.com/sirupsen/logrus"
)

// ansiRegex matches ANSI escape sequences for stripping
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// UnifiedLogger creates log entries that write to both pretty and structured outputs.
// The pretty line goes to the console writer carried by the context; the
// structured entry goes to the component's logrus logger.
type UnifiedLogger struct {
	component  string
	structured *logrus.Entry
}

// NewUnifiedLogger creates a new unified logger for a specific component.
func NewUnifiedLogger(component string) *UnifiedLogger {
	structured := NewLogger(component)
	// Caller fields are filled in by logStructured so they point at the call site.
	structured.Logger.SetReportCaller(false)

	return &UnifiedLogger{
		component:  component,
		structured: structured,
	}
}

func (u *UnifiedLogger) entry(msg string, level logrus.Level, icon string, fields logrus.Fields) *LogEntry {
	if fields == nil {
		fields = logrus.Fields{}
	}
	return &LogEntry{logger: u, msg: msg, level: level, icon: icon, fields: fields}
}

// Debug returns a LogEntry at DEBUG level.
func (u *UnifiedLogger) Debug(msg string) *LogEntry {
	return u.entry(msg, logrus.DebugLevel, "", nil)
}

// Info returns a LogEntry at INFO level.
func (u *UnifiedLogger) Info(msg string) *LogEntry {
	return u.entry(msg, logrus.InfoLevel, "", nil)
}

// Warn returns a LogEntry at WARN level with IconWarning.
func (u *UnifiedLogger) Warn(msg string) *LogEntry {
	return u.entry(msg, logrus.WarnLevel, IconWarning, nil)
}

// Error returns a LogEntry at ERROR level with IconError.
func (u *UnifiedLogger) Error(msg string) *LogEntry {
	return u.entry(msg, logrus.ErrorLevel, IconError, nil)
}

// Success returns an INFO LogEntry with IconSuccess and status=success.
func (u *UnifiedLogger) Success(msg string) *LogEntry {
	return u.entry(msg, logrus.InfoLevel, IconSuccess, logrus.Fields{"status": "success"})
}

// Progress returns an INFO LogEntry with IconRunning and status=progress.
func (u *UnifiedLogger) Progress(msg string) *LogEntry {
	return u.entry(msg, logrus.InfoLevel, IconRunning, logrus.Fields{"status": "progress"})
}

// LogEntry accumulates options before writing to both outputs.
// Use the chainable methods to configure the entry, then call Log(ctx).
type LogEntry struct {
	logger     *UnifiedLogger
	msg        string
	level      logrus.Level
	fields     logrus.Fields
	icon       string
	prettyMsg  string
	prettyOnly bool
	structOnly bool
	noIcon     bool
}

// Field adds a structured field (chainable).
// Fields appear in structured logs but not in pretty output.
func (e *LogEntry) Field(key string, value interface{}) *LogEntry {
	e.fields[key] = value
	return e
}

// Err attaches an error as the "error" field (chainable).
func (e *LogEntry) Err(err error) *LogEntry {
	if err != nil {
		e.fields["error"] = err.Error()
	}
	return e
}

// NoIcon suppresses the icon in pretty output (chainable).
func (e *LogEntry) NoIcon() *LogEntry {
	e.noIcon = true
	return e
}

// Pretty sets a custom styled string for console output (chainable).
// The plain msg is still used for the structured entry.
func (e *LogEntry) Pretty(styled string) *LogEntry {
	e.prettyMsg = styled
	return e
}

// PrettyOnly skips structured output (chainable).
func (e *LogEntry) PrettyOnly() *LogEntry {
	e.prettyOnly = true
	return e
}

// StructuredOnly skips pretty output (chainable).
func (e *LogEntry) StructuredOnly() *LogEntry {
	e.structOnly = true
	return e
}

// Log writes the entry. This is the terminal method of the chain.
func (e *LogEntry) Log(ctx context.Context) {
	prettyOutput := e.computePrettyOutput()

	if !e.structOnly {
		fmt.Fprintf(GetWriter(ctx), "%s\n", prettyOutput)
	}

	if !e.prettyOnly {
		e.logStructured(prettyOutput)
	}
}

func (e *LogEntry) computePrettyOutput() string {
	if e.prettyMsg != "" {
		return e.prettyMsg
	}

	output := e.msg
	if !e.noIcon && e.icon != "" {
		output = e.icon + " " + e.msg
	}

	styles := DefaultPrettyStyles()
	switch {
	case e.level == logrus.WarnLevel:
		return styles.Warning.Render(output)
	case e.level == logrus.ErrorLevel:
		return styles.Error.Render(output)
	case e.level == logrus.DebugLevel:
		return styles.Key.Render(output)
	case e.icon == IconSuccess:
		return styles.Success.Render(output)
	case e.icon == IconRunning:
		return styles.Info.Render(output)
	}
	return output
}

// logStructured writes the structured log entry to logrus.
func (e *LogEntry) logStructured(prettyOutput string) {
	// skip: 0=logStructured, 1=Log, 2=call site
	if pc, file, line, ok := runtime.Caller(2); ok {
		funcName := ""
		if fn := runtime.FuncForPC(pc); fn != nil {
			funcName = fn.Name()
		}
		e.fields["file"] = fmt.Sprintf("%s:%d", file, line)
		e.fields["func"] = funcName
	}

	e.fields["pretty_text"] = ansiRegex.ReplaceAllString(prettyOutput, "")

	e.logger.structured.WithFields(e.fields).Log(e.level, e.msg)
}

// Component returns the component name for this logger.
func (u *UnifiedLogger) Component() string {
	return u.component
}

// WithStructured returns the underlying logrus entry for direct structured logging.
func (u *UnifiedLogger) WithStructured() *logrus.Entry {
	return u.structured
}
