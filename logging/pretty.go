package logging

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Icons prefixed to pretty console lines.
const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "⚠"
	IconRunning = "▸"
)

// PrettyStyles contains lipgloss styles for different log types
type PrettyStyles struct {
	Success lipgloss.Style
	Info    lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Key     lipgloss.Style
	Value   lipgloss.Style
	Path    lipgloss.Style
}

// DefaultPrettyStyles returns the default styling for pretty logs
func DefaultPrettyStyles() PrettyStyles {
	return PrettyStyles{
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Key:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Value:   lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Path:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Italic(true),
	}
}

// PrettyLogger writes human-oriented status lines (check results and the
// like) with no structured counterpart.
type PrettyLogger struct {
	writer io.Writer
	styles PrettyStyles
}

// NewPrettyLogger creates a pretty logger writing to the global output.
func NewPrettyLogger() *PrettyLogger {
	return &PrettyLogger{
		writer: GetGlobalOutput(),
		styles: DefaultPrettyStyles(),
	}
}

// WithWriter sets a custom writer for pretty output
func (p *PrettyLogger) WithWriter(w io.Writer) *PrettyLogger {
	p.writer = w
	return p
}

func (p *PrettyLogger) line(style lipgloss.Style, icon, message string) {
	fmt.Fprintf(p.writer, "%s %s\n", style.Render(icon), style.Render(message))
}

// Success writes message after a check mark.
func (p *PrettyLogger) Success(message string) {
	p.line(p.styles.Success, IconSuccess, message)
}

// WarnPretty writes message after a warning sign.
func (p *PrettyLogger) WarnPretty(message string) {
	p.line(p.styles.Warning, IconWarning, message)
}

// ErrorPretty writes message, and err when non-nil, after a cross.
func (p *PrettyLogger) ErrorPretty(message string, err error) {
	if err != nil {
		message = fmt.Sprintf("%s: %v", message, err)
	}
	p.line(p.styles.Error, IconError, message)
}

// Field writes "key: value".
func (p *PrettyLogger) Field(key string, value interface{}) {
	fmt.Fprintf(p.writer, "%s: %s\n", p.styles.Key.Render(key), p.styles.Value.Render(fmt.Sprint(value)))
}

// Path writes "label: path".
func (p *PrettyLogger) Path(label string, path string) {
	fmt.Fprintf(p.writer, "%s: %s\n", p.styles.Key.Render(label), p.styles.Path.Render(path))
}
