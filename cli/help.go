package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const (
	helpMaxWidth = 60
	helpMinWidth = 40
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	sectionStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("208"))
	nameStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	flagStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// helpWidth is the usable text width: the terminal's, clamped.
func helpWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	switch {
	case err != nil, width < helpMinWidth, width > helpMaxWidth:
		return helpMaxWidth - 2
	default:
		return width - 2
	}
}

// wrapText breaks each paragraph of text at word boundaries so no line is
// longer than width (single words longer than width are left intact).
func wrapText(text string, width int) string {
	if width <= 0 {
		width = helpMaxWidth
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		if len(para) <= width {
			lines = append(lines, para)
			continue
		}
		cur := ""
		for _, word := range strings.Fields(para) {
			switch {
			case cur == "":
				cur = word
			case len(cur)+1+len(word) <= width:
				cur += " " + word
			default:
				lines = append(lines, cur)
				cur = word
			}
		}
		if cur != "" {
			lines = append(lines, cur)
		}
	}
	return strings.Join(lines, "\n")
}

// SetStyledHelp installs the pybuild help layout on cmd.
func SetStyledHelp(cmd *cobra.Command) {
	cmd.SetHelpFunc(renderHelp)
}

// ApplyStyledHelpRecursive installs the help layout on cmd and every
// subcommand, and silences cobra's usage dump on errors. Call it after the
// command tree is complete.
func ApplyStyledHelpRecursive(cmd *cobra.Command) {
	cmd.SetHelpFunc(renderHelp)
	cmd.SetUsageFunc(func(*cobra.Command) error { return nil })
	for _, sub := range cmd.Commands() {
		ApplyStyledHelpRecursive(sub)
	}
}

// parseDescription splits a Long text at its "Examples:" heading.
func parseDescription(long string) (description string, examples string) {
	for _, marker := range []string{"\nExamples:\n", "\nExample:\n"} {
		if before, after, ok := strings.Cut(long, marker); ok {
			return strings.TrimSpace(before), strings.TrimSpace(after)
		}
	}
	return long, ""
}

func renderHelp(cmd *cobra.Command, _ []string) {
	w := cmd.OutOrStdout()
	width := helpWidth()

	fmt.Fprintln(w, " "+titleStyle.Render(strings.ToUpper(cmd.CommandPath())))
	if cmd.Short != "" {
		indent(w, wrapText(cmd.Short, width), lipgloss.NewStyle().Italic(true))
	}

	description, examples := parseDescription(cmd.Long)
	if description != "" && description != cmd.Short {
		fmt.Fprintln(w)
		indent(w, wrapText(description, width), lipgloss.NewStyle())
	}

	section(w, "USAGE")
	if cmd.Runnable() {
		fmt.Fprintf(w, " %s\n", cmd.UseLine())
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, " %s [command]\n", cmd.CommandPath())
		renderCommands(w, cmd)
	}
	renderFlags(w, cmd)

	if cmd.Example != "" {
		examples = cmd.Example
	}
	if examples != "" {
		section(w, "EXAMPLES")
		for _, line := range strings.Split(examples, "\n") {
			line = strings.TrimSpace(line)
			switch {
			case line == "":
				fmt.Fprintln(w)
			case strings.HasPrefix(line, "#"):
				fmt.Fprintln(w, " "+mutedStyle.Render(line))
			default:
				fmt.Fprintln(w, "   "+line)
			}
		}
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "\n Use \"%s [command] --help\" for more information.\n", cmd.CommandPath())
	}
}

func section(w io.Writer, title string) {
	fmt.Fprintln(w, "\n "+sectionStyle.Render(title))
}

func indent(w io.Writer, text string, style lipgloss.Style) {
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintln(w, " "+style.Render(line))
	}
}

func renderCommands(w io.Writer, cmd *cobra.Command) {
	var subs []*cobra.Command
	pad := 0
	for _, sub := range cmd.Commands() {
		if sub.IsAvailableCommand() {
			subs = append(subs, sub)
			pad = max(pad, len(sub.Name()))
		}
	}

	section(w, "COMMANDS")
	for _, sub := range subs {
		fmt.Fprintf(w, " %s%s  %s\n", nameStyle.Render(sub.Name()), strings.Repeat(" ", pad-len(sub.Name())), sub.Short)
	}
}

func renderFlags(w io.Writer, cmd *cobra.Command) {
	var flags []*pflag.Flag
	pad := 0
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Hidden || f.Name == "help" {
			return
		}
		flags = append(flags, f)
		pad = max(pad, len(flagLabel(f)))
	})
	if len(flags) == 0 {
		return
	}

	section(w, "FLAGS")
	for _, f := range flags {
		label := flagLabel(f)
		usage := f.Usage
		if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "[]" {
			usage += mutedStyle.Render(" (default: " + f.DefValue + ")")
		}
		fmt.Fprintf(w, " %s%s  %s\n", flagStyle.Render(label), strings.Repeat(" ", pad-len(label)), usage)
	}
}

// flagLabel renders "-v, --verbose" or "    --json".
func flagLabel(f *pflag.Flag) string {
	if f.Shorthand != "" {
		return "-" + f.Shorthand + ", --" + f.Name
	}
	return "    --" + f.Name
}
