package launcher

import (
	"fmt"
	"strings"
)

const (
	// ProgramName is the name given to the frozen executable.
	ProgramName = "felionpy"
	// HiddenImport is the package the freezer must bundle even though the
	// entry point only imports it dynamically.
	HiddenImport = "felionlib"
	// DebugMode keeps modules as plain files instead of an archive.
	DebugMode = "noarchive"
)

// argumentTemplate is the invocation as a single space-separated string.
// Placeholders, in order: icon, hooks dir, search path, entry file.
const argumentTemplate = "--noconfirm --onedir --console --icon %s --name " + ProgramName +
	" --debug " + DebugMode + " --noupx --additional-hooks-dir %s --hidden-import " + HiddenImport +
	" --paths %s %s"

// Flag is one freezer option. Value is empty for switches.
type Flag struct {
	Name  string
	Value string
}

// Flags returns the freezer options for p in invocation order. The entry
// file is positional and not included.
func Flags(p Paths) []Flag {
	return []Flag{
		{Name: "--noconfirm"},
		{Name: "--onedir"},
		{Name: "--console"},
		{Name: "--icon", Value: p.Icon},
		{Name: "--name", Value: ProgramName},
		{Name: "--debug", Value: DebugMode},
		{Name: "--noupx"},
		{Name: "--additional-hooks-dir", Value: p.HooksDir},
		{Name: "--hidden-import", Value: HiddenImport},
		{Name: "--paths", Value: p.WorkingDir},
	}
}

// BuildArgs returns the argument vector as discrete tokens. Each path stays
// a single token whatever characters it contains.
func BuildArgs(p Paths) []string {
	flags := Flags(p)
	args := make([]string, 0, 2*len(flags)+1)
	for _, f := range flags {
		args = append(args, f.Name)
		if f.Value != "" {
			args = append(args, f.Value)
		}
	}
	return append(args, p.Entry)
}

// BuildArgumentVector formats the invocation template and splits it on
// single spaces. A path containing a space is split into several tokens;
// BuildArgs does not have that problem and is what Launch uses.
func BuildArgumentVector(p Paths) []string {
	return strings.Split(fmt.Sprintf(argumentTemplate, p.Icon, p.HooksDir, p.WorkingDir, p.Entry), " ")
}

// TemplateMisTokenized reports whether splitting the template would produce
// a different vector than BuildArgs for p.
func TemplateMisTokenized(p Paths) bool {
	explicit := BuildArgs(p)
	split := BuildArgumentVector(p)
	if len(explicit) != len(split) {
		return true
	}
	for i := range explicit {
		if explicit[i] != split[i] {
			return true
		}
	}
	return false
}
