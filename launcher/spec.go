package launcher

// Spec is the launch configuration: the tool, the resolved inputs and the
// argument vector derived from them. It is built once and not modified.
type Spec struct {
	Tool  string
	Paths Paths
	Args  []string
}

// NewSpec resolves workingDir and derives the argument vector from it.
func NewSpec(tool, workingDir string) (Spec, error) {
	p, err := ResolvePaths(workingDir)
	if err != nil {
		return Spec{}, err
	}
	return Spec{
		Tool:  tool,
		Paths: p,
		Args:  BuildArgs(p),
	}, nil
}
