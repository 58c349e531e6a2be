package launcher

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/grovetools/pybuild/errors"
	"github.com/joho/godotenv"
)

// LoadEnvFile reads KEY=value pairs from a dotenv file. A relative path is
// taken relative to workingDir.
func LoadEnvFile(path, workingDir string) (map[string]string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(workingDir, path)
	}
	vars, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "env file not found").
				WithDetail("path", path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse env file").
			WithDetail("path", path)
	}
	return vars, nil
}

// mergeEnv overlays extra onto base (KEY=value entries). Keys in extra
// replace existing ones; new keys are appended in sorted order.
func mergeEnv(base []string, extra map[string]string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(extra))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if v, ok := extra[key]; ok {
			out = append(out, key+"="+v)
			seen[key] = true
			continue
		}
		out = append(out, kv)
	}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+extra[k])
	}
	return out
}
