package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// RequireShell skips the test on platforms where fake tools cannot be
// written as /bin/sh scripts.
func RequireShell(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake tools are shell scripts")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}
}

// WriteFakeTool writes an executable shell script named name into dir and
// returns its absolute path. body is everything after the shebang line.
func WriteFakeTool(t *testing.T, dir, name, body string) string {
	t.Helper()
	RequireShell(t)

	path := filepath.Join(dir, name)
	err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755) //nolint:gosec // test fixture must be executable
	require.NoError(t, err, "failed to write fake tool %s", name)
	return path
}

// PrependPath puts dir first on PATH for the duration of the test.
func PrependPath(t *testing.T, dir string) {
	t.Helper()
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

// CreateProject lays out the build inputs the launcher points the freezer
// at: icons/icon.ico, hooks/ and main.py.
func CreateProject(t *testing.T, dir string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "icons"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "hooks"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "icons", "icon.ico"), []byte{0, 0, 1, 0}, 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.py"), []byte("import felionlib\n"), 0600))
}

// RandomString generates a random string of the specified length
func RandomString(length int) string {
	bytes := make([]byte, length/2+1)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	return hex.EncodeToString(bytes)[:length]
}
