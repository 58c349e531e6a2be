package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testIgnore = []string{"build", "dist", "**/__pycache__", "*.spec"}

func startWatcher(t *testing.T, root string) *Watcher {
	t.Helper()

	w, err := New(root, Options{Debounce: 50 * time.Millisecond, Ignore: testIgnore})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w
}

func nextChange(t *testing.T, w *Watcher) Change {
	t.Helper()
	select {
	case c := <-w.Changes():
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
		return Change{}
	}
}

func assertNoChange(t *testing.T, w *Watcher, wait time.Duration) {
	t.Helper()
	select {
	case c := <-w.Changes():
		t.Fatalf("unexpected change: %v", c.Paths)
	case <-time.After(wait):
	}
}

func TestIgnored(t *testing.T) {
	root := t.TempDir()
	w, err := New(root, Options{Ignore: testIgnore})
	require.NoError(t, err)
	defer w.Close()

	tests := []struct {
		path    string
		ignored bool
	}{
		{"main.py", false},
		{"hooks/hook-felionlib.py", false},
		{"build", true},
		{"build/felionpy/warn.txt", true},
		{"dist/felionpy/felionpy", true},
		{"felionpy.spec", true},
		{"felionlib/__pycache__/x.pyc", true},
		{filepath.Join(root, "dist", "x"), true},
		{filepath.Join(root, "main.py"), false},
		{root, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.ignored, w.Ignored(tt.path))
		})
	}
}

func TestNewMissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), Options{})
	require.Error(t, err)
}

func TestWatcherReportsChange(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "main.py"), []byte("print(1)\n"), 0600))

	c := nextChange(t, w)
	assert.Contains(t, c.Paths, "main.py")
	assert.False(t, c.Time.IsZero())
}

func TestWatcherSkipsIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "build", "felionpy"), 0755))
	w := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(root, "build", "felionpy", "out.txt"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "felionpy.spec"), []byte("x"), 0600))
	assertNoChange(t, w, 300*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "main.py"), []byte("x"), 0600))
	c := nextChange(t, w)
	assert.Equal(t, []string{"main.py"}, c.Paths)
}

func TestWatcherDebouncesBurst(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	for _, name := range []string{"a.py", "b.py", "c.py"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("x"), 0600))
	}

	c := nextChange(t, w)
	assert.Subset(t, c.Paths, []string{"a.py", "b.py", "c.py"})
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	sub := filepath.Join(root, "felionlib")
	require.NoError(t, os.Mkdir(sub, 0755))
	c := nextChange(t, w)
	assert.Contains(t, c.Paths, "felionlib")

	require.NoError(t, os.WriteFile(filepath.Join(sub, "core.py"), []byte("x"), 0600))
	c = nextChange(t, w)
	assert.Contains(t, c.Paths, filepath.Join("felionlib", "core.py"))
}

func TestRunClosesChangesOnCancel(t *testing.T) {
	w, err := New(t.TempDir(), Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, w.Run(ctx))

	_, ok := <-w.Changes()
	assert.False(t, ok)
}
