package launcher

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grovetools/pybuild/command"
	"github.com/grovetools/pybuild/config"
	"github.com/grovetools/pybuild/errors"
	"github.com/grovetools/pybuild/logging"
	"github.com/grovetools/pybuild/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const echoArgsTool = `for a in "$@"; do echo "$a"; done
echo "freezing" >&2`

func quietLogging(t *testing.T) {
	t.Helper()
	cfg := config.Default()
	cfg.Extensions = map[string]interface{}{
		"logging": map[string]interface{}{
			"format": map[string]interface{}{"structured_to_stderr": "never"},
		},
	}
	logging.UseConfig(cfg)
	t.Cleanup(func() { logging.UseConfig(nil) })
}

// collect drains a handle, splitting events by kind.
func collect(t *testing.T, h *Handle) (stdout, stderr []string, terminal []Event) {
	t.Helper()
	for ev := range h.Events() {
		switch ev.Kind {
		case EventStdout:
			stdout = append(stdout, ev.Text)
		case EventStderr:
			stderr = append(stderr, ev.Text)
		default:
			terminal = append(terminal, ev)
		}
	}
	return stdout, stderr, terminal
}

func TestLaunchPassesArgumentVector(t *testing.T) {
	quietLogging(t)
	work := t.TempDir()
	tool := testutil.WriteFakeTool(t, t.TempDir(), "pyinstaller", echoArgsTool)

	spec, err := NewSpec(tool, work)
	require.NoError(t, err)

	h, err := New().Launch(context.Background(), spec)
	require.NoError(t, err)

	stdout, stderr, terminal := collect(t, h)

	assert.Equal(t, spec.Args, stdout)
	assert.Equal(t, []string{"freezing"}, stderr)
	require.Len(t, terminal, 1)
	assert.Equal(t, EventExit, terminal[0].Kind)
	assert.Equal(t, 0, terminal[0].ExitCode)

	res := h.Wait()
	assert.True(t, res.Success())
}

func TestLaunchKeepsPathsWithSpacesIntact(t *testing.T) {
	quietLogging(t)
	work := filepath.Join(t.TempDir(), "my project")
	tool := testutil.WriteFakeTool(t, t.TempDir(), "pyinstaller", echoArgsTool)

	spec, err := NewSpec(tool, work)
	require.NoError(t, err)
	require.True(t, TemplateMisTokenized(spec.Paths))

	// The directory does not exist, so start the tool elsewhere.
	spec.Paths.WorkingDir = filepath.Dir(work)

	h, err := New().Launch(context.Background(), spec)
	require.NoError(t, err)
	stdout, _, _ := collect(t, h)

	assert.Contains(t, stdout, filepath.Join(work, "main.py"))
	assert.Len(t, stdout, len(wantRepoArgs))
}

func TestLaunchRunsInWorkingDirectory(t *testing.T) {
	quietLogging(t)
	work := t.TempDir()
	tool := testutil.WriteFakeTool(t, t.TempDir(), "pyinstaller", `pwd -P`)

	spec, err := NewSpec(tool, work)
	require.NoError(t, err)

	h, err := New().Launch(context.Background(), spec)
	require.NoError(t, err)
	stdout, _, _ := collect(t, h)

	want, err := filepath.EvalSymlinks(work)
	require.NoError(t, err)
	assert.Equal(t, []string{want}, stdout)
}

func TestLaunchTwiceIsIndependent(t *testing.T) {
	quietLogging(t)
	work := t.TempDir()
	tool := testutil.WriteFakeTool(t, t.TempDir(), "pyinstaller", echoArgsTool)
	l := New()

	var runs [][]string
	var ids []string
	for i := 0; i < 2; i++ {
		spec, err := NewSpec(tool, work)
		require.NoError(t, err)
		h, err := l.Launch(context.Background(), spec)
		require.NoError(t, err)

		stdout, _, _ := collect(t, h)
		runs = append(runs, stdout)
		ids = append(ids, h.ID)
		assert.True(t, h.Wait().Success())
	}

	assert.Equal(t, runs[0], runs[1])
	assert.NotEqual(t, ids[0], ids[1])
}

func TestRelayPrintsOutputAndClosedNotice(t *testing.T) {
	quietLogging(t)
	tool := testutil.WriteFakeTool(t, t.TempDir(), "pyinstaller", `echo "INFO: PyInstaller"
printf "partial line without newline"`)

	spec, err := NewSpec(tool, t.TempDir())
	require.NoError(t, err)
	h, err := New().Launch(context.Background(), spec)
	require.NoError(t, err)

	var console bytes.Buffer
	res := Relay(logging.WithWriter(context.Background(), &console), h)

	out := console.String()
	assert.Contains(t, out, "INFO: PyInstaller\n")
	assert.Contains(t, out, "partial line without newline\n")
	assert.True(t, strings.HasSuffix(out, ClosedNotice+"\n"), out)
	assert.NotContains(t, out, ErrorNotice)
	assert.True(t, res.Success())
}

func TestRelayNonzeroExitPrintsOnlyClosedNotice(t *testing.T) {
	quietLogging(t)
	tool := testutil.WriteFakeTool(t, t.TempDir(), "pyinstaller", `echo "ERROR: missing module" >&2
exit 1`)

	spec, err := NewSpec(tool, t.TempDir())
	require.NoError(t, err)
	h, err := New().Launch(context.Background(), spec)
	require.NoError(t, err)

	var console bytes.Buffer
	res := Relay(logging.WithWriter(context.Background(), &console), h)

	out := console.String()
	assert.Equal(t, "ERROR: missing module\n"+ClosedNotice+"\n", out)
	assert.NotContains(t, strings.ToLower(out), "fail")
	assert.NotContains(t, out, ErrorNotice)

	assert.Equal(t, 1, res.ExitCode)
	assert.NoError(t, res.Err)
	assert.False(t, res.Success())
}

func TestRelayMissingToolPrintsErrorNotice(t *testing.T) {
	quietLogging(t)
	testutil.RequireShell(t)
	missing := "pybuild-missing-" + testutil.RandomString(8)

	spec, err := NewSpec(missing, t.TempDir())
	require.NoError(t, err)
	h, err := New().Launch(context.Background(), spec)
	require.NoError(t, err)

	var console bytes.Buffer
	res := Relay(logging.WithWriter(context.Background(), &console), h)

	out := console.String()
	assert.Contains(t, out, ErrorNotice+": ")
	assert.Contains(t, out, missing)
	assert.Contains(t, out, "executable file not found")
	assert.NotContains(t, out, ClosedNotice)

	require.Error(t, res.Err)
	assert.True(t, errors.Is(res.Err, errors.ErrCodeCommandNotFound))
	assert.Equal(t, -1, res.ExitCode)
}

func TestLaunchMissingAbsoluteToolPath(t *testing.T) {
	quietLogging(t)
	testutil.RequireShell(t)

	spec, err := NewSpec(filepath.Join(t.TempDir(), "no-such-pyinstaller"), t.TempDir())
	require.NoError(t, err)
	h, err := New().Launch(context.Background(), spec)
	require.NoError(t, err)

	_, _, terminal := collect(t, h)
	require.Len(t, terminal, 1)
	assert.Equal(t, EventError, terminal[0].Kind)
	assert.True(t, errors.Is(h.Wait().Err, errors.ErrCodeCommandNotFound))
}

func TestLaunchRejectsUnsafeToolName(t *testing.T) {
	quietLogging(t)
	spec, err := NewSpec("pyinstaller; rm -rf /", t.TempDir())
	require.NoError(t, err)

	h, err := New().Launch(context.Background(), spec)
	assert.Nil(t, h)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestLaunchWithEnv(t *testing.T) {
	quietLogging(t)
	tool := testutil.WriteFakeTool(t, t.TempDir(), "pyinstaller", `echo "$PYBUILD_TEST_VAR"`)

	spec, err := NewSpec(tool, t.TempDir())
	require.NoError(t, err)

	l := New(WithEnv(map[string]string{"PYBUILD_TEST_VAR": "from-env-file"}))
	h, err := l.Launch(context.Background(), spec)
	require.NoError(t, err)

	stdout, _, _ := collect(t, h)
	assert.Equal(t, []string{"from-env-file"}, stdout)
}

func TestLaunchUsesBuilderExecutor(t *testing.T) {
	quietLogging(t)
	dir := t.TempDir()
	testutil.WriteFakeTool(t, dir, "pyinstaller", `echo fake`)
	testutil.PrependPath(t, dir)

	l := New(WithBuilder(command.NewSafeBuilder()))
	spec, err := NewSpec("pyinstaller", t.TempDir())
	require.NoError(t, err)

	h, err := l.Launch(context.Background(), spec)
	require.NoError(t, err)
	stdout, _, _ := collect(t, h)
	assert.Equal(t, []string{"fake"}, stdout)
}

func TestWaitDrainsUnreadEvents(t *testing.T) {
	quietLogging(t)
	// More lines than the event buffer holds.
	tool := testutil.WriteFakeTool(t, t.TempDir(), "pyinstaller", `i=0
while [ $i -lt 500 ]; do echo "line $i"; i=$((i+1)); done`)

	spec, err := NewSpec(tool, t.TempDir())
	require.NoError(t, err)
	h, err := New().Launch(context.Background(), spec)
	require.NoError(t, err)

	res := h.Wait()
	assert.True(t, res.Success())

	select {
	case <-h.Done():
	default:
		t.Fatal("Done should be closed after Wait")
	}
}

func TestStdoutOrderPreserved(t *testing.T) {
	quietLogging(t)
	tool := testutil.WriteFakeTool(t, t.TempDir(), "pyinstaller", `i=0
while [ $i -lt 200 ]; do echo "$i"; echo "e$i" >&2; i=$((i+1)); done`)

	spec, err := NewSpec(tool, t.TempDir())
	require.NoError(t, err)
	h, err := New().Launch(context.Background(), spec)
	require.NoError(t, err)

	stdout, stderr, _ := collect(t, h)
	require.Len(t, stdout, 200)
	require.Len(t, stderr, 200)
	for i := range stdout {
		assert.Equal(t, strings.TrimPrefix(stderr[i], "e"), stdout[i])
	}
}
