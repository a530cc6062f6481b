package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// newTestWatcher shortens the debounce so tests settle quickly.
func newTestWatcher(t *testing.T, target string) (*Watcher, chan Outcome) {
	t.Helper()
	outcomes := make(chan Outcome, 8)
	w, err := New(target, zap.NewNop(), func(o Outcome) { outcomes <- o })
	require.NoError(t, err)
	w.debounceDur = 50 * time.Millisecond
	t.Cleanup(w.Stop)
	return w, outcomes
}

func waitOutcome(t *testing.T, outcomes chan Outcome) Outcome {
	t.Helper()
	select {
	case o := <-outcomes:
		return o
	case <-time.After(5 * time.Second):
		t.Fatal("no outcome arrived")
		return Outcome{}
	}
}

func TestNew_MissingTarget(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent.c"), zap.NewNop(), func(Outcome) {})
	require.Error(t, err)
}

func TestWatcher_RunsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.c")
	require.NoError(t, os.WriteFile(path, []byte("return 1;"), 0o644))

	w, outcomes := newTestWatcher(t, path)
	require.NoError(t, w.Start(context.Background()))
	assert.True(t, w.IsWatching())

	require.NoError(t, os.WriteFile(path, []byte("int a = 2; return a + 1;"), 0o644))

	o := waitOutcome(t, outcomes)
	require.NoError(t, o.Err)
	assert.Equal(t, path, o.Path)
	assert.Equal(t, int32(3), o.Result)
	assert.Equal(t, int32(2), o.Env["a"])

	stats := w.Stats()
	assert.GreaterOrEqual(t, stats.FilesModified, 1)
	assert.GreaterOrEqual(t, stats.RunsTriggered, 1)
	assert.Equal(t, path, stats.LastEventPath)
}

func TestWatcher_ReportsEvaluationErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.c")
	require.NoError(t, os.WriteFile(path, []byte("return 1;"), 0o644))

	w, outcomes := newTestWatcher(t, path)
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(path, []byte("return x;"), 0o644))

	o := waitOutcome(t, outcomes)
	require.Error(t, o.Err)
	assert.Contains(t, o.Err.Error(), `undefined variable "x"`)
}

func TestWatcher_DirectoryMode(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.c"), []byte("return 1;"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	w, outcomes := newTestWatcher(t, dir)
	require.NoError(t, w.Start(context.Background()))

	// Changes to files without the .c suffix never trigger a run.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("still ignored"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.c"), []byte("return 2;"), 0o644))

	o := waitOutcome(t, outcomes)
	require.NoError(t, o.Err)
	assert.Equal(t, filepath.Join(dir, "two.c"), o.Path)
	assert.Equal(t, int32(2), o.Result)
}

func TestWatcher_RunAll(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.c"), []byte("return 1;"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.c"), []byte("return 2;"), 0o644))

	w, outcomes := newTestWatcher(t, dir)

	require.NoError(t, w.RunAll())

	got := map[string]int32{}
	for i := 0; i < 2; i++ {
		o := waitOutcome(t, outcomes)
		require.NoError(t, o.Err)
		got[filepath.Base(o.Path)] = o.Result
	}
	assert.Equal(t, map[string]int32{"one.c": 1, "two.c": 2}, got)
}

func TestWatcher_StartTwiceAndStopTwice(t *testing.T) {
	dir := t.TempDir()
	w, _ := newTestWatcher(t, dir)

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Start(context.Background()))
	assert.True(t, w.IsWatching())

	w.Stop()
	assert.False(t, w.IsWatching())
	w.Stop()
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	w, _ := newTestWatcher(t, t.TempDir())
	assert.False(t, w.IsWatching())
	// Cleanup stops it; nothing to assert beyond the absence of leaks.
}
