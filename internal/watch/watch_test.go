package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingScheduler struct{ n atomic.Int32 }

func (c *countingScheduler) Schedule() { c.n.Add(1) }

func TestRelevant(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	w, err := New(path, &countingScheduler{}, nil)
	require.NoError(t, err)
	defer w.Stop()

	abs, _ := filepath.Abs(path)
	assert.True(t, w.relevant(fsnotify.Event{Name: abs, Op: fsnotify.Write}))
	assert.True(t, w.relevant(fsnotify.Event{Name: abs, Op: fsnotify.Create}))
	assert.True(t, w.relevant(fsnotify.Event{Name: abs, Op: fsnotify.Rename}))
	assert.False(t, w.relevant(fsnotify.Event{Name: abs, Op: fsnotify.Remove}))
	assert.False(t, w.relevant(fsnotify.Event{Name: abs, Op: fsnotify.Chmod}))
	assert.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(dir, "other.csv"), Op: fsnotify.Write}))
}

func TestWatcherSchedulesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("year\n2000\n"), 0o644))

	s := &countingScheduler{}
	w, err := New(path, s, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()
	assert.True(t, w.IsWatching())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("year\n2000\n2001\n"), 0o644))

	require.Eventually(t, func() bool { return s.n.Load() > 0 }, 2*time.Second, 10*time.Millisecond)

	w.Stop()
	assert.False(t, w.IsWatching())
}
