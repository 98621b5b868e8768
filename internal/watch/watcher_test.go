package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type changeLog struct {
	mu      sync.Mutex
	batches [][]string
}

func (c *changeLog) record(_ context.Context, changed []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, changed)
}

func (c *changeLog) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

func TestWatcherDebouncesAndIgnoresOutput(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "_site")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pages"), 0o750))
	require.NoError(t, os.MkdirAll(out, 0o750))

	log := &changeLog{}
	w, err := New([]string{root}, []string{out}, log.record)
	require.NoError(t, err)
	w.WithDebounce(100 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	// give the watcher time to register directories
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(out, "index.html"), []byte("x"), 0o600))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(root, "pages", "a.md"), []byte{byte('a' + i)}, 0o600))
	}

	require.Eventually(t, func() bool { return log.count() == 1 }, 5*time.Second, 20*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	require.Equal(t, 1, log.count())
	for _, p := range log.batches[0] {
		require.NotContains(t, p, "_site")
	}

	cancel()
	require.NoError(t, <-done)
}
