package configwatcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
	"work_readiness_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configTemplate = `
storage:
  type: local
  local_path: %s
readiness:
  consecutive_formula: %s
`

func writeConfig(t *testing.T, dir, formula string) {
	t.Helper()
	body := []byte(fmt.Sprintf(configTemplate, filepath.Join(dir, "uploads"), formula))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), body, 0644))
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "granular")

	var mu sync.Mutex
	var got []*config.Config

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, func(cfg *config.Config) {
			mu.Lock()
			got = append(got, cfg)
			mu.Unlock()
		})
	}()

	// 等待 watcher 就绪
	time.Sleep(200 * time.Millisecond)
	writeConfig(t, dir, "legacy")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0
	}, 5*time.Second, 50*time.Millisecond)

	mu.Lock()
	assert.Equal(t, "legacy", got[len(got)-1].Readiness.ConsecutiveFormula)
	mu.Unlock()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchKeepsOldConfigOnInvalidFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "granular")

	called := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, dir, func(*config.Config) { called <- struct{}{} })

	time.Sleep(200 * time.Millisecond)
	writeConfig(t, dir, "quadratic")

	select {
	case <-called:
		t.Fatal("invalid config must not be applied")
	case <-time.After(2 * time.Second):
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing"), func(*config.Config) {})
	assert.Error(t, err)
}
