package watchengine

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagehand/stagehand/pkg/logger"
	"github.com/stagehand/stagehand/pkg/types"
)

func testEngine() *Engine {
	return New(logger.CreateLoggerWithOutput("debug", nil))
}

func TestBuildRunsOnePass(t *testing.T) {
	var calls atomic.Int32
	cfg := &Config{
		Build: func(ctx context.Context, changed []string) types.BuildOutcome {
			calls.Add(1)
			assert.Nil(t, changed)
			return types.BuildOutcome{Stats: &types.BuildStats{}}
		},
	}

	outcome := testEngine().Build(context.Background(), cfg)
	require.NoError(t, outcome.Err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestBuildRejectsForeignConfig(t *testing.T) {
	outcome := testEngine().Build(context.Background(), "not a config")
	require.Error(t, outcome.Err)
	assert.Contains(t, outcome.Err.Error(), "unsupported config type")
}

func TestBuildRejectsMissingBuildFunc(t *testing.T) {
	outcome := testEngine().Build(context.Background(), &Config{})
	require.Error(t, outcome.Err)
}

func TestWatchMissingRoot(t *testing.T) {
	cfg := &Config{
		Roots: []string{filepath.Join(t.TempDir(), "absent")},
		Build: func(ctx context.Context, changed []string) types.BuildOutcome {
			return types.BuildOutcome{}
		},
	}

	err := testEngine().Watch(context.Background(), cfg, func(types.BuildOutcome) {})
	require.Error(t, err)
}

func TestWatchDeliversInitialAndRebuildPasses(t *testing.T) {
	root := t.TempDir()

	outcomes := make(chan types.BuildOutcome, 8)
	cfg := &Config{
		Roots:  []string{root},
		Settle: 50 * time.Millisecond,
		Build: func(ctx context.Context, changed []string) types.BuildOutcome {
			return types.BuildOutcome{Stats: &types.BuildStats{ChangedFiles: changed}}
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watchDone := make(chan error, 1)
	go func() {
		watchDone <- testEngine().Watch(ctx, cfg, func(o types.BuildOutcome) {
			outcomes <- o
		})
	}()

	// Initial pass fires before any change.
	select {
	case first := <-outcomes:
		assert.Empty(t, first.Stats.ChangedFiles)
	case <-time.After(2 * time.Second):
		t.Fatal("no initial build pass")
	}

	changedFile := filepath.Join(root, "server.go")
	require.NoError(t, os.WriteFile(changedFile, []byte("package main"), 0o644))

	select {
	case rebuild := <-outcomes:
		assert.Contains(t, rebuild.Stats.ChangedFiles, changedFile)
	case <-time.After(5 * time.Second):
		t.Fatal("no rebuild pass after file change")
	}

	cancel()
	select {
	case err := <-watchDone:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after context cancellation")
	}
}

func TestWatchCoalescesChangeBursts(t *testing.T) {
	root := t.TempDir()

	var passes atomic.Int32
	outcomes := make(chan types.BuildOutcome, 8)
	cfg := &Config{
		Roots:  []string{root},
		Settle: 200 * time.Millisecond,
		Build: func(ctx context.Context, changed []string) types.BuildOutcome {
			passes.Add(1)
			return types.BuildOutcome{Stats: &types.BuildStats{ChangedFiles: changed}}
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = testEngine().Watch(ctx, cfg, func(o types.BuildOutcome) { outcomes <- o })
	}()

	<-outcomes // initial pass

	// A burst of writes inside one settling window yields one rebuild.
	for _, name := range []string{"a.go", "b.go", "c.go"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("x"), 0o644))
	}

	select {
	case rebuild := <-outcomes:
		assert.GreaterOrEqual(t, len(rebuild.Stats.ChangedFiles), 1)
	case <-time.After(5 * time.Second):
		t.Fatal("no rebuild pass after burst")
	}

	// No further pass arrives for the same burst.
	select {
	case <-outcomes:
		t.Fatal("burst produced more than one rebuild pass")
	case <-time.After(500 * time.Millisecond):
	}

	assert.Equal(t, int32(2), passes.Load())
}
