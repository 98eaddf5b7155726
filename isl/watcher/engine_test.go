package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func TestEngineValidation(t *testing.T) {
	_, err := NewEngine(nil, func(context.Context) error { return nil }, Options{}, testLogger())
	assert.Error(t, err)

	_, err = NewEngine([]string{"x"}, nil, Options{}, testLogger())
	assert.Error(t, err)
}

func TestEngineStartMissingPath(t *testing.T) {
	engine, err := NewEngine(
		[]string{filepath.Join(t.TempDir(), "nope.json")},
		func(context.Context) error { return nil },
		Options{}, testLogger())
	require.NoError(t, err)
	defer engine.Stop()

	assert.Error(t, engine.Start())
}

func TestEngineFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "domain.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	var runs atomic.Int32
	engine, err := NewEngine([]string{path}, func(context.Context) error {
		runs.Add(1)
		return nil
	}, Options{Debounce: 20 * time.Millisecond, RatePerSecond: 100}, testLogger())
	require.NoError(t, err)
	require.NoError(t, engine.Start())
	defer engine.Stop()

	require.NoError(t, os.WriteFile(path, []byte(`{"domain": "D"}`), 0o644))

	assert.Eventually(t, func() bool {
		return runs.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEngineDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "traces")
	require.NoError(t, os.Mkdir(path, 0o755))

	var runs atomic.Int32
	engine, err := NewEngine([]string{path}, func(context.Context) error {
		runs.Add(1)
		return nil
	}, Options{Debounce: 100 * time.Millisecond, RatePerSecond: 100}, testLogger())
	require.NoError(t, err)
	require.NoError(t, engine.Start())
	defer engine.Stop()

	// Burst of writes within one debounce window
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(path, "t.json"), []byte(`{}`), 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool {
		return runs.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.LessOrEqual(t, runs.Load(), int32(2))
}

func TestEngineIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{}`), 0o644))

	var runs atomic.Int32
	engine, err := NewEngine([]string{dir}, func(context.Context) error {
		runs.Add(1)
		return nil
	}, Options{Debounce: 20 * time.Millisecond, RatePerSecond: 100}, testLogger())
	require.NoError(t, err)
	require.NoError(t, engine.Start())
	defer engine.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), runs.Load())
}
