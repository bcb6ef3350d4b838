package settings_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gaurav-Gosain/winstate/internal/codec"
	"github.com/Gaurav-Gosain/winstate/internal/geom"
	"github.com/Gaurav-Gosain/winstate/internal/settings"
	"github.com/Gaurav-Gosain/winstate/internal/settings/settingstest"
)

func quietLogger() *log.Logger {
	return log.New(&bytes.Buffer{})
}

func newStore(t *testing.T, data []byte, opts ...settings.Option) (*settings.Store, *settings.MemoryBackend) {
	t.Helper()
	backend := settings.NewMemoryBackend(data)
	opts = append([]settings.Option{settings.WithLogger(quietLogger())}, opts...)
	s := settings.New(backend, opts...)
	t.Cleanup(func() { _ = s.Close() })
	return s, backend
}

// =============================================================================
// Reads
// =============================================================================

func TestValueDefaults(t *testing.T) {
	s, _ := newStore(t, nil)
	require.NoError(t, s.Set("RootView.Geometry", geom.R(10, 20, 300, 200), false))
	require.NoError(t, s.Set("Count", int32(3), false))

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"present", settings.Value(s, "RootView.Geometry", geom.Rect{}), geom.R(10, 20, 300, 200)},
		{"missing", settings.Value(s, "Nope", int32(7)), int32(7)},
		{"mismatch", settings.Value(s, "Count", "fallback"), "fallback"},
		{"int64 is not int32", settings.Value(s, "Count", int64(9)), int64(9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestLoadExisting(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, codec.EncodeMap(&buf, map[string]any{
		"Version":   int32(2),
		"Maximized": true,
	}))

	s, _ := newStore(t, buf.Bytes())
	assert.Equal(t, []string{"Maximized", "Version"}, s.Keys())
	assert.True(t, settings.Value(s, "Maximized", false))
	assert.Equal(t, int32(2), settings.Value(s, "Version", int32(0)))
	assert.False(t, s.Dirty())
}

func TestCorruptBackendStartsEmpty(t *testing.T) {
	s, _ := newStore(t, []byte{0x02, 0x00})
	assert.Empty(t, s.Keys())
	assert.False(t, s.Contains("Version"))
}

// =============================================================================
// Writes
// =============================================================================

func TestSetNotifies(t *testing.T) {
	s, _ := newStore(t, nil)

	var changes []settings.Change
	cancel := s.Subscribe(func(c settings.Change) { changes = append(changes, c) })

	require.NoError(t, s.Set("A", int32(1), false))
	require.NoError(t, s.Set("A", int32(1), false)) // equal, no change
	require.NoError(t, s.Set("A", int32(2), false))
	require.NoError(t, s.Remove("A"))
	require.NoError(t, s.Remove("A"))

	assert.Equal(t, []settings.Change{
		{Key: "A", New: int32(1)},
		{Key: "A", Old: int32(1), New: int32(2)},
		{Key: "A", Old: int32(2)},
	}, changes)

	cancel()
	require.NoError(t, s.Set("B", true, false))
	assert.Len(t, changes, 3)
}

func TestSetRejectsUnsupported(t *testing.T) {
	s, _ := newStore(t, nil)
	err := s.Set("A", 42, false)
	require.ErrorIs(t, err, settings.ErrUnsupportedValue)
	assert.False(t, s.Contains("A"))

	_, err = s.Init("A", []byte("x"), false)
	require.ErrorIs(t, err, settings.ErrUnsupportedValue)
}

func TestInitIsIdempotent(t *testing.T) {
	s, _ := newStore(t, nil)

	calls := 0
	s.Subscribe(func(settings.Change) { calls++ })

	ok, err := s.Init("RootView.Persistence", int32(15), false)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Init("RootView.Persistence", int32(0), false)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, int32(15), settings.Value(s, "RootView.Persistence", int32(-1)))
	assert.Equal(t, 1, calls)
}

func TestClear(t *testing.T) {
	s, _ := newStore(t, nil)
	require.NoError(t, s.Set("B", true, false))
	require.NoError(t, s.Set("A", "x", false))

	var keys []string
	s.Subscribe(func(c settings.Change) {
		assert.Nil(t, c.New)
		keys = append(keys, c.Key)
	})
	require.NoError(t, s.Clear())

	assert.Equal(t, []string{"A", "B"}, keys)
	assert.Empty(t, s.Keys())
}

func TestSyncWritesThrough(t *testing.T) {
	s, backend := newStore(t, nil)
	require.NoError(t, s.Set("Maximized", true, true))
	assert.Equal(t, 1, backend.Saves())
	assert.False(t, s.Dirty())

	reloaded := settings.New(settings.NewMemoryBackend(backend.Bytes()), settings.WithLogger(quietLogger()))
	assert.True(t, settings.Value(reloaded, "Maximized", false))
}

func TestWriteFailureKeepsMemory(t *testing.T) {
	s, backend := newStore(t, nil)
	backend.FailSaves(true)

	require.NoError(t, s.Set("A", int32(1), true))
	assert.Equal(t, int32(1), settings.Value(s, "A", int32(0)))
	assert.True(t, s.Dirty())
	require.ErrorIs(t, s.Sync(), settings.ErrInjected)

	backend.FailSaves(false)
	require.NoError(t, s.Sync())
	assert.False(t, s.Dirty())
	assert.Equal(t, 1, backend.Saves())
}

func TestClosedStore(t *testing.T) {
	s, backend := newStore(t, nil)
	require.NoError(t, s.Set("A", int32(1), false))
	require.NoError(t, s.Close())
	assert.Equal(t, 1, backend.Saves())

	require.ErrorIs(t, s.Set("A", int32(2), false), settings.ErrClosed)
	require.ErrorIs(t, s.Sync(), settings.ErrClosed)
	require.ErrorIs(t, s.Remove("A"), settings.ErrClosed)
	require.ErrorIs(t, s.Clear(), settings.ErrClosed)
	require.NoError(t, s.Close())
	assert.Equal(t, int32(1), settings.Value(s, "A", int32(0)))
	assert.Equal(t, 1, backend.Saves())
}

// lateClock hands out timers that cannot be stopped, like a time.Timer whose
// function already started running.
type lateClock struct {
	fire []func()
}

type lateTimer struct{}

func (lateTimer) Stop() bool { return false }

func (c *lateClock) AfterFunc(_ time.Duration, f func()) settings.Timer {
	c.fire = append(c.fire, f)
	return lateTimer{}
}

func TestDebouncedFlushAfterClose(t *testing.T) {
	clock := &lateClock{}
	s, backend := newStore(t, nil, settings.WithClock(clock))

	require.NoError(t, s.Set("A", int32(1), false))
	s.SyncLater()
	require.NoError(t, s.Close())
	require.Equal(t, 1, backend.Saves())

	require.Len(t, clock.fire, 1)
	clock.fire[0]()
	assert.Equal(t, 1, backend.Saves())
}

// =============================================================================
// Debounce
// =============================================================================

func TestSyncLaterCoalesces(t *testing.T) {
	clock := settingstest.NewFakeClock()
	s, backend := newStore(t, nil, settings.WithClock(clock), settings.WithDebounce(100*time.Millisecond))

	for i := range 5 {
		require.NoError(t, s.Set("RootView.Geometry", geom.R(int32(i), 0, 100, 100), false))
		s.SyncLater()
		clock.Advance(50 * time.Millisecond)
	}
	assert.Equal(t, 0, backend.Saves())
	assert.True(t, s.Pending())

	clock.Advance(50 * time.Millisecond)
	assert.Equal(t, 1, backend.Saves())
	assert.False(t, s.Pending())
	assert.Zero(t, clock.Pending())
}

func TestSyncLaterSpacedWrites(t *testing.T) {
	clock := settingstest.NewFakeClock()
	s, backend := newStore(t, nil, settings.WithClock(clock), settings.WithDebounce(100*time.Millisecond))

	for i := range 3 {
		require.NoError(t, s.Set("X", int32(i), false))
		s.SyncLater()
		clock.Advance(150 * time.Millisecond)
	}
	assert.Equal(t, 3, backend.Saves())
}

func TestSyncCancelsPendingFlush(t *testing.T) {
	clock := settingstest.NewFakeClock()
	s, backend := newStore(t, nil, settings.WithClock(clock))

	require.NoError(t, s.Set("X", true, false))
	s.SyncLater()
	require.NoError(t, s.Sync())
	clock.Advance(time.Second)
	assert.Equal(t, 1, backend.Saves())
}

func TestCloseFlushesPending(t *testing.T) {
	clock := settingstest.NewFakeClock()
	s, backend := newStore(t, nil, settings.WithClock(clock))

	require.NoError(t, s.Set("X", true, false))
	s.SyncLater()
	require.NoError(t, s.Close())
	assert.Equal(t, 1, backend.Saves())

	clock.Advance(time.Second)
	assert.Equal(t, 1, backend.Saves())
}

// =============================================================================
// File backend
// =============================================================================

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "Settings.bin")

	s, err := settings.Open(path, settings.WithLogger(quietLogger()))
	require.NoError(t, err)
	require.NoError(t, s.Set("RootView.Geometry", geom.R(5, 6, 640, 480), false))
	require.NoError(t, s.Set("Accent", codec.Opaque(1, 0.5, 0), false))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	decoded, err := codec.DecodeMap(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, geom.R(5, 6, 640, 480), decoded["RootView.Geometry"])

	s, err = settings.Open(path, settings.WithLogger(quietLogger()))
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, codec.Opaque(1, 0.5, 0), settings.Value(s, "Accent", codec.Color{}))
}

func TestFileSaveLeavesNoTemporaries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Settings.bin")

	backend, err := settings.OpenFile(path)
	require.NoError(t, err)
	defer backend.Close()

	for i := range 3 {
		require.NoError(t, backend.Save(map[string]any{"N": int32(i)}))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"Settings.bin", "Settings.bin.lock"}, names)

	m, err := backend.Load()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"N": int32(2)}, m)
}

func TestFileMissingIsFirstRun(t *testing.T) {
	backend, err := settings.OpenFile(filepath.Join(t.TempDir(), "Settings.bin"))
	require.NoError(t, err)
	defer backend.Close()

	m, err := backend.Load()
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestFileCorruptStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Settings.bin")
	require.NoError(t, os.WriteFile(path, []byte("garbage!"), 0o600))

	s, err := settings.Open(path, settings.WithLogger(quietLogger()))
	require.NoError(t, err)
	defer s.Close()
	assert.Empty(t, s.Keys())
}

func TestFileSingleOwner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Settings.bin")

	backend, err := settings.OpenFile(path)
	require.NoError(t, err)

	assert.Panics(t, func() { _, _ = settings.OpenFile(path) })

	require.NoError(t, backend.Close())
	again, err := settings.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, again.Close())
}
