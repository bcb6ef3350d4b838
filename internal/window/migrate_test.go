package window_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gaurav-Gosain/winstate/internal/geom"
	"github.com/Gaurav-Gosain/winstate/internal/settings"
	"github.com/Gaurav-Gosain/winstate/internal/window"
)

var legacyKeys = []string{
	"RootView.Init",
	"RootView.RestoreState",
	"RootView.RestorePosition",
	"RootView.RestoreSize",
	"RootView.RestoreMaximized",
	"RootView.RestoreFullScreen",
}

func storeWith(t *testing.T, m map[string]any) *settings.Store {
	t.Helper()
	return settings.New(settings.NewMemoryBackend(seed(t, m)), settings.WithLogger(log.New(io.Discard)))
}

func TestMigrate(t *testing.T) {
	tests := []struct {
		name    string
		initial map[string]any
		policy  window.Persistence
		found   int32
	}{
		{
			name:    "empty",
			initial: map[string]any{},
			policy:  window.PersistAll,
		},
		{
			name: "v0 restore on",
			initial: map[string]any{
				"RootView.Init":         true,
				"RootView.RestoreState": true,
			},
			policy: window.PersistAll,
		},
		{
			name: "v0 restore off",
			initial: map[string]any{
				"RootView.Init":         true,
				"RootView.RestoreState": false,
			},
			policy: window.PersistNone,
		},
		{
			name: "v0 restore off with facets",
			initial: map[string]any{
				"RootView.RestoreState":     false,
				"RootView.RestoreSize":      true,
				"RootView.RestoreMaximized": true,
			},
			policy: window.PersistSize | window.PersistMaximized,
		},
		{
			name: "v1 facets",
			initial: map[string]any{
				window.KeyVersion:            int32(1),
				"RootView.RestorePosition":   false,
				"RootView.RestoreMaximized":  false,
				"RootView.RestoreFullScreen": true,
			},
			policy: window.PersistFullScreen | window.PersistSize,
			found:  1,
		},
		{
			name: "v1 facets over mask",
			initial: map[string]any{
				window.KeyVersion:     int32(1),
				window.KeyPersistence: int32(window.PersistPosition),
				"RootView.RestoreSize": true,
			},
			policy: window.PersistPosition | window.PersistSize,
			found:  1,
		},
		{
			name: "current",
			initial: map[string]any{
				window.KeyVersion:     window.CurrentVersion,
				window.KeyPersistence: int32(window.PersistMaximized),
			},
			policy: window.PersistMaximized,
			found:  window.CurrentVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storeWith(t, tt.initial)

			found, err := window.Migrate(store, log.New(io.Discard))
			require.NoError(t, err)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, window.CurrentVersion, settings.Value(store, window.KeyVersion, int32(0)))
			assert.Equal(t, int32(tt.policy), settings.Value(store, window.KeyPersistence, int32(window.PersistAll)))
			for _, key := range legacyKeys {
				assert.False(t, store.Contains(key), key)
			}

			// A second run changes nothing.
			before := store.Snapshot()
			_, err = window.Migrate(store, log.New(io.Discard))
			require.NoError(t, err)
			assert.Equal(t, before, store.Snapshot())
		})
	}
}

func TestMigrateNewerVersion(t *testing.T) {
	store := storeWith(t, map[string]any{
		window.KeyVersion:          int32(7),
		"RootView.RestorePosition": false,
	})

	var logs bytes.Buffer
	found, err := window.Migrate(store, log.New(&logs))
	require.NoError(t, err)
	assert.Equal(t, int32(7), found)
	assert.Contains(t, logs.String(), "newer version")
	assert.Equal(t, int32(7), settings.Value(store, window.KeyVersion, int32(0)))
	assert.True(t, store.Contains("RootView.RestorePosition"))
}

func TestRestoreFromVersionZero(t *testing.T) {
	data := seed(t, map[string]any{
		"RootView.Init":         true,
		"RootView.RestoreState": true,
		window.KeyPosition:      geom.Pt(11, 22),
		window.KeySize:          geom.Sz(500, 400),
		window.KeyMaximized:     false,
	})
	h := newHarness(t, data)
	h.restore(t)

	// Not a first run: the saved geometry wins over the centered default.
	assert.Equal(t, geom.R(11, 22, 500, 400), h.win.Rect())
	assert.Equal(t, window.CurrentVersion, settings.Value(h.store, window.KeyVersion, int32(0)))
	for _, key := range legacyKeys {
		assert.False(t, h.store.Contains(key), key)
	}
	// Migration progress goes to the controller's logger.
	assert.Contains(t, h.logs.String(), "migrated settings")

	reloaded := settings.New(settings.NewMemoryBackend(h.backend.Bytes()), settings.WithLogger(log.New(io.Discard)))
	assert.Equal(t, window.CurrentVersion, settings.Value(reloaded, window.KeyVersion, int32(0)))
	assert.False(t, reloaded.Contains("RootView.Init"))
}
