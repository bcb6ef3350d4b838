package window

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/Gaurav-Gosain/winstate/internal/settings"
)

// migration upgrades the stored keys from one schema version to another.
// Steps must be idempotent: a crash between a step and the version stamp
// replays it on the next start.
type migration struct {
	from  int32
	to    int32
	name  string
	apply func(*settings.Store) error
}

var migrations = []migration{
	{from: 0, to: 1, name: "restore state becomes persistence mask", apply: migrateRestoreState},
	{from: 1, to: 2, name: "fold restore facets into persistence mask", apply: migrateRestoreFacets},
}

// Migrate upgrades store to CurrentVersion and returns the version it found.
// Settings written by a newer version are left untouched. Progress is logged
// to l, or the package logger when l is nil.
func Migrate(store *settings.Store, l *log.Logger) (int32, error) {
	if l == nil {
		l = logger
	}
	return migrate(store, migrations, CurrentVersion, l)
}

func migrate(store *settings.Store, steps []migration, target int32, l *log.Logger) (int32, error) {
	found := settings.Value(store, KeyVersion, int32(0))
	if found > target {
		l.Warn("settings written by a newer version, skipping migrations", "version", found, "current", target)
		return found, nil
	}

	version := found
	for version < target {
		step, ok := stepFrom(steps, version)
		if !ok {
			return found, fmt.Errorf("no migration from schema version %d", version)
		}
		if err := step.apply(store); err != nil {
			return found, fmt.Errorf("migration %d->%d (%s): %w", step.from, step.to, step.name, err)
		}
		// A step may stamp a later version itself.
		if settings.Value(store, KeyVersion, int32(0)) < step.to {
			if err := store.Set(KeyVersion, step.to, false); err != nil {
				return found, fmt.Errorf("stamp schema version %d: %w", step.to, err)
			}
		}
		l.Info("migrated settings", "from", step.from, "to", step.to, "step", step.name)

		next := settings.Value(store, KeyVersion, int32(0))
		if next <= version {
			return found, fmt.Errorf("migration %d->%d did not advance the schema version", step.from, step.to)
		}
		version = next
	}

	if err := store.Set(KeyVersion, target, false); err != nil {
		return found, fmt.Errorf("stamp schema version %d: %w", target, err)
	}
	return found, nil
}

func stepFrom(steps []migration, version int32) (migration, bool) {
	for _, s := range steps {
		if s.from == version {
			return s, true
		}
	}
	return migration{}, false
}

// Version 0 had a single boolean toggling every facet, and a marker key that
// recorded whether the window had ever been saved.
func migrateRestoreState(store *settings.Store) error {
	if store.Contains(legacyKeyRestoreState) {
		policy := PersistNone
		if settings.Value(store, legacyKeyRestoreState, true) {
			policy = PersistAll
		}
		if err := store.Set(KeyPersistence, int32(policy), false); err != nil {
			return err
		}
	}
	return errors.Join(
		store.Remove(legacyKeyRestoreState),
		store.Remove(legacyKeyInit),
	)
}

// Version 1 stored one boolean per facet next to the mask.
func migrateRestoreFacets(store *settings.Store) error {
	facets := []struct {
		key string
		bit Persistence
	}{
		{legacyKeyRestorePosition, PersistPosition},
		{legacyKeyRestoreSize, PersistSize},
		{legacyKeyRestoreMaximized, PersistMaximized},
		{legacyKeyRestoreFullScreen, PersistFullScreen},
	}

	policy := Persistence(settings.Value(store, KeyPersistence, int32(PersistAll)))
	var found []string
	for _, f := range facets {
		if !store.Contains(f.key) {
			continue
		}
		found = append(found, f.key)
		if settings.Value(store, f.key, true) {
			policy |= f.bit
		} else {
			policy &^= f.bit
		}
	}
	if len(found) == 0 {
		return nil
	}

	if err := store.Set(KeyPersistence, int32(policy&PersistAll), false); err != nil {
		return err
	}
	for _, key := range found {
		if err := store.Remove(key); err != nil {
			return err
		}
	}
	return nil
}
