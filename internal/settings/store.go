// Package settings provides a typed key-value store persisted with the codec
// package.
//
// A Store is an explicit handle owned by the application: open it once at
// startup, hand it to whoever needs it and Close it on shutdown. Values are
// restricted to the kinds the codec understands. Reads never fail, a missing
// or mistyped key yields the caller's default. Writes are durable on a best
// effort basis: a failed flush is logged and retried by the next one.
package settings

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/Gaurav-Gosain/winstate/internal/codec"
)

// DefaultDebounce is how long SyncLater waits for more writes before flushing.
const DefaultDebounce = 200 * time.Millisecond

var (
	// ErrClosed is returned when writing to a store after Close.
	ErrClosed = errors.New("settings: store is closed")
	// ErrUnsupportedValue is returned by Set and Init for values the codec
	// cannot persist.
	ErrUnsupportedValue = codec.ErrUnsupportedValue
)

// Change describes a modification of a single key. Old is nil when the key
// did not exist, New is nil when it was removed.
type Change struct {
	Key string
	Old any
	New any
}

type subscriber struct {
	id int
	fn func(Change)
}

// Store is a key-value map mirrored to a Backend.
type Store struct {
	backend  Backend
	clock    Clock
	debounce time.Duration
	log      *log.Logger

	mu       sync.Mutex
	values   map[string]any
	dirty    bool
	closed   bool
	timer    Timer
	subs     []subscriber
	nextSub  int
	failures rate.Sometimes

	// saveMu serializes backend writes so a later flush never lands before
	// an earlier one.
	saveMu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLogger replaces the package logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithDebounce sets the SyncLater delay. Non-positive values keep the default.
func WithDebounce(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithClock replaces the timer source used by SyncLater.
func WithClock(c Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// New creates a store over backend and loads its current content. A backend
// that cannot be read or holds corrupt data yields an empty store: that is a
// first run, not an error.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		clock:    systemClock{},
		debounce: DefaultDebounce,
		log:      logger,
		failures: rate.Sometimes{First: 3, Interval: time.Minute},
	}
	for _, opt := range opts {
		opt(s)
	}

	values, err := backend.Load()
	if err != nil {
		s.log.Warn("discarding unreadable settings", "backend", backend, "err", err)
		values = nil
	}
	if values == nil {
		values = make(map[string]any)
	}
	s.values = values

	s.log.Debug("settings loaded", "backend", backend, "keys", len(values))
	return s
}

// Open creates a store persisted in the file at path.
func Open(path string, opts ...Option) (*Store, error) {
	backend, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	return New(backend, opts...), nil
}

// Get returns the raw value stored under key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Value returns the value stored under key when it exists and has type T,
// and def otherwise.
func Value[T any](s *Store, key string, def T) T {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	typed, ok := v.(T)
	if !ok {
		s.log.Debug("setting type mismatch", "key", key, "stored", codec.KindOf(v), "want", fmt.Sprintf("%T", def))
		return def
	}
	return typed
}

// Contains reports whether key has a value.
func (s *Store) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[key]
	return ok
}

// Keys returns the stored keys in lexical order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.values))
}

// Snapshot returns a copy of every stored value.
func (s *Store) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.values)
}

// Set stores value under key. Nothing happens when the key already holds an
// equal value. Otherwise subscribers are notified and, when sync is true, the
// store is flushed right away; with sync false the caller is expected to call
// Sync or SyncLater.
func (s *Store) Set(key string, value any, sync bool) error {
	if codec.KindOf(value) == codec.KindInvalid {
		return fmt.Errorf("set %q: %w: %T", key, ErrUnsupportedValue, value)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	old, existed := s.values[key]
	if existed && old == value {
		s.mu.Unlock()
		return nil
	}
	s.values[key] = value
	s.dirty = true
	subs := slices.Clone(s.subs)
	s.mu.Unlock()

	if sync {
		s.flush("set")
	}
	notify(subs, Change{Key: key, Old: old, New: value})
	return nil
}

// Init stores value only when key is absent and reports whether it did.
func (s *Store) Init(key string, value any, sync bool) (bool, error) {
	if codec.KindOf(value) == codec.KindInvalid {
		return false, fmt.Errorf("init %q: %w: %T", key, ErrUnsupportedValue, value)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrClosed
	}
	if _, ok := s.values[key]; ok {
		s.mu.Unlock()
		return false, nil
	}
	s.values[key] = value
	s.dirty = true
	subs := slices.Clone(s.subs)
	s.mu.Unlock()

	if sync {
		s.flush("init")
	}
	notify(subs, Change{Key: key, New: value})
	return true, nil
}

// Remove deletes key. The removal is persisted by the next flush.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	old, ok := s.values[key]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.values, key)
	s.dirty = true
	subs := slices.Clone(s.subs)
	s.mu.Unlock()

	notify(subs, Change{Key: key, Old: old})
	return nil
}

// Clear deletes every key. Subscribers get one Change per removed key.
func (s *Store) Clear() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	removed := s.values
	s.values = make(map[string]any)
	s.dirty = s.dirty || len(removed) > 0
	subs := slices.Clone(s.subs)
	s.mu.Unlock()

	for _, key := range slices.Sorted(maps.Keys(removed)) {
		notify(subs, Change{Key: key, Old: removed[key]})
	}
	return nil
}

// Subscribe registers fn to be called after every change. Callbacks run on
// the goroutine that made the change, outside the store lock.
func (s *Store) Subscribe(fn func(Change)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.subs = slices.DeleteFunc(s.subs, func(sub subscriber) bool { return sub.id == id })
	}
}

func notify(subs []subscriber, c Change) {
	for _, sub := range subs {
		sub.fn(c)
	}
}

// Sync writes the whole map to the backend now, cancelling any pending
// SyncLater. The in-memory state is kept when the write fails.
func (s *Store) Sync() error {
	return s.save()
}

// SyncLater schedules a flush after the debounce delay. Calling it again
// before the delay elapses restarts the delay, so a burst of writes produces
// a single flush.
func (s *Store) SyncLater() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.dirty = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = s.clock.AfterFunc(s.debounce, func() { s.flush("debounce") })
}

// Pending reports whether a debounced flush is scheduled.
func (s *Store) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// Close cancels any pending flush, writes the store one last time and
// releases the backend.
func (s *Store) Close() error {
	// Holding saveMu keeps a debounced flush from writing once the backend
	// is released.
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.saveLocked()
	return errors.Join(err, s.backend.Close())
}

// flush saves and only logs failures, for writes the caller did not ask to
// observe.
func (s *Store) flush(reason string) {
	if err := s.save(); err != nil && !errors.Is(err, ErrClosed) {
		s.failures.Do(func() {
			s.log.Error("failed to persist settings", "reason", reason, "backend", s.backend, "err", err)
		})
	}
}

// save writes the store unless it was closed in the meantime.
func (s *Store) save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return s.saveLocked()
}

// saveLocked writes a snapshot of the map. The caller holds saveMu.
func (s *Store) saveLocked() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	snapshot := maps.Clone(s.values)
	s.dirty = false
	s.mu.Unlock()

	if err := s.backend.Save(snapshot); err != nil {
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		return err
	}
	return nil
}

// Dirty reports whether the store holds changes that were not flushed yet.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}
