package settings

import (
	"bytes"
	"errors"
	"fmt"
	"sync"

	"github.com/Gaurav-Gosain/winstate/internal/codec"
)

// Backend is where a Store mirrors its map.
type Backend interface {
	// Load returns the persisted map. A nil map with a nil error means
	// nothing was persisted yet.
	Load() (map[string]any, error)
	// Save replaces the persisted map with m.
	Save(m map[string]any) error
	// Close releases the backend.
	Close() error
}

// ErrInjected is returned by a MemoryBackend told to fail.
var ErrInjected = errors.New("settings: injected backend failure")

// MemoryBackend keeps the encoded container in memory. It goes through the
// codec like a file would and counts saves, which makes it the backend of
// choice for tests.
type MemoryBackend struct {
	mu    sync.Mutex
	data  []byte
	saves int
	fail  bool
}

// NewMemoryBackend returns a backend holding data, which may be nil.
func NewMemoryBackend(data []byte) *MemoryBackend {
	return &MemoryBackend{data: bytes.Clone(data)}
}

// Load decodes the current content.
func (b *MemoryBackend) Load() (map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return nil, nil
	}
	return codec.DecodeMap(bytes.NewReader(b.data))
}

// Save encodes m, unless failures are enabled.
func (b *MemoryBackend) Save(m map[string]any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return ErrInjected
	}

	var buf bytes.Buffer
	if err := codec.EncodeMap(&buf, m); err != nil {
		return err
	}
	b.data = buf.Bytes()
	b.saves++
	return nil
}

// Close is a no-op.
func (b *MemoryBackend) Close() error { return nil }

// Bytes returns a copy of the last saved container.
func (b *MemoryBackend) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.data)
}

// Saves returns how many successful saves happened.
func (b *MemoryBackend) Saves() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}

// FailSaves makes subsequent saves fail (or succeed again).
func (b *MemoryBackend) FailSaves(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail = fail
}

func (b *MemoryBackend) String() string {
	return fmt.Sprintf("memory(%d bytes)", len(b.Bytes()))
}
