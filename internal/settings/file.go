package settings

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	"github.com/google/uuid"

	"github.com/Gaurav-Gosain/winstate/internal/codec"
)

const (
	// AppName names the application directory under the XDG base dirs.
	AppName = "winstate"
	// FileName is the default settings file name.
	FileName = "Settings.bin"
)

// ErrLocked is returned when another process holds the settings file.
var ErrLocked = errors.New("settings: file is in use by another process")

// DefaultPath returns the settings file in the user data directory, creating
// the parent directories when needed.
func DefaultPath() (string, error) {
	path, err := xdg.DataFile(filepath.Join(AppName, FileName))
	if err != nil {
		return "", fmt.Errorf("could not determine settings path: %w", err)
	}
	return path, nil
}

// open tracks the files backing a live store in this process. Only one store
// may own a given file.
var open = struct {
	sync.Mutex
	paths map[string]bool
}{paths: make(map[string]bool)}

// FileBackend persists the codec container in a single file. Writes go to a
// uniquely named temporary file that is renamed over the target, so readers
// never observe a torn file.
type FileBackend struct {
	path string
	lock *os.File
}

// OpenFile claims path for this process and returns its backend.
//
// Opening a path that is already owned by a live backend in this process is a
// programming error and panics. A path owned by another process yields
// ErrLocked.
func OpenFile(path string) (*FileBackend, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve settings path: %w", err)
	}

	open.Lock()
	defer open.Unlock()
	if open.paths[abs] {
		panic(fmt.Sprintf("settings: %s is already owned by a live store", abs))
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o700); err != nil {
		return nil, fmt.Errorf("create settings dir: %w", err)
	}

	lock, err := os.OpenFile(abs+".lock", os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open settings lock: %w", err)
	}
	if err := lockFile(lock); err != nil {
		_ = lock.Close()
		if errors.Is(err, ErrLocked) {
			return nil, fmt.Errorf("%s: %w", abs, err)
		}
		return nil, fmt.Errorf("lock settings: %w", err)
	}

	open.paths[abs] = true
	return &FileBackend{path: abs, lock: lock}, nil
}

// Path returns the absolute settings file path.
func (b *FileBackend) Path() string {
	return b.path
}

// Load reads and decodes the file. A missing file is not an error.
func (b *FileBackend) Load() (map[string]any, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return codec.DecodeMap(bytes.NewReader(data))
}

// Save encodes m and atomically replaces the file.
func (b *FileBackend) Save(m map[string]any) error {
	var buf bytes.Buffer
	if err := codec.EncodeMap(&buf, m); err != nil {
		return err
	}

	tmp := fmt.Sprintf("%s.%s.tmp", b.path, uuid.NewString())
	if err := writeSynced(tmp, buf.Bytes()); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to persist settings: %w", err)
	}
	return nil
}

func writeSynced(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Close releases the file for other stores.
func (b *FileBackend) Close() error {
	open.Lock()
	defer open.Unlock()
	if !open.paths[b.path] {
		return nil
	}
	delete(open.paths, b.path)

	return errors.Join(unlockFile(b.lock), b.lock.Close())
}

func (b *FileBackend) String() string {
	return b.path
}
