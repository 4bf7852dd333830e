package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

const fileExt = ".json"

// FileBackend stores one JSON file per key under a directory. Writes go
// through a temp file and rename; a flock on dir/.lock serializes writers
// across processes (the CLI and `serve` may share a data dir).
type FileBackend struct {
	dir string
}

// NewFileBackend returns a backend rooted at dir.
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{dir: strings.TrimSpace(dir)}
}

// Dir returns the backing directory.
func (b *FileBackend) Dir() string {
	return b.dir
}

func (b *FileBackend) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(b.dir, key+fileExt), nil
}

func (b *FileBackend) Read(key string) ([]byte, error) {
	p, err := b.path(key)
	if err != nil {
		return nil, err
	}
	lock, err := b.lock(false)
	if err != nil {
		return nil, err
	}
	defer unlock(lock)

	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

func (b *FileBackend) Write(key string, data []byte) error {
	p, err := b.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("creating storage dir: %w", err)
	}
	lock, err := b.lock(true)
	if err != nil {
		return err
	}
	defer unlock(lock)

	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("replacing %s: %w", filepath.Base(p), err)
	}
	return nil
}

func (b *FileBackend) Delete(key string) error {
	p, err := b.path(key)
	if err != nil {
		return err
	}
	lock, err := b.lock(true)
	if err != nil {
		return err
	}
	defer unlock(lock)

	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (b *FileBackend) List() ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, fileExt))
	}
	return keys, nil
}

func (b *FileBackend) Clear() error {
	keys, err := b.List()
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := b.Delete(k); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return nil
}

func (b *FileBackend) lock(exclusive bool) (*os.File, error) {
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(b.dir, ".lock"), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening storage lock: %w", err)
	}
	mode := syscall.LOCK_SH
	if exclusive {
		mode = syscall.LOCK_EX
	}
	if err := syscall.Flock(int(f.Fd()), mode); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("locking storage: %w", err)
	}
	return f, nil
}

func unlock(f *os.File) {
	if f == nil {
		return
	}
	_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	_ = f.Close()
}
