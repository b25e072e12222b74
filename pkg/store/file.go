package store

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/dchest/safefile"
	"github.com/gofrs/flock"
)

const (
	fileExt  = ".json"
	lockName = ".tblx.lock"
	filePerm = 0o644
	dirPerm  = 0o755
)

// File stores each key as its own file under a directory. Writes are atomic
// (temp file then rename) and guarded by a lock file so separate processes
// do not interleave a write with a read.
type File struct {
	mu   sync.Mutex
	dir  string
	lock *flock.Flock
}

// NewFile opens or creates a file store rooted at dir.
func NewFile(dir string) (*File, error) {
	if dir = filepath.Clean(dir); dir == "." || dir == "" {
		return nil, ErrInvalidPath
	}
	if fi, err := os.Stat(dir); err == nil {
		if !fi.IsDir() {
			return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidPath, dir)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	} else if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &File{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, lockName)),
	}, nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+fileExt)
}

func (f *File) Read(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lock == nil {
		return "", false, ErrClosed
	}
	if err := f.lock.RLock(); err != nil {
		return "", false, fmt.Errorf("lock store: %w", err)
	}
	defer f.lock.Unlock()

	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}

func (f *File) Write(key, value string) (err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lock == nil {
		return ErrClosed
	}
	if err = f.lock.Lock(); err != nil {
		return fmt.Errorf("lock store: %w", err)
	}
	defer f.lock.Unlock()

	var fout *safefile.File
	if fout, err = safefile.Create(f.path(key), filePerm); err != nil {
		return err
	}
	n := fout.Name()
	if _, err = fout.WriteString(value); err != nil {
		fout.File.Close()
		os.Remove(n)
		return err
	}
	if err = fout.Commit(); err != nil {
		fout.File.Close()
		os.Remove(n)
	}
	return err
}

func (f *File) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lock == nil {
		return ErrClosed
	}
	if err := f.lock.Lock(); err != nil {
		return fmt.Errorf("lock store: %w", err)
	}
	defer f.lock.Unlock()

	if err := os.Remove(f.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lock == nil {
		return nil
	}
	err := f.lock.Close()
	f.lock = nil
	return err
}
