// Package store provides the durable key-value backends table preferences
// persist to: an in-process memory store, a directory of files, and a bolt
// database. Every backend satisfies table.Storage.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidPath       = errors.New("invalid store path")
	ErrUnsupportedScheme = errors.New("unsupported store scheme")
	ErrClosed            = errors.New("store is closed")
)

// Store is a string key-value store. Read reports ok=false for absent keys;
// Remove of an absent key is not an error.
type Store interface {
	Read(key string) (value string, ok bool, err error)
	Write(key, value string) error
	Remove(key string) error
	Close() error
}

const (
	SchemeMemory = "memory"
	SchemeFile   = "file"
	SchemeBolt   = "bolt"
)

// Open opens the store named by uri:
//
//	memory://            process-local, lost on exit
//	file:///path/to/dir  one JSON file per key
//	bolt:///path/to.db   single bolt database file
//
// A bare path with no scheme opens a file store. A leading "~" in the path
// expands to the user's home directory.
func Open(uri string) (Store, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, fmt.Errorf("%w: empty store uri", ErrInvalidPath)
	}
	scheme, path, found := strings.Cut(uri, "://")
	if !found {
		scheme, path = SchemeFile, uri
	}

	switch scheme {
	case SchemeMemory:
		return NewMemory(), nil
	case SchemeFile, SchemeBolt:
		p, err := expandPath(path)
		if err != nil {
			return nil, err
		}
		if scheme == SchemeFile {
			return NewFile(p)
		}
		return NewBolt(p)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedScheme, scheme)
	}
}

func expandPath(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	if p = filepath.Clean(p); p == "." || p == "" {
		return "", ErrInvalidPath
	}
	return p, nil
}
