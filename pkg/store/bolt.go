package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

// BoltBucket is the bucket all preference keys are stored in.
const BoltBucket = "preferences"

const boltOpenTimeout = time.Second

// Bolt stores keys in a single bbolt database file. bbolt holds an exclusive
// file lock while open, so only one process can use a given file at a time.
type Bolt struct {
	db *bolt.DB
}

// NewBolt opens or creates the database at path.
func NewBolt(path string) (*Bolt, error) {
	if path = filepath.Clean(path); path == "." || path == "" {
		return nil, ErrInvalidPath
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: boltOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("open bolt store %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BoltBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return &Bolt{db: db}, nil
}

// Path returns the database file path.
func (b *Bolt) Path() string {
	return b.db.Path()
}

func (b *Bolt) Read(key string) (value string, ok bool, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(BoltBucket))
		if bkt == nil {
			return nil
		}
		// the slice is only valid inside the transaction
		if v := bkt.Get([]byte(key)); v != nil {
			value, ok = string(v), true
		}
		return nil
	})
	return value, ok, err
}

func (b *Bolt) Write(key, value string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BoltBucket)).Put([]byte(key), []byte(value))
	})
}

func (b *Bolt) Remove(key string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BoltBucket)).Delete([]byte(key))
	})
}

func (b *Bolt) Close() error {
	return b.db.Close()
}
