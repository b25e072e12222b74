package store

import (
	"github.com/patrickmn/go-cache"
)

// Memory keeps values in process memory. Entries never expire.
type Memory struct {
	c *cache.Cache
}

// NewMemory returns an empty memory store.
func NewMemory() *Memory {
	return &Memory{c: cache.New(cache.NoExpiration, 0)}
}

func (m *Memory) Read(key string) (string, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return "", false, nil
	}
	s, _ := v.(string)
	return s, true, nil
}

func (m *Memory) Write(key, value string) error {
	m.c.Set(key, value, cache.NoExpiration)
	return nil
}

func (m *Memory) Remove(key string) error {
	m.c.Delete(key)
	return nil
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	return m.c.ItemCount()
}

func (m *Memory) Close() error {
	m.c.Flush()
	return nil
}
