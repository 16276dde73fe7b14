package storage

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemorySlots is an in-process domain.SlotStore. Slots never expire
// unless a ttl is given.
type MemorySlots struct {
	cache *gocache.Cache
}

func NewMemorySlots(ttl time.Duration) *MemorySlots {
	exp := gocache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		exp = ttl
		cleanup = ttl * 2
	}
	return &MemorySlots{cache: gocache.New(exp, cleanup)}
}

func (m *MemorySlots) GetSlot(key string) (string, bool, error) {
	v, ok := m.cache.Get(key)
	if !ok {
		return "", false, nil
	}
	s, _ := v.(string)
	return s, true, nil
}

func (m *MemorySlots) SetSlot(key, value string) error {
	m.cache.SetDefault(key, value)
	return nil
}
