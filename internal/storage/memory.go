package storage

import (
	"bytes"
	"context"
	"sync"
)

// resetValue is the content of an erased EEPROM cell.
const resetValue = 0xff

// MemoryStore implements a Store held in memory.
type MemoryStore struct {
	mu  sync.RWMutex
	buf []byte
}

// NewMemoryStore returns an erased MemoryStore of the given size.
func NewMemoryStore(size int) *MemoryStore {
	return &MemoryStore{
		buf: bytes.Repeat([]byte{resetValue}, size),
	}
}

// ReadAt implements Store.
func (m *MemoryStore) ReadAt(ctx context.Context, p []byte, addr Address) error {
	if err := checkRange(m, addr, len(p)); err != nil {
		return err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	copy(p, m.buf[addr:])
	return nil
}

// WriteAt implements Store.
func (m *MemoryStore) WriteAt(ctx context.Context, p []byte, addr Address) error {
	if err := checkRange(m, addr, len(p)); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	copy(m.buf[addr:], p)
	return nil
}

// Size implements Store.
func (m *MemoryStore) Size() int {
	return len(m.buf)
}

// Ping implements Store.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
