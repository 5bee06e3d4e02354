package storage

import (
	"context"
	"slices"
	"sync"
)

type MemorySlot struct {
	m    sync.RWMutex
	data map[string][]byte
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{data: make(map[string][]byte)}
}

func (s *MemorySlot) Get(_ context.Context, key string) ([]byte, error) {
	s.m.RLock()
	defer s.m.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, ErrSlotNotFound
	}
	return slices.Clone(v), nil
}

func (s *MemorySlot) Put(_ context.Context, key string, value []byte) error {
	s.m.Lock()
	defer s.m.Unlock()
	s.data[key] = slices.Clone(value)
	return nil
}

func (s *MemorySlot) Delete(_ context.Context, key string) error {
	s.m.Lock()
	defer s.m.Unlock()
	delete(s.data, key)
	return nil
}
