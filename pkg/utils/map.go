package utils

import (
	"context"
	"sync"
)

// AgnosticMap is a keyed rendezvous between producers and consumers: a
// consumer may Wait for a key before any producer has Set it.
type AgnosticMap[T any] struct {
	sync.Mutex
	items map[uint64]T
	subs  map[uint64][]chan T
}

func NewAgnosticMap[T any]() *AgnosticMap[T] {
	return &AgnosticMap[T]{
		items: make(map[uint64]T),
		subs:  make(map[uint64][]chan T),
	}
}

func (m *AgnosticMap[T]) Set(key uint64, value T) {
	m.Lock()
	m.items[key] = value

	subs := m.subs[key]
	delete(m.subs, key)
	m.Unlock()

	for _, sub := range subs {
		sub <- value
	}
}

// Wait blocks until the given key is set or the context is cancelled.
func (m *AgnosticMap[T]) Wait(ctx context.Context, key uint64) (T, error) {
	m.Lock()
	if item, ok := m.items[key]; ok {
		m.Unlock()
		return item, nil
	}
	sub := make(chan T, 1)
	m.subs[key] = append(m.subs[key], sub)
	m.Unlock()

	select {
	case item := <-sub:
		return item, nil
	case <-ctx.Done():
		var empty T
		return empty, ctx.Err()
	}
}

func (m *AgnosticMap[T]) Delete(key uint64) {
	m.Lock()
	delete(m.items, key)
	m.Unlock()
}

func (m *AgnosticMap[T]) GetKeyList() []uint64 {
	m.Lock()
	defer m.Unlock()
	keys := make([]uint64, 0, len(m.items))
	for key := range m.items {
		keys = append(keys, key)
	}
	return keys
}
