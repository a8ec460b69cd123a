/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package storage

import (
	"context"
	"sync"
)

// Memory is a Backend that forgets everything on exit.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

var _ Backend = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string][]byte)}
}

func (m *Memory) Close() error {
	return nil
}

func (m *Memory) Namespace(ns string) KV {
	return &memoryBucket{m: m, ns: ns}
}

type memoryBucket struct {
	m  *Memory
	ns string
}

func (b *memoryBucket) Get(_ context.Context, key string) ([]byte, error) {
	b.m.mu.RLock()
	defer b.m.mu.RUnlock()

	v, ok := b.m.data[b.ns][key]
	if !ok {
		return nil, ErrNotFound
	}

	return append([]byte(nil), v...), nil
}

func (b *memoryBucket) Set(_ context.Context, key string, value []byte) error {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()

	if b.m.data[b.ns] == nil {
		b.m.data[b.ns] = make(map[string][]byte)
	}
	b.m.data[b.ns][key] = append([]byte(nil), value...)

	return nil
}
