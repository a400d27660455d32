package mocks

import (
	"context"
	"sync"

	"github.com/user/storyreel/pkg/ports"
)

// KeyValueStore is an in-memory implementation of ports.KeyValueStore.
type KeyValueStore struct {
	mu     sync.RWMutex
	values map[string]string

	GetFunc func(ctx context.Context, key string) (string, bool, error)
	SetFunc func(ctx context.Context, key, value string) error

	Closed bool
}

// NewKeyValueStore creates an empty in-memory store.
func NewKeyValueStore() *KeyValueStore {
	return &KeyValueStore{values: make(map[string]string)}
}

func (m *KeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *KeyValueStore) Set(ctx context.Context, key, value string) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *KeyValueStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *KeyValueStore) Close() error {
	m.Closed = true
	return nil
}

// Value returns the raw stored value (for test verification).
func (m *KeyValueStore) Value(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

var _ ports.KeyValueStore = (*KeyValueStore)(nil)

// ProductSink is a mock implementation of ports.ProductSink.
type ProductSink struct {
	DeliverFunc func(ctx context.Context, product ports.RenderProduct) (ports.Delivery, error)

	Delivered []ports.RenderProduct
}

func (m *ProductSink) Deliver(ctx context.Context, product ports.RenderProduct) (ports.Delivery, error) {
	m.Delivered = append(m.Delivered, product)
	if m.DeliverFunc != nil {
		return m.DeliverFunc(ctx, product)
	}
	return ports.Delivery{Path: "out." + product.Format.Container}, nil
}

var _ ports.ProductSink = (*ProductSink)(nil)
