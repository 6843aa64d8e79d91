// Пакет memory — in-memory реализация kvstore.Backend.
//
// Используется в тестах и в demo-режиме (TF_KV_BACKEND=memory).
// Семантика revision повторяет NATS JetStream KV: монотонный счётчик
// на ключ, Update выполняет compare-and-swap.
package memory

import (
	"context"
	"sync"

	"github.com/bigkaa/telefile/internal/kvstore"
)

// entry — значение ключа с revision.
type entry struct {
	value    []byte
	revision uint64
}

// Backend — потокобезопасное in-memory хранилище.
type Backend struct {
	mu       sync.Mutex
	data     map[string]entry
	revision uint64
}

// New создаёт пустое in-memory хранилище.
func New() *Backend {
	return &Backend{
		data: make(map[string]entry),
	}
}

// Get возвращает значение и revision ключа.
func (b *Backend) Get(_ context.Context, key string) ([]byte, uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.data[key]
	if !ok {
		return nil, 0, kvstore.ErrNotFound
	}
	// Копия, чтобы вызывающий код не мог изменить хранимое значение
	value := make([]byte, len(e.value))
	copy(value, e.value)
	return value, e.revision, nil
}

// Put записывает значение безусловно.
func (b *Backend) Put(_ context.Context, key string, value []byte) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.put(key, value), nil
}

// Create записывает значение, только если ключ отсутствует.
func (b *Backend) Create(_ context.Context, key string, value []byte) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.data[key]; ok {
		return 0, kvstore.ErrExists
	}
	return b.put(key, value), nil
}

// Update выполняет compare-and-swap по revision.
func (b *Backend) Update(_ context.Context, key string, value []byte, revision uint64) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.data[key]
	if !ok || e.revision != revision {
		return 0, kvstore.ErrConflict
	}
	return b.put(key, value), nil
}

// Delete удаляет ключ. Отсутствующий ключ — не ошибка.
func (b *Backend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
	return nil
}

// Keys возвращает все ключи хранилища.
func (b *Backend) Keys(_ context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	keys := make([]string, 0, len(b.data))
	for k := range b.data {
		keys = append(keys, k)
	}
	return keys, nil
}

// put записывает значение под новым revision. Вызывается под mutex.
func (b *Backend) put(key string, value []byte) uint64 {
	b.revision++
	stored := make([]byte, len(value))
	copy(stored, value)
	b.data[key] = entry{value: stored, revision: b.revision}
	return b.revision
}

// Проверка соответствия интерфейсу на этапе компиляции.
var _ kvstore.Backend = (*Backend)(nil)
