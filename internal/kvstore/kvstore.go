// Пакет kvstore — абстракция key-value backend'а TeleFile.
//
// Backend — плоское durable-хранилище строковых ключей. Единственная
// гарантия, на которую опирается вышележащий слой (entity) —
// атомарность операций над одним ключом и CAS через revision.
package kvstore

import (
	"context"
	"errors"
)

// Ошибки backend'а. Любая другая ошибка трактуется вызывающим кодом
// как недоступность хранилища и не ретраится.
var (
	// ErrNotFound — ключ отсутствует.
	ErrNotFound = errors.New("kvstore: ключ не найден")
	// ErrExists — ключ уже существует (Create поверх существующего).
	ErrExists = errors.New("kvstore: ключ уже существует")
	// ErrConflict — revision не совпадает (CAS-конфликт в Update).
	ErrConflict = errors.New("kvstore: конфликт revision")
)

// Backend — интерфейс key-value хранилища.
// Реализации: natskv (NATS JetStream KV), memory (in-memory, тесты и demo).
type Backend interface {
	// Get возвращает значение и revision ключа.
	// Возвращает ErrNotFound, если ключ отсутствует.
	Get(ctx context.Context, key string) ([]byte, uint64, error)

	// Put записывает значение безусловно (last writer wins).
	Put(ctx context.Context, key string, value []byte) (uint64, error)

	// Create записывает значение, только если ключ отсутствует.
	// Возвращает ErrExists, если ключ уже есть.
	Create(ctx context.Context, key string, value []byte) (uint64, error)

	// Update записывает значение, только если текущий revision совпадает
	// с переданным (compare-and-swap). Возвращает ErrConflict при расхождении.
	Update(ctx context.Context, key string, value []byte, revision uint64) (uint64, error)

	// Delete удаляет ключ. Удаление отсутствующего ключа — не ошибка.
	Delete(ctx context.Context, key string) error

	// Keys возвращает все ключи хранилища. Используется сверкой индексов.
	Keys(ctx context.Context) ([]string, error)
}
