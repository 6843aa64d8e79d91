// Пакет natskv — реализация kvstore.Backend поверх NATS JetStream KV.
//
// Bucket создаётся (или переиспользуется) при старте. Ошибки JetStream
// транслируются в sentinel-ошибки kvstore, чтобы вышележащий слой
// не зависел от конкретного backend'а.
package natskv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/bigkaa/telefile/internal/kvstore"
)

// Backend — kvstore.Backend поверх NATS JetStream KV bucket.
type Backend struct {
	nc     *nats.Conn
	bucket jetstream.KeyValue
	logger *slog.Logger
}

// New подключается к NATS и создаёт (или открывает) KV bucket.
// url — адрес NATS-сервера, bucket — имя KV bucket'а.
func New(ctx context.Context, url, bucket string, logger *slog.Logger) (*Backend, error) {
	nc, err := nats.Connect(url,
		nats.Name("telefile"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("подключение к NATS %s: %w", url, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("инициализация JetStream: %w", err)
	}

	kv, err := js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "TeleFile: сущности и индексы",
		History:     1,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("создание KV bucket %s: %w", bucket, err)
	}

	logger.Info("KV backend подключен",
		slog.String("url", url),
		slog.String("bucket", bucket),
	)

	return &Backend{
		nc:     nc,
		bucket: kv,
		logger: logger.With(slog.String("component", "natskv")),
	}, nil
}

// Get возвращает значение и revision ключа.
func (b *Backend) Get(ctx context.Context, key string) ([]byte, uint64, error) {
	entry, err := b.bucket.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, 0, kvstore.ErrNotFound
		}
		return nil, 0, fmt.Errorf("kv get %s: %w", key, err)
	}
	return entry.Value(), entry.Revision(), nil
}

// Put записывает значение безусловно.
func (b *Backend) Put(ctx context.Context, key string, value []byte) (uint64, error) {
	rev, err := b.bucket.Put(ctx, key, value)
	if err != nil {
		return 0, fmt.Errorf("kv put %s: %w", key, err)
	}
	return rev, nil
}

// Create записывает значение, только если ключ отсутствует.
func (b *Backend) Create(ctx context.Context, key string, value []byte) (uint64, error) {
	rev, err := b.bucket.Create(ctx, key, value)
	if err != nil {
		if isConflict(err) {
			return 0, kvstore.ErrExists
		}
		return 0, fmt.Errorf("kv create %s: %w", key, err)
	}
	return rev, nil
}

// Update выполняет compare-and-swap по revision.
func (b *Backend) Update(ctx context.Context, key string, value []byte, revision uint64) (uint64, error) {
	rev, err := b.bucket.Update(ctx, key, value, revision)
	if err != nil {
		if isConflict(err) {
			return 0, kvstore.ErrConflict
		}
		return 0, fmt.Errorf("kv update %s: %w", key, err)
	}
	return rev, nil
}

// Delete удаляет ключ. Отсутствующий ключ — не ошибка.
func (b *Backend) Delete(ctx context.Context, key string) error {
	if err := b.bucket.Delete(ctx, key); err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil
		}
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	return nil
}

// Keys возвращает все ключи bucket'а. Пустой bucket — пустой срез.
func (b *Backend) Keys(ctx context.Context) ([]string, error) {
	keys, err := b.bucket.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("kv keys: %w", err)
	}
	return keys, nil
}

// Close закрывает соединение с NATS.
func (b *Backend) Close() {
	b.nc.Close()
}

// isConflict распознаёт CAS-конфликты JetStream KV:
// Create поверх существующего ключа либо Update с устаревшим revision.
func isConflict(err error) bool {
	if errors.Is(err, jetstream.ErrKeyExists) {
		return true
	}
	var apiErr *jetstream.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode == jetstream.JSErrCodeStreamWrongLastSequence
	}
	return false
}

// Проверка соответствия интерфейсу на этапе компиляции.
var _ kvstore.Backend = (*Backend)(nil)
