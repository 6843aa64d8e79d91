// store.go — байтовый уровень entity store: операции над состояниями
// и индексами без знания схемы. Типизация — в typed.go.
package entity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/bigkaa/telefile/internal/kvstore"
)

// Store — обобщённый indexed entity store поверх kvstore.Backend.
// Схему состояний не валидирует: корректность — ответственность вызывающего.
type Store struct {
	kv     kvstore.Backend
	logger *slog.Logger
}

// NewStore создаёт entity store поверх backend'а.
func NewStore(kv kvstore.Backend, logger *slog.Logger) *Store {
	return &Store{
		kv:     kv,
		logger: logger.With(slog.String("component", "entity_store")),
	}
}

// Get читает состояние сущности.
// Отсутствие сущности — не ошибка: возвращается (nil, false, nil).
func (s *Store) Get(ctx context.Context, kind Kind, id string) ([]byte, bool, error) {
	data, _, err := s.kv.Get(ctx, kind.StateKey(id))
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Create записывает состояние и добавляет id в индекс вида.
// Возвращает ErrAlreadyExists, если сущность с таким id уже есть.
func (s *Store) Create(ctx context.Context, kind Kind, id string, data []byte) error {
	if _, err := s.kv.Create(ctx, kind.StateKey(id), data); err != nil {
		if errors.Is(err, kvstore.ErrExists) {
			return ErrAlreadyExists
		}
		return err
	}
	return s.indexAdd(ctx, kind, id)
}

// Mutate выполняет read-modify-write состояния через CAS-цикл.
// transform получает текущее состояние (found=false — сущности нет)
// и возвращает новое. Если сущность материализуется из default'а,
// id добавляется в индекс — store и индекс остаются в lockstep.
// Возвращает записанное состояние.
func (s *Store) Mutate(ctx context.Context, kind Kind, id string,
	transform func(cur []byte, found bool) ([]byte, error)) ([]byte, error) {

	key := kind.StateKey(id)

	for attempt := 0; attempt < maxCASRetries; attempt++ {
		cur, rev, err := s.kv.Get(ctx, key)
		found := true
		if err != nil {
			if !errors.Is(err, kvstore.ErrNotFound) {
				return nil, err
			}
			found = false
			cur = nil
		}

		next, err := transform(cur, found)
		if err != nil {
			return nil, err
		}

		if !found {
			if _, err := s.kv.Create(ctx, key, next); err != nil {
				if errors.Is(err, kvstore.ErrExists) {
					continue // кто-то создал параллельно — перечитываем
				}
				return nil, err
			}
			if err := s.indexAdd(ctx, kind, id); err != nil {
				return nil, err
			}
			return next, nil
		}

		if _, err := s.kv.Update(ctx, key, next, rev); err != nil {
			if errors.Is(err, kvstore.ErrConflict) {
				continue
			}
			return nil, err
		}
		return next, nil
	}

	return nil, fmt.Errorf("entity mutate %s.%s: исчерпаны CAS-попытки", kind.Name, id)
}

// Delete удаляет состояние и запись индекса.
// Идемпотентна: удаление отсутствующего id возвращает (false, nil).
func (s *Store) Delete(ctx context.Context, kind Kind, id string) (bool, error) {
	_, found, err := s.Get(ctx, kind, id)
	if err != nil {
		return false, err
	}

	if err := s.kv.Delete(ctx, kind.StateKey(id)); err != nil {
		return false, err
	}
	if err := s.indexRemove(ctx, kind, id); err != nil {
		return false, err
	}
	return found, nil
}

// DeleteMany удаляет сущности по списку id и возвращает количество
// реально существовавших. Без отката: при ошибке в середине батча
// уже обработанные id остаются удалёнными.
func (s *Store) DeleteMany(ctx context.Context, kind Kind, ids []string) (int, error) {
	count := 0
	for _, id := range ids {
		deleted, err := s.Delete(ctx, kind, id)
		if err != nil {
			return count, err
		}
		if deleted {
			count++
		}
	}
	return count, nil
}

// List возвращает страницу id в порядке вставки индекса.
// cursor — id последнего элемента предыдущей страницы ("" — с начала),
// limit <= 0 — DefaultListLimit. next — курсор продолжения ("" — конец).
func (s *Store) List(ctx context.Context, kind Kind, cursor string, limit int) (ids []string, next string, err error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	all, _, found, err := s.readIndex(ctx, kind)
	if err != nil {
		return nil, "", err
	}
	if !found {
		return nil, "", nil
	}

	start := 0
	if cursor != "" {
		if pos := slices.Index(all, cursor); pos >= 0 {
			start = pos + 1
		}
	}
	if start >= len(all) {
		return nil, "", nil
	}

	end := start + limit
	if end > len(all) {
		end = len(all)
	}

	page := all[start:end]
	if end < len(all) {
		next = page[len(page)-1]
	}
	return page, next, nil
}

// SeedRecord — одна запись demo-данных.
type SeedRecord struct {
	ID   string
	Data []byte
}

// EnsureSeed наполняет вид demo-данными, если его индекс пуст или
// отсутствует. No-op, как только существует хотя бы одна запись.
func (s *Store) EnsureSeed(ctx context.Context, kind Kind, records []SeedRecord) error {
	existing, _, found, err := s.readIndex(ctx, kind)
	if err != nil {
		return err
	}
	if found && len(existing) > 0 {
		return nil
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		if _, err := s.kv.Put(ctx, kind.StateKey(rec.ID), rec.Data); err != nil {
			return err
		}
		ids = append(ids, rec.ID)
	}

	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if _, err := s.kv.Put(ctx, kind.IndexKey(), data); err != nil {
		return err
	}

	s.logger.Info("Demo-данные загружены",
		slog.String("kind", kind.Name),
		slog.Int("records", len(records)),
	)
	return nil
}

// VerifyIndexes сверяет индексы перечисленных видов с реально
// существующими состояниями и чинит расхождения: висячие id
// удаляются из индекса, осиротевшие состояния добавляются в конец.
// Вызывается при старте процесса.
func (s *Store) VerifyIndexes(ctx context.Context, kinds []Kind) error {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		return err
	}

	// Собираем множества id состояний по видам
	states := make(map[string]map[string]bool, len(kinds))
	for _, kind := range kinds {
		states[kind.Name] = make(map[string]bool)
	}
	for _, key := range keys {
		for _, kind := range kinds {
			prefix := kind.Name + "."
			if strings.HasPrefix(key, prefix) {
				states[kind.Name][strings.TrimPrefix(key, prefix)] = true
			}
		}
	}

	for _, kind := range kinds {
		indexed, _, _, err := s.readIndex(ctx, kind)
		if err != nil {
			return err
		}

		repaired := make([]string, 0, len(indexed))
		seen := make(map[string]bool, len(indexed))
		dangling := 0
		for _, id := range indexed {
			if states[kind.Name][id] {
				repaired = append(repaired, id)
				seen[id] = true
			} else {
				dangling++
			}
		}

		orphaned := 0
		for _, key := range keys {
			prefix := kind.Name + "."
			if !strings.HasPrefix(key, prefix) {
				continue
			}
			id := strings.TrimPrefix(key, prefix)
			if !seen[id] {
				repaired = append(repaired, id)
				orphaned++
			}
		}

		if dangling == 0 && orphaned == 0 {
			continue
		}

		data, err := json.Marshal(repaired)
		if err != nil {
			return err
		}
		if _, err := s.kv.Put(ctx, kind.IndexKey(), data); err != nil {
			return err
		}

		s.logger.Warn("Индекс восстановлен после сверки",
			slog.String("kind", kind.Name),
			slog.Int("dangling", dangling),
			slog.Int("orphaned", orphaned),
		)
	}

	return nil
}

// --- Работа с индексом ---

// readIndex читает индекс вида. found=false — индекс ещё не создан.
func (s *Store) readIndex(ctx context.Context, kind Kind) ([]string, uint64, bool, error) {
	data, rev, err := s.kv.Get(ctx, kind.IndexKey())
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return nil, 0, false, nil
		}
		return nil, 0, false, err
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, 0, false, fmt.Errorf("индекс %s повреждён: %w", kind.IndexKey(), err)
	}
	return ids, rev, true, nil
}

// indexAdd добавляет id в конец индекса, если его там нет. CAS-цикл.
func (s *Store) indexAdd(ctx context.Context, kind Kind, id string) error {
	return s.mutateIndex(ctx, kind, func(ids []string) ([]string, bool) {
		if slices.Contains(ids, id) {
			return ids, false
		}
		return append(ids, id), true
	})
}

// indexRemove удаляет id из индекса, если он там есть. CAS-цикл.
func (s *Store) indexRemove(ctx context.Context, kind Kind, id string) error {
	return s.mutateIndex(ctx, kind, func(ids []string) ([]string, bool) {
		pos := slices.Index(ids, id)
		if pos < 0 {
			return ids, false
		}
		return slices.Delete(ids, pos, pos+1), true
	})
}

// mutateIndex применяет transform к списку id индекса через CAS-цикл.
// transform возвращает (новый список, нужна ли запись).
func (s *Store) mutateIndex(ctx context.Context, kind Kind,
	transform func(ids []string) ([]string, bool)) error {

	key := kind.IndexKey()

	for attempt := 0; attempt < maxCASRetries; attempt++ {
		ids, rev, found, err := s.readIndex(ctx, kind)
		if err != nil {
			return err
		}

		next, changed := transform(ids)
		if !changed {
			return nil
		}

		data, err := json.Marshal(next)
		if err != nil {
			return err
		}

		if !found {
			if _, err := s.kv.Create(ctx, key, data); err != nil {
				if errors.Is(err, kvstore.ErrExists) {
					continue
				}
				return err
			}
			return nil
		}

		if _, err := s.kv.Update(ctx, key, data, rev); err != nil {
			if errors.Is(err, kvstore.ErrConflict) {
				continue
			}
			return err
		}
		return nil
	}

	return fmt.Errorf("индекс %s: исчерпаны CAS-попытки", key)
}
