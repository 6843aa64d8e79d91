// typed.go — типизированная обёртка entity store.
//
// По одному экземпляру Typed[T] на вид сущности. Патч реализован как
// явное пофилдовое наложение (apply-функция над *T), а не рефлективный
// merge: каждый вид определяет собственный patch-тип с optional-полями.
package entity

import (
	"context"
	"encoding/json"
	"fmt"
)

// Page — страница cursor-пагинации.
type Page[T any] struct {
	Items []T    `json:"items"`
	Next  string `json:"next,omitempty"`
}

// Typed — типизированный доступ к сущностям одного вида.
type Typed[T any] struct {
	store     *Store
	kind      Kind
	defaultFn func(id string) T
	idFn      func(T) string
}

// NewTyped создаёт типизированную обёртку для вида kind.
// defaultFn — значение по умолчанию (используется патчем по отсутствующей
// сущности, например лениво материализуемым settings-синглтоном).
// idFn извлекает id из состояния (для seeding).
func NewTyped[T any](store *Store, kind Kind, defaultFn func(id string) T, idFn func(T) string) *Typed[T] {
	return &Typed[T]{
		store:     store,
		kind:      kind,
		defaultFn: defaultFn,
		idFn:      idFn,
	}
}

// Kind возвращает описание вида.
func (t *Typed[T]) Kind() Kind {
	return t.kind
}

// Get читает сущность. Отсутствие — (zero, false, nil), не ошибка.
func (t *Typed[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var state T

	data, found, err := t.store.Get(ctx, t.kind, id)
	if err != nil || !found {
		return state, false, err
	}

	if err := json.Unmarshal(data, &state); err != nil {
		return state, false, fmt.Errorf("состояние %s.%s повреждено: %w", t.kind.Name, id, err)
	}
	return state, true, nil
}

// Create создаёт сущность. ErrAlreadyExists, если id уже проиндексирован.
func (t *Typed[T]) Create(ctx context.Context, id string, state T) (T, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return state, err
	}
	if err := t.store.Create(ctx, t.kind, id, data); err != nil {
		return state, err
	}
	return state, nil
}

// Patch читает текущее состояние (или default вида, если сущности нет),
// применяет apply и записывает результат. Конкурентные патчи одного id
// сериализуются CAS-циклом нижнего уровня.
func (t *Typed[T]) Patch(ctx context.Context, id string, apply func(*T)) (T, error) {
	return t.transform(ctx, id, func(state *T) error {
		apply(state)
		return nil
	})
}

// Mutate — read-modify-write с произвольной трансформацией состояния.
// Используется, когда обновление зависит от текущих вложенных коллекций
// (например, добавление сообщения в список).
func (t *Typed[T]) Mutate(ctx context.Context, id string, fn func(T) T) (T, error) {
	return t.transform(ctx, id, func(state *T) error {
		*state = fn(*state)
		return nil
	})
}

// transform — общий CAS read-modify-write для Patch и Mutate.
func (t *Typed[T]) transform(ctx context.Context, id string, apply func(*T) error) (T, error) {
	var result T

	data, err := t.store.Mutate(ctx, t.kind, id, func(cur []byte, found bool) ([]byte, error) {
		state := t.defaultFn(id)
		if found {
			if err := json.Unmarshal(cur, &state); err != nil {
				return nil, fmt.Errorf("состояние %s.%s повреждено: %w", t.kind.Name, id, err)
			}
		}
		if err := apply(&state); err != nil {
			return nil, err
		}
		return json.Marshal(state)
	})
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return result, err
	}
	return result, nil
}

// Delete удаляет сущность. Идемпотентна.
func (t *Typed[T]) Delete(ctx context.Context, id string) (bool, error) {
	return t.store.Delete(ctx, t.kind, id)
}

// DeleteMany удаляет сущности по списку id, возвращает число существовавших.
func (t *Typed[T]) DeleteMany(ctx context.Context, ids []string) (int, error) {
	return t.store.DeleteMany(ctx, t.kind, ids)
}

// List возвращает страницу сущностей в порядке вставки индекса.
// Id без состояния (гонка с параллельным удалением) пропускаются.
func (t *Typed[T]) List(ctx context.Context, cursor string, limit int) (Page[T], error) {
	ids, next, err := t.store.List(ctx, t.kind, cursor, limit)
	if err != nil {
		return Page[T]{}, err
	}

	items := make([]T, 0, len(ids))
	for _, id := range ids {
		state, found, err := t.Get(ctx, id)
		if err != nil {
			return Page[T]{}, err
		}
		if found {
			items = append(items, state)
		}
	}

	return Page[T]{Items: items, Next: next}, nil
}

// EnsureSeed наполняет вид demo-данными, если индекс пуст.
func (t *Typed[T]) EnsureSeed(ctx context.Context, seed []T) error {
	records := make([]SeedRecord, 0, len(seed))
	for _, state := range seed {
		data, err := json.Marshal(state)
		if err != nil {
			return err
		}
		records = append(records, SeedRecord{ID: t.idFn(state), Data: data})
	}
	return t.store.EnsureSeed(ctx, t.kind, records)
}
