// Пакет entity — обобщённый indexed entity store TeleFile.
//
// Слой поверх kvstore.Backend: типизированный CRUD, вторичный индекс
// на вид сущности, cursor-пагинация, массовое удаление и demo-seeding.
// Вид сущности описывается значением Kind; store и индекс поддерживаются
// в lockstep каждой мутирующей операцией.
//
// Раскладка ключей:
//   состояние  <kind>.<id>        (например file.3f1a...)
//   индекс     index.<indexName>  (JSON-массив id в порядке вставки)
//
// Разделитель "." вместо ":" — ограничение алфавита ключей NATS KV.
package entity

import "errors"

// Ошибки entity store.
var (
	// ErrAlreadyExists — Create поверх уже проиндексированного id.
	ErrAlreadyExists = errors.New("entity: сущность уже существует")
)

// DefaultListLimit — лимит выдачи List по умолчанию.
const DefaultListLimit = 50

// maxCASRetries — максимум повторов CAS-цикла при конфликте revision.
const maxCASRetries = 10

// Kind — описание вида сущности: имя и имя индекса.
type Kind struct {
	// Name — имя вида, префикс ключей состояния ("folder", "file", ...)
	Name string
	// IndexName — имя индекса ("folders", "files", ...)
	IndexName string
}

// StateKey возвращает ключ состояния сущности.
func (k Kind) StateKey(id string) string {
	return k.Name + "." + id
}

// IndexKey возвращает ключ индекса вида.
func (k Kind) IndexKey() string {
	return "index." + k.IndexName
}
