// stores.go — типизированные entity store'ы всех видов сущностей.
// Единая точка создания: один Typed на вид, общий байтовый Store.
package service

import (
	"context"
	"log/slog"

	"github.com/bigkaa/telefile/internal/domain/model"
	"github.com/bigkaa/telefile/internal/entity"
)

// Stores — контейнер типизированных store'ов TeleFile.
type Stores struct {
	Folders  *entity.Typed[model.Folder]
	Files    *entity.Typed[model.File]
	Settings *entity.Typed[model.AppSettings]
	Users    *entity.Typed[model.User]
	Chats    *entity.Typed[model.ChatBoard]

	store *entity.Store
}

// NewStores создаёт типизированные store'ы поверх байтового entity.Store.
func NewStores(store *entity.Store) *Stores {
	return &Stores{
		Folders: entity.NewTyped(store, model.KindFolder,
			func(id string) model.Folder { return model.Folder{ID: id} },
			func(f model.Folder) string { return f.ID },
		),
		Files: entity.NewTyped(store, model.KindFile,
			func(id string) model.File { return model.File{ID: id} },
			func(f model.File) string { return f.ID },
		),
		Settings: entity.NewTyped(store, model.KindSettings,
			model.DefaultSettings,
			func(s model.AppSettings) string { return s.ID },
		),
		Users: entity.NewTyped(store, model.KindUser,
			func(id string) model.User { return model.User{ID: id} },
			func(u model.User) string { return u.ID },
		),
		Chats: entity.NewTyped(store, model.KindChat,
			func(id string) model.ChatBoard { return model.ChatBoard{ID: id} },
			func(c model.ChatBoard) string { return c.ID },
		),
		store: store,
	}
}

// AllKinds возвращает все виды сущностей (для сверки индексов).
func AllKinds() []entity.Kind {
	return []entity.Kind{
		model.KindFolder,
		model.KindFile,
		model.KindSettings,
		model.KindUser,
		model.KindChat,
	}
}

// EnsureSeeds наполняет хранилище demo-данными всех видов.
// Каждый вид seed'ится независимо и только при пустом индексе.
func (s *Stores) EnsureSeeds(ctx context.Context, logger *slog.Logger) error {
	if err := s.Folders.EnsureSeed(ctx, model.SeedFolders()); err != nil {
		return err
	}
	if err := s.Files.EnsureSeed(ctx, model.SeedFiles()); err != nil {
		return err
	}
	if err := s.Settings.EnsureSeed(ctx, model.SeedSettings()); err != nil {
		return err
	}
	if err := s.Users.EnsureSeed(ctx, model.SeedUsers()); err != nil {
		return err
	}
	if err := s.Chats.EnsureSeed(ctx, model.SeedChats()); err != nil {
		return err
	}
	logger.Debug("Seed-проверка завершена для всех видов сущностей")
	return nil
}

// VerifyIndexes сверяет индексы всех видов с состояниями (при старте).
func (s *Stores) VerifyIndexes(ctx context.Context) error {
	return s.store.VerifyIndexes(ctx, AllKinds())
}

// CurrentSettings возвращает settings-синглтон, лениво материализуя
// значение по умолчанию: если записи ещё нет, возвращается default
// без записи в хранилище (персистится при первом патче).
func (s *Stores) CurrentSettings(ctx context.Context) (model.AppSettings, error) {
	settings, found, err := s.Settings.Get(ctx, model.SettingsID)
	if err != nil {
		return settings, err
	}
	if !found {
		return model.DefaultSettings(model.SettingsID), nil
	}
	return settings, nil
}
