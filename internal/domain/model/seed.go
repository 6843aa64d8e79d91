// seed.go — demo-данные для первоначального наполнения хранилища.
// Загружаются один раз при старте процесса (TF_DEMO_SEED=true),
// только если индекс соответствующего вида пуст.
package model

import (
	"encoding/base64"
	"time"
)

// b64 кодирует строку в base64 (контент demo-файлов).
func b64(s string) *string {
	encoded := base64.StdEncoding.EncodeToString([]byte(s))
	return &encoded
}

func strptr(s string) *string {
	return &s
}

// SeedFolders возвращает demo-папки.
func SeedFolders() []Folder {
	now := time.Now().UnixMilli()
	return []Folder{
		{ID: "f1", Name: "Documents", CreatedAt: now - 86400000},
		{ID: "f2", Name: "Images", CreatedAt: now - 172800000},
		{ID: "f3", Name: "Misc", CreatedAt: now},
	}
}

// SeedFiles возвращает demo-файлы. Часть — с контентом для предпросмотра,
// один — с маркером пересылки (для отображения в UI).
func SeedFiles() []File {
	now := time.Now().UnixMilli()
	return []File{
		{
			ID: "file1", Name: "report.txt", FolderID: strptr("f1"),
			Size: 1024, Mime: "text/plain", CreatedAt: now - 10000,
			Content: b64("This is a sample text file for the TeleFile application demo. It demonstrates text file previews."),
		},
		{
			ID: "file2", Name: "vacation-photo.jpg", FolderID: strptr("f2"),
			Size: 204800, Mime: "image/jpeg", CreatedAt: now - 20000,
			Telegram: &TelegramRef{FileID: "mock_tg_id_1"},
		},
		{
			ID: "file3", Name: "project-archive.zip", FolderID: strptr("f1"),
			Size: 1500000, Mime: "application/zip", CreatedAt: now - 30000,
		},
		{
			ID: "file4", Name: "logo-design.svg", FolderID: strptr("f2"),
			Size: 15360, Mime: "image/svg+xml", CreatedAt: now - 40000,
			Content: b64(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100"><circle cx="50" cy="50" r="40" stroke="black" stroke-width="3" fill="red" /></svg>`),
		},
		{
			ID: "file5", Name: "meeting-notes.md",
			Size: 2048, Mime: "text/markdown", CreatedAt: now - 50000,
			Content: b64("# Meeting Notes\n\n- Discuss project timeline\n- Review Q3 budget"),
		},
		{
			ID: "file6", Name: "audio-clip.mp3", FolderID: strptr("f3"),
			Size: 800000, Mime: "audio/mpeg", CreatedAt: now - 60000,
		},
	}
}

// SeedSettings возвращает settings-синглтон по умолчанию.
func SeedSettings() []AppSettings {
	return []AppSettings{DefaultSettings(SettingsID)}
}

// SeedUsers возвращает demo-пользователей.
func SeedUsers() []User {
	return []User{
		{ID: "u1", Name: "Alice"},
		{ID: "u2", Name: "Bob"},
		{ID: "u3", Name: "Charlie"},
	}
}

// SeedChats возвращает demo-чаты с сообщениями.
func SeedChats() []ChatBoard {
	now := time.Now().UnixMilli()
	return []ChatBoard{
		{
			ID: "c1", Title: "General",
			Messages: []ChatMessage{
				{ID: "m1", ChatID: "c1", UserID: "u1", Text: "Hello everyone!", TS: now - 60000},
				{ID: "m2", ChatID: "c1", UserID: "u2", Text: "Hi Alice", TS: now - 30000},
			},
		},
		{
			ID: "c2", Title: "Random",
			Messages: []ChatMessage{},
		},
	}
}
