// Пакет model — доменные модели TeleFile и описания видов сущностей.
//
// JSON-теги совпадают с контрактом UI (camelCase). Patch-типы содержат
// optional-поля: nil — поле не передано и сохраняет прежнее значение.
package model

import (
	"encoding/json"

	"github.com/bigkaa/telefile/internal/entity"
)

// Виды сущностей и их индексы.
var (
	KindFolder   = entity.Kind{Name: "folder", IndexName: "folders"}
	KindFile     = entity.Kind{Name: "file", IndexName: "files"}
	KindSettings = entity.Kind{Name: "settings", IndexName: "settings"}
	KindUser     = entity.Kind{Name: "user", IndexName: "users"}
	KindChat     = entity.Kind{Name: "chat", IndexName: "chats"}
)

// SettingsID — фиксированный id settings-синглтона.
const SettingsID = "app"

// Folder — папка. Вложенности нет: единственная связь — file.folderId.
type Folder struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"` // epoch millis
}

// TelegramRef — маркер успешной пересылки файла в Telegram.
// Устанавливается не более одного раза и никогда не перезаписывается.
type TelegramRef struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name,omitempty"`
}

// File — метаданные файла плюс опциональный контент (base64).
// FolderID может ссылаться на несуществующую папку: висячие ссылки
// допустимы и означают «без папки» с точки зрения UI.
type File struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	FolderID  *string      `json:"folderId,omitempty"`
	Size      int64        `json:"size"`
	Mime      string       `json:"mime"`
	CreatedAt int64        `json:"createdAt"` // epoch millis
	Content   *string      `json:"content,omitempty"` // base64, появляется после загрузки
	Telegram  *TelegramRef `json:"telegram,omitempty"`
}

// AppSettings — настройки приложения, синглтон с id="app".
// Лениво материализуется значением по умолчанию при первом чтении.
type AppSettings struct {
	ID        string `json:"id"`
	BotToken  string `json:"botToken,omitempty"`
	ChannelID string `json:"channelId,omitempty"`
	MockMode  bool   `json:"mockMode"`
}

// User — demo-сущность (шаблонная, для примеров пагинации).
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ChatMessage — сообщение чата.
type ChatMessage struct {
	ID     string `json:"id"`
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
	Text   string `json:"text"`
	TS     int64  `json:"ts"` // epoch millis
}

// ChatBoard — demo-чат со встроенным списком сообщений.
// Обновляется через entity mutate: append к вложенной коллекции.
type ChatBoard struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Messages []ChatMessage `json:"messages"`
}

// --- Patch-типы ---

// OptionalString — поле PATCH-запроса, различающее три случая:
// поле не передано (Set=false), передан null (Set=true, Value=nil),
// передано значение (Set=true, Value != nil).
type OptionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON вызывается только для присутствующих в JSON полей,
// поэтому Set=true означает «поле было в запросе».
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// FilePatch — частичное обновление файла (rename / move).
// folderId: null переносит файл в корень, отсутствие поля сохраняет папку.
type FilePatch struct {
	Name     *string        `json:"name"`
	FolderID OptionalString `json:"folderId"`
}

// Empty сообщает, что патч не содержит ни одного поля.
func (p FilePatch) Empty() bool {
	return p.Name == nil && !p.FolderID.Set
}

// Apply накладывает патч на состояние файла: пофилдово, только
// переданные поля.
func (p FilePatch) Apply(f *File) {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.FolderID.Set {
		f.FolderID = p.FolderID.Value
	}
}

// SettingsPatch — частичное обновление настроек.
type SettingsPatch struct {
	BotToken  *string `json:"botToken"`
	ChannelID *string `json:"channelId"`
	MockMode  *bool   `json:"mockMode"`
}

// Apply накладывает патч на настройки.
func (p SettingsPatch) Apply(s *AppSettings) {
	if p.BotToken != nil {
		s.BotToken = *p.BotToken
	}
	if p.ChannelID != nil {
		s.ChannelID = *p.ChannelID
	}
	if p.MockMode != nil {
		s.MockMode = *p.MockMode
	}
}

// DefaultSettings — значение settings-синглтона по умолчанию.
func DefaultSettings(id string) AppSettings {
	return AppSettings{ID: id, MockMode: true}
}
