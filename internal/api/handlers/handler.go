// Пакет handlers — HTTP-обработчики TeleFile API.
//
// handler.go — контейнер всех обработчиков и регистрация маршрутов.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/telefile/internal/api/response"
	"github.com/bigkaa/telefile/internal/entity"
	"github.com/bigkaa/telefile/internal/service"
)

// maxJSONBody — потолок размера JSON-тела запроса.
const maxJSONBody = 1 << 20 // 1 MiB

// Handlers — контейнер доменных обработчиков TeleFile.
type Handlers struct {
	Folders  *FoldersHandler
	Files    *FilesHandler
	Upload   *UploadHandler
	Settings *SettingsHandler
	Users    *UsersHandler
	Chats    *ChatsHandler
	Health   *HealthHandler
}

// Routes регистрирует все маршруты API на роутере.
func (h *Handlers) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Route("/folders", func(r chi.Router) {
			r.Get("/", h.Folders.List)
			r.Post("/", h.Folders.Create)
			r.Get("/{id}", h.Folders.Get)
			r.Delete("/{id}", h.Folders.Delete)
		})

		r.Route("/files", func(r chi.Router) {
			r.Get("/", h.Files.List)
			r.Get("/{id}", h.Files.Get)
			r.Patch("/{id}", h.Files.Patch)
			r.Delete("/{id}", h.Files.Delete)
			r.Get("/{id}/download", h.Files.Download)
			r.Post("/{id}/forward", h.Files.Forward)
		})

		r.Post("/upload", h.Upload.Upload)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.Settings.Get)
			r.Post("/", h.Settings.Patch)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.Users.List)
			r.Post("/", h.Users.Create)
			r.Post("/deleteMany", h.Users.DeleteMany)
			r.Get("/{id}", h.Users.Get)
			r.Delete("/{id}", h.Users.Delete)
		})

		r.Route("/chats", func(r chi.Router) {
			r.Get("/", h.Chats.List)
			r.Post("/", h.Chats.Create)
			r.Post("/deleteMany", h.Chats.DeleteMany)
			r.Get("/{id}", h.Chats.Get)
			r.Delete("/{id}", h.Chats.Delete)
			r.Get("/{id}/messages", h.Chats.ListMessages)
			r.Post("/{id}/messages", h.Chats.PostMessage)
		})
	})

	r.Get("/health/live", h.Health.Live)
	r.Get("/health/ready", h.Health.Ready)
}

// --- Общие helpers ---

// writeServiceErr транслирует ошибку сервисного слоя в HTTP-ответ.
func writeServiceErr(w http.ResponseWriter, err *service.Error) {
	response.WriteErr(w, err.StatusCode, err.Message)
}

// writeStoreErr транслирует ошибку слоя хранения в HTTP-ответ.
// Конфликт создания — 409; прочие ошибки backend'а — 503.
func writeStoreErr(w http.ResponseWriter, err error) {
	if errors.Is(err, entity.ErrAlreadyExists) {
		response.WriteErr(w, http.StatusConflict, "Сущность с таким id уже существует")
		return
	}
	response.StorageUnavailable(w, "Хранилище недоступно: "+err.Error())
}

// decodeJSON читает JSON-тело запроса с ограничением размера.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	defer func() { _, _ = io.Copy(io.Discard, body) }()

	if err := json.NewDecoder(body).Decode(dst); err != nil {
		response.ValidationError(w, "Некорректный JSON: "+err.Error())
		return false
	}
	return true
}

// pageParams извлекает параметры cursor-пагинации из query string.
// limit вне диапазона [1, 500] заменяется значением по умолчанию.
func pageParams(r *http.Request) (cursor string, limit int) {
	cursor = r.URL.Query().Get("cursor")
	limit = 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 1 && n <= 500 {
			limit = n
		}
	}
	return cursor, limit
}

// nowMillis — текущее время в epoch millis.
func nowMillis() int64 {
	return time.Now().UnixMilli()
}
