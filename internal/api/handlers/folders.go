// folders.go — HTTP-обработчики папок: список, создание, чтение, удаление.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bigkaa/telefile/internal/api/response"
	"github.com/bigkaa/telefile/internal/domain/model"
	"github.com/bigkaa/telefile/internal/service"
)

// FoldersHandler — обработчик endpoints папок.
type FoldersHandler struct {
	stores *service.Stores
}

// NewFoldersHandler создаёт обработчик папок.
func NewFoldersHandler(stores *service.Stores) *FoldersHandler {
	return &FoldersHandler{stores: stores}
}

// List обрабатывает GET /api/folders.
func (h *FoldersHandler) List(w http.ResponseWriter, r *http.Request) {
	cursor, limit := pageParams(r)

	page, err := h.stores.Folders.List(r.Context(), cursor, limit)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	response.WriteOK(w, page.Items)
}

// Create обрабатывает POST /api/folders.
// Тело: {"name": "..."} — name обязателен и непуст.
func (h *FoldersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		response.ValidationError(w, "Поле 'name' обязательно")
		return
	}

	folder := model.Folder{
		ID:        uuid.New().String(),
		Name:      req.Name,
		CreatedAt: nowMillis(),
	}
	created, err := h.stores.Folders.Create(r.Context(), folder.ID, folder)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	response.WriteOK(w, created)
}

// Get обрабатывает GET /api/folders/{id}.
func (h *FoldersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	folder, found, err := h.stores.Folders.Get(r.Context(), id)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	if !found {
		response.NotFound(w, "Папка "+id+" не найдена")
		return
	}
	response.WriteOK(w, folder)
}

// Delete обрабатывает DELETE /api/folders/{id}.
// Файлы папки НЕ удаляются и не перемещаются: их folderId становится
// висячей ссылкой, что допустимо.
func (h *FoldersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found, err := h.stores.Folders.Delete(r.Context(), id)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	if !found {
		response.NotFound(w, "Папка "+id+" не найдена")
		return
	}
	response.WriteOK(w, map[string]string{"id": id})
}
