// users.go — HTTP-обработчики пользователей (demo-сущность).
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bigkaa/telefile/internal/api/response"
	"github.com/bigkaa/telefile/internal/domain/model"
	"github.com/bigkaa/telefile/internal/service"
)

// UsersHandler — обработчик endpoints пользователей.
type UsersHandler struct {
	stores *service.Stores
}

// NewUsersHandler создаёт обработчик пользователей.
func NewUsersHandler(stores *service.Stores) *UsersHandler {
	return &UsersHandler{stores: stores}
}

// List обрабатывает GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	cursor, limit := pageParams(r)

	page, err := h.stores.Users.List(r.Context(), cursor, limit)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	response.WriteOK(w, page)
}

// Create обрабатывает POST /api/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	user := model.User{ID: uuid.New().String(), Name: req.Name}
	created, err := h.stores.Users.Create(r.Context(), user.ID, user)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	response.WriteOK(w, created)
}

// Get обрабатывает GET /api/users/{id}.
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, found, err := h.stores.Users.Get(r.Context(), id)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	if !found {
		response.NotFound(w, "Пользователь "+id+" не найден")
		return
	}
	response.WriteOK(w, user)
}

// Delete обрабатывает DELETE /api/users/{id}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found, err := h.stores.Users.Delete(r.Context(), id)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	if !found {
		response.NotFound(w, "Пользователь "+id+" не найден")
		return
	}
	response.WriteOK(w, map[string]string{"id": id})
}

// DeleteMany обрабатывает POST /api/users/deleteMany.
// Тело: {"ids": [...]}. Несуществующие id пропускаются без ошибки.
func (h *UsersHandler) DeleteMany(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		response.ValidationError(w, "Поле 'ids' обязательно и непусто")
		return
	}

	deleted, err := h.stores.Users.DeleteMany(r.Context(), req.IDs)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	response.WriteOK(w, map[string]int{"deleted": deleted})
}
