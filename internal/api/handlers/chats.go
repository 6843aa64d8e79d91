// chats.go — HTTP-обработчики чатов (demo-сущность со встроенными
// сообщениями; добавление сообщения — mutate вложенной коллекции).
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/bigkaa/telefile/internal/api/response"
	"github.com/bigkaa/telefile/internal/domain/model"
	"github.com/bigkaa/telefile/internal/service"
)

// ChatsHandler — обработчик endpoints чатов.
type ChatsHandler struct {
	stores *service.Stores
}

// NewChatsHandler создаёт обработчик чатов.
func NewChatsHandler(stores *service.Stores) *ChatsHandler {
	return &ChatsHandler{stores: stores}
}

// List обрабатывает GET /api/chats.
func (h *ChatsHandler) List(w http.ResponseWriter, r *http.Request) {
	cursor, limit := pageParams(r)

	page, err := h.stores.Chats.List(r.Context(), cursor, limit)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	response.WriteOK(w, page)
}

// Create обрабатывает POST /api/chats.
func (h *ChatsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" {
		response.ValidationError(w, "Поле 'title' обязательно")
		return
	}

	chat := model.ChatBoard{
		ID:       uuid.New().String(),
		Title:    req.Title,
		Messages: []model.ChatMessage{},
	}
	created, err := h.stores.Chats.Create(r.Context(), chat.ID, chat)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	response.WriteOK(w, created)
}

// Get обрабатывает GET /api/chats/{id}.
func (h *ChatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	chat, found, err := h.stores.Chats.Get(r.Context(), id)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	if !found {
		response.NotFound(w, "Чат "+id+" не найден")
		return
	}
	response.WriteOK(w, chat)
}

// Delete обрабатывает DELETE /api/chats/{id}.
func (h *ChatsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found, err := h.stores.Chats.Delete(r.Context(), id)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	if !found {
		response.NotFound(w, "Чат "+id+" не найден")
		return
	}
	response.WriteOK(w, map[string]string{"id": id})
}

// DeleteMany обрабатывает POST /api/chats/deleteMany.
func (h *ChatsHandler) DeleteMany(w http.ResponseWriter, r *http.Request) {
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

	deleted, err := h.stores.Chats.DeleteMany(r.Context(), req.IDs)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	response.WriteOK(w, map[string]int{"deleted": deleted})
}

// ListMessages обрабатывает GET /api/chats/{id}/messages.
// Сообщения хранятся внутри чата, отдаётся вложенная коллекция целиком.
func (h *ChatsHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	chat, found, err := h.stores.Chats.Get(r.Context(), id)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	if !found {
		response.NotFound(w, "Чат "+id+" не найден")
		return
	}
	response.WriteOK(w, chat.Messages)
}

// PostMessage обрабатывает POST /api/chats/{id}/messages.
// Append к вложенной коллекции сообщений через CAS mutate:
// конкурентные append'ы не теряют сообщений.
func (h *ChatsHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		UserID string `json:"userId"`
		Text   string `json:"text"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Text == "" {
		response.ValidationError(w, "Поле 'text' обязательно")
		return
	}

	_, found, err := h.stores.Chats.Get(r.Context(), id)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	if !found {
		response.NotFound(w, "Чат "+id+" не найден")
		return
	}

	msg := model.ChatMessage{
		ID:     uuid.New().String(),
		ChatID: id,
		UserID: req.UserID,
		Text:   req.Text,
		TS:     nowMillis(),
	}
	updated, err := h.stores.Chats.Mutate(r.Context(), id, func(c model.ChatBoard) model.ChatBoard {
		c.Messages = append(c.Messages, msg)
		return c
	})
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	response.WriteOK(w, updated)
}
