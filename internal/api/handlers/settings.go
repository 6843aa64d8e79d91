// settings.go — HTTP-обработчики settings-синглтона.
package handlers

import (
	"net/http"

	"github.com/bigkaa/telefile/internal/api/response"
	"github.com/bigkaa/telefile/internal/domain/model"
	"github.com/bigkaa/telefile/internal/service"
)

// SettingsHandler — обработчик GET/POST /api/settings.
type SettingsHandler struct {
	stores *service.Stores
}

// NewSettingsHandler создаёт обработчик настроек.
func NewSettingsHandler(stores *service.Stores) *SettingsHandler {
	return &SettingsHandler{stores: stores}
}

// Get обрабатывает GET /api/settings.
// Отсутствующий синглтон отдаётся значением по умолчанию без записи
// в хранилище.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.stores.CurrentSettings(r.Context())
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	response.WriteOK(w, settings)
}

// Patch обрабатывает POST /api/settings: частичное обновление.
// Первый патч материализует синглтон поверх значения по умолчанию.
func (h *SettingsHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var patch model.SettingsPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	updated, err := h.stores.Settings.Patch(r.Context(), model.SettingsID, func(s *model.AppSettings) {
		patch.Apply(s)
	})
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	response.WriteOK(w, updated)
}
