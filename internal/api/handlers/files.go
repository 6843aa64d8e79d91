// files.go — HTTP-обработчики файлов: список, чтение, патч, удаление,
// скачивание и пересылка в Telegram.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/telefile/internal/api/response"
	"github.com/bigkaa/telefile/internal/domain/model"
	"github.com/bigkaa/telefile/internal/service"
)

// FilesHandler — обработчик файловых endpoints.
type FilesHandler struct {
	stores      *service.Stores
	downloadSvc *service.DownloadService
	forwardSvc  *service.ForwardService
}

// NewFilesHandler создаёт обработчик файловых endpoints.
func NewFilesHandler(stores *service.Stores, downloadSvc *service.DownloadService, forwardSvc *service.ForwardService) *FilesHandler {
	return &FilesHandler{
		stores:      stores,
		downloadSvc: downloadSvc,
		forwardSvc:  forwardSvc,
	}
}

// List обрабатывает GET /api/files.
// Query: cursor, limit, folderId. folderId=<id> выбирает файлы папки;
// пустое значение или отсутствие параметра — файлы без папки (корень).
func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	cursor, limit := pageParams(r)

	page, err := h.stores.Files.List(r.Context(), cursor, limit)
	if err != nil {
		writeStoreErr(w, err)
		return
	}

	want := r.URL.Query().Get("folderId")
	items := make([]model.File, 0, len(page.Items))
	for _, f := range page.Items {
		switch {
		case want == "" && f.FolderID == nil:
			items = append(items, f)
		case want != "" && f.FolderID != nil && *f.FolderID == want:
			items = append(items, f)
		}
	}
	response.WriteOK(w, items)
}

// Get обрабатывает GET /api/files/{id}.
func (h *FilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	file, found, err := h.stores.Files.Get(r.Context(), id)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	if !found {
		response.NotFound(w, "Файл "+id+" не найден")
		return
	}
	response.WriteOK(w, file)
}

// Patch обрабатывает PATCH /api/files/{id}: rename и перемещение.
// folderId: null переносит файл в корень, отсутствие поля сохраняет папку.
func (h *FilesHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch model.FilePatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if patch.Empty() {
		response.ValidationError(w, "Патч не содержит ни одного поля")
		return
	}
	if patch.Name != nil && *patch.Name == "" {
		response.ValidationError(w, "Поле 'name' не может быть пустым")
		return
	}

	// Патч по несуществующему файлу не должен его материализовать
	_, found, err := h.stores.Files.Get(r.Context(), id)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	if !found {
		response.NotFound(w, "Файл "+id+" не найден")
		return
	}

	updated, err := h.stores.Files.Patch(r.Context(), id, func(f *model.File) {
		patch.Apply(f)
	})
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	response.WriteOK(w, updated)
}

// Delete обрабатывает DELETE /api/files/{id}.
func (h *FilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found, err := h.stores.Files.Delete(r.Context(), id)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	if !found {
		response.NotFound(w, "Файл "+id+" не найден")
		return
	}
	h.downloadSvc.Invalidate(id)
	response.WriteOK(w, map[string]string{"id": id})
}

// Download обрабатывает GET /api/files/{id}/download.
// Отдаёт бинарный контент с заявленным MIME и Content-Disposition —
// единственный endpoint вне JSON-конверта.
func (h *FilesHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, svcErr := h.downloadSvc.Download(r.Context(), id)
	if svcErr != nil {
		writeServiceErr(w, svcErr)
		return
	}

	w.Header().Set("Content-Type", result.Mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Header().Set("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

// Forward обрабатывает POST /api/files/{id}/forward.
// Повторная пересылка — no-op с текущим состоянием файла.
func (h *FilesHandler) Forward(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	file, svcErr := h.forwardSvc.Forward(r.Context(), id)
	if svcErr != nil {
		writeServiceErr(w, svcErr)
		return
	}
	response.WriteOK(w, *file)
}
