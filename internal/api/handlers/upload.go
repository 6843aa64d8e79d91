// upload.go — HTTP-обработчик загрузки файла.
// Multipart form: file (байты) либо url (источник), folderId (опционально).
package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/bigkaa/telefile/internal/api/response"
	"github.com/bigkaa/telefile/internal/service"
)

// multipartOverhead — запас на multipart-заголовки и прочие поля формы
// поверх лимита payload'а.
const multipartOverhead = 1 << 20

// UploadHandler — обработчик POST /api/upload.
type UploadHandler struct {
	uploadSvc   *service.UploadService
	maxFileSize int64
}

// NewUploadHandler создаёт обработчик загрузки.
func NewUploadHandler(uploadSvc *service.UploadService, maxFileSize int64) *UploadHandler {
	return &UploadHandler{uploadSvc: uploadSvc, maxFileSize: maxFileSize}
}

// Upload обрабатывает POST /api/upload.
// Принимает multipart form: ровно один источник — file или url.
// Превышение лимита размера отклоняется до любой записи в хранилище.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Тело жёстко ограничено до разбора формы: запрос сверх потолка
	// обрывается, не буферизуясь целиком
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+multipartOverhead)

	if err := r.ParseMultipartForm(h.maxFileSize + 1); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.WriteErr(w, http.StatusBadRequest,
				"Размер запроса превышает лимит "+strconv.FormatInt(h.maxFileSize, 10)+" байт")
			return
		}
		response.ValidationError(w, "Ошибка парсинга multipart: "+err.Error())
		return
	}

	params := service.UploadParams{
		URL: r.FormValue("url"),
		Now: nowMillis(),
	}
	if folderID := r.FormValue("folderId"); folderID != "" {
		params.FolderID = &folderID
	}

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		// Читаем на 1 байт больше лимита: точный == лимит проходит,
		// превышение отлавливается сервисом без выкачивания хвоста
		data, readErr := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
		if readErr != nil {
			response.ValidationError(w, "Ошибка чтения файла: "+readErr.Error())
			return
		}
		params.Data = data
		params.Filename = header.Filename
		params.ContentType = header.Header.Get("Content-Type")
	case params.URL == "":
		response.ValidationError(w, "Требуется файл или url")
		return
	}

	result, svcErr := h.uploadSvc.Upload(r.Context(), params)
	if svcErr != nil {
		writeServiceErr(w, svcErr)
		return
	}
	response.WriteOK(w, *result)
}
