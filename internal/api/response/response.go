// Пакет response — единый конверт JSON-ответов TeleFile API.
// Формат: {"success": bool, "data": ..., "error": "..."}.
// Все JSON-ответы API должны проходить через WriteOK / WriteErr.
package response

import (
	"encoding/json"
	"net/http"
)

// Машиночитаемые коды ошибок сервисного слоя.
const (
	CodeValidationError    = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeNotConfigured      = "NOT_CONFIGURED"
	CodeNoContent          = "NO_CONTENT"
	CodeFetchError         = "FETCH_ERROR"
	CodeForwardFailed      = "FORWARD_FAILED"
	CodeFileTooLarge       = "FILE_TOO_LARGE"
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// Envelope — конверт ответа API.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// okEnvelope — успешный ответ. data сериализуется всегда,
// пустой список отдаётся как [], а не пропуском поля.
type okEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// WriteOK записывает успешный ответ с данными.
func WriteOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(okEnvelope{Success: true, Data: data})
}

// WriteErr записывает ответ с ошибкой и указанным статус-кодом.
func WriteErr(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(Envelope{Success: false, Error: message})
}

// --- Конструкторы для типичных ошибок ---

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string) {
	WriteErr(w, http.StatusBadRequest, message)
}

// NotFound — 404 ресурс не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteErr(w, http.StatusNotFound, message)
}

// StorageUnavailable — 503 key-value backend недоступен.
func StorageUnavailable(w http.ResponseWriter, message string) {
	WriteErr(w, http.StatusServiceUnavailable, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteErr(w, http.StatusInternalServerError, message)
}
