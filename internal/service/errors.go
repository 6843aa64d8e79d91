// Пакет service — бизнес-логика TeleFile: пайплайн загрузки,
// скачивания и пересылки файлов.
//
// errors.go — единый тип ошибки сервисного слоя с HTTP-кодом.
package service

import (
	"fmt"

	"github.com/bigkaa/telefile/internal/api/response"
)

// Error — ошибка сервисного слоя, готовая к отдаче в HTTP-ответ.
// Пайплайн не ретраит ничего самостоятельно: ошибка возвращается
// вызывающему с деталями, достаточными для решения о повторе.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// --- Конструкторы для типичных ошибок ---

func errValidation(format string, args ...any) *Error {
	return &Error{StatusCode: 400, Code: response.CodeValidationError, Message: fmt.Sprintf(format, args...)}
}

func errNotFound(format string, args ...any) *Error {
	return &Error{StatusCode: 404, Code: response.CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func errNotConfigured(message string) *Error {
	return &Error{StatusCode: 400, Code: response.CodeNotConfigured, Message: message}
}

func errNoContent(format string, args ...any) *Error {
	return &Error{StatusCode: 400, Code: response.CodeNoContent, Message: fmt.Sprintf(format, args...)}
}

func errFetch(format string, args ...any) *Error {
	return &Error{StatusCode: 400, Code: response.CodeFetchError, Message: fmt.Sprintf(format, args...)}
}

func errForward(format string, args ...any) *Error {
	return &Error{StatusCode: 400, Code: response.CodeForwardFailed, Message: fmt.Sprintf(format, args...)}
}

// errTooLarge — превышение лимита размера. По контракту API — 400,
// как и остальные ошибки валидации входа.
func errTooLarge(size, limit int64) *Error {
	return &Error{
		StatusCode: 400,
		Code:       response.CodeFileTooLarge,
		Message:    fmt.Sprintf("Размер файла %d байт превышает лимит %d байт", size, limit),
	}
}

// errStorage — недоступность key-value backend'а. Не ретраится.
func errStorage(err error) *Error {
	return &Error{
		StatusCode: 503,
		Code:       response.CodeStorageUnavailable,
		Message:    "Хранилище недоступно: " + err.Error(),
	}
}

func errInternal(message string) *Error {
	return &Error{StatusCode: 500, Code: response.CodeInternalError, Message: message}
}
