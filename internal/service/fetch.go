// fetch.go — загрузка payload'а по URL с ограничением размера.
// Источник upload-пайплайна, когда вместо файла передан url.
package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// FetchResult — результат скачивания по URL.
type FetchResult struct {
	// Data — скачанные байты. Может быть длиннее лимита на 1 байт:
	// проверку потолка выполняет upload-пайплайн.
	Data []byte
	// Filename — имя файла, выведенное из пути URL.
	Filename string
	// ContentType — из заголовка ответа, fallback application/octet-stream.
	ContentType string
}

// Fetcher — HTTP-клиент для скачивания payload'а по URL.
type Fetcher struct {
	httpClient *http.Client
	maxSize    int64
	logger     *slog.Logger
}

// NewFetcher создаёт fetcher с фиксированным таймаутом на запрос
// и жёстким лимитом читаемого объёма (maxSize + 1 байт).
func NewFetcher(timeout time.Duration, maxSize int64, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		maxSize:    maxSize,
		logger:     logger.With(slog.String("component", "fetcher")),
	}
}

// Fetch скачивает payload по URL.
// Некорректный URL — ошибка валидации; сетевая ошибка или не-2xx
// статус — FETCH_ERROR. Читается не более maxSize+1 байт: хвост
// сверх лимита не выкачивается.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, *Error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, errValidation("Некорректный URL: %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, errValidation("Некорректный URL: %s", err.Error())
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, errFetch("Ошибка скачивания %s: %s", rawURL, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errFetch("Источник вернул статус %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, errFetch("Ошибка чтения ответа %s: %s", rawURL, err.Error())
	}

	f.logger.Debug("Payload скачан по URL",
		slog.String("url", rawURL),
		slog.Int("bytes", len(data)),
	)

	return &FetchResult{
		Data:        data,
		Filename:    filenameFromURL(parsed),
		ContentType: contentTypeFromHeader(resp.Header.Get("Content-Type")),
	}, nil
}

// filenameFromURL выводит имя файла из пути URL, fallback — "download".
func filenameFromURL(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "download"
	}
	return name
}

// contentTypeFromHeader нормализует Content-Type ответа:
// отбрасывает параметры (charset и т.д.), fallback — бинарный тип.
func contentTypeFromHeader(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return "application/octet-stream"
	}
	return contentType
}
