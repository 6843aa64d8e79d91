package service

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bigkaa/telefile/internal/api/response"
	"github.com/bigkaa/telefile/internal/telegram"
)

const testMaxFileSize = 1024

// newUploadEnv собирает полный пайплайн загрузки поверх in-memory backend'а.
func newUploadEnv(tgURL string) (*Stores, *UploadService, *DownloadService) {
	stores := newTestStores()
	tg := telegram.New(tgURL, 5*time.Second, testLogger())
	fwd := NewForwardService(stores, tg, testLogger())
	fetcher := NewFetcher(5*time.Second, testMaxFileSize, testLogger())
	upload := NewUploadService(stores, fetcher, fwd, testMaxFileSize, testLogger())
	download := NewDownloadService(stores, 16, time.Minute, testLogger())
	return stores, upload, download
}

func TestUpload_InlineRoundTrip(t *testing.T) {
	var calls atomic.Int64
	srv := tgOKServer(&calls)
	defer srv.Close()

	_, upload, download := newUploadEnv(srv.URL)
	payload := []byte{0x00, 0x01, 0xFF, 0xFE, 'a', 'b'}

	file, svcErr := upload.Upload(context.Background(), UploadParams{
		Data:        payload,
		Filename:    "blob.bin",
		ContentType: "application/octet-stream",
		Now:         1700000000000,
	})
	if svcErr != nil {
		t.Fatalf("неожиданная ошибка: %v", svcErr)
	}
	if file.Size != int64(len(payload)) {
		t.Errorf("Size: ожидалось %d, получено %d", len(payload), file.Size)
	}

	// Round trip побайтово точен
	result, svcErr := download.Download(context.Background(), file.ID)
	if svcErr != nil {
		t.Fatalf("неожиданная ошибка: %v", svcErr)
	}
	if !bytes.Equal(result.Data, payload) {
		t.Errorf("round trip повреждён: %v != %v", result.Data, payload)
	}
	if result.Mime != "application/octet-stream" {
		t.Errorf("Mime: получено %q", result.Mime)
	}
	if result.Filename != "blob.bin" {
		t.Errorf("Filename: получено %q", result.Filename)
	}
}

func TestUpload_SizeCeiling(t *testing.T) {
	var calls atomic.Int64
	srv := tgOKServer(&calls)
	defer srv.Close()

	stores, upload, _ := newUploadEnv(srv.URL)

	// Ровно лимит — проходит
	exact := bytes.Repeat([]byte("x"), testMaxFileSize)
	if _, svcErr := upload.Upload(context.Background(), UploadParams{
		Data: exact, Filename: "exact.bin", Now: 1,
	}); svcErr != nil {
		t.Fatalf("payload == лимит должен проходить: %v", svcErr)
	}

	// Лимит + 1 байт — отклоняется
	over := bytes.Repeat([]byte("x"), testMaxFileSize+1)
	_, svcErr := upload.Upload(context.Background(), UploadParams{
		Data: over, Filename: "over.bin", Now: 1,
	})
	if svcErr == nil || svcErr.Code != response.CodeFileTooLarge {
		t.Fatalf("ожидался FILE_TOO_LARGE, получено %+v", svcErr)
	}
	if svcErr.StatusCode != 400 {
		t.Errorf("статус: ожидалось 400, получено %d", svcErr.StatusCode)
	}

	// Отклонённая загрузка не оставила следов в хранилище
	page, err := stores.Files.List(context.Background(), "", 50)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if len(page.Items) != 1 {
		t.Errorf("ожидался только первый файл, получено %d", len(page.Items))
	}
}

func TestUpload_RequiresSource(t *testing.T) {
	var calls atomic.Int64
	srv := tgOKServer(&calls)
	defer srv.Close()

	_, upload, _ := newUploadEnv(srv.URL)

	_, svcErr := upload.Upload(context.Background(), UploadParams{Now: 1})
	if svcErr == nil || svcErr.Code != response.CodeValidationError {
		t.Errorf("ожидался VALIDATION_ERROR, получено %+v", svcErr)
	}
}

func TestUpload_FromURL(t *testing.T) {
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("remote content"))
	}))
	defer source.Close()

	var calls atomic.Int64
	tg := tgOKServer(&calls)
	defer tg.Close()

	_, upload, download := newUploadEnv(tg.URL)

	file, svcErr := upload.Upload(context.Background(), UploadParams{
		URL: source.URL + "/docs/readme.txt",
		Now: 1,
	})
	if svcErr != nil {
		t.Fatalf("неожиданная ошибка: %v", svcErr)
	}

	// Имя — из пути URL, Content-Type — из заголовка без параметров
	if file.Name != "readme.txt" {
		t.Errorf("Name: ожидалось 'readme.txt', получено %q", file.Name)
	}
	if file.Mime != "text/plain" {
		t.Errorf("Mime: ожидалось 'text/plain', получено %q", file.Mime)
	}

	result, svcErr := download.Download(context.Background(), file.ID)
	if svcErr != nil {
		t.Fatalf("неожиданная ошибка: %v", svcErr)
	}
	if string(result.Data) != "remote content" {
		t.Errorf("контент: %q", result.Data)
	}
}

func TestUpload_FetchErrors(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer down.Close()

	var calls atomic.Int64
	tg := tgOKServer(&calls)
	defer tg.Close()

	_, upload, _ := newUploadEnv(tg.URL)

	tests := []struct {
		name     string
		url      string
		wantCode string
	}{
		{"невалидная схема", "ftp://example.com/file", response.CodeValidationError},
		{"не-2xx статус", down.URL + "/missing", response.CodeFetchError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, svcErr := upload.Upload(context.Background(), UploadParams{URL: tt.url, Now: 1})
			if svcErr == nil || svcErr.Code != tt.wantCode {
				t.Errorf("ожидался %s, получено %+v", tt.wantCode, svcErr)
			}
		})
	}
}

func TestUpload_ForwardsWhenConfigured(t *testing.T) {
	var calls atomic.Int64
	tg := tgOKServer(&calls)
	defer tg.Close()

	stores, upload, _ := newUploadEnv(tg.URL)
	configureBot(t, stores)

	file, svcErr := upload.Upload(context.Background(), UploadParams{
		Data: []byte("payload"), Filename: "a.bin", Now: 1,
	})
	if svcErr != nil {
		t.Fatalf("неожиданная ошибка: %v", svcErr)
	}
	if file.Telegram == nil || file.Telegram.FileID != "tg-abc" {
		t.Errorf("пересылка при загрузке не состоялась: %+v", file.Telegram)
	}
	if calls.Load() != 1 {
		t.Errorf("ожидался 1 вызов Bot API, получено %d", calls.Load())
	}
}

func TestUpload_ForwardFailureSwallowed(t *testing.T) {
	// Bot API лежит: загрузка всё равно успешна, файл без маркера
	tg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer tg.Close()

	stores, upload, _ := newUploadEnv(tg.URL)
	configureBot(t, stores)

	file, svcErr := upload.Upload(context.Background(), UploadParams{
		Data: []byte("payload"), Filename: "a.bin", Now: 1,
	})
	if svcErr != nil {
		t.Fatalf("неудача пересылки не должна всплывать: %v", svcErr)
	}
	if file.Telegram != nil {
		t.Errorf("маркера быть не должно: %+v", file.Telegram)
	}

	// Контент сохранён, ручная пересылка возможна позже
	saved, _, err := stores.Files.Get(context.Background(), file.ID)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if saved.Content == nil {
		t.Error("контент должен быть сохранён")
	}
}

func TestDownload_NotFoundAndNoContent(t *testing.T) {
	var calls atomic.Int64
	tg := tgOKServer(&calls)
	defer tg.Close()

	stores, _, download := newUploadEnv(tg.URL)

	if _, svcErr := download.Download(context.Background(), "ghost"); svcErr == nil || svcErr.Code != response.CodeNotFound {
		t.Errorf("ожидался NOT_FOUND, получено %+v", svcErr)
	}

	seedFile(t, stores, "empty", nil)
	if _, svcErr := download.Download(context.Background(), "empty"); svcErr == nil || svcErr.Code != response.CodeNoContent {
		t.Errorf("ожидался NO_CONTENT, получено %+v", svcErr)
	}
}

func TestDownload_CacheInvalidate(t *testing.T) {
	var calls atomic.Int64
	tg := tgOKServer(&calls)
	defer tg.Close()

	stores, upload, download := newUploadEnv(tg.URL)

	file, svcErr := upload.Upload(context.Background(), UploadParams{
		Data: []byte("cached"), Filename: "c.bin", Now: 1,
	})
	if svcErr != nil {
		t.Fatalf("неожиданная ошибка: %v", svcErr)
	}

	// Прогреваем кэш
	if _, svcErr := download.Download(context.Background(), file.ID); svcErr != nil {
		t.Fatalf("неожиданная ошибка: %v", svcErr)
	}

	// После удаления и инвалидации — NOT_FOUND, а не закэшированные байты
	if _, err := stores.Files.Delete(context.Background(), file.ID); err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	download.Invalidate(file.ID)

	if _, svcErr := download.Download(context.Background(), file.ID); svcErr == nil || svcErr.Code != response.CodeNotFound {
		t.Errorf("ожидался NOT_FOUND после инвалидации, получено %+v", svcErr)
	}
}
