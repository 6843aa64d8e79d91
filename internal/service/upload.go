// upload.go — пайплайн загрузки файла: inline-байты или URL,
// проверка лимита, сохранение, best-effort пересылка в Telegram.
package service

import (
	"context"
	"encoding/base64"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bigkaa/telefile/internal/api/middleware"
	"github.com/bigkaa/telefile/internal/domain/model"
)

// UploadParams — параметры загрузки файла.
type UploadParams struct {
	// Data — inline-payload из multipart. nil — источник задан через URL.
	Data []byte
	// URL — альтернативный источник: payload скачивается по нему.
	URL string
	// Filename — имя файла (для inline-источника).
	Filename string
	// ContentType — MIME-тип (для inline-источника).
	ContentType string
	// FolderID — папка назначения. nil — корень.
	FolderID *string
	// Now — метка времени создания в epoch millis.
	Now int64
}

// UploadService — сервис загрузки файлов.
type UploadService struct {
	stores      *Stores
	fetcher     *Fetcher
	forward     *ForwardService
	maxFileSize int64
	logger      *slog.Logger
}

// NewUploadService создаёт сервис загрузки.
func NewUploadService(stores *Stores, fetcher *Fetcher, forward *ForwardService, maxFileSize int64, logger *slog.Logger) *UploadService {
	return &UploadService{
		stores:      stores,
		fetcher:     fetcher,
		forward:     forward,
		maxFileSize: maxFileSize,
		logger:      logger.With(slog.String("component", "upload_service")),
	}
}

// Upload принимает payload, валидирует, сохраняет и best-effort
// пересылает в Telegram.
//
// Поток:
//  1. Разрешение источника: inline-байты либо скачивание по URL.
//  2. Жёсткий потолок размера — до любой записи в хранилище.
//  3. Новый uuid, метаданные файла.
//  4. Сохранение метаданных, затем отдельным шагом — контент (base64).
//  5. Если настроен botToken — синхронная пересылка. Её неудача
//     НЕ откатывает загрузку и не всплывает наружу: файл остаётся
//     без маркера, загрузка отчитывается успехом.
func (s *UploadService) Upload(ctx context.Context, params UploadParams) (*model.File, *Error) {
	// 1. Источник payload'а
	data := params.Data
	filename := params.Filename
	contentType := params.ContentType

	if data == nil {
		if params.URL == "" {
			return nil, errValidation("Требуется файл или url")
		}
		fetched, fetchErr := s.fetcher.Fetch(ctx, params.URL)
		if fetchErr != nil {
			return nil, fetchErr
		}
		data = fetched.Data
		filename = fetched.Filename
		if contentType == "" {
			contentType = fetched.ContentType
		}
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// 2. Потолок размера — нарушение прерывает до любой записи
	if int64(len(data)) > s.maxFileSize {
		middleware.OperationsTotal.WithLabelValues("upload", "rejected").Inc()
		return nil, errTooLarge(int64(len(data)), s.maxFileSize)
	}

	// 3. Метаданные
	fileID := uuid.New().String()
	file := model.File{
		ID:        fileID,
		Name:      filename,
		FolderID:  params.FolderID,
		Size:      int64(len(data)),
		Mime:      contentType,
		CreatedAt: params.Now,
	}

	// 4. Двухшаговое сохранение: метаданные, затем контент
	if _, err := s.stores.Files.Create(ctx, fileID, file); err != nil {
		middleware.OperationsTotal.WithLabelValues("upload", "error").Inc()
		return nil, errStorage(err)
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	saved, err := s.stores.Files.Patch(ctx, fileID, func(f *model.File) {
		f.Content = &encoded
	})
	if err != nil {
		middleware.OperationsTotal.WithLabelValues("upload", "error").Inc()
		return nil, errStorage(err)
	}

	middleware.OperationsTotal.WithLabelValues("upload", "success").Inc()
	s.logger.Info("Файл загружен",
		slog.String("file_id", fileID),
		slog.String("filename", filename),
		slog.Int64("size", file.Size),
		slog.String("mime", contentType),
	)

	// 5. Best-effort пересылка: ошибка глотается, загрузка успешна
	settings, err := s.stores.CurrentSettings(ctx)
	if err != nil {
		return nil, errStorage(err)
	}
	if settings.BotToken != "" {
		forwarded, fwdErr := s.forward.Forward(ctx, fileID)
		if fwdErr != nil {
			s.logger.Warn("Пересылка при загрузке не удалась, файл сохранён без маркера",
				slog.String("file_id", fileID),
				slog.String("error", fwdErr.Error()),
			)
		} else {
			return forwarded, nil
		}
	}

	return &saved, nil
}
