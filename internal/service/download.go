// download.go — восстановление бинарного ответа из base64-контента.
package service

import (
	"context"
	"encoding/base64"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/telefile/internal/api/middleware"
)

// Prometheus-метрики кэша декодированного контента.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tf_content_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш декодированного контента.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tf_content_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша декодированного контента.",
	})
)

// DownloadResult — декодированный контент с метаданными для отдачи.
type DownloadResult struct {
	Data     []byte
	Mime     string
	Filename string
}

// DownloadService — сервис скачивания: декодирует base64-контент
// файла и кэширует результат в expirable LRU.
type DownloadService struct {
	stores *Stores
	cache  *expirable.LRU[string, *DownloadResult]
	logger *slog.Logger
}

// NewDownloadService создаёт сервис скачивания.
// cacheSize — максимум записей LRU, cacheTTL — время жизни записи.
func NewDownloadService(stores *Stores, cacheSize int, cacheTTL time.Duration, logger *slog.Logger) *DownloadService {
	return &DownloadService{
		stores: stores,
		cache:  expirable.NewLRU[string, *DownloadResult](cacheSize, nil, cacheTTL),
		logger: logger.With(slog.String("component", "download_service")),
	}
}

// Download восстанавливает бинарный payload файла.
// Файл неизвестен — NOT_FOUND; контент не сохранён — NO_CONTENT;
// иначе — байты, заявленный Content-Type и имя файла.
// Round trip побайтово точен: decode(encode(data)) == data.
func (s *DownloadService) Download(ctx context.Context, fileID string) (*DownloadResult, *Error) {
	if cached, ok := s.cache.Get(fileID); ok {
		cacheHitsTotal.Inc()
		middleware.OperationsTotal.WithLabelValues("download", "success").Inc()
		return cached, nil
	}
	cacheMissesTotal.Inc()

	file, found, err := s.stores.Files.Get(ctx, fileID)
	if err != nil {
		return nil, errStorage(err)
	}
	if !found {
		return nil, errNotFound("Файл %s не найден", fileID)
	}
	if file.Content == nil {
		return nil, errNoContent("У файла %s нет сохранённого контента", fileID)
	}

	data, decodeErr := base64.StdEncoding.DecodeString(*file.Content)
	if decodeErr != nil {
		s.logger.Error("Контент файла повреждён",
			slog.String("file_id", fileID),
			slog.String("error", decodeErr.Error()),
		)
		return nil, errInternal("Контент файла " + fileID + " повреждён")
	}

	result := &DownloadResult{
		Data:     data,
		Mime:     file.Mime,
		Filename: file.Name,
	}
	s.cache.Add(fileID, result)

	middleware.OperationsTotal.WithLabelValues("download", "success").Inc()
	s.logger.Debug("Файл скачан",
		slog.String("file_id", fileID),
		slog.Int("bytes", len(data)),
	)

	return result, nil
}

// Invalidate удаляет запись кэша (при удалении файла).
func (s *DownloadService) Invalidate(fileID string) {
	s.cache.Remove(fileID)
}
