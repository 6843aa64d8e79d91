// Точка входа TeleFile — файлового хранилища поверх key-value backend'а
// с пересылкой в Telegram.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/bigkaa/telefile/internal/api/handlers"
	"github.com/bigkaa/telefile/internal/config"
	"github.com/bigkaa/telefile/internal/entity"
	"github.com/bigkaa/telefile/internal/kvstore"
	"github.com/bigkaa/telefile/internal/kvstore/memory"
	"github.com/bigkaa/telefile/internal/kvstore/natskv"
	"github.com/bigkaa/telefile/internal/server"
	"github.com/bigkaa/telefile/internal/service"
	"github.com/bigkaa/telefile/internal/telegram"
)

func main() {
	// Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка конфигурации: %v\n", err)
		os.Exit(1)
	}

	// Настройка логгера
	logger := config.SetupLogger(cfg)
	logger.Info("TeleFile запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("kv_backend", cfg.KVBackend),
	)

	ctx := context.Background()

	// --- Инициализация компонентов ---

	// 1. Key-value backend
	var kv kvstore.Backend
	switch cfg.KVBackend {
	case "nats":
		natsKV, natsErr := natskv.New(ctx, cfg.NATSUrl, cfg.KVBucket, logger)
		if natsErr != nil {
			logger.Error("Ошибка подключения к NATS", slog.String("error", natsErr.Error()))
			os.Exit(1)
		}
		defer natsKV.Close()
		kv = natsKV
		logger.Info("NATS JetStream KV подключён",
			slog.String("url", cfg.NATSUrl),
			slog.String("bucket", cfg.KVBucket),
		)
	case "memory":
		kv = memory.New()
		logger.Warn("In-memory backend: данные не переживут перезапуск")
	}

	// 2. Entity store поверх backend'а
	store := entity.NewStore(kv, logger)
	stores := service.NewStores(store)

	// Сверка индексов с состояниями после возможного нечистого останова
	if err := stores.VerifyIndexes(ctx); err != nil {
		logger.Error("Ошибка сверки индексов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Demo-данные (только при пустых индексах)
	if cfg.DemoSeed {
		if err := stores.EnsureSeeds(ctx, logger); err != nil {
			logger.Error("Ошибка наполнения demo-данными", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("Demo-данные загружены")
	}

	// 3. Сервисы
	tgClient := telegram.New(cfg.TelegramAPIURL, cfg.TelegramTimeout, logger)
	forwardSvc := service.NewForwardService(stores, tgClient, logger)
	fetcher := service.NewFetcher(cfg.FetchTimeout, cfg.MaxFileSize, logger)
	uploadSvc := service.NewUploadService(stores, fetcher, forwardSvc, cfg.MaxFileSize, logger)
	downloadSvc := service.NewDownloadService(stores, cfg.CacheSize, cfg.CacheTTL, logger)

	// 4. topologymetrics — мониторинг Telegram Bot API
	dephealthSvc, dephealthErr := service.NewDephealthService(
		cfg.DephealthName,
		cfg.DephealthGroup,
		cfg.DephealthDepName,
		cfg.TelegramAPIURL,
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("dep_url", cfg.TelegramAPIURL),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}

	// 5. Handlers
	h := &handlers.Handlers{
		Folders:  handlers.NewFoldersHandler(stores),
		Files:    handlers.NewFilesHandler(stores, downloadSvc, forwardSvc),
		Upload:   handlers.NewUploadHandler(uploadSvc, cfg.MaxFileSize),
		Settings: handlers.NewSettingsHandler(stores),
		Users:    handlers.NewUsersHandler(stores),
		Chats:    handlers.NewChatsHandler(stores),
		Health:   handlers.NewHealthHandler(kv),
	}

	// 6. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, h)

	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// --- Graceful shutdown фоновых процессов ---
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("TeleFile остановлен")
}
