// Пакет config — загрузка и валидация конфигурации TeleFile
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации TeleFile.
type Config struct {
	// Порт HTTP-сервера
	Port int
	// Key-value backend: "nats" или "memory"
	KVBackend string
	// URL NATS-сервера (только для backend'а nats)
	NATSUrl string
	// Имя KV bucket'а в JetStream
	KVBucket string
	// Максимальный размер файла в байтах
	MaxFileSize int64
	// Таймаут скачивания payload'а по URL
	FetchTimeout time.Duration
	// Базовый URL Telegram Bot API
	TelegramAPIURL string
	// Таймаут запросов к Telegram Bot API
	TelegramTimeout time.Duration
	// Наполнять ли хранилище demo-данными при старте
	DemoSeed bool
	// Максимум записей LRU-кэша декодированного контента
	CacheSize int
	// Время жизни записи кэша
	CacheTTL time.Duration
	// Путь к TLS сертификату (опционально)
	TLSCert string
	// Путь к TLS приватному ключу (опционально)
	TLSKey string
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
	// Интервал проверки зависимостей topologymetrics
	DephealthCheckInterval time.Duration
	// Имя группы в метриках topologymetrics (TF_DEPHEALTH_GROUP)
	DephealthGroup string
	// Имя зависимости (Telegram Bot API) в метриках topologymetrics
	DephealthDepName string
	// Имя владельца пода для метки name в topologymetrics (DEPHEALTH_NAME)
	DephealthName string
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}

	// TF_PORT — порт HTTP-сервера (по умолчанию 8080)
	port, err := getEnvInt("TF_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("TF_PORT: %w", err)
	}
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("TF_PORT: значение %d вне допустимого диапазона 1-65535", port)
	}
	cfg.Port = port

	// TF_KV_BACKEND — key-value backend (по умолчанию nats)
	cfg.KVBackend = getEnvDefault("TF_KV_BACKEND", "nats")
	if cfg.KVBackend != "nats" && cfg.KVBackend != "memory" {
		return nil, fmt.Errorf("TF_KV_BACKEND: недопустимое значение %q, допустимые: nats, memory", cfg.KVBackend)
	}

	// TF_NATS_URL — URL NATS-сервера (по умолчанию локальный)
	cfg.NATSUrl = getEnvDefault("TF_NATS_URL", "nats://127.0.0.1:4222")

	// TF_KV_BUCKET — имя KV bucket'а (по умолчанию "telefile")
	cfg.KVBucket = getEnvDefault("TF_KV_BUCKET", "telefile")

	// TF_MAX_FILE_SIZE — максимальный размер файла (по умолчанию 2 MiB)
	maxFileSize, err := getEnvInt64("TF_MAX_FILE_SIZE", 2097152)
	if err != nil {
		return nil, fmt.Errorf("TF_MAX_FILE_SIZE: %w", err)
	}
	if maxFileSize <= 0 {
		return nil, fmt.Errorf("TF_MAX_FILE_SIZE: значение должно быть положительным")
	}
	cfg.MaxFileSize = maxFileSize

	// TF_FETCH_TIMEOUT — таймаут скачивания по URL (по умолчанию 30s)
	cfg.FetchTimeout, err = getEnvDuration("TF_FETCH_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("TF_FETCH_TIMEOUT: %w", err)
	}

	// TF_TELEGRAM_API_URL — базовый URL Bot API (по умолчанию официальный)
	cfg.TelegramAPIURL = getEnvDefault("TF_TELEGRAM_API_URL", "https://api.telegram.org")

	// TF_TELEGRAM_TIMEOUT — таймаут запросов к Bot API (по умолчанию 30s)
	cfg.TelegramTimeout, err = getEnvDuration("TF_TELEGRAM_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("TF_TELEGRAM_TIMEOUT: %w", err)
	}

	// TF_DEMO_SEED — наполнять ли demo-данными (по умолчанию false)
	cfg.DemoSeed, err = getEnvBool("TF_DEMO_SEED", false)
	if err != nil {
		return nil, fmt.Errorf("TF_DEMO_SEED: %w", err)
	}

	// TF_CACHE_SIZE — максимум записей LRU-кэша (по умолчанию 128)
	cacheSize, err := getEnvInt("TF_CACHE_SIZE", 128)
	if err != nil {
		return nil, fmt.Errorf("TF_CACHE_SIZE: %w", err)
	}
	if cacheSize <= 0 {
		return nil, fmt.Errorf("TF_CACHE_SIZE: значение должно быть положительным")
	}
	cfg.CacheSize = cacheSize

	// TF_CACHE_TTL — время жизни записи кэша (по умолчанию 5m)
	cfg.CacheTTL, err = getEnvDuration("TF_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("TF_CACHE_TTL: %w", err)
	}

	// TF_TLS_CERT / TF_TLS_KEY — TLS опционален, но либо оба, либо ни одного
	cfg.TLSCert = getEnvDefault("TF_TLS_CERT", "")
	cfg.TLSKey = getEnvDefault("TF_TLS_KEY", "")
	if (cfg.TLSCert == "") != (cfg.TLSKey == "") {
		return nil, fmt.Errorf("TF_TLS_CERT и TF_TLS_KEY должны задаваться вместе")
	}

	// TF_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("TF_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("TF_LOG_LEVEL: %w", err)
	}

	// TF_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("TF_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("TF_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// TF_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("TF_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("TF_SHUTDOWN_TIMEOUT: %w", err)
	}

	// TF_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("TF_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("TF_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// TF_DEPHEALTH_GROUP — имя группы в метриках topologymetrics (по умолчанию "telefile")
	cfg.DephealthGroup = getEnvDefault("TF_DEPHEALTH_GROUP", "telefile")

	// TF_DEPHEALTH_DEP_NAME — имя зависимости в метриках topologymetrics (по умолчанию "telegram-api")
	cfg.DephealthDepName = getEnvDefault("TF_DEPHEALTH_DEP_NAME", "telegram-api")

	// DEPHEALTH_NAME — имя владельца пода для метки name в topologymetrics (без префикса модуля)
	cfg.DephealthName = getEnvDefault("DEPHEALTH_NAME", "")

	return cfg, nil
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvInt64 возвращает int64 значение переменной окружения или значение по умолчанию.
func getEnvInt64(key string, defaultVal int64) (int64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q", val)
	}
	return b, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 6h)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
