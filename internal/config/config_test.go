package config

import (
	"log/slog"
	"os"
	"testing"
	"time"
)

// setEnvVars устанавливает переменные окружения для теста и возвращает
// функцию очистки. Всегда вызывать defer cleanup().
func setEnvVars(t *testing.T, vars map[string]string) func() {
	t.Helper()

	// Сохраняем оригинальные значения
	originals := make(map[string]string)
	origSet := make(map[string]bool)
	for k := range vars {
		if v, ok := os.LookupEnv(k); ok {
			originals[k] = v
			origSet[k] = true
		}
	}

	// Устанавливаем новые
	for k, v := range vars {
		os.Setenv(k, v)
	}

	return func() {
		for k := range vars {
			if origSet[k] {
				os.Setenv(k, originals[k])
			} else {
				os.Unsetenv(k)
			}
		}
	}
}

// clearAllTFEnvVars очищает все переменные окружения TF_* для чистого теста.
func clearAllTFEnvVars(t *testing.T) func() {
	t.Helper()
	keys := []string{
		"TF_PORT", "TF_KV_BACKEND", "TF_NATS_URL", "TF_KV_BUCKET",
		"TF_MAX_FILE_SIZE", "TF_FETCH_TIMEOUT",
		"TF_TELEGRAM_API_URL", "TF_TELEGRAM_TIMEOUT",
		"TF_DEMO_SEED", "TF_CACHE_SIZE", "TF_CACHE_TTL",
		"TF_TLS_CERT", "TF_TLS_KEY",
		"TF_LOG_LEVEL", "TF_LOG_FORMAT", "TF_SHUTDOWN_TIMEOUT",
		"TF_DEPHEALTH_CHECK_INTERVAL", "TF_DEPHEALTH_GROUP",
		"TF_DEPHEALTH_DEP_NAME", "DEPHEALTH_NAME",
	}
	originals := make(map[string]string)
	origSet := make(map[string]bool)
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok {
			originals[k] = v
			origSet[k] = true
		}
		os.Unsetenv(k)
	}
	return func() {
		for _, k := range keys {
			if origSet[k] {
				os.Setenv(k, originals[k])
			} else {
				os.Unsetenv(k)
			}
		}
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	cleanup := clearAllTFEnvVars(t)
	defer cleanup()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	// Проверяем значения по умолчанию
	if cfg.Port != 8080 {
		t.Errorf("Port: ожидалось 8080, получено %d", cfg.Port)
	}
	if cfg.KVBackend != "nats" {
		t.Errorf("KVBackend: ожидалось 'nats', получено %q", cfg.KVBackend)
	}
	if cfg.NATSUrl != "nats://127.0.0.1:4222" {
		t.Errorf("NATSUrl: ожидалось локальный URL, получено %q", cfg.NATSUrl)
	}
	if cfg.KVBucket != "telefile" {
		t.Errorf("KVBucket: ожидалось 'telefile', получено %q", cfg.KVBucket)
	}
	if cfg.MaxFileSize != 2097152 {
		t.Errorf("MaxFileSize: ожидалось 2097152, получено %d", cfg.MaxFileSize)
	}
	if cfg.FetchTimeout != 30*time.Second {
		t.Errorf("FetchTimeout: ожидалось 30s, получено %v", cfg.FetchTimeout)
	}
	if cfg.TelegramAPIURL != "https://api.telegram.org" {
		t.Errorf("TelegramAPIURL: ожидалось официальный URL, получено %q", cfg.TelegramAPIURL)
	}
	if cfg.DemoSeed {
		t.Error("DemoSeed: ожидалось false")
	}
	if cfg.CacheSize != 128 {
		t.Errorf("CacheSize: ожидалось 128, получено %d", cfg.CacheSize)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL: ожидалось 5m, получено %v", cfg.CacheTTL)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel: ожидалось INFO, получено %v", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat: ожидалось 'json', получено %q", cfg.LogFormat)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout: ожидалось 5s, получено %v", cfg.ShutdownTimeout)
	}
	if cfg.DephealthCheckInterval != 15*time.Second {
		t.Errorf("DephealthCheckInterval: ожидалось 15s, получено %v", cfg.DephealthCheckInterval)
	}
	if cfg.DephealthGroup != "telefile" {
		t.Errorf("DephealthGroup: ожидалось 'telefile', получено %q", cfg.DephealthGroup)
	}
	if cfg.DephealthDepName != "telegram-api" {
		t.Errorf("DephealthDepName: ожидалось 'telegram-api', получено %q", cfg.DephealthDepName)
	}
}

func TestLoad_AllCustomValues(t *testing.T) {
	cleanup := clearAllTFEnvVars(t)
	defer cleanup()

	vars := map[string]string{
		"TF_PORT":                     "9090",
		"TF_KV_BACKEND":               "memory",
		"TF_NATS_URL":                 "nats://nats.example.com:4222",
		"TF_KV_BUCKET":                "custom-bucket",
		"TF_MAX_FILE_SIZE":            "1048576",
		"TF_FETCH_TIMEOUT":            "10s",
		"TF_TELEGRAM_API_URL":         "https://tg-proxy.example.com",
		"TF_TELEGRAM_TIMEOUT":         "15s",
		"TF_DEMO_SEED":                "true",
		"TF_CACHE_SIZE":               "64",
		"TF_CACHE_TTL":                "1m",
		"TF_LOG_LEVEL":                "debug",
		"TF_LOG_FORMAT":               "text",
		"TF_SHUTDOWN_TIMEOUT":         "10s",
		"TF_DEPHEALTH_CHECK_INTERVAL": "5s",
		"TF_DEPHEALTH_GROUP":          "tf-test",
		"TF_DEPHEALTH_DEP_NAME":       "tg-proxy",
	}
	cleanupVars := setEnvVars(t, vars)
	defer cleanupVars()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port: ожидалось 9090, получено %d", cfg.Port)
	}
	if cfg.KVBackend != "memory" {
		t.Errorf("KVBackend: ожидалось 'memory', получено %q", cfg.KVBackend)
	}
	if cfg.NATSUrl != "nats://nats.example.com:4222" {
		t.Errorf("NATSUrl: получено %q", cfg.NATSUrl)
	}
	if cfg.KVBucket != "custom-bucket" {
		t.Errorf("KVBucket: получено %q", cfg.KVBucket)
	}
	if cfg.MaxFileSize != 1048576 {
		t.Errorf("MaxFileSize: ожидалось 1048576, получено %d", cfg.MaxFileSize)
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("FetchTimeout: ожидалось 10s, получено %v", cfg.FetchTimeout)
	}
	if cfg.TelegramAPIURL != "https://tg-proxy.example.com" {
		t.Errorf("TelegramAPIURL: получено %q", cfg.TelegramAPIURL)
	}
	if cfg.TelegramTimeout != 15*time.Second {
		t.Errorf("TelegramTimeout: ожидалось 15s, получено %v", cfg.TelegramTimeout)
	}
	if !cfg.DemoSeed {
		t.Error("DemoSeed: ожидалось true")
	}
	if cfg.CacheSize != 64 {
		t.Errorf("CacheSize: ожидалось 64, получено %d", cfg.CacheSize)
	}
	if cfg.CacheTTL != time.Minute {
		t.Errorf("CacheTTL: ожидалось 1m, получено %v", cfg.CacheTTL)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel: ожидалось DEBUG, получено %v", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Errorf("LogFormat: ожидалось 'text', получено %q", cfg.LogFormat)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout: ожидалось 10s, получено %v", cfg.ShutdownTimeout)
	}
	if cfg.DephealthCheckInterval != 5*time.Second {
		t.Errorf("DephealthCheckInterval: ожидалось 5s, получено %v", cfg.DephealthCheckInterval)
	}
	if cfg.DephealthGroup != "tf-test" {
		t.Errorf("DephealthGroup: получено %q", cfg.DephealthGroup)
	}
	if cfg.DephealthDepName != "tg-proxy" {
		t.Errorf("DephealthDepName: получено %q", cfg.DephealthDepName)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"ниже диапазона", "0"},
		{"выше диапазона", "70000"},
		{"не число", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := clearAllTFEnvVars(t)
			defer cleanup()

			cleanupVars := setEnvVars(t, map[string]string{"TF_PORT": tt.value})
			defer cleanupVars()

			_, err := Load()
			if err == nil {
				t.Errorf("ожидалась ошибка для TF_PORT=%s", tt.value)
			}
		})
	}
}

func TestLoad_InvalidKVBackend(t *testing.T) {
	cleanup := clearAllTFEnvVars(t)
	defer cleanup()

	cleanupVars := setEnvVars(t, map[string]string{"TF_KV_BACKEND": "redis"})
	defer cleanupVars()

	_, err := Load()
	if err == nil {
		t.Error("ожидалась ошибка для невалидного TF_KV_BACKEND")
	}
}

func TestLoad_InvalidMaxFileSize(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"не число", "abc"},
		{"нулевое", "0"},
		{"отрицательное", "-100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanup := clearAllTFEnvVars(t)
			defer cleanup()

			cleanupVars := setEnvVars(t, map[string]string{"TF_MAX_FILE_SIZE": tt.value})
			defer cleanupVars()

			_, err := Load()
			if err == nil {
				t.Errorf("ожидалась ошибка для TF_MAX_FILE_SIZE=%s", tt.value)
			}
		})
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	durationVars := []string{
		"TF_FETCH_TIMEOUT", "TF_TELEGRAM_TIMEOUT", "TF_CACHE_TTL",
		"TF_SHUTDOWN_TIMEOUT", "TF_DEPHEALTH_CHECK_INTERVAL",
	}

	for _, varName := range durationVars {
		t.Run(varName, func(t *testing.T) {
			cleanup := clearAllTFEnvVars(t)
			defer cleanup()

			cleanupVars := setEnvVars(t, map[string]string{varName: "not-a-duration"})
			defer cleanupVars()

			_, err := Load()
			if err == nil {
				t.Errorf("ожидалась ошибка для невалидного %s", varName)
			}
		})
	}
}

func TestLoad_InvalidDemoSeed(t *testing.T) {
	cleanup := clearAllTFEnvVars(t)
	defer cleanup()

	cleanupVars := setEnvVars(t, map[string]string{"TF_DEMO_SEED": "maybe"})
	defer cleanupVars()

	_, err := Load()
	if err == nil {
		t.Error("ожидалась ошибка для невалидного TF_DEMO_SEED='maybe'")
	}
}

func TestLoad_TLSPairRequired(t *testing.T) {
	cleanup := clearAllTFEnvVars(t)
	defer cleanup()

	// Только сертификат без ключа — ошибка
	cleanupVars := setEnvVars(t, map[string]string{"TF_TLS_CERT": "/tmp/tls.crt"})
	defer cleanupVars()

	_, err := Load()
	if err == nil {
		t.Error("ожидалась ошибка: TF_TLS_CERT без TF_TLS_KEY")
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	cleanup := clearAllTFEnvVars(t)
	defer cleanup()

	cleanupVars := setEnvVars(t, map[string]string{"TF_LOG_LEVEL": "invalid"})
	defer cleanupVars()

	_, err := Load()
	if err == nil {
		t.Error("ожидалась ошибка для невалидного TF_LOG_LEVEL")
	}
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	cleanup := clearAllTFEnvVars(t)
	defer cleanup()

	cleanupVars := setEnvVars(t, map[string]string{"TF_LOG_FORMAT": "yaml"})
	defer cleanupVars()

	_, err := Load()
	if err == nil {
		t.Error("ожидалась ошибка для невалидного TF_LOG_FORMAT")
	}
}

func TestLoad_ValidLogLevels(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cleanup := clearAllTFEnvVars(t)
			defer cleanup()

			cleanupVars := setEnvVars(t, map[string]string{"TF_LOG_LEVEL": tt.input})
			defer cleanupVars()

			cfg, err := Load()
			if err != nil {
				t.Fatalf("неожиданная ошибка: %v", err)
			}
			if cfg.LogLevel != tt.expected {
				t.Errorf("LogLevel: ожидалось %v, получено %v", tt.expected, cfg.LogLevel)
			}
		})
	}
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name   string
		format string
	}{
		{"json", "json"},
		{"text", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				LogLevel:  slog.LevelInfo,
				LogFormat: tt.format,
			}
			logger := SetupLogger(cfg)
			if logger == nil {
				t.Fatal("SetupLogger вернул nil")
			}
		})
	}
}
