// Пакет config — загрузка и валидация конфигурации sheetcheck
// из переменных окружения.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Допустимые значения SC_SHEETS_BACKEND.
const (
	BackendGoogle = "google"
	BackendXLSX   = "xlsx"
)

// Config содержит все параметры конфигурации sheetcheck.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- HTTP Server Timeouts ---

	// Таймаут чтения HTTP-сервера (по умолчанию 30s)
	HTTPReadTimeout time.Duration
	// Таймаут записи HTTP-сервера (по умолчанию 60s).
	// Поток анализа снимает дедлайн записи для своего соединения.
	HTTPWriteTimeout time.Duration
	// Таймаут простоя HTTP-сервера (по умолчанию 120s)
	HTTPIdleTimeout time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown (по умолчанию 5s)
	ShutdownTimeout time.Duration

	// --- PostgreSQL ---

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
	// DBMaxConns — размер пула pgxpool (по умолчанию 10)
	DBMaxConns int
	// DBConnectAttempts — попыток подключения при старте (по умолчанию 5)
	DBConnectAttempts int
	// DBConnectBackoff — пауза между попытками (по умолчанию 2s)
	DBConnectBackoff time.Duration

	// --- Табличный источник ---

	// SheetsBackend — реализация источника: google или xlsx
	SheetsBackend string
	// GoogleCredentialsFile — JSON ключ сервисного аккаунта Google
	GoogleCredentialsFile string
	// SheetsAPIURL — базовый URL Google Sheets API
	SheetsAPIURL string
	// SheetsTimeout — таймаут HTTP-запросов к Google Sheets
	SheetsTimeout time.Duration
	// XLSXDir — каталог с книгами XLSX (для backend xlsx)
	XLSXDir string

	// --- Кэш снимков ---

	// CacheMaxSize — максимальное количество снимков в LRU-кэше
	CacheMaxSize int
	// CacheTTL — время жизни снимка
	CacheTTL time.Duration
	// SheetChunkSize — количество строк в одном запросе к источнику
	SheetChunkSize int
	// SheetDefaultRange — диапазон по умолчанию
	SheetDefaultRange string
	// SheetFetchTimeout — предельное время загрузки одного снимка,
	// не зависит от отмены запроса, инициировавшего загрузку
	SheetFetchTimeout time.Duration
	// RequiredColumn — колонка, отсутствие которой даёт предупреждение
	// (пустая строка отключает проверку)
	RequiredColumn string

	// --- Анализатор ---

	// OpenAIAPIKey — ключ OpenAI API
	OpenAIAPIKey string
	// OpenAIAPIURL — базовый URL OpenAI API
	OpenAIAPIURL string
	// AnalyzerTimeout — таймаут одного HTTP-запроса к анализатору
	AnalyzerTimeout time.Duration
	// AnalyzerPollInterval — интервал опроса состояния запуска
	AnalyzerPollInterval time.Duration
	// AnalyzerRunTimeout — предельное время одного запуска (0 — без ограничения)
	AnalyzerRunTimeout time.Duration
	// AnalyzerRateLimit — запросов в секунду к API анализатора
	AnalyzerRateLimit float64
	// AnalyzersFile — YAML-файл реестра ассистентов (опционально)
	AnalyzersFile string
	// Analyzers — реестр ассистентов: отображаемое имя → идентификатор
	Analyzers []Analyzer

	// --- Мониторинг зависимостей ---

	// DephealthEnabled — включить мониторинг PostgreSQL через topologymetrics
	DephealthEnabled bool
	// DephealthGroup — имя группы в метриках
	DephealthGroup string
	// DephealthCheckInterval — интервал проверки зависимостей
	DephealthCheckInterval time.Duration
	// DephealthIsEntry — добавлять лейбл isentry=yes
	DephealthIsEntry bool
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если значения некорректны.
//
//nolint:funlen,gocyclo // линейный разбор переменных окружения
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// SC_PORT — порт HTTP-сервера (по умолчанию 8040)
	cfg.Port, err = getEnvInt("SC_PORT", 8040)
	if err != nil {
		return nil, fmt.Errorf("SC_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("SC_PORT: порт %d вне диапазона 1-65535", cfg.Port)
	}

	// SC_LOG_LEVEL — уровень логирования (по умолчанию info)
	logLevel := getEnvDefault("SC_LOG_LEVEL", "info")
	cfg.LogLevel, err = parseLogLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("SC_LOG_LEVEL: %w", err)
	}

	// SC_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("SC_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("SC_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- HTTP Server Timeouts ---

	cfg.HTTPReadTimeout, err = getEnvDuration("SC_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SC_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.HTTPWriteTimeout, err = getEnvDuration("SC_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SC_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.HTTPIdleTimeout, err = getEnvDuration("SC_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SC_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// SC_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("SC_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SC_SHUTDOWN_TIMEOUT: %w", err)
	}

	// --- PostgreSQL ---

	cfg.DBHost = getEnvDefault("SC_DB_HOST", "localhost")
	cfg.DBPort, err = getEnvInt("SC_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("SC_DB_PORT: %w", err)
	}
	cfg.DBName = getEnvDefault("SC_DB_NAME", "sheetcheck")
	cfg.DBUser = getEnvDefault("SC_DB_USER", "sheetcheck")
	cfg.DBPassword = os.Getenv("SC_DB_PASSWORD")
	cfg.DBSSLMode = getEnvDefault("SC_DB_SSL_MODE", "disable")
	cfg.DBMaxConns, err = getEnvInt("SC_DB_MAX_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("SC_DB_MAX_CONNS: %w", err)
	}
	if cfg.DBMaxConns < 1 {
		return nil, fmt.Errorf("SC_DB_MAX_CONNS: должно быть >= 1, получено %d", cfg.DBMaxConns)
	}
	cfg.DBConnectAttempts, err = getEnvInt("SC_DB_CONNECT_ATTEMPTS", 5)
	if err != nil {
		return nil, fmt.Errorf("SC_DB_CONNECT_ATTEMPTS: %w", err)
	}
	if cfg.DBConnectAttempts < 1 {
		cfg.DBConnectAttempts = 1
	}
	cfg.DBConnectBackoff, err = getEnvDuration("SC_DB_CONNECT_BACKOFF", 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SC_DB_CONNECT_BACKOFF: %w", err)
	}

	// --- Табличный источник ---

	cfg.SheetsBackend = getEnvDefault("SC_SHEETS_BACKEND", BackendGoogle)
	switch cfg.SheetsBackend {
	case BackendGoogle:
		cfg.GoogleCredentialsFile, err = getEnvRequired("SC_GOOGLE_CREDENTIALS_FILE")
		if err != nil {
			return nil, err
		}
	case BackendXLSX:
		cfg.XLSXDir, err = getEnvRequired("SC_XLSX_DIR")
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("SC_SHEETS_BACKEND: недопустимое значение %q, допустимые: google, xlsx", cfg.SheetsBackend)
	}

	cfg.SheetsAPIURL = getEnvDefault("SC_SHEETS_API_URL", "https://sheets.googleapis.com")
	if err := validateURL(cfg.SheetsAPIURL); err != nil {
		return nil, fmt.Errorf("SC_SHEETS_API_URL: %w", err)
	}
	cfg.SheetsTimeout, err = getEnvDurationFallback("SC_SHEETS_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SC_SHEETS_TIMEOUT: %w", err)
	}

	// --- Кэш снимков ---

	cfg.CacheMaxSize, err = getEnvInt("SC_CACHE_MAX_SIZE", 100)
	if err != nil {
		return nil, fmt.Errorf("SC_CACHE_MAX_SIZE: %w", err)
	}
	if cfg.CacheMaxSize < 1 {
		return nil, fmt.Errorf("SC_CACHE_MAX_SIZE: значение должно быть > 0")
	}
	cfg.CacheTTL, err = getEnvDurationFallback("SC_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("SC_CACHE_TTL: %w", err)
	}
	cfg.SheetChunkSize, err = getEnvInt("SC_SHEET_CHUNK_SIZE", 1000)
	if err != nil {
		return nil, fmt.Errorf("SC_SHEET_CHUNK_SIZE: %w", err)
	}
	if cfg.SheetChunkSize < 1 {
		return nil, fmt.Errorf("SC_SHEET_CHUNK_SIZE: значение должно быть > 0")
	}
	cfg.SheetDefaultRange = getEnvDefault("SC_SHEET_DEFAULT_RANGE", "A1:ZZ")
	cfg.SheetFetchTimeout, err = getEnvDuration("SC_SHEET_FETCH_TIMEOUT", 2*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("SC_SHEET_FETCH_TIMEOUT: %w", err)
	}

	// SC_REQUIRED_COLUMN может быть задана пустой строкой — проверка отключается
	if v, ok := os.LookupEnv("SC_REQUIRED_COLUMN"); ok {
		cfg.RequiredColumn = v
	} else {
		cfg.RequiredColumn = "Číslo položky"
	}

	// --- Анализатор ---

	cfg.OpenAIAPIKey = os.Getenv("SC_OPENAI_API_KEY")
	cfg.OpenAIAPIURL = getEnvDefault("SC_OPENAI_API_URL", "https://api.openai.com/v1")
	if err := validateURL(cfg.OpenAIAPIURL); err != nil {
		return nil, fmt.Errorf("SC_OPENAI_API_URL: %w", err)
	}
	cfg.AnalyzerTimeout, err = getEnvDurationFallback("SC_ANALYZER_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SC_ANALYZER_TIMEOUT: %w", err)
	}
	cfg.AnalyzerPollInterval, err = getEnvDurationFallback("SC_ANALYZER_POLL_INTERVAL", time.Second)
	if err != nil {
		return nil, fmt.Errorf("SC_ANALYZER_POLL_INTERVAL: %w", err)
	}
	cfg.AnalyzerRunTimeout, err = getEnvDuration("SC_ANALYZER_RUN_TIMEOUT", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("SC_ANALYZER_RUN_TIMEOUT: %w", err)
	}
	cfg.AnalyzerRateLimit, err = getEnvFloat("SC_ANALYZER_RATE_LIMIT", 5)
	if err != nil {
		return nil, fmt.Errorf("SC_ANALYZER_RATE_LIMIT: %w", err)
	}
	if cfg.AnalyzerRateLimit <= 0 {
		return nil, fmt.Errorf("SC_ANALYZER_RATE_LIMIT: значение должно быть > 0")
	}

	cfg.AnalyzersFile = os.Getenv("SC_ANALYZERS_FILE")
	if cfg.AnalyzersFile != "" {
		cfg.Analyzers, err = LoadAnalyzers(cfg.AnalyzersFile)
		if err != nil {
			return nil, fmt.Errorf("SC_ANALYZERS_FILE: %w", err)
		}
	}

	// --- Мониторинг зависимостей ---

	cfg.DephealthEnabled, err = getEnvBool("SC_DEPHEALTH_ENABLED", true)
	if err != nil {
		return nil, fmt.Errorf("SC_DEPHEALTH_ENABLED: %w", err)
	}
	cfg.DephealthGroup = getEnvDefault("SC_DEPHEALTH_GROUP", "sheetcheck")
	cfg.DephealthCheckInterval, err = getEnvDurationFallback("SC_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SC_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}
	cfg.DephealthIsEntry, err = getEnvBool("DEPHEALTH_ISENTRY", false)
	if err != nil {
		return nil, fmt.Errorf("DEPHEALTH_ISENTRY: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL подключения к PostgreSQL без пароля
// (для лейблов метрик dephealth).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%d/%s", c.DBHost, c.DBPort, c.DBName)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	return SetupLoggerTo(cfg, os.Stdout)
}

// SetupLoggerTo — SetupLogger с выводом в w.
// Команда analyze пишет логи в stderr, stdout занят результатами.
func SetupLoggerTo(cfg *Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

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

// getEnvFloat возвращает дробное значение переменной окружения или значение по умолчанию.
func getEnvFloat(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректное число: %q", val)
	}
	return f, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	if d < 0 {
		return 0, fmt.Errorf("значение должно быть >= 0")
	}
	return d, nil
}

// getEnvDurationFallback возвращает time.Duration из переменной окружения.
// Если переменная не задана, используется fallbackVal.
// Если задана — парсится и валидируется (> 0).
func getEnvDurationFallback(key string, fallbackVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return fallbackVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	if d <= 0 {
		return 0, fmt.Errorf("значение должно быть > 0")
	}
	return d, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q (допустимые: true, false, 1, 0)", val)
	}
	return b, nil
}

// validateURL проверяет, что строка — абсолютный http(s) URL.
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("некорректный URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("некорректный URL %q: ожидается http(s)://host", raw)
	}
	return nil
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
