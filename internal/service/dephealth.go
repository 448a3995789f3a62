// dephealth.go — мониторинг зависимостей sheetcheck через topologymetrics SDK.
//
// Зависимости:
//   - postgresql — SQL checker через *sql.DB поверх pgxpool (critical);
//   - google-sheets — HTTP checker к discovery-документу Sheets API
//     (не critical, только для backend google).
//
// Анализатор не мониторится: его API требует ключ, а ошибки запусков
// и так видны по sc_rows_analyzed_total{outcome="failed"}.
//
// Метрики app_dependency_* публикуются на /metrics.
package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/BigKAA/topologymetrics/sdk-go/dephealth"
	_ "github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/httpcheck" // регистрация HTTP checker factory
	"github.com/BigKAA/topologymetrics/sdk-go/dephealth/checks/pgcheck"
	"github.com/prometheus/client_golang/prometheus"
)

// sheetsHealthPath — публичный ресурс Sheets API, доступный без авторизации.
const sheetsHealthPath = "/$discovery/rest?version=v4"

// DephealthOptions — параметры мониторинга.
type DephealthOptions struct {
	// ServiceID — имя вершины графа ("sheetcheck")
	ServiceID string
	// Group — имя группы в метриках (SC_DEPHEALTH_GROUP)
	Group string
	// DB — адаптер pgxpool → *sql.DB
	DB *sql.DB
	// PostgresURL — URL PostgreSQL без пароля (для лейблов, не для подключения)
	PostgresURL string
	// SheetsAPIURL — базовый URL Sheets API; пусто — не мониторится
	SheetsAPIURL string
	// CheckInterval — интервал проверки (SC_DEPHEALTH_CHECK_INTERVAL)
	CheckInterval time.Duration
	// IsEntry — лейбл isentry=yes на всех зависимостях
	IsEntry bool
	// Registerer — Prometheus registerer; nil — глобальный
	Registerer prometheus.Registerer
}

// DephealthService — сервис мониторинга зависимостей через topologymetrics.
type DephealthService struct {
	dh     *dephealth.DepHealth
	deps   []string
	logger *slog.Logger
}

// NewDephealthService создаёт сервис мониторинга зависимостей.
func NewDephealthService(opts DephealthOptions, logger *slog.Logger) (*DephealthService, error) {
	if opts.DB == nil {
		return nil, errors.New("dephealth: не задан *sql.DB")
	}

	common := func(extra ...dephealth.DependencyOption) []dephealth.DependencyOption {
		depOpts := []dephealth.DependencyOption{dephealth.CheckInterval(opts.CheckInterval)}
		if opts.IsEntry {
			depOpts = append(depOpts, dephealth.WithLabel("isentry", "yes"))
		}
		return append(depOpts, extra...)
	}

	deps := []string{"postgresql"}
	dhOpts := []dephealth.Option{
		dephealth.WithLogger(logger),
		// Проверка через пул отражает его исчерпание, а не только доступность сервера.
		dephealth.AddDependency("postgresql", dephealth.TypePostgres,
			pgcheck.New(pgcheck.WithDB(opts.DB)),
			common(dephealth.FromURL(opts.PostgresURL), dephealth.Critical(true))...),
	}

	if opts.SheetsAPIURL != "" {
		deps = append(deps, "google-sheets")
		dhOpts = append(dhOpts, dephealth.HTTP("google-sheets",
			common(
				dephealth.FromURL(opts.SheetsAPIURL),
				dephealth.WithHTTPHealthPath(sheetsHealthPath),
				dephealth.Critical(false),
			)...,
		))
	}

	if opts.Registerer != nil {
		dhOpts = append(dhOpts, dephealth.WithRegisterer(opts.Registerer))
	}

	dh, err := dephealth.New(opts.ServiceID, opts.Group, dhOpts...)
	if err != nil {
		return nil, err
	}

	return &DephealthService{
		dh:     dh,
		deps:   deps,
		logger: logger.With(slog.String("component", "dephealth")),
	}, nil
}

// Start запускает периодическую проверку зависимостей.
func (ds *DephealthService) Start(ctx context.Context) error {
	ds.logger.Info("Мониторинг зависимостей запущен",
		slog.String("dependencies", strings.Join(ds.deps, ",")),
	)
	return ds.dh.Start(ctx)
}

// Stop останавливает мониторинг зависимостей.
func (ds *DephealthService) Stop() {
	ds.dh.Stop()
	ds.logger.Info("Мониторинг зависимостей остановлен")
}

// Health возвращает текущее состояние зависимостей.
// Ключ — "имя:host:port", значение — true если ok.
func (ds *DephealthService) Health() map[string]bool {
	return ds.dh.Health()
}
