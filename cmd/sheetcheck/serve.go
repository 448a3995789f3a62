// serve.go — команда serve: HTTP API sheetcheck.
// Загружает конфигурацию, применяет миграции, подключается к PostgreSQL,
// создаёт источник таблиц, клиент анализатора, сервисный слой и API handlers,
// запускает topologymetrics и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/bigkaa/sheetcheck/internal/api/handlers"
	"github.com/bigkaa/sheetcheck/internal/api/middleware"
	"github.com/bigkaa/sheetcheck/internal/config"
	"github.com/bigkaa/sheetcheck/internal/database"
	"github.com/bigkaa/sheetcheck/internal/repository"
	"github.com/bigkaa/sheetcheck/internal/server"
	"github.com/bigkaa/sheetcheck/internal/service"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

//nolint:funlen // линейная сборка зависимостей
func runServe(ctx context.Context) error {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		return err
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("sheetcheck запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("sheets_backend", cfg.SheetsBackend),
	)

	if cfg.DephealthEnabled && os.Getenv("SC_DEPHEALTH_GROUP") == "" {
		logger.Warn("SC_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		return err
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		return err
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics.
	// Проверка PostgreSQL идёт через тот же пул соединений.
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Источник таблиц и анализатор
	source, sourceCheckers, err := newTabularSource(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка создания источника таблиц", slog.String("error", err.Error()))
		return err
	}
	analyzer := newAnalyzer(cfg, logger)
	logger.Info("Реестр анализаторов загружен", slog.Int("count", len(cfg.Analyzers)))

	// 6. Repositories
	txRunner := repository.NewTxRunner(pool)
	sourceRepo := repository.NewSourceRepository(pool)
	cellRepo := repository.NewCellRepository(pool, txRunner)
	responseRepo := repository.NewResponseRepository(pool, txRunner)

	// 7. Services
	cache := service.NewSnapshotCache(cfg.CacheMaxSize, cfg.CacheTTL)
	tablesSvc := newTableService(cfg, source, cache, sourceRepo, logger)
	cellsSvc := service.NewWriteBackService(source, sourceRepo, cellRepo, cache, logger)
	analysisSvc := service.NewAnalysisService(tablesSvc, analyzer, logger)
	responsesSvc := service.NewResponseService(responseRepo, sourceRepo, analyzer, logger)
	sourcesSvc := service.NewSourceService(source, sourceRepo, logger)

	// 8. Health и API handlers
	healthHandler := handlers.NewHealthHandler(database.NewReadinessChecker(pool), sourceCheckers...)
	apiHandler := handlers.NewAPIHandler(
		healthHandler,
		tablesSvc, cellsSvc, analysisSvc, responsesSvc, sourcesSvc,
		cfg.Analyzers,
		logger,
	)

	// 9. Мониторинг зависимостей (topologymetrics)
	if cfg.DephealthEnabled {
		depOpts := service.DephealthOptions{
			ServiceID:     "sheetcheck",
			Group:         cfg.DephealthGroup,
			DB:            pgDB,
			PostgresURL:   cfg.DatabaseURL(),
			CheckInterval: cfg.DephealthCheckInterval,
			IsEntry:       cfg.DephealthIsEntry,
		}
		if cfg.SheetsBackend == config.BackendGoogle {
			depOpts.SheetsAPIURL = cfg.SheetsAPIURL
		}
		dephealthSvc, err := service.NewDephealthService(depOpts, logger)
		if err != nil {
			logger.Warn("Не удалось создать мониторинг зависимостей, продолжаем без него",
				slog.String("error", err.Error()),
			)
		} else {
			if err := dephealthSvc.Start(ctx); err != nil {
				logger.Warn("Не удалось запустить мониторинг зависимостей",
					slog.String("error", err.Error()),
				)
			} else {
				defer dephealthSvc.Stop()
			}
		}
	}

	// 10. HTTP-сервер (блокирующий вызов с graceful shutdown)
	srv := server.New(cfg, logger, apiHandler,
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
	)
	if err := srv.Run(ctx); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		return fmt.Errorf("сервер завершился с ошибкой: %w", err)
	}

	logger.Info("sheetcheck остановлен")
	return nil
}
