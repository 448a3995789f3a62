// wiring.go — сборка общих зависимостей команд: источник таблиц и анализатор.
package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bigkaa/sheetcheck/internal/api/handlers"
	"github.com/bigkaa/sheetcheck/internal/assistant"
	"github.com/bigkaa/sheetcheck/internal/config"
	"github.com/bigkaa/sheetcheck/internal/repository"
	"github.com/bigkaa/sheetcheck/internal/service"
	"github.com/bigkaa/sheetcheck/internal/sheetsclient"
	"github.com/bigkaa/sheetcheck/internal/xlsxsource"
)

// Проверка реализации интерфейсов сервисного слоя на этапе компиляции.
var (
	_ service.TabularSource   = (*sheetsclient.Client)(nil)
	_ service.TabularSource   = (*xlsxsource.Source)(nil)
	_ service.AssistantRunner = (*assistant.Client)(nil)
)

// newTabularSource создаёт источник таблиц по SC_SHEETS_BACKEND.
// Для backend xlsx дополнительно возвращается проверка готовности каталога книг.
func newTabularSource(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (service.TabularSource, []handlers.NamedChecker, error) {
	switch cfg.SheetsBackend {
	case config.BackendXLSX:
		src := xlsxsource.New(cfg.XLSXDir, logger)
		logger.Info("Источник таблиц: каталог XLSX", slog.String("dir", cfg.XLSXDir))
		return src, []handlers.NamedChecker{{Name: "xlsx_dir", Checker: src}}, nil
	default:
		client, err := sheetsclient.NewFromCredentialsFile(
			ctx, cfg.SheetsAPIURL, cfg.GoogleCredentialsFile, cfg.SheetsTimeout, logger,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("создание клиента Google Sheets: %w", err)
		}
		logger.Info("Источник таблиц: Google Sheets", slog.String("url", cfg.SheetsAPIURL))
		return client, nil, nil
	}
}

// newAnalyzer создаёт клиент Assistants API.
func newAnalyzer(cfg *config.Config, logger *slog.Logger) *assistant.Client {
	if cfg.OpenAIAPIKey == "" {
		logger.Warn("SC_OPENAI_API_KEY не задана, запросы к анализатору будут отклонены")
	}
	return assistant.New(assistant.Options{
		BaseURL:      cfg.OpenAIAPIURL,
		APIKey:       cfg.OpenAIAPIKey,
		Timeout:      cfg.AnalyzerTimeout,
		PollInterval: cfg.AnalyzerPollInterval,
		RunTimeout:   cfg.AnalyzerRunTimeout,
		RateLimit:    cfg.AnalyzerRateLimit,
	}, logger)
}

// newTableService создаёт сервис доступа к таблицам.
// sources может быть nil (команда analyze работает без БД).
func newTableService(
	cfg *config.Config,
	source service.TabularSource,
	cache *service.SnapshotCache,
	sources repository.SourceRepository,
	logger *slog.Logger,
) *service.TableService {
	return service.NewTableService(source, cache, sources, service.TableOptions{
		ChunkSize:      cfg.SheetChunkSize,
		DefaultRange:   cfg.SheetDefaultRange,
		RequiredColumn: cfg.RequiredColumn,
		FetchTimeout:   cfg.SheetFetchTimeout,
	}, logger)
}
