// analyze.go — команда analyze: построчный анализ источника без HTTP и БД.
// События строк выводятся в stdout в формате JSON Lines, логи — в stderr.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bigkaa/sheetcheck/internal/config"
	"github.com/bigkaa/sheetcheck/internal/service"
)

type analyzeFlags struct {
	source     string
	rangeExpr  string
	nameColumn string
	textColumn string
	analyzer   string
}

func newAnalyzeCmd() *cobra.Command {
	var f analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Проанализировать строки источника и вывести результаты в stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVar(&f.source, "source", "", "Идентификатор источника (ID таблицы или имя файла XLSX)")
	cmd.Flags().StringVar(&f.rangeExpr, "range", "", "Диапазон A1 (по умолчанию SC_SHEET_DEFAULT_RANGE)")
	cmd.Flags().StringVar(&f.nameColumn, "name-column", "", "Колонка с названием товара")
	cmd.Flags().StringVar(&f.textColumn, "text-column", "", "Колонка с анализируемым текстом")
	cmd.Flags().StringVar(&f.analyzer, "analyzer", "", "Имя или идентификатор ассистента")
	for _, name := range []string{"source", "name-column", "text-column", "analyzer"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runAnalyze(ctx context.Context, f analyzeFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("загрузка конфигурации: %w", err)
	}
	logger := config.SetupLoggerTo(cfg, os.Stderr)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, _, err := newTabularSource(ctx, cfg, logger)
	if err != nil {
		return err
	}

	cache := service.NewSnapshotCache(cfg.CacheMaxSize, cfg.CacheTTL)
	tables := newTableService(cfg, source, cache, nil, logger)
	analysis := service.NewAnalysisService(tables, newAnalyzer(cfg, logger), logger)

	run, err := analysis.Run(ctx, service.RunParams{
		SourceID:   f.source,
		Range:      f.rangeExpr,
		NameColumn: f.nameColumn,
		TextColumn: f.textColumn,
		AnalyzerID: resolveAnalyzer(cfg.Analyzers, f.analyzer),
	})
	if err != nil {
		return fmt.Errorf("запуск анализа: %w", err)
	}
	if run.Warning != "" {
		logger.Warn(run.Warning, slog.String("run_id", run.ID))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	count := 0
	for res := range run.Results {
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("запись результата: %w", err)
		}
		count++
	}

	if ctx.Err() != nil {
		logger.Warn("Анализ прерван", slog.Int("rows_written", count), slog.Int("rows_total", run.Rows))
		return ctx.Err()
	}
	logger.Info("Анализ завершён", slog.String("run_id", run.ID), slog.Int("rows", count))
	return nil
}

// resolveAnalyzer возвращает идентификатор ассистента по отображаемому имени.
// Неизвестное имя считается идентификатором.
func resolveAnalyzer(analyzers []config.Analyzer, nameOrID string) string {
	for _, a := range analyzers {
		if a.Name == nameOrID {
			return a.ID
		}
	}
	return nameOrID
}
