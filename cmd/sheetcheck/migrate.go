// migrate.go — команда migrate: применение миграций БД без запуска сервера.
package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/bigkaa/sheetcheck/internal/config"
	"github.com/bigkaa/sheetcheck/internal/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Применить миграции БД и завершиться",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
				return err
			}
			logger := config.SetupLogger(cfg)

			if err := database.Migrate(cfg, logger); err != nil {
				logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
				return err
			}
			return nil
		},
	}
}
