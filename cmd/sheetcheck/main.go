// main.go — точка входа sheetcheck.
// Без подкоманды запускается serve (HTTP API); migrate и analyze
// описаны в migrate.go и analyze.go.
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sheetcheck",
		Short: "Проверка и исправление текстов в табличных источниках",
		Long: `sheetcheck читает таблицы (Google Sheets или XLSX), построчно отправляет
тексты ассистенту-анализатору и хранит версии исправлений со статусами проверки.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}

	rootCmd.AddCommand(newServeCmd(), newMigrateCmd(), newAnalyzeCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
