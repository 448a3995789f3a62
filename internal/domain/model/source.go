// Пакет model — доменные модели sheetcheck.
// SourceRecord и ShadowCell — маппинг таблиц sheet_sources и sheet_cells.
package model

import (
	"encoding/json"
	"time"
)

// SourceRecord — зарегистрированный табличный источник (таблица sheet_sources).
type SourceRecord struct {
	// ID — внутренний идентификатор источника
	ID int64
	// ExternalID — идентификатор документа во внешней системе
	// (spreadsheet id Google Sheets или имя файла XLSX), уникален
	ExternalID string
	// Name — отображаемое имя
	Name string
	// URL — ссылка на документ (опционально)
	URL string
	// LastSyncedAt — время последней успешной загрузки из источника
	LastSyncedAt *time.Time
	// CreatedAt — время регистрации
	CreatedAt time.Time
}

// ShadowCell — локальная копия ячейки, записанной через sheetcheck
// (таблица sheet_cells). Уникальна по (SourceID, RowIndex, ColumnName).
type ShadowCell struct {
	SourceID int64
	// RowIndex — номер строки данных с 0 (строка заголовка не считается)
	RowIndex   int
	ColumnName string
	// Value — очищенное значение, записанное в источник
	Value string
	// Suggestion — исходное предложение анализатора (опционально)
	Suggestion *string
	// Checked — ячейка проверена оператором
	Checked bool
	// AnalysisResult — результат анализа строки в JSON (опционально)
	AnalysisResult json.RawMessage
	// LastUpdatedAt — время последней записи
	LastUpdatedAt time.Time
}
