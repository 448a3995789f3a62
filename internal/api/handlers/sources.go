// sources.go — обработчики /api/v1/sources endpoints.
// Регистрация источников, снимок данных, запись ячеек и теневое хранилище.
package handlers

import (
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/sheetcheck/internal/api/errors"
	"github.com/bigkaa/sheetcheck/internal/api/openapi"
	"github.com/bigkaa/sheetcheck/internal/domain/model"
	"github.com/bigkaa/sheetcheck/internal/service"
)

// ListSources — GET /api/v1/sources.
func (h *APIHandler) ListSources(w http.ResponseWriter, r *http.Request) {
	records, err := h.sources.List(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "Ошибка получения списка источников")
		return
	}

	items := make([]openapi.Source, 0, len(records))
	for _, rec := range records {
		items = append(items, mapSource(rec))
	}
	writeJSON(w, http.StatusOK, items)
}

// RegisterSource — POST /api/v1/sources.
// Источник проверяется запросом метаданных до сохранения в БД.
func (h *APIHandler) RegisterSource(w http.ResponseWriter, r *http.Request) {
	var req openapi.RegisterSourceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, err := h.sources.Register(r.Context(), service.RegisterSourceParams{
		ExternalID: req.SourceId,
		Name:       req.Name,
		URL:        req.Url,
	})
	if err != nil {
		h.writeServiceError(w, err, "Ошибка регистрации источника", slog.String("source_id", req.SourceId))
		return
	}
	writeJSON(w, http.StatusCreated, mapSource(rec))
}

// GetSourceData — GET /api/v1/sources/{source_id}/data.
func (h *APIHandler) GetSourceData(w http.ResponseWriter, r *http.Request, sourceID string, params openapi.GetSourceDataParams) {
	var rangeExpr string
	if params.Range != nil {
		rangeExpr = *params.Range
	}

	snap, err := h.tables.Fetch(r.Context(), sourceID, rangeExpr)
	if err != nil {
		h.writeServiceError(w, err, "Ошибка получения данных источника", slog.String("source_id", sourceID))
		return
	}

	columns := snap.Columns
	if columns == nil {
		columns = []string{}
	}
	writeJSON(w, http.StatusOK, openapi.SourceData{
		Columns:   columns,
		Rows:      snap.Records(),
		Warning:   snap.Warning,
		FetchedAt: snap.FetchedAt,
	})
}

// ListSourceCells — GET /api/v1/sources/{source_id}/cells.
func (h *APIHandler) ListSourceCells(w http.ResponseWriter, r *http.Request, sourceID string) {
	cells, err := h.cells.ListCells(r.Context(), sourceID)
	if err != nil {
		h.writeServiceError(w, err, "Ошибка получения теневых ячеек", slog.String("source_id", sourceID))
		return
	}

	items := make([]openapi.ShadowCell, 0, len(cells))
	for _, c := range cells {
		items = append(items, mapShadowCell(c))
	}
	writeJSON(w, http.StatusOK, items)
}

// WriteSourceCell — PUT /api/v1/sources/{source_id}/cells.
// Значение записывается в источник, затем в теневое хранилище.
func (h *APIHandler) WriteSourceCell(w http.ResponseWriter, r *http.Request, sourceID string) {
	var req openapi.WriteCellRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RowIndex == nil {
		apierrors.ValidationError(w, "Не указан row_index")
		return
	}
	if req.Value == nil {
		apierrors.ValidationError(w, "Не указано value")
		return
	}

	cell, err := h.cells.WriteCell(r.Context(), service.WriteCellParams{
		SourceID:       sourceID,
		RowIndex:       *req.RowIndex,
		Column:         req.Column,
		Value:          *req.Value,
		Suggestion:     req.Suggestion,
		Checked:        req.Checked,
		AnalysisResult: req.AnalysisResult,
	})
	if err != nil {
		h.writeServiceError(w, err, "Ошибка записи ячейки",
			slog.String("source_id", sourceID),
			slog.Int("row_index", *req.RowIndex),
			slog.String("column", req.Column),
		)
		return
	}
	writeJSON(w, http.StatusOK, mapShadowCell(cell))
}

// mapSource конвертирует доменную модель в API-тип.
func mapSource(rec *model.SourceRecord) openapi.Source {
	return openapi.Source{
		SourceId:     rec.ExternalID,
		Name:         rec.Name,
		Url:          rec.URL,
		LastSyncedAt: rec.LastSyncedAt,
		CreatedAt:    rec.CreatedAt,
	}
}

// mapShadowCell конвертирует теневую ячейку в API-тип.
func mapShadowCell(c *model.ShadowCell) openapi.ShadowCell {
	return openapi.ShadowCell{
		RowIndex:       c.RowIndex,
		Column:         c.ColumnName,
		Value:          c.Value,
		Suggestion:     c.Suggestion,
		Checked:        c.Checked,
		AnalysisResult: c.AnalysisResult,
		LastUpdatedAt:  c.LastUpdatedAt,
	}
}
