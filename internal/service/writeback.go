// writeback.go — запись одной ячейки в табличный источник.
// Проверка колонки по актуальным заголовкам, вычисление адреса,
// запись в источник и только после успеха — обновление теневой копии.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/sheetcheck/internal/colref"
	"github.com/bigkaa/sheetcheck/internal/domain/model"
	"github.com/bigkaa/sheetcheck/internal/repository"
	"github.com/bigkaa/sheetcheck/internal/sanitize"
)

// cellWritesTotal — количество записей ячеек по результату.
var cellWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sc_cell_writes_total",
	Help: "Общее количество записей ячеек в табличный источник.",
}, []string{"result"})

// headerRowRange — диапазон строки заголовков.
const headerRowRange = "A1:ZZ1"

// WriteCellParams — параметры записи ячейки.
type WriteCellParams struct {
	// SourceID — внешний идентификатор источника
	SourceID string
	// RowIndex — номер строки данных с 0
	RowIndex int
	// Column — имя колонки из строки заголовков
	Column string
	// Value — новое значение (очищается от разметки)
	Value string
	// Suggestion — исходное предложение анализатора (опционально)
	Suggestion *string
	// Checked — отметка проверки оператором
	Checked bool
	// AnalysisResult — результат анализа строки (опционально)
	AnalysisResult json.RawMessage
}

// WriteBackService — запись ячеек с зеркалированием в теневое хранилище.
type WriteBackService struct {
	source  TabularSource
	sources repository.SourceRepository
	cells   repository.CellRepository
	cache   *SnapshotCache
	logger  *slog.Logger
	now     func() time.Time
}

// NewWriteBackService создаёт сервис записи ячеек.
func NewWriteBackService(
	source TabularSource,
	sources repository.SourceRepository,
	cells repository.CellRepository,
	cache *SnapshotCache,
	logger *slog.Logger,
) *WriteBackService {
	return &WriteBackService{
		source:  source,
		sources: sources,
		cells:   cells,
		cache:   cache,
		logger:  logger.With(slog.String("component", "writeback_service")),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WriteCell записывает значение в ячейку (строка RowIndex, колонка Column).
// Ошибка источника прерывает операцию до изменения теневой копии.
func (s *WriteBackService) WriteCell(ctx context.Context, p WriteCellParams) (*model.ShadowCell, error) {
	value := sanitize.CellValue(p.Value)
	column := strings.TrimSpace(p.Column)
	if column == "" {
		return nil, fmt.Errorf("%w: не указана колонка", ErrValidation)
	}
	if p.RowIndex < 0 {
		return nil, fmt.Errorf("%w: номер строки %d отрицательный", ErrValidation, p.RowIndex)
	}

	src, err := s.sources.GetByExternalID(ctx, p.SourceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: источник '%s' не зарегистрирован", ErrNotFound, p.SourceID)
		}
		return nil, fmt.Errorf("получение источника: %w", err)
	}

	title, headers, err := s.liveHeaders(ctx, p.SourceID)
	if err != nil {
		cellWritesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	pos := -1
	for i, h := range headers {
		if strings.TrimSpace(h) == column {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil, &ColumnError{Column: column, Headers: headers}
	}

	addr, err := colref.CellAddress(title, pos+1, p.RowIndex+2)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	if err := s.source.UpdateCell(ctx, p.SourceID, addr, value); err != nil {
		cellWritesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: запись ячейки (источник %s, строка %d, колонка %s): %w",
			ErrRemote, p.SourceID, p.RowIndex, column, err)
	}
	cellWritesTotal.WithLabelValues("ok").Inc()
	s.cache.InvalidateSource(p.SourceID)

	cell := &model.ShadowCell{
		SourceID:       src.ID,
		RowIndex:       p.RowIndex,
		ColumnName:     column,
		Value:          value,
		Checked:        p.Checked,
		AnalysisResult: p.AnalysisResult,
		LastUpdatedAt:  s.now(),
	}
	if p.Suggestion != nil {
		suggestion := sanitize.CellValue(*p.Suggestion)
		cell.Suggestion = &suggestion
	}
	if err := s.cells.Upsert(ctx, cell); err != nil {
		return nil, fmt.Errorf("сохранение теневой копии (источник %s, строка %d, колонка %s): %w",
			p.SourceID, p.RowIndex, column, err)
	}

	s.logger.Info("Ячейка записана",
		slog.String("source_id", p.SourceID),
		slog.Int("row_index", p.RowIndex),
		slog.String("column", column),
		slog.String("address", addr),
	)
	return cell, nil
}

// ListCells возвращает теневые ячейки источника.
func (s *WriteBackService) ListCells(ctx context.Context, sourceID string) ([]*model.ShadowCell, error) {
	src, err := s.sources.GetByExternalID(ctx, sourceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: источник '%s' не зарегистрирован", ErrNotFound, sourceID)
		}
		return nil, fmt.Errorf("получение источника: %w", err)
	}

	cells, err := s.cells.ListBySource(ctx, src.ID)
	if err != nil {
		return nil, fmt.Errorf("получение теневых ячеек: %w", err)
	}
	return cells, nil
}

// liveHeaders читает название листа и строку заголовков напрямую из источника,
// минуя кэш: структура колонок могла измениться.
func (s *WriteBackService) liveHeaders(ctx context.Context, sourceID string) (string, []string, error) {
	md, err := s.source.GetMetadata(ctx, sourceID)
	if err != nil {
		return "", nil, fmt.Errorf("%w: метаданные %s: %w", ErrRemote, sourceID, err)
	}

	rng := colref.QuoteSheet(md.Title) + "!" + headerRowRange
	rows, err := s.source.GetValues(ctx, sourceID, rng)
	if err != nil {
		return "", nil, fmt.Errorf("%w: заголовки %s: %w", ErrRemote, sourceID, err)
	}

	var headers []string
	if len(rows) > 0 {
		headers = rows[0]
	}
	return md.Title, headers, nil
}
