// table.go — загрузка табличных источников в снимки.
// Метаданные → чтение порциями по chunkSize строк → выравнивание строк →
// заголовок и индекс колонок → удаление пустых колонок → проверка
// обязательной колонки. Результат кэшируется в SnapshotCache.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"github.com/bigkaa/sheetcheck/internal/colref"
	"github.com/bigkaa/sheetcheck/internal/domain/model"
	"github.com/bigkaa/sheetcheck/internal/repository"
)

// sourceFetchDuration — длительность загрузки снимка из источника.
var sourceFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "sc_source_fetch_duration_seconds",
	Help:    "Длительность загрузки снимка из табличного источника.",
	Buckets: prometheus.DefBuckets,
}, []string{"result"})

// TabularSource — внешний табличный источник (Google Sheets, XLSX).
type TabularSource interface {
	// GetMetadata возвращает название и размеры первого листа.
	GetMetadata(ctx context.Context, sourceID string) (*model.SheetMetadata, error)
	// GetValues возвращает строки диапазона в нотации A1.
	// Хвостовые пустые ячейки и строки могут отсутствовать.
	GetValues(ctx context.Context, sourceID, rangeExpr string) ([][]string, error)
	// UpdateCell записывает значение в одну ячейку без интерпретации формул.
	UpdateCell(ctx context.Context, sourceID, cellAddress, value string) error
}

// TableOptions — параметры загрузки снимков.
type TableOptions struct {
	// ChunkSize — строк в одном запросе к источнику
	ChunkSize int
	// DefaultRange — диапазон, если не задан явно
	DefaultRange string
	// RequiredColumn — колонка, отсутствие которой даёт предупреждение
	// (пустая строка отключает проверку)
	RequiredColumn string
	// FetchTimeout — предельное время общей загрузки снимка
	FetchTimeout time.Duration
}

// TableService — доступ к табличным источникам через кэш снимков.
type TableService struct {
	source  TabularSource
	cache   *SnapshotCache
	sources repository.SourceRepository
	opts    TableOptions
	group   singleflight.Group
	logger  *slog.Logger
	now     func() time.Time
}

// NewTableService создаёт сервис снимков.
// sources может быть nil: тогда время синхронизации не записывается.
func NewTableService(
	source TabularSource,
	cache *SnapshotCache,
	sources repository.SourceRepository,
	opts TableOptions,
	logger *slog.Logger,
) *TableService {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1000
	}
	if opts.DefaultRange == "" {
		opts.DefaultRange = "A1:ZZ"
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 2 * time.Minute
	}
	return &TableService{
		source:  source,
		cache:   cache,
		sources: sources,
		opts:    opts,
		logger:  logger.With(slog.String("component", "table_service")),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Fetch возвращает снимок диапазона источника.
// Попадание в кэш не обращается к источнику. При промахе одновременные
// запросы одного ключа выполняют одну загрузку. Загрузка не отменяется
// вместе с запросом, который её начал: отмена ctx прерывает только
// ожидание текущего вызова. Ошибка источника не изменяет кэш.
func (s *TableService) Fetch(ctx context.Context, sourceID, rangeExpr string) (*model.TableSnapshot, error) {
	if strings.TrimSpace(sourceID) == "" {
		return nil, fmt.Errorf("%w: не указан источник", ErrValidation)
	}
	if rangeExpr == "" {
		rangeExpr = s.opts.DefaultRange
	}

	if snap, ok := s.cache.Get(sourceID, rangeExpr); ok {
		return snap, nil
	}

	ch := s.group.DoChan(cacheKey(sourceID, rangeExpr), func() (any, error) {
		// Снимок мог появиться, пока предыдущая загрузка ключа завершалась
		if snap, ok := s.cache.Get(sourceID, rangeExpr); ok {
			return snap, nil
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.FetchTimeout)
		defer cancel()
		return s.load(loadCtx, sourceID, rangeExpr)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("ожидание снимка %s: %w", sourceID, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Debug("Загрузка снимка разделена между запросами",
				slog.String("source_id", sourceID),
				slog.String("range", rangeExpr),
			)
		}
		return res.Val.(*model.TableSnapshot), nil
	}
}

// Invalidate удаляет из кэша все снимки источника.
func (s *TableService) Invalidate(sourceID string) {
	s.cache.InvalidateSource(sourceID)
}

// load загружает снимок из источника и сохраняет его в кэш.
func (s *TableService) load(ctx context.Context, sourceID, rangeExpr string) (*model.TableSnapshot, error) {
	rng, err := colref.ParseRange(rangeExpr)
	if err != nil {
		return nil, fmt.Errorf("%w: диапазон %q: %w", ErrValidation, rangeExpr, err)
	}

	start := time.Now()
	rows, err := s.fetchRows(ctx, sourceID, rng)
	if err != nil {
		sourceFetchDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return nil, err
	}
	sourceFetchDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	snap := buildSnapshot(rows, s.opts.RequiredColumn, s.now())
	s.cache.Set(sourceID, rangeExpr, snap)

	s.logger.Info("Снимок загружен",
		slog.String("source_id", sourceID),
		slog.String("range", rangeExpr),
		slog.Int("rows", snap.Len()),
		slog.Int("columns", len(snap.Columns)),
	)
	if snap.Warning != "" {
		s.logger.Warn("Структура таблицы",
			slog.String("source_id", sourceID),
			slog.String("warning", snap.Warning),
		)
	}

	s.touchSynced(ctx, sourceID, snap.FetchedAt)
	return snap, nil
}

// fetchRows читает диапазон порциями, пока порция не окажется короче
// chunkSize или не закончится объявленный размер листа.
func (s *TableService) fetchRows(ctx context.Context, sourceID string, rng colref.Range) ([][]string, error) {
	md, err := s.source.GetMetadata(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("%w: метаданные %s: %w", ErrRemote, sourceID, err)
	}
	if rng.Sheet == "" {
		rng.Sheet = md.Title
	}

	last := md.RowCount
	if rng.EndRow > 0 && rng.EndRow < last {
		last = rng.EndRow
	}

	chunk := s.opts.ChunkSize
	var rows [][]string
	for first := rng.StartRow; first <= last; first += chunk {
		end := min(first+chunk-1, last)
		part := rng.WithRows(first, end).String()

		values, err := s.source.GetValues(ctx, sourceID, part)
		if err != nil {
			return nil, fmt.Errorf("%w: диапазон %s источника %s: %w", ErrRemote, part, sourceID, err)
		}
		rows = append(rows, values...)

		s.logger.Debug("Порция загружена",
			slog.String("source_id", sourceID),
			slog.String("range", part),
			slog.Int("rows", len(values)),
		)
		if len(values) < chunk {
			break
		}
	}
	return rows, nil
}

// touchSynced записывает время синхронизации зарегистрированного источника.
// Ошибка не прерывает загрузку.
func (s *TableService) touchSynced(ctx context.Context, sourceID string, at time.Time) {
	if s.sources == nil {
		return
	}
	err := s.sources.TouchSynced(ctx, sourceID, at)
	switch {
	case err == nil, errors.Is(err, repository.ErrNotFound):
	default:
		s.logger.Warn("Не удалось обновить время синхронизации",
			slog.String("source_id", sourceID),
			slog.String("error", err.Error()),
		)
	}
}

// buildSnapshot строит снимок из сырых строк: первая строка — заголовок.
func buildSnapshot(rows [][]string, requiredColumn string, fetchedAt time.Time) *model.TableSnapshot {
	if len(rows) == 0 {
		return &model.TableSnapshot{FetchedAt: fetchedAt}
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	padded := make([][]string, len(rows))
	for i, row := range rows {
		p := make([]string, width)
		copy(p, row)
		padded[i] = p
	}

	header, data := padded[0], padded[1:]

	// Без строк данных колонки заголовка сохраняются
	keep := make([]int, 0, width)
	for j := range width {
		if len(data) == 0 || !columnEmpty(data, j) {
			keep = append(keep, j)
		}
	}

	snap := &model.TableSnapshot{
		Columns:     make([]string, len(keep)),
		Rows:        make([][]string, len(data)),
		HeaderIndex: make(map[string]int, len(keep)),
		FetchedAt:   fetchedAt,
	}
	for k, j := range keep {
		name := strings.TrimSpace(header[j])
		snap.Columns[k] = name
		if _, dup := snap.HeaderIndex[name]; !dup {
			snap.HeaderIndex[name] = k
		}
	}
	for i, row := range data {
		r := make([]string, len(keep))
		for k, j := range keep {
			r[k] = row[j]
		}
		snap.Rows[i] = r
	}

	if requiredColumn != "" && !hasColumn(snap.Columns, requiredColumn) {
		snap.Warning = fmt.Sprintf("Колонка '%s' не найдена в таблице.", requiredColumn)
	}
	return snap
}

// columnEmpty проверяет, что колонка j пуста во всех строках.
func columnEmpty(rows [][]string, j int) bool {
	for _, row := range rows {
		if strings.TrimSpace(row[j]) != "" {
			return false
		}
	}
	return true
}

// hasColumn ищет колонку без учёта регистра.
func hasColumn(columns []string, name string) bool {
	name = strings.TrimSpace(name)
	for _, c := range columns {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}
