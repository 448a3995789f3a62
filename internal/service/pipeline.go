// pipeline.go — построчный анализ снимка табличного источника.
// Строки отправляются анализатору последовательно, результаты выдаются
// через канал в порядке строк снимка. Ошибка одной строки становится
// событием и не прерывает запуск.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/sheetcheck/internal/domain/model"
)

// rowsAnalyzedTotal — количество проанализированных строк по исходу.
var rowsAnalyzedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sc_rows_analyzed_total",
	Help: "Общее количество строк, обработанных анализатором.",
}, []string{"outcome"})

// Шаблоны сообщений анализатору.
const (
	rowMessageFormat  = "Product Name: %s\nDescription: %s"
	textMessageFormat = "Analyze and correct this text, marking changes with XML tags: %s"
)

// maxLoggedRawContent — сколько символов неразобранного ответа попадает в лог.
const maxLoggedRawContent = 2000

// AssistantRunner — внешний анализатор текста.
type AssistantRunner interface {
	// Run отправляет сообщение ассистенту и возвращает текст ответа.
	Run(ctx context.Context, assistantID, message string) (string, error)
}

// RunParams — параметры запуска анализа.
type RunParams struct {
	// SourceID — внешний идентификатор источника
	SourceID string
	// Range — диапазон (пусто — диапазон по умолчанию)
	Range string
	// NameColumn — колонка с названием товара
	NameColumn string
	// TextColumn — колонка с анализируемым текстом
	TextColumn string
	// AnalyzerID — идентификатор ассистента
	AnalyzerID string
}

// AnalysisRun — запущенный анализ.
type AnalysisRun struct {
	// ID — идентификатор запуска (для логов и заголовка ответа)
	ID string
	// Rows — количество строк в снимке
	Rows int
	// Warning — предупреждение снимка
	Warning string
	// Results — события по строкам; закрывается после последней строки
	// или при отмене контекста
	Results <-chan model.RowResult
}

// AnalysisService — построчный анализ источников.
type AnalysisService struct {
	tables   *TableService
	analyzer AssistantRunner
	logger   *slog.Logger
}

// NewAnalysisService создаёт сервис анализа.
func NewAnalysisService(tables *TableService, analyzer AssistantRunner, logger *slog.Logger) *AnalysisService {
	return &AnalysisService{
		tables:   tables,
		analyzer: analyzer,
		logger:   logger.With(slog.String("component", "analysis_service")),
	}
}

// Run загружает снимок и запускает анализ строк.
// Ошибки загрузки и проверки колонок возвращаются до первого события.
// Отмена ctx прекращает вызовы анализатора и закрывает канал.
func (s *AnalysisService) Run(ctx context.Context, p RunParams) (*AnalysisRun, error) {
	if p.SourceID == "" || p.NameColumn == "" || p.TextColumn == "" || p.AnalyzerID == "" {
		return nil, fmt.Errorf("%w: требуются source_id, name_column, text_column и analyzer_id", ErrValidation)
	}

	snap, err := s.tables.Fetch(ctx, p.SourceID, p.Range)
	if err != nil {
		return nil, err
	}
	for _, col := range []string{p.NameColumn, p.TextColumn} {
		if _, ok := snap.HeaderIndex[col]; !ok {
			return nil, &ColumnError{Column: col, Headers: snap.Columns}
		}
	}

	run := &AnalysisRun{
		ID:      uuid.NewString(),
		Rows:    snap.Len(),
		Warning: snap.Warning,
	}
	logger := s.logger.With(
		slog.String("run_id", run.ID),
		slog.String("source_id", p.SourceID),
		slog.String("analyzer_id", p.AnalyzerID),
	)

	out := make(chan model.RowResult)
	run.Results = out

	go func() {
		defer close(out)
		start := time.Now()
		logger.Info("Анализ запущен", slog.Int("rows", snap.Len()))

		for i := range snap.Rows {
			if ctx.Err() != nil {
				logger.Info("Анализ прерван", slog.Int("row_index", i))
				return
			}
			name, _ := snap.Value(i, p.NameColumn)
			text, _ := snap.Value(i, p.TextColumn)

			res := s.analyzeRow(ctx, logger, p.AnalyzerID, i, name, text)
			select {
			case out <- res:
			case <-ctx.Done():
				logger.Info("Анализ прерван", slog.Int("row_index", i))
				return
			}
		}

		logger.Info("Анализ завершён",
			slog.Int("rows", snap.Len()),
			slog.Duration("duration", time.Since(start)),
		)
	}()

	return run, nil
}

// AnalyzeText отправляет произвольный текст анализатору и возвращает
// исправленный текст с разметкой правок.
func (s *AnalysisService) AnalyzeText(ctx context.Context, analyzerID, text string) (string, error) {
	if strings.TrimSpace(text) == "" || analyzerID == "" {
		return "", fmt.Errorf("%w: требуются text и analyzer_id", ErrValidation)
	}

	reply, err := s.analyzer.Run(ctx, analyzerID, fmt.Sprintf(textMessageFormat, text))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAnalyzer, err)
	}
	return reply, nil
}

// analyzeRow анализирует одну строку и возвращает событие.
func (s *AnalysisService) analyzeRow(
	ctx context.Context,
	logger *slog.Logger,
	analyzerID string,
	rowIndex int,
	name, text string,
) model.RowResult {
	reply, err := s.analyzer.Run(ctx, analyzerID, fmt.Sprintf(rowMessageFormat, name, text))
	if err != nil {
		rowsAnalyzedTotal.WithLabelValues("failed").Inc()
		logger.Warn("Ошибка анализа строки",
			slog.Int("row_index", rowIndex),
			slog.String("error", err.Error()),
		)
		return model.RowResult{
			RowIndex: rowIndex,
			Outcome:  model.OutcomeFailed,
			Message:  fmt.Sprintf("Ошибка при анализе: %v", err),
		}
	}

	productName, desc, stats, err := parseRowReply(reply)
	if err != nil {
		rowsAnalyzedTotal.WithLabelValues("unparsable").Inc()
		logger.Warn("Некорректный ответ анализатора",
			slog.Int("row_index", rowIndex),
			slog.String("error", err.Error()),
			slog.String("raw_content", truncateRunes(reply, maxLoggedRawContent)),
		)
		return model.RowResult{
			RowIndex:   rowIndex,
			Outcome:    model.OutcomeUnparsable,
			Message:    fmt.Sprintf("Ошибка разбора ответа: %v", err),
			RawContent: reply,
		}
	}

	rowsAnalyzedTotal.WithLabelValues("completed").Inc()
	return model.RowResult{
		RowIndex:           rowIndex,
		Outcome:            model.OutcomeCompleted,
		ProductName:        productName,
		ProductDescription: desc,
		Statistics:         stats,
	}
}

// rowReply — ожидаемая структура ответа анализатора.
type rowReply struct {
	ProductName        json.RawMessage `json:"product_name"`
	ProductDescription json.RawMessage `json:"product_description"`
	Statistics         json.RawMessage `json:"statistics"`
}

// parseRowReply разбирает ответ анализатора. product_name и
// product_description обязательны; statistics по умолчанию — пустой объект.
// Строковый product_name возвращается как есть, иначе — как JSON.
func parseRowReply(reply string) (string, json.RawMessage, json.RawMessage, error) {
	content := stripCodeFence(reply)

	var r rowReply
	if err := json.Unmarshal([]byte(content), &r); err != nil {
		return "", nil, nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if isJSONNull(r.ProductName) {
		return "", nil, nil, fmt.Errorf("%w: отсутствует поле product_name", ErrParse)
	}
	if isJSONNull(r.ProductDescription) {
		return "", nil, nil, fmt.Errorf("%w: отсутствует поле product_description", ErrParse)
	}

	var name string
	if err := json.Unmarshal(r.ProductName, &name); err != nil {
		var buf bytes.Buffer
		if err := json.Compact(&buf, r.ProductName); err != nil {
			return "", nil, nil, fmt.Errorf("%w: product_name: %w", ErrParse, err)
		}
		name = buf.String()
	}

	stats := r.Statistics
	if isJSONNull(stats) {
		stats = json.RawMessage("{}")
	}
	return name, r.ProductDescription, stats, nil
}

// stripCodeFence снимает обрамление ```json ... ```, если оно есть.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

// isJSONNull — значение отсутствует или равно null.
func isJSONNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// truncateRunes обрезает s до n символов, отмечая обрезку многоточием.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "…"
}
