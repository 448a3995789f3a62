// responses.go — сервис ответов анализатора.
// Создание ответа с первой версией, добавление версий, повторный запрос
// к анализатору, переходы статуса проверки, выборки и отзывы.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bigkaa/sheetcheck/internal/domain/model"
	"github.com/bigkaa/sheetcheck/internal/repository"
)

// Параметры пагинации выборки ответов pending.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// repromptMessageFormat — сообщение анализатору при повторном запросе:
// указание оператора и текст последней версии.
const repromptMessageFormat = "%s\n\nText:\n%s"

// CreateResponseParams — параметры сохранения результата анализа строки.
type CreateResponseParams struct {
	// SourceID — внешний идентификатор источника
	SourceID     string
	ProductName  string
	NameColumn   string
	TextColumn   string
	AnalyzerID   string
	OriginalText string
	// ImprovedText и Changes — содержимое версии 1
	ImprovedText string
	Changes      []model.Change
}

// PendingQuery — параметры выборки ответов, ожидающих проверки.
type PendingQuery struct {
	SourceID   string
	NameColumn string
	TextColumn string
	AnalyzerID string
	// Page — номер страницы с 1 (0 — по умолчанию)
	Page int
	// PageSize — размер страницы (0 — по умолчанию)
	PageSize int
}

// PendingPage — страница ответов pending.
type PendingPage struct {
	Items      []*model.AnalysisResponse
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// ResponseService — сервис ответов анализатора.
type ResponseService struct {
	responses repository.ResponseRepository
	sources   repository.SourceRepository
	analyzer  AssistantRunner
	logger    *slog.Logger
}

// NewResponseService создаёт сервис ответов.
func NewResponseService(
	responses repository.ResponseRepository,
	sources repository.SourceRepository,
	analyzer AssistantRunner,
	logger *slog.Logger,
) *ResponseService {
	return &ResponseService{
		responses: responses,
		sources:   sources,
		analyzer:  analyzer,
		logger:    logger.With(slog.String("component", "response_service")),
	}
}

// Create сохраняет ответ (pending) и его версию 1 в одной транзакции.
func (s *ResponseService) Create(ctx context.Context, p CreateResponseParams) (int64, error) {
	switch {
	case strings.TrimSpace(p.SourceID) == "":
		return 0, fmt.Errorf("%w: не указан source_id", ErrValidation)
	case strings.TrimSpace(p.ProductName) == "":
		return 0, fmt.Errorf("%w: не указан product_name", ErrValidation)
	case strings.TrimSpace(p.OriginalText) == "":
		return 0, fmt.Errorf("%w: не указан original_text", ErrValidation)
	case strings.TrimSpace(p.ImprovedText) == "":
		return 0, fmt.Errorf("%w: не указан improved_text", ErrValidation)
	}

	src, err := s.resolveSource(ctx, p.SourceID)
	if err != nil {
		return 0, err
	}

	resp := &model.AnalysisResponse{
		SourceID:     src.ID,
		ProductName:  p.ProductName,
		NameColumn:   p.NameColumn,
		TextColumn:   p.TextColumn,
		AnalyzerID:   p.AnalyzerID,
		OriginalText: p.OriginalText,
	}
	first := &model.ResponseVersion{
		ImprovedText: p.ImprovedText,
		Changes:      p.Changes,
		Prompt:       model.InitialPrompt,
	}
	if err := s.responses.Create(ctx, resp, first); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, fmt.Errorf("%w: источник '%s' не зарегистрирован", ErrNotFound, p.SourceID)
		}
		return 0, fmt.Errorf("создание ответа: %w", err)
	}

	s.logger.Info("Ответ анализатора сохранён",
		slog.Int64("response_id", resp.ID),
		slog.String("source_id", p.SourceID),
		slog.String("product_name", p.ProductName),
	)
	return resp.ID, nil
}

// AddVersion добавляет версию с номером «последний + 1» и возвращает номер.
func (s *ResponseService) AddVersion(
	ctx context.Context,
	responseID int64,
	prompt, text string,
	changes []model.Change,
) (int, error) {
	if strings.TrimSpace(prompt) == "" {
		return 0, fmt.Errorf("%w: не указан prompt", ErrValidation)
	}
	if strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("%w: не указан improved_text", ErrValidation)
	}

	v := &model.ResponseVersion{
		ResponseID:   responseID,
		ImprovedText: text,
		Changes:      changes,
		Prompt:       prompt,
	}
	if err := s.appendVersion(ctx, v, 0); err != nil {
		return 0, err
	}
	return v.Number, nil
}

// Reprompt отправляет текст последней версии анализатору с указанием prompt
// и сохраняет ответ как следующую версию. Вызов анализатора выполняется
// до открытия транзакции; если за это время появилась более новая версия,
// результат не сохраняется (ErrConflict). Пустой analyzerID — ассистент
// исходного анализа.
func (s *ResponseService) Reprompt(
	ctx context.Context,
	responseID int64,
	prompt, analyzerID string,
) (*model.ResponseVersion, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("%w: не указан prompt", ErrValidation)
	}

	latest, err := s.responses.LatestVersion(ctx, responseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: ответ %d или его версии", ErrNotFound, responseID)
		}
		return nil, fmt.Errorf("получение последней версии: %w", err)
	}
	if analyzerID == "" {
		resp, err := s.Get(ctx, responseID)
		if err != nil {
			return nil, err
		}
		analyzerID = resp.AnalyzerID
	}
	if analyzerID == "" {
		return nil, fmt.Errorf("%w: не указан analyzer_id", ErrValidation)
	}

	reply, err := s.analyzer.Run(ctx, analyzerID, fmt.Sprintf(repromptMessageFormat, prompt, latest.ImprovedText))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAnalyzer, err)
	}

	text, changes := parseRepromptReply(reply, latest.ImprovedText)
	if text == "" {
		return nil, fmt.Errorf("%w: пустой ответ на повторный запрос", ErrParse)
	}

	v := &model.ResponseVersion{
		ResponseID:   responseID,
		ImprovedText: text,
		Changes:      changes,
		Prompt:       prompt,
	}
	if err := s.appendVersion(ctx, v, latest.Number); err != nil {
		return nil, err
	}
	return v, nil
}

// SetStatus переводит ответ в confirmed или rejected.
// Повторная установка того же статуса не является ошибкой.
func (s *ResponseService) SetStatus(ctx context.Context, responseID int64, status string) error {
	to, err := model.ParseReviewStatus(status)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	changed, err := s.responses.TransitionStatus(ctx, responseID, to)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("%w: ответ %d", ErrNotFound, responseID)
		case errors.Is(err, model.ErrInvalidTransition):
			return fmt.Errorf("%w: %w", ErrConflict, err)
		}
		return fmt.Errorf("изменение статуса: %w", err)
	}

	if changed {
		s.logger.Info("Статус ответа изменён",
			slog.Int64("response_id", responseID),
			slog.String("status", string(to)),
		)
	}
	return nil
}

// ListPending возвращает страницу ответов pending по четырём фильтрам,
// новые первыми, с полными цепочками версий.
func (s *ResponseService) ListPending(ctx context.Context, q PendingQuery) (*PendingPage, error) {
	if q.SourceID == "" || q.NameColumn == "" || q.TextColumn == "" || q.AnalyzerID == "" {
		return nil, fmt.Errorf("%w: требуются source_id, name_column, text_column и analyzer_id", ErrValidation)
	}
	if q.Page == 0 {
		q.Page = DefaultPage
	}
	if q.PageSize == 0 {
		q.PageSize = DefaultPageSize
	}
	if q.Page < 0 || q.PageSize < 0 || q.PageSize > MaxPageSize {
		return nil, fmt.Errorf("%w: page должен быть > 0, page_size — от 1 до %d", ErrValidation, MaxPageSize)
	}

	page := &PendingPage{Items: []*model.AnalysisResponse{}, Page: q.Page, PageSize: q.PageSize}

	src, err := s.sources.GetByExternalID(ctx, q.SourceID)
	if err != nil {
		// Для незарегистрированного источника ответов быть не может
		if errors.Is(err, repository.ErrNotFound) {
			return page, nil
		}
		return nil, fmt.Errorf("получение источника: %w", err)
	}

	filter := repository.PendingFilter{
		SourceID:   &src.ID,
		NameColumn: &q.NameColumn,
		TextColumn: &q.TextColumn,
		AnalyzerID: &q.AnalyzerID,
	}
	items, total, err := s.responses.ListPending(ctx, filter, q.PageSize, (q.Page-1)*q.PageSize)
	if err != nil {
		return nil, fmt.Errorf("получение ответов pending: %w", err)
	}

	if items != nil {
		page.Items = items
	}
	page.Total = total
	page.TotalPages = (total + q.PageSize - 1) / q.PageSize
	return page, nil
}

// ListAll возвращает все ответы с версиями, новые первыми.
func (s *ResponseService) ListAll(ctx context.Context) ([]*model.AnalysisResponse, error) {
	items, err := s.responses.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение ответов: %w", err)
	}
	return items, nil
}

// Get возвращает ответ с версиями и отзывами.
func (s *ResponseService) Get(ctx context.Context, responseID int64) (*model.AnalysisResponse, error) {
	resp, err := s.responses.GetByID(ctx, responseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: ответ %d", ErrNotFound, responseID)
		}
		return nil, fmt.Errorf("получение ответа: %w", err)
	}
	return resp, nil
}

// Delete удаляет ответ вместе с версиями и отзывами.
func (s *ResponseService) Delete(ctx context.Context, responseID int64) error {
	if err := s.responses.Delete(ctx, responseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: ответ %d", ErrNotFound, responseID)
		}
		return fmt.Errorf("удаление ответа: %w", err)
	}

	s.logger.Info("Ответ удалён", slog.Int64("response_id", responseID))
	return nil
}

// AddFeedback сохраняет отзыв оператора на ответ.
func (s *ResponseService) AddFeedback(ctx context.Context, responseID int64, text string) (*model.Feedback, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: пустой отзыв", ErrValidation)
	}

	fb := &model.Feedback{ResponseID: responseID, Text: text}
	if err := s.responses.AddFeedback(ctx, fb); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: ответ %d", ErrNotFound, responseID)
		}
		return nil, fmt.Errorf("сохранение отзыва: %w", err)
	}

	s.logger.Info("Отзыв сохранён", slog.Int64("response_id", responseID))
	return fb, nil
}

// appendVersion сохраняет версию и переводит ошибки репозитория.
// base > 0 — номер версии, из текста которой получена v.
func (s *ResponseService) appendVersion(ctx context.Context, v *model.ResponseVersion, base int) error {
	if err := s.responses.AppendVersion(ctx, v, base); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return fmt.Errorf("%w: ответ %d или его версии", ErrNotFound, v.ResponseID)
		case errors.Is(err, repository.ErrConflict) && base > 0:
			return fmt.Errorf("%w: версия %d ответа %d уже не последняя, повторите запрос",
				ErrConflict, base, v.ResponseID)
		case errors.Is(err, repository.ErrConflict):
			return fmt.Errorf("%w: номер версии уже занят", ErrConflict)
		}
		return fmt.Errorf("добавление версии: %w", err)
	}

	s.logger.Info("Версия ответа добавлена",
		slog.Int64("response_id", v.ResponseID),
		slog.Int("version", v.Number),
	)
	return nil
}

// resolveSource находит зарегистрированный источник по внешнему идентификатору.
func (s *ResponseService) resolveSource(ctx context.Context, externalID string) (*model.SourceRecord, error) {
	src, err := s.sources.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: источник '%s' не зарегистрирован", ErrNotFound, externalID)
		}
		return nil, fmt.Errorf("получение источника: %w", err)
	}
	return src, nil
}

// repromptReply — структурированный ответ на повторный запрос.
type repromptReply struct {
	ImprovedText string         `json:"improved_text"`
	Changes      []model.Change `json:"changes"`
}

// parseRepromptReply извлекает новый текст и правки из ответа анализатора.
// JSON с improved_text используется как есть; иначе весь ответ считается
// новым текстом, а правки вычисляются сравнением с предыдущей версией.
func parseRepromptReply(reply, previous string) (string, []model.Change) {
	var r repromptReply
	if err := json.Unmarshal([]byte(stripCodeFence(reply)), &r); err == nil && strings.TrimSpace(r.ImprovedText) != "" {
		if r.Changes == nil {
			r.Changes = diffChanges(previous, r.ImprovedText)
		}
		return r.ImprovedText, r.Changes
	}

	text := strings.TrimSpace(reply)
	return text, diffChanges(previous, text)
}
