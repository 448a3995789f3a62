// sources.go — реестр табличных источников.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/bigkaa/sheetcheck/internal/domain/model"
	"github.com/bigkaa/sheetcheck/internal/repository"
)

// RegisterSourceParams — параметры регистрации источника.
type RegisterSourceParams struct {
	// ExternalID — идентификатор документа во внешней системе
	ExternalID string
	// Name — отображаемое имя (пусто — название первого листа)
	Name string
	// URL — ссылка на документ (опционально)
	URL string
}

// SourceService — регистрация и список источников.
type SourceService struct {
	source  TabularSource
	sources repository.SourceRepository
	logger  *slog.Logger
}

// NewSourceService создаёт сервис источников.
func NewSourceService(source TabularSource, sources repository.SourceRepository, logger *slog.Logger) *SourceService {
	return &SourceService{
		source:  source,
		sources: sources,
		logger:  logger.With(slog.String("component", "source_service")),
	}
}

// Register проверяет доступность документа и регистрирует источник.
func (s *SourceService) Register(ctx context.Context, p RegisterSourceParams) (*model.SourceRecord, error) {
	externalID := strings.TrimSpace(p.ExternalID)
	if externalID == "" {
		return nil, fmt.Errorf("%w: не указан source_id", ErrValidation)
	}
	if p.URL != "" {
		if u, err := url.Parse(p.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, fmt.Errorf("%w: некорректный url %q", ErrValidation, p.URL)
		}
	}

	// Обращение к источнику выполняется до записи в БД
	md, err := s.source.GetMetadata(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("%w: метаданные %s: %w", ErrRemote, externalID, err)
	}

	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = md.Title
	}

	src := &model.SourceRecord{ExternalID: externalID, Name: name, URL: p.URL}
	if err := s.sources.Create(ctx, src); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: источник '%s' уже зарегистрирован", ErrConflict, externalID)
		}
		return nil, fmt.Errorf("регистрация источника: %w", err)
	}

	s.logger.Info("Источник зарегистрирован",
		slog.String("source_id", externalID),
		slog.String("name", name),
	)
	return src, nil
}

// List возвращает зарегистрированные источники.
func (s *SourceService) List(ctx context.Context) ([]*model.SourceRecord, error) {
	items, err := s.sources.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение источников: %w", err)
	}
	return items, nil
}
