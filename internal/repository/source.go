package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/sheetcheck/internal/domain/model"
)

// sourceColumns — список столбцов таблицы sheet_sources для SELECT-запросов.
const sourceColumns = `id, external_id, name, url, last_synced_at, created_at`

// SourceRepository — интерфейс доступа к зарегистрированным источникам.
type SourceRepository interface {
	// Create регистрирует источник. ErrConflict при повторном external_id.
	Create(ctx context.Context, src *model.SourceRecord) error
	// GetByExternalID возвращает источник по внешнему идентификатору.
	GetByExternalID(ctx context.Context, externalID string) (*model.SourceRecord, error)
	// List возвращает все источники по имени.
	List(ctx context.Context) ([]*model.SourceRecord, error)
	// TouchSynced обновляет время последней загрузки.
	TouchSynced(ctx context.Context, externalID string, at time.Time) error
}

// sourceRepo — реализация SourceRepository через pgx.
type sourceRepo struct {
	db DBTX
}

// NewSourceRepository создаёт репозиторий источников.
func NewSourceRepository(db DBTX) SourceRepository {
	return &sourceRepo{db: db}
}

func (r *sourceRepo) Create(ctx context.Context, src *model.SourceRecord) error {
	query := `
		INSERT INTO sheet_sources (external_id, name, url)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query, src.ExternalID, src.Name, src.URL).Scan(&src.ID, &src.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: источник %q уже зарегистрирован", ErrConflict, src.ExternalID)
		}
		return fmt.Errorf("ошибка регистрации источника: %w", err)
	}
	return nil
}

func (r *sourceRepo) GetByExternalID(ctx context.Context, externalID string) (*model.SourceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM sheet_sources WHERE external_id = $1`, sourceColumns)

	src := &model.SourceRecord{}
	err := r.db.QueryRow(ctx, query, externalID).Scan(
		&src.ID, &src.ExternalID, &src.Name, &src.URL, &src.LastSyncedAt, &src.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения источника: %w", err)
	}
	return src, nil
}

func (r *sourceRepo) List(ctx context.Context) ([]*model.SourceRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM sheet_sources ORDER BY name, id`, sourceColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка источников: %w", err)
	}
	defer rows.Close()

	var result []*model.SourceRecord
	for rows.Next() {
		src := &model.SourceRecord{}
		if err := rows.Scan(
			&src.ID, &src.ExternalID, &src.Name, &src.URL, &src.LastSyncedAt, &src.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования источника: %w", err)
		}
		result = append(result, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации источников: %w", err)
	}
	return result, nil
}

// TouchSynced возвращает ErrNotFound, если источник не зарегистрирован.
func (r *sourceRepo) TouchSynced(ctx context.Context, externalID string, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE sheet_sources SET last_synced_at = $2 WHERE external_id = $1`,
		externalID, at,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления last_synced_at: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
