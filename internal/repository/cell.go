// cell.go — теневые копии записанных ячеек (таблица sheet_cells).
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/sheetcheck/internal/domain/model"
)

const cellColumns = `source_id, row_index, column_name, value, suggestion,
	is_checked, analysis_result, last_updated_at`

// CellRepository — интерфейс доступа к теневым ячейкам.
type CellRepository interface {
	// Upsert вставляет или перезаписывает ячейку в отдельной транзакции.
	// При одновременной записи побеждает последняя.
	Upsert(ctx context.Context, cell *model.ShadowCell) error
	// Get возвращает ячейку по ключу.
	Get(ctx context.Context, sourceID int64, rowIndex int, column string) (*model.ShadowCell, error)
	// ListBySource возвращает ячейки источника по строкам и колонкам.
	ListBySource(ctx context.Context, sourceID int64) ([]*model.ShadowCell, error)
}

type cellRepo struct {
	db DBTX
	tx Transactor
}

// NewCellRepository создаёт репозиторий теневых ячеек.
func NewCellRepository(db DBTX, tx Transactor) CellRepository {
	return &cellRepo{db: db, tx: tx}
}

func (r *cellRepo) Upsert(ctx context.Context, cell *model.ShadowCell) error {
	query := `
		INSERT INTO sheet_cells (source_id, row_index, column_name, value, suggestion,
			is_checked, analysis_result, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (source_id, row_index, column_name) DO UPDATE SET
			value           = EXCLUDED.value,
			suggestion      = COALESCE(EXCLUDED.suggestion, sheet_cells.suggestion),
			is_checked      = EXCLUDED.is_checked,
			analysis_result = COALESCE(EXCLUDED.analysis_result, sheet_cells.analysis_result),
			last_updated_at = EXCLUDED.last_updated_at`

	return r.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			cell.SourceID, cell.RowIndex, cell.ColumnName, cell.Value, cell.Suggestion,
			cell.Checked, nullableJSON(cell.AnalysisResult), cell.LastUpdatedAt,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: источник %d", ErrNotFound, cell.SourceID)
			}
			return fmt.Errorf("ошибка записи теневой ячейки: %w", err)
		}
		return nil
	})
}

func (r *cellRepo) Get(ctx context.Context, sourceID int64, rowIndex int, column string) (*model.ShadowCell, error) {
	query := fmt.Sprintf(`SELECT %s FROM sheet_cells
		WHERE source_id = $1 AND row_index = $2 AND column_name = $3`, cellColumns)

	cell, err := scanCell(r.db.QueryRow(ctx, query, sourceID, rowIndex, column))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения теневой ячейки: %w", err)
	}
	return cell, nil
}

func (r *cellRepo) ListBySource(ctx context.Context, sourceID int64) ([]*model.ShadowCell, error) {
	query := fmt.Sprintf(`SELECT %s FROM sheet_cells
		WHERE source_id = $1 ORDER BY row_index, column_name`, cellColumns)

	rows, err := r.db.Query(ctx, query, sourceID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения теневых ячеек: %w", err)
	}
	defer rows.Close()

	var result []*model.ShadowCell
	for rows.Next() {
		cell, err := scanCell(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования теневой ячейки: %w", err)
		}
		result = append(result, cell)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации теневых ячеек: %w", err)
	}
	return result, nil
}

// scanCell сканирует строку cellColumns.
func scanCell(row pgx.Row) (*model.ShadowCell, error) {
	c := &model.ShadowCell{}
	var analysis []byte
	if err := row.Scan(
		&c.SourceID, &c.RowIndex, &c.ColumnName, &c.Value, &c.Suggestion,
		&c.Checked, &analysis, &c.LastUpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(analysis) > 0 {
		c.AnalysisResult = analysis
	}
	return c, nil
}

// nullableJSON возвращает nil для пустого JSON (NULL в БД).
func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
