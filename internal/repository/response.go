// response.go — ответы анализатора, версии и отзывы
// (таблицы analysis_responses, analysis_response_versions, analysis_feedback).
//
// Номер новой версии вычисляется как MAX+1 под блокировкой строки ответа
// (SELECT ... FOR UPDATE), поэтому параллельные AppendVersion одного ответа
// выполняются последовательно и номера остаются непрерывными.
// UNIQUE (response_id, version_number) — последняя линия защиты.
// Версия, построенная из текста версии base, сохраняется только если base
// всё ещё последняя; иначе ErrConflict.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/sheetcheck/internal/domain/model"
)

// responseColumns — столбцы ответа с внешним идентификатором источника.
const responseColumns = `r.id, r.source_id, s.external_id, r.product_name, r.name_column,
	r.text_column, r.analyzer_id, r.original_text, r.status, r.created_at`

const responseFrom = `FROM analysis_responses r JOIN sheet_sources s ON s.id = r.source_id`

const versionColumns = `id, response_id, version_number, improved_text, changes, prompt, created_at`

// PendingFilter — фильтры выборки ответов, ожидающих проверки.
// nil = фильтр не применяется.
type PendingFilter struct {
	SourceID   *int64
	NameColumn *string
	TextColumn *string
	AnalyzerID *string
}

// ResponseRepository — интерфейс доступа к ответам анализатора.
type ResponseRepository interface {
	// Create атомарно создаёт ответ (pending) и его первую версию.
	// ErrNotFound, если источник не существует.
	Create(ctx context.Context, resp *model.AnalysisResponse, first *model.ResponseVersion) error
	// AppendVersion добавляет версию с номером MAX+1.
	// base > 0 — номер версии, из которой получен текст: если последняя
	// версия уже другая, возвращается ErrConflict. base == 0 — без проверки.
	// ErrNotFound, если ответа или его версий нет.
	AppendVersion(ctx context.Context, v *model.ResponseVersion, base int) error
	// LatestVersion возвращает версию с наибольшим номером.
	LatestVersion(ctx context.Context, responseID int64) (*model.ResponseVersion, error)
	// GetByID возвращает ответ с версиями и отзывами.
	GetByID(ctx context.Context, id int64) (*model.AnalysisResponse, error)
	// TransitionStatus переводит ответ в статус to по матрице переходов.
	// Возвращает changed == false, если статус уже установлен.
	TransitionStatus(ctx context.Context, id int64, to model.ResponseStatus) (changed bool, err error)
	// ListPending возвращает страницу ответов pending (новые первыми) и общее количество.
	ListPending(ctx context.Context, f PendingFilter, limit, offset int) ([]*model.AnalysisResponse, int, error)
	// ListAll возвращает все ответы (новые первыми) с версиями и отзывами.
	ListAll(ctx context.Context) ([]*model.AnalysisResponse, error)
	// Delete удаляет ответ; версии и отзывы удаляются каскадно.
	Delete(ctx context.Context, id int64) error
	// AddFeedback сохраняет отзыв. ErrNotFound, если ответа нет.
	AddFeedback(ctx context.Context, fb *model.Feedback) error
}

type responseRepo struct {
	db DBTX
	tx Transactor
}

// NewResponseRepository создаёт репозиторий ответов анализатора.
func NewResponseRepository(db DBTX, tx Transactor) ResponseRepository {
	return &responseRepo{db: db, tx: tx}
}

func (r *responseRepo) Create(ctx context.Context, resp *model.AnalysisResponse, first *model.ResponseVersion) error {
	changes, err := marshalChanges(first.Changes)
	if err != nil {
		return err
	}

	return r.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO analysis_responses (source_id, product_name, name_column, text_column,
				analyzer_id, original_text, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at`,
			resp.SourceID, resp.ProductName, resp.NameColumn, resp.TextColumn,
			resp.AnalyzerID, resp.OriginalText, model.StatusPending,
		).Scan(&resp.ID, &resp.CreatedAt)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: источник %d", ErrNotFound, resp.SourceID)
			}
			return fmt.Errorf("ошибка создания ответа: %w", err)
		}
		resp.Status = model.StatusPending

		first.ResponseID = resp.ID
		first.Number = 1
		err = tx.QueryRow(ctx, `
			INSERT INTO analysis_response_versions (response_id, version_number, improved_text, changes, prompt)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at`,
			first.ResponseID, first.Number, first.ImprovedText, changes, first.Prompt,
		).Scan(&first.ID, &first.CreatedAt)
		if err != nil {
			return fmt.Errorf("ошибка создания первой версии: %w", err)
		}

		resp.Versions = []model.ResponseVersion{*first}
		return nil
	})
}

func (r *responseRepo) AppendVersion(ctx context.Context, v *model.ResponseVersion, base int) error {
	changes, err := marshalChanges(v.Changes)
	if err != nil {
		return err
	}

	return r.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		var id int64
		err := tx.QueryRow(ctx,
			`SELECT id FROM analysis_responses WHERE id = $1 FOR UPDATE`, v.ResponseID,
		).Scan(&id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: ответ %d", ErrNotFound, v.ResponseID)
			}
			return fmt.Errorf("ошибка блокировки ответа: %w", err)
		}

		var latest *int
		err = tx.QueryRow(ctx,
			`SELECT MAX(version_number) FROM analysis_response_versions WHERE response_id = $1`, v.ResponseID,
		).Scan(&latest)
		if err != nil {
			return fmt.Errorf("ошибка получения последней версии: %w", err)
		}
		if latest == nil {
			return fmt.Errorf("%w: у ответа %d нет версий", ErrNotFound, v.ResponseID)
		}
		if base > 0 && *latest != base {
			return fmt.Errorf("%w: версия %d ответа %d уже не последняя (последняя %d)",
				ErrConflict, base, v.ResponseID, *latest)
		}

		v.Number = *latest + 1
		err = tx.QueryRow(ctx, `
			INSERT INTO analysis_response_versions (response_id, version_number, improved_text, changes, prompt)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at`,
			v.ResponseID, v.Number, v.ImprovedText, changes, v.Prompt,
		).Scan(&v.ID, &v.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: версия %d ответа %d", ErrConflict, v.Number, v.ResponseID)
			}
			return fmt.Errorf("ошибка создания версии: %w", err)
		}
		return nil
	})
}

func (r *responseRepo) LatestVersion(ctx context.Context, responseID int64) (*model.ResponseVersion, error) {
	query := fmt.Sprintf(`SELECT %s FROM analysis_response_versions
		WHERE response_id = $1 ORDER BY version_number DESC LIMIT 1`, versionColumns)

	v, err := scanVersion(r.db.QueryRow(ctx, query, responseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения последней версии: %w", err)
	}
	return v, nil
}

func (r *responseRepo) GetByID(ctx context.Context, id int64) (*model.AnalysisResponse, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE r.id = $1`, responseColumns, responseFrom)

	resp, err := scanResponse(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения ответа: %w", err)
	}

	if err := r.loadChildren(ctx, []*model.AnalysisResponse{resp}); err != nil {
		return nil, err
	}
	return resp, nil
}

func (r *responseRepo) TransitionStatus(ctx context.Context, id int64, to model.ResponseStatus) (bool, error) {
	changed := false
	err := r.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		var current model.ResponseStatus
		err := tx.QueryRow(ctx,
			`SELECT status FROM analysis_responses WHERE id = $1 FOR UPDATE`, id,
		).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: ответ %d", ErrNotFound, id)
			}
			return fmt.Errorf("ошибка получения статуса: %w", err)
		}

		noop, err := model.CheckTransition(current, to)
		if err != nil || noop {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE analysis_responses SET status = $2 WHERE id = $1`, id, to,
		); err != nil {
			return fmt.Errorf("ошибка обновления статуса: %w", err)
		}
		changed = true
		return nil
	})
	return changed, err
}

func (r *responseRepo) ListPending(ctx context.Context, f PendingFilter, limit, offset int) ([]*model.AnalysisResponse, int, error) {
	where, args := buildPendingWhere(f, 1)
	argNum := len(args) + 1

	dataQuery := fmt.Sprintf(`SELECT %s %s %s ORDER BY r.created_at DESC, r.id DESC LIMIT $%d OFFSET $%d`,
		responseColumns, responseFrom, where, argNum, argNum+1)
	items, err := r.queryResponses(ctx, dataQuery, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}

	countWhere, countArgs := buildPendingWhere(f, 1)
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM analysis_responses r %s`, countWhere)

	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта ответов: %w", err)
	}

	if err := r.loadChildren(ctx, items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *responseRepo) ListAll(ctx context.Context) ([]*model.AnalysisResponse, error) {
	query := fmt.Sprintf(`SELECT %s %s ORDER BY r.created_at DESC, r.id DESC`, responseColumns, responseFrom)

	items, err := r.queryResponses(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *responseRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM analysis_responses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления ответа: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *responseRepo) AddFeedback(ctx context.Context, fb *model.Feedback) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO analysis_feedback (response_id, text)
		VALUES ($1, $2)
		RETURNING id, created_at`,
		fb.ResponseID, fb.Text,
	).Scan(&fb.ID, &fb.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: ответ %d", ErrNotFound, fb.ResponseID)
		}
		return fmt.Errorf("ошибка сохранения отзыва: %w", err)
	}
	return nil
}

// queryResponses выполняет SELECT responseColumns и сканирует результат.
func (r *responseRepo) queryResponses(ctx context.Context, query string, args ...any) ([]*model.AnalysisResponse, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения ответов: %w", err)
	}
	defer rows.Close()

	var result []*model.AnalysisResponse
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования ответа: %w", err)
		}
		result = append(result, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации ответов: %w", err)
	}
	return result, nil
}

// loadChildren загружает версии и отзывы для набора ответов двумя запросами.
func (r *responseRepo) loadChildren(ctx context.Context, items []*model.AnalysisResponse) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]int64, len(items))
	byID := make(map[int64]*model.AnalysisResponse, len(items))
	for i, it := range items {
		ids[i] = it.ID
		byID[it.ID] = it
	}

	vQuery := fmt.Sprintf(`SELECT %s FROM analysis_response_versions
		WHERE response_id = ANY($1) ORDER BY response_id, version_number`, versionColumns)
	rows, err := r.db.Query(ctx, vQuery, ids)
	if err != nil {
		return fmt.Errorf("ошибка получения версий: %w", err)
	}
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			rows.Close()
			return fmt.Errorf("ошибка сканирования версии: %w", err)
		}
		if owner := byID[v.ResponseID]; owner != nil {
			owner.Versions = append(owner.Versions, *v)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("ошибка итерации версий: %w", err)
	}

	fRows, err := r.db.Query(ctx, `SELECT id, response_id, text, created_at FROM analysis_feedback
		WHERE response_id = ANY($1) ORDER BY response_id, created_at, id`, ids)
	if err != nil {
		return fmt.Errorf("ошибка получения отзывов: %w", err)
	}
	defer fRows.Close()
	for fRows.Next() {
		var fb model.Feedback
		if err := fRows.Scan(&fb.ID, &fb.ResponseID, &fb.Text, &fb.CreatedAt); err != nil {
			return fmt.Errorf("ошибка сканирования отзыва: %w", err)
		}
		if owner := byID[fb.ResponseID]; owner != nil {
			owner.Feedback = append(owner.Feedback, fb)
		}
	}
	if err := fRows.Err(); err != nil {
		return fmt.Errorf("ошибка итерации отзывов: %w", err)
	}
	return nil
}

// buildPendingWhere строит WHERE-условие выборки ответов pending.
// startArg — номер первого $-параметра.
func buildPendingWhere(f PendingFilter, startArg int) (whereClause string, args []any) {
	conditions := []string{fmt.Sprintf("r.status = '%s'", model.StatusPending)}
	argNum := startArg

	if f.SourceID != nil {
		conditions = append(conditions, fmt.Sprintf("r.source_id = $%d", argNum))
		args = append(args, *f.SourceID)
		argNum++
	}
	if f.NameColumn != nil {
		conditions = append(conditions, fmt.Sprintf("r.name_column = $%d", argNum))
		args = append(args, *f.NameColumn)
		argNum++
	}
	if f.TextColumn != nil {
		conditions = append(conditions, fmt.Sprintf("r.text_column = $%d", argNum))
		args = append(args, *f.TextColumn)
		argNum++
	}
	if f.AnalyzerID != nil {
		conditions = append(conditions, fmt.Sprintf("r.analyzer_id = $%d", argNum))
		args = append(args, *f.AnalyzerID)
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// scanResponse сканирует строку responseColumns.
func scanResponse(row pgx.Row) (*model.AnalysisResponse, error) {
	resp := &model.AnalysisResponse{}
	err := row.Scan(
		&resp.ID, &resp.SourceID, &resp.SourceExternalID, &resp.ProductName, &resp.NameColumn,
		&resp.TextColumn, &resp.AnalyzerID, &resp.OriginalText, &resp.Status, &resp.CreatedAt,
	)
	return resp, err
}

// scanVersion сканирует строку versionColumns.
func scanVersion(row pgx.Row) (*model.ResponseVersion, error) {
	v := &model.ResponseVersion{}
	var changes []byte
	if err := row.Scan(
		&v.ID, &v.ResponseID, &v.Number, &v.ImprovedText, &changes, &v.Prompt, &v.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		if err := json.Unmarshal(changes, &v.Changes); err != nil {
			return nil, fmt.Errorf("разбор changes версии %d: %w", v.ID, err)
		}
	}
	return v, nil
}

// marshalChanges сериализует список правок для столбца JSONB.
func marshalChanges(changes []model.Change) (string, error) {
	if changes == nil {
		changes = []model.Change{}
	}
	data, err := json.Marshal(changes)
	if err != nil {
		return "", fmt.Errorf("сериализация правок: %w", err)
	}
	return string(data), nil
}
