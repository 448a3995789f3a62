// Пакет repository — слой доступа к данным PostgreSQL.
// Все запросы — чистый SQL через pgx, без ORM.
// Операции из нескольких запросов (ответ + первая версия, выделение номера
// версии, upsert теневой ячейки) выполняются через TxRunner.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Исходы транзакций (лейбл result).
const (
	txCommitted   = "committed"
	txRolledBack  = "rolled_back"
	txBeginFailed = "begin_failed"
)

var (
	dbTransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sc_db_transactions_total",
		Help: "Количество транзакций PostgreSQL по исходу.",
	}, []string{"result"})

	dbTransactionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sc_db_transaction_duration_seconds",
		Help:    "Длительность транзакций PostgreSQL в секундах.",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	})
)

// Ошибки слоя репозиториев.
var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("запись не найдена")
	// ErrConflict — конфликт уникальности (дублирующийся ресурс)
	// или версия, построенная на устаревшей базе.
	ErrConflict = errors.New("конфликт — запись уже существует")
)

// DBTX — интерфейс для выполнения SQL-запросов.
// Реализуется как *pgxpool.Pool, так и pgx.Tx, что позволяет
// использовать репозитории как внутри, так и вне транзакций.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxRunner позволяет выполнять операции в транзакции.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner создаёт TxRunner для управления транзакциями.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunInTx выполняет fn внутри транзакции (READ COMMITTED).
// Ошибка fn или коммита откатывает транзакцию; откат выполняется
// на любом пути выхода, включая панику в fn.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	start := time.Now()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		dbTransactionsTotal.WithLabelValues(txBeginFailed).Inc()
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}

	result := txRolledBack
	defer func() {
		if result != txCommitted {
			_ = tx.Rollback(ctx)
		}
		dbTransactionsTotal.WithLabelValues(result).Inc()
		dbTransactionDuration.Observe(time.Since(start).Seconds())
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("ошибка коммита транзакции: %w", err)
	}
	result = txCommitted
	return nil
}

// Transactor — выполнение функции в транзакции.
// Реализуется TxRunner; в тестах подменяется.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// isUniqueViolation проверяет, является ли ошибка нарушением уникальности PostgreSQL.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// isForeignKeyViolation проверяет, является ли ошибка нарушением внешнего ключа PostgreSQL.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503" // foreign_key_violation
	}
	return false
}
