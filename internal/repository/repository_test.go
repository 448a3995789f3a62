package repository

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bigkaa/sheetcheck/internal/config"
	"github.com/bigkaa/sheetcheck/internal/database"
	"github.com/bigkaa/sheetcheck/internal/domain/model"
)

// setupTestDB запускает PostgreSQL контейнер, применяет миграции.
// Возвращает pgxpool.Pool.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("Пропуск интеграционного теста: TEST_INTEGRATION не установлена")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("sheetcheck_test"),
		postgres.WithUsername("sheetcheck"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Не удалось запустить PostgreSQL контейнер: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Ошибка остановки контейнера: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Не удалось получить host контейнера: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Не удалось получить port контейнера: %v", err)
	}

	cfg := &config.Config{
		DBHost:     host,
		DBPort:     port.Int(),
		DBName:     "sheetcheck_test",
		DBUser:     "sheetcheck",
		DBPassword: "test-password",
		DBSSLMode:  "disable",
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if err := database.Migrate(cfg, logger); err != nil {
		t.Fatalf("Ошибка миграций: %v", err)
	}

	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Ошибка подключения: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	return pool
}

// createSource регистрирует источник для тестов.
func createSource(t *testing.T, repo SourceRepository, externalID string) *model.SourceRecord {
	t.Helper()
	src := &model.SourceRecord{ExternalID: externalID, Name: "Katalog " + externalID}
	if err := repo.Create(context.Background(), src); err != nil {
		t.Fatalf("Create(%s) ошибка: %v", externalID, err)
	}
	return src
}

// --- Тесты SourceRepository ---

func TestSourceCRUD(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewSourceRepository(pool)

	src := createSource(t, repo, "abc123")
	if src.ID == 0 || src.CreatedAt.IsZero() {
		t.Errorf("ID/CreatedAt не установлены: %+v", src)
	}

	// Повторная регистрация
	err := repo.Create(ctx, &model.SourceRecord{ExternalID: "abc123", Name: "dup"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("повторный Create: ожидалась ErrConflict, получено %v", err)
	}

	got, err := repo.GetByExternalID(ctx, "abc123")
	if err != nil {
		t.Fatalf("GetByExternalID() ошибка: %v", err)
	}
	if got.LastSyncedAt != nil {
		t.Error("LastSyncedAt должен быть nil до первой загрузки")
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	if err := repo.TouchSynced(ctx, "abc123", now); err != nil {
		t.Fatalf("TouchSynced() ошибка: %v", err)
	}
	got, _ = repo.GetByExternalID(ctx, "abc123")
	if got.LastSyncedAt == nil || !got.LastSyncedAt.Equal(now) {
		t.Errorf("LastSyncedAt = %v, ожидалось %v", got.LastSyncedAt, now)
	}

	if err := repo.TouchSynced(ctx, "missing", now); !errors.Is(err, ErrNotFound) {
		t.Errorf("TouchSynced(missing): ожидалась ErrNotFound, получено %v", err)
	}
	if _, err := repo.GetByExternalID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByExternalID(missing): ожидалась ErrNotFound, получено %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil || len(list) != 1 {
		t.Errorf("List() = %d записей, %v; ожидалась 1", len(list), err)
	}
}

// --- Тесты CellRepository ---

func TestCellUpsert_LastWriteWins(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	src := createSource(t, NewSourceRepository(pool), "abc123")
	repo := NewCellRepository(pool, NewTxRunner(pool))

	first := time.Now().UTC().Truncate(time.Millisecond)
	suggestion := "<change>19.99</change> EUR"
	cell := &model.ShadowCell{
		SourceID: src.ID, RowIndex: 4, ColumnName: "Price", Value: "19.99 EUR",
		Suggestion: &suggestion, LastUpdatedAt: first,
	}
	if err := repo.Upsert(ctx, cell); err != nil {
		t.Fatalf("Upsert() ошибка: %v", err)
	}

	second := first.Add(time.Second)
	if err := repo.Upsert(ctx, &model.ShadowCell{
		SourceID: src.ID, RowIndex: 4, ColumnName: "Price", Value: "21.00 EUR",
		Checked: true, LastUpdatedAt: second,
	}); err != nil {
		t.Fatalf("второй Upsert() ошибка: %v", err)
	}

	got, err := repo.Get(ctx, src.ID, 4, "Price")
	if err != nil {
		t.Fatalf("Get() ошибка: %v", err)
	}
	if got.Value != "21.00 EUR" || !got.Checked {
		t.Errorf("Value = %q, Checked = %v; ожидалась последняя запись", got.Value, got.Checked)
	}
	if !got.LastUpdatedAt.Equal(second) {
		t.Errorf("LastUpdatedAt = %v, ожидалось %v", got.LastUpdatedAt, second)
	}
	if got.Suggestion == nil || *got.Suggestion != suggestion {
		t.Errorf("Suggestion = %v, ожидалось сохранение прежнего значения", got.Suggestion)
	}

	list, err := repo.ListBySource(ctx, src.ID)
	if err != nil || len(list) != 1 {
		t.Errorf("ListBySource() = %d записей, %v; ожидалась 1", len(list), err)
	}

	err = repo.Upsert(ctx, &model.ShadowCell{SourceID: 9999, ColumnName: "Price", LastUpdatedAt: second})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Upsert для несуществующего источника: ожидалась ErrNotFound, получено %v", err)
	}
}

// --- Тесты ResponseRepository ---

// createResponse создаёт ответ с первой версией.
func createResponse(t *testing.T, repo ResponseRepository, sourceID int64, name string) *model.AnalysisResponse {
	t.Helper()
	resp := &model.AnalysisResponse{
		SourceID: sourceID, ProductName: name, NameColumn: "Název", TextColumn: "Popis",
		AnalyzerID: "asst_1", OriginalText: "desc",
	}
	first := &model.ResponseVersion{ImprovedText: "desc v2", Prompt: model.InitialPrompt}
	if err := repo.Create(context.Background(), resp, first); err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}
	return resp
}

func TestResponseScenario(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	src := createSource(t, NewSourceRepository(pool), "abc123")
	repo := NewResponseRepository(pool, NewTxRunner(pool))

	resp := createResponse(t, repo, src.ID, "Widget")
	if resp.ID != 1 {
		t.Errorf("ID = %d, ожидался 1", resp.ID)
	}

	got, err := repo.GetByID(ctx, resp.ID)
	if err != nil {
		t.Fatalf("GetByID() ошибка: %v", err)
	}
	if got.Status != model.StatusPending {
		t.Errorf("Status = %q, ожидался pending", got.Status)
	}
	if got.SourceExternalID != "abc123" {
		t.Errorf("SourceExternalID = %q, ожидался abc123", got.SourceExternalID)
	}
	if len(got.Versions) != 1 || got.Versions[0].Number != 1 || got.Versions[0].Prompt != "Initial analysis" {
		t.Fatalf("Versions = %+v, ожидалась версия 1 с промптом Initial analysis", got.Versions)
	}

	for _, want := range []int{2, 3} {
		v := &model.ResponseVersion{ResponseID: resp.ID, ImprovedText: "tight", Prompt: "tighten tone"}
		if err := repo.AppendVersion(ctx, v, 0); err != nil {
			t.Fatalf("AppendVersion() ошибка: %v", err)
		}
		if v.Number != want {
			t.Errorf("Number = %d, ожидался %d", v.Number, want)
		}
	}

	latest, err := repo.LatestVersion(ctx, resp.ID)
	if err != nil || latest.Number != 3 {
		t.Errorf("LatestVersion() = %+v, %v; ожидалась версия 3", latest, err)
	}

	err = repo.AppendVersion(ctx, &model.ResponseVersion{ResponseID: 999, ImprovedText: "x", Prompt: "p"}, 0)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("AppendVersion(999): ожидалась ErrNotFound, получено %v", err)
	}
}

// TestRunInTx проверяет коммит, откат и метрики исходов транзакций.
func TestRunInTx(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	runner := NewTxRunner(pool)

	committed := testutil.ToFloat64(dbTransactionsTotal.WithLabelValues(txCommitted))
	rolledBack := testutil.ToFloat64(dbTransactionsTotal.WithLabelValues(txRolledBack))

	err := runner.RunInTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO sheet_sources (external_id, name) VALUES ('tx-ok', 'ok')`)
		return err
	})
	if err != nil {
		t.Fatalf("RunInTx (успех): %v", err)
	}

	errBoom := errors.New("boom")
	err = runner.RunInTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `INSERT INTO sheet_sources (external_id, name) VALUES ('tx-fail', 'fail')`); err != nil {
			return err
		}
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("RunInTx (ошибка fn) = %v, ожидалась errBoom", err)
	}

	var count int
	if err := pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM sheet_sources WHERE external_id IN ('tx-ok', 'tx-fail')`,
	).Scan(&count); err != nil {
		t.Fatalf("подсчёт источников: %v", err)
	}
	if count != 1 {
		t.Errorf("источников = %d, ожидался 1 (tx-fail откачен)", count)
	}

	if got := testutil.ToFloat64(dbTransactionsTotal.WithLabelValues(txCommitted)) - committed; got != 1 {
		t.Errorf("committed вырос на %v, ожидалось 1", got)
	}
	if got := testutil.ToFloat64(dbTransactionsTotal.WithLabelValues(txRolledBack)) - rolledBack; got != 1 {
		t.Errorf("rolled_back вырос на %v, ожидалось 1", got)
	}
}

func TestCreate_UnknownSourceRollsBack(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	repo := NewResponseRepository(pool, NewTxRunner(pool))

	resp := &model.AnalysisResponse{SourceID: 42, ProductName: "x", OriginalText: "y"}
	err := repo.Create(ctx, resp, &model.ResponseVersion{ImprovedText: "z", Prompt: model.InitialPrompt})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Create: ожидалась ErrNotFound, получено %v", err)
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM analysis_response_versions`).Scan(&count); err != nil {
		t.Fatalf("подсчёт версий: %v", err)
	}
	if count != 0 {
		t.Errorf("версий = %d, ожидалось 0", count)
	}
}

// TestAppendVersion_Concurrent проверяет непрерывность номеров
// при параллельном добавлении версий.
func TestAppendVersion_Concurrent(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	src := createSource(t, NewSourceRepository(pool), "abc123")
	repo := NewResponseRepository(pool, NewTxRunner(pool))
	resp := createResponse(t, repo, src.ID, "Widget")

	const workers = 20
	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errCh <- repo.AppendVersion(ctx, &model.ResponseVersion{
				ResponseID: resp.ID, ImprovedText: "v", Prompt: "p",
			}, 0)
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("AppendVersion() ошибка: %v", err)
		}
	}

	got, err := repo.GetByID(ctx, resp.ID)
	if err != nil {
		t.Fatalf("GetByID() ошибка: %v", err)
	}
	numbers := make([]int, 0, len(got.Versions))
	for _, v := range got.Versions {
		numbers = append(numbers, v.Number)
	}
	sort.Ints(numbers)
	if len(numbers) != workers+1 {
		t.Fatalf("версий = %d, ожидалось %d", len(numbers), workers+1)
	}
	for i, n := range numbers {
		if n != i+1 {
			t.Fatalf("номера версий не непрерывны: %v", numbers)
		}
	}
}

// TestAppendVersion_StaleBase проверяет, что из двух версий, построенных
// на одной базе, сохраняется только первая.
func TestAppendVersion_StaleBase(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	src := createSource(t, NewSourceRepository(pool), "abc123")
	repo := NewResponseRepository(pool, NewTxRunner(pool))
	resp := createResponse(t, repo, src.ID, "Widget")

	const workers = 5
	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errCh <- repo.AppendVersion(ctx, &model.ResponseVersion{
				ResponseID: resp.ID, ImprovedText: "from v1", Prompt: "p",
			}, 1)
		}()
	}
	wg.Wait()
	close(errCh)

	var ok, conflicts int
	for err := range errCh {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrConflict):
			conflicts++
		default:
			t.Fatalf("AppendVersion() ошибка: %v", err)
		}
	}
	if ok != 1 || conflicts != workers-1 {
		t.Errorf("сохранено %d, конфликтов %d; ожидалось 1 и %d", ok, conflicts, workers-1)
	}

	latest, err := repo.LatestVersion(ctx, resp.ID)
	if err != nil || latest.Number != 2 {
		t.Fatalf("LatestVersion() = %+v, %v; ожидалась версия 2", latest, err)
	}

	// База совпадает с последней версией
	v := &model.ResponseVersion{ResponseID: resp.ID, ImprovedText: "from v2", Prompt: "p"}
	if err := repo.AppendVersion(ctx, v, 2); err != nil || v.Number != 3 {
		t.Errorf("AppendVersion(base=2) = %v, Number = %d; ожидалась версия 3", err, v.Number)
	}
}

func TestTransitionStatus(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	src := createSource(t, NewSourceRepository(pool), "abc123")
	repo := NewResponseRepository(pool, NewTxRunner(pool))
	resp := createResponse(t, repo, src.ID, "Widget")

	changed, err := repo.TransitionStatus(ctx, resp.ID, model.StatusConfirmed)
	if err != nil || !changed {
		t.Fatalf("TransitionStatus(confirmed) = %v, %v", changed, err)
	}
	changed, err = repo.TransitionStatus(ctx, resp.ID, model.StatusConfirmed)
	if err != nil || changed {
		t.Errorf("повторный confirmed = %v, %v; ожидалось без изменений и без ошибки", changed, err)
	}
	if _, err := repo.TransitionStatus(ctx, resp.ID, model.StatusRejected); !errors.Is(err, model.ErrInvalidTransition) {
		t.Errorf("confirmed → rejected: ожидалась ErrInvalidTransition, получено %v", err)
	}
	if _, err := repo.TransitionStatus(ctx, 999, model.StatusRejected); !errors.Is(err, ErrNotFound) {
		t.Errorf("TransitionStatus(999): ожидалась ErrNotFound, получено %v", err)
	}

	got, _ := repo.GetByID(ctx, resp.ID)
	if got.Status != model.StatusConfirmed {
		t.Errorf("Status = %q, ожидался confirmed", got.Status)
	}
}

func TestListPending_Pagination(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	sources := NewSourceRepository(pool)
	src := createSource(t, sources, "abc123")
	other := createSource(t, sources, "other")
	repo := NewResponseRepository(pool, NewTxRunner(pool))

	for i := 0; i < 5; i++ {
		createResponse(t, repo, src.ID, "Widget")
	}
	createResponse(t, repo, other.ID, "Foreign")
	confirmed := createResponse(t, repo, src.ID, "Done")
	if _, err := repo.TransitionStatus(ctx, confirmed.ID, model.StatusConfirmed); err != nil {
		t.Fatalf("TransitionStatus() ошибка: %v", err)
	}

	analyzer := "asst_1"
	filter := PendingFilter{SourceID: &src.ID, AnalyzerID: &analyzer}

	page1, total, err := repo.ListPending(ctx, filter, 2, 0)
	if err != nil {
		t.Fatalf("ListPending() ошибка: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, ожидалось 5", total)
	}
	if len(page1) != 2 {
		t.Fatalf("страница 1 = %d записей, ожидалось 2", len(page1))
	}
	if page1[0].ID < page1[1].ID {
		t.Errorf("ожидалась сортировка от новых к старым: %d, %d", page1[0].ID, page1[1].ID)
	}
	if len(page1[0].Versions) != 1 {
		t.Errorf("ожидалась загруженная цепочка версий, получено %d", len(page1[0].Versions))
	}

	page3, _, err := repo.ListPending(ctx, filter, 2, 4)
	if err != nil || len(page3) != 1 {
		t.Errorf("страница 3 = %d записей, %v; ожидалась 1", len(page3), err)
	}

	all, err := repo.ListAll(ctx)
	if err != nil || len(all) != 7 {
		t.Errorf("ListAll() = %d записей, %v; ожидалось 7", len(all), err)
	}
}

func TestDeleteCascadesAndFeedback(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	src := createSource(t, NewSourceRepository(pool), "abc123")
	repo := NewResponseRepository(pool, NewTxRunner(pool))
	resp := createResponse(t, repo, src.ID, "Widget")

	fb := &model.Feedback{ResponseID: resp.ID, Text: "Příliš dlouhé"}
	if err := repo.AddFeedback(ctx, fb); err != nil {
		t.Fatalf("AddFeedback() ошибка: %v", err)
	}
	got, _ := repo.GetByID(ctx, resp.ID)
	if len(got.Feedback) != 1 || got.Feedback[0].Text != "Příliš dlouhé" {
		t.Errorf("Feedback = %+v", got.Feedback)
	}

	if err := repo.Delete(ctx, resp.ID); err != nil {
		t.Fatalf("Delete() ошибка: %v", err)
	}
	if err := repo.Delete(ctx, resp.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("повторный Delete: ожидалась ErrNotFound, получено %v", err)
	}

	var versions, feedback int
	_ = pool.QueryRow(ctx, `SELECT COUNT(*) FROM analysis_response_versions WHERE response_id = $1`, resp.ID).Scan(&versions)
	_ = pool.QueryRow(ctx, `SELECT COUNT(*) FROM analysis_feedback WHERE response_id = $1`, resp.ID).Scan(&feedback)
	if versions != 0 || feedback != 0 {
		t.Errorf("после удаления осталось версий: %d, отзывов: %d", versions, feedback)
	}

	if err := repo.AddFeedback(ctx, &model.Feedback{ResponseID: resp.ID, Text: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("AddFeedback для удалённого ответа: ожидалась ErrNotFound, получено %v", err)
	}
}
