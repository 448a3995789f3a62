package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/bigkaa/sheetcheck/internal/domain/model"
	"github.com/bigkaa/sheetcheck/internal/repository"
)

// testLogger — логгер, отбрасывающий вывод.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Mock табличного источника ---

// mockSource — мок TabularSource для unit-тестов.
type mockSource struct {
	getMetadataFn func(ctx context.Context, sourceID string) (*model.SheetMetadata, error)
	getValuesFn   func(ctx context.Context, sourceID, rangeExpr string) ([][]string, error)
	updateCellFn  func(ctx context.Context, sourceID, cellAddress, value string) error
}

func (m *mockSource) GetMetadata(ctx context.Context, sourceID string) (*model.SheetMetadata, error) {
	if m.getMetadataFn != nil {
		return m.getMetadataFn(ctx, sourceID)
	}
	return &model.SheetMetadata{Title: "Sheet1", RowCount: 1000, ColumnCount: 26}, nil
}

func (m *mockSource) GetValues(ctx context.Context, sourceID, rangeExpr string) ([][]string, error) {
	if m.getValuesFn != nil {
		return m.getValuesFn(ctx, sourceID, rangeExpr)
	}
	return nil, nil
}

func (m *mockSource) UpdateCell(ctx context.Context, sourceID, cellAddress, value string) error {
	if m.updateCellFn != nil {
		return m.updateCellFn(ctx, sourceID, cellAddress, value)
	}
	return nil
}

// --- Mock репозиториев ---

// mockSourceRepo — мок SourceRepository.
type mockSourceRepo struct {
	createFn          func(ctx context.Context, src *model.SourceRecord) error
	getByExternalIDFn func(ctx context.Context, externalID string) (*model.SourceRecord, error)
	listFn            func(ctx context.Context) ([]*model.SourceRecord, error)
	touchSyncedFn     func(ctx context.Context, externalID string, at time.Time) error
}

func (m *mockSourceRepo) Create(ctx context.Context, src *model.SourceRecord) error {
	if m.createFn != nil {
		return m.createFn(ctx, src)
	}
	return nil
}

func (m *mockSourceRepo) GetByExternalID(ctx context.Context, externalID string) (*model.SourceRecord, error) {
	if m.getByExternalIDFn != nil {
		return m.getByExternalIDFn(ctx, externalID)
	}
	return nil, repository.ErrNotFound
}

func (m *mockSourceRepo) List(ctx context.Context) ([]*model.SourceRecord, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockSourceRepo) TouchSynced(ctx context.Context, externalID string, at time.Time) error {
	if m.touchSyncedFn != nil {
		return m.touchSyncedFn(ctx, externalID, at)
	}
	return nil
}

// registeredSource возвращает мок, знающий один источник.
func registeredSource(externalID string, id int64) *mockSourceRepo {
	return &mockSourceRepo{
		getByExternalIDFn: func(_ context.Context, ext string) (*model.SourceRecord, error) {
			if ext != externalID {
				return nil, repository.ErrNotFound
			}
			return &model.SourceRecord{ID: id, ExternalID: externalID, Name: "Test"}, nil
		},
	}
}

// mockCellRepo — мок CellRepository.
type mockCellRepo struct {
	upsertFn       func(ctx context.Context, cell *model.ShadowCell) error
	getFn          func(ctx context.Context, sourceID int64, rowIndex int, column string) (*model.ShadowCell, error)
	listBySourceFn func(ctx context.Context, sourceID int64) ([]*model.ShadowCell, error)
}

func (m *mockCellRepo) Upsert(ctx context.Context, cell *model.ShadowCell) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, cell)
	}
	return nil
}

func (m *mockCellRepo) Get(ctx context.Context, sourceID int64, rowIndex int, column string) (*model.ShadowCell, error) {
	if m.getFn != nil {
		return m.getFn(ctx, sourceID, rowIndex, column)
	}
	return nil, repository.ErrNotFound
}

func (m *mockCellRepo) ListBySource(ctx context.Context, sourceID int64) ([]*model.ShadowCell, error) {
	if m.listBySourceFn != nil {
		return m.listBySourceFn(ctx, sourceID)
	}
	return nil, nil
}

// mockResponseRepo — мок ResponseRepository.
type mockResponseRepo struct {
	createFn           func(ctx context.Context, resp *model.AnalysisResponse, first *model.ResponseVersion) error
	appendVersionFn    func(ctx context.Context, v *model.ResponseVersion, base int) error
	latestVersionFn    func(ctx context.Context, responseID int64) (*model.ResponseVersion, error)
	getByIDFn          func(ctx context.Context, id int64) (*model.AnalysisResponse, error)
	transitionStatusFn func(ctx context.Context, id int64, to model.ResponseStatus) (bool, error)
	listPendingFn      func(ctx context.Context, f repository.PendingFilter, limit, offset int) ([]*model.AnalysisResponse, int, error)
	listAllFn          func(ctx context.Context) ([]*model.AnalysisResponse, error)
	deleteFn           func(ctx context.Context, id int64) error
	addFeedbackFn      func(ctx context.Context, fb *model.Feedback) error
}

func (m *mockResponseRepo) Create(ctx context.Context, resp *model.AnalysisResponse, first *model.ResponseVersion) error {
	if m.createFn != nil {
		return m.createFn(ctx, resp, first)
	}
	return nil
}

func (m *mockResponseRepo) AppendVersion(ctx context.Context, v *model.ResponseVersion, base int) error {
	if m.appendVersionFn != nil {
		return m.appendVersionFn(ctx, v, base)
	}
	return nil
}

func (m *mockResponseRepo) LatestVersion(ctx context.Context, responseID int64) (*model.ResponseVersion, error) {
	if m.latestVersionFn != nil {
		return m.latestVersionFn(ctx, responseID)
	}
	return nil, repository.ErrNotFound
}

func (m *mockResponseRepo) GetByID(ctx context.Context, id int64) (*model.AnalysisResponse, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockResponseRepo) TransitionStatus(ctx context.Context, id int64, to model.ResponseStatus) (bool, error) {
	if m.transitionStatusFn != nil {
		return m.transitionStatusFn(ctx, id, to)
	}
	return true, nil
}

func (m *mockResponseRepo) ListPending(
	ctx context.Context, f repository.PendingFilter, limit, offset int,
) ([]*model.AnalysisResponse, int, error) {
	if m.listPendingFn != nil {
		return m.listPendingFn(ctx, f, limit, offset)
	}
	return nil, 0, nil
}

func (m *mockResponseRepo) ListAll(ctx context.Context) ([]*model.AnalysisResponse, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

func (m *mockResponseRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockResponseRepo) AddFeedback(ctx context.Context, fb *model.Feedback) error {
	if m.addFeedbackFn != nil {
		return m.addFeedbackFn(ctx, fb)
	}
	return nil
}

// --- Mock анализатора ---

// mockAnalyzer — мок AssistantRunner.
type mockAnalyzer struct {
	runFn func(ctx context.Context, assistantID, message string) (string, error)
}

func (m *mockAnalyzer) Run(ctx context.Context, assistantID, message string) (string, error) {
	if m.runFn != nil {
		return m.runFn(ctx, assistantID, message)
	}
	return `{"product_name":"x","product_description":"y"}`, nil
}
