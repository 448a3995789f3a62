package handlers

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/bigkaa/sheetcheck/internal/domain/model"
	"github.com/bigkaa/sheetcheck/internal/repository"
)

// testLogger — логгер, отбрасывающий вывод.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- In-memory репозитории для тестов обработчиков ---

// memSourceRepo — SourceRepository в памяти.
type memSourceRepo struct {
	mu     sync.Mutex
	nextID int64
	byExt  map[string]*model.SourceRecord
}

func newMemSourceRepo() *memSourceRepo {
	return &memSourceRepo{byExt: make(map[string]*model.SourceRecord)}
}

func (r *memSourceRepo) Create(_ context.Context, src *model.SourceRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byExt[src.ExternalID]; ok {
		return repository.ErrConflict
	}
	r.nextID++
	src.ID = r.nextID
	src.CreatedAt = time.Now().UTC()
	cp := *src
	r.byExt[src.ExternalID] = &cp
	return nil
}

func (r *memSourceRepo) GetByExternalID(_ context.Context, externalID string) (*model.SourceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	src, ok := r.byExt[externalID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *src
	return &cp, nil
}

func (r *memSourceRepo) List(_ context.Context) ([]*model.SourceRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.SourceRecord, 0, len(r.byExt))
	for _, src := range r.byExt {
		cp := *src
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *model.SourceRecord) int { return int(a.ID - b.ID) })
	return out, nil
}

func (r *memSourceRepo) TouchSynced(_ context.Context, externalID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	src, ok := r.byExt[externalID]
	if !ok {
		return repository.ErrNotFound
	}
	src.LastSyncedAt = &at
	return nil
}

// memCellRepo — CellRepository в памяти.
type memCellRepo struct {
	mu    sync.Mutex
	cells []*model.ShadowCell
}

func (r *memCellRepo) Upsert(_ context.Context, cell *model.ShadowCell) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *cell
	for i, c := range r.cells {
		if c.SourceID == cell.SourceID && c.RowIndex == cell.RowIndex && c.ColumnName == cell.ColumnName {
			r.cells[i] = &cp
			return nil
		}
	}
	r.cells = append(r.cells, &cp)
	return nil
}

func (r *memCellRepo) Get(_ context.Context, sourceID int64, rowIndex int, column string) (*model.ShadowCell, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cells {
		if c.SourceID == sourceID && c.RowIndex == rowIndex && c.ColumnName == column {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memCellRepo) ListBySource(_ context.Context, sourceID int64) ([]*model.ShadowCell, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.ShadowCell
	for _, c := range r.cells {
		if c.SourceID == sourceID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

// memResponseRepo — ResponseRepository в памяти.
type memResponseRepo struct {
	mu     sync.Mutex
	nextID int64
	items  []*model.AnalysisResponse
}

func (r *memResponseRepo) find(id int64) *model.AnalysisResponse {
	for _, resp := range r.items {
		if resp.ID == id {
			return resp
		}
	}
	return nil
}

func (r *memResponseRepo) Create(_ context.Context, resp *model.AnalysisResponse, first *model.ResponseVersion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := time.Now().UTC()
	resp.ID = r.nextID
	resp.Status = model.StatusPending
	resp.CreatedAt = now
	first.ResponseID = resp.ID
	first.Number = 1
	first.CreatedAt = now

	cp := *resp
	cp.Versions = []model.ResponseVersion{*first}
	r.items = append(r.items, &cp)
	return nil
}

func (r *memResponseRepo) AppendVersion(_ context.Context, v *model.ResponseVersion, base int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp := r.find(v.ResponseID)
	if resp == nil || len(resp.Versions) == 0 {
		return repository.ErrNotFound
	}
	if base > 0 && base != len(resp.Versions) {
		return repository.ErrConflict
	}
	v.Number = len(resp.Versions) + 1
	v.CreatedAt = time.Now().UTC()
	resp.Versions = append(resp.Versions, *v)
	return nil
}

func (r *memResponseRepo) LatestVersion(_ context.Context, responseID int64) (*model.ResponseVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp := r.find(responseID)
	if resp == nil || len(resp.Versions) == 0 {
		return nil, repository.ErrNotFound
	}
	v := resp.Versions[len(resp.Versions)-1]
	return &v, nil
}

func (r *memResponseRepo) GetByID(_ context.Context, id int64) (*model.AnalysisResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp := r.find(id)
	if resp == nil {
		return nil, repository.ErrNotFound
	}
	cp := *resp
	cp.Versions = slices.Clone(resp.Versions)
	cp.Feedback = slices.Clone(resp.Feedback)
	return &cp, nil
}

func (r *memResponseRepo) TransitionStatus(_ context.Context, id int64, to model.ResponseStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp := r.find(id)
	if resp == nil {
		return false, repository.ErrNotFound
	}
	noop, err := model.CheckTransition(resp.Status, to)
	if err != nil || noop {
		return false, err
	}
	resp.Status = to
	return true, nil
}

func (r *memResponseRepo) ListPending(
	_ context.Context, f repository.PendingFilter, limit, offset int,
) ([]*model.AnalysisResponse, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*model.AnalysisResponse
	for i := len(r.items) - 1; i >= 0; i-- {
		resp := r.items[i]
		if resp.Status != model.StatusPending ||
			(f.SourceID != nil && resp.SourceID != *f.SourceID) ||
			(f.NameColumn != nil && resp.NameColumn != *f.NameColumn) ||
			(f.TextColumn != nil && resp.TextColumn != *f.TextColumn) ||
			(f.AnalyzerID != nil && resp.AnalyzerID != *f.AnalyzerID) {
			continue
		}
		cp := *resp
		matched = append(matched, &cp)
	}
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	return matched[offset:min(total, offset+limit)], total, nil
}

func (r *memResponseRepo) ListAll(_ context.Context) ([]*model.AnalysisResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.AnalysisResponse, 0, len(r.items))
	for i := len(r.items) - 1; i >= 0; i-- {
		cp := *r.items[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memResponseRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, resp := range r.items {
		if resp.ID == id {
			r.items = slices.Delete(r.items, i, i+1)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *memResponseRepo) AddFeedback(_ context.Context, fb *model.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp := r.find(fb.ResponseID)
	if resp == nil {
		return repository.ErrNotFound
	}
	fb.ID = int64(len(resp.Feedback) + 1)
	fb.CreatedAt = time.Now().UTC()
	resp.Feedback = append(resp.Feedback, *fb)
	return nil
}

// --- Mock анализатора ---

// mockAnalyzer — мок AssistantRunner.
type mockAnalyzer struct {
	runFn func(ctx context.Context, assistantID, message string) (string, error)
}

func (m *mockAnalyzer) Run(ctx context.Context, assistantID, message string) (string, error) {
	return m.runFn(ctx, assistantID, message)
}

// mockChecker — мок ReadinessChecker.
type mockChecker struct {
	status, message string
}

func (m mockChecker) CheckReady() (string, string) {
	return m.status, m.message
}
