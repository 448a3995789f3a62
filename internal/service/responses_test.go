package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/bigkaa/sheetcheck/internal/domain/model"
	"github.com/bigkaa/sheetcheck/internal/repository"
)

func newTestResponseService(repo *mockResponseRepo, analyzer *mockAnalyzer) *ResponseService {
	if analyzer == nil {
		analyzer = &mockAnalyzer{}
	}
	return NewResponseService(repo, registeredSource("abc123", 7), analyzer, testLogger())
}

// TestCreate_Scenario проверяет создание ответа с версией 1.
func TestCreate_Scenario(t *testing.T) {
	var gotResp *model.AnalysisResponse
	var gotFirst *model.ResponseVersion
	repo := &mockResponseRepo{
		createFn: func(_ context.Context, resp *model.AnalysisResponse, first *model.ResponseVersion) error {
			gotResp, gotFirst = resp, first
			resp.ID = 1
			resp.Status = model.StatusPending
			first.Number = 1
			return nil
		},
	}
	svc := newTestResponseService(repo, nil)

	id, err := svc.Create(context.Background(), CreateResponseParams{
		SourceID:     "abc123",
		ProductName:  "Widget",
		OriginalText: "desc",
		ImprovedText: "desc v2",
	})
	if err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}
	if id != 1 {
		t.Errorf("id = %d, ожидался 1", id)
	}
	if gotResp.SourceID != 7 {
		t.Errorf("SourceID = %d, ожидался внутренний id 7", gotResp.SourceID)
	}
	if gotFirst.Prompt != model.InitialPrompt || gotFirst.ImprovedText != "desc v2" {
		t.Errorf("первая версия = %+v", gotFirst)
	}
}

func TestCreate_Errors(t *testing.T) {
	svc := newTestResponseService(&mockResponseRepo{}, nil)
	ctx := context.Background()

	valid := CreateResponseParams{SourceID: "abc123", ProductName: "W", OriginalText: "o", ImprovedText: "i"}

	missing := valid
	missing.ImprovedText = ""
	if _, err := svc.Create(ctx, missing); !errors.Is(err, ErrValidation) {
		t.Errorf("без improved_text: ожидалась ErrValidation, получено %v", err)
	}

	unknown := valid
	unknown.SourceID = "zzz"
	if _, err := svc.Create(ctx, unknown); !errors.Is(err, ErrNotFound) {
		t.Errorf("неизвестный источник: ожидалась ErrNotFound, получено %v", err)
	}
}

// TestAddVersion_Sequence проверяет номера версий 2 и 3.
func TestAddVersion_Sequence(t *testing.T) {
	next := 2
	repo := &mockResponseRepo{
		appendVersionFn: func(_ context.Context, v *model.ResponseVersion, base int) error {
			if base != 0 {
				t.Errorf("AddVersion: base = %d, ожидался 0", base)
			}
			if v.ResponseID != 1 {
				return repository.ErrNotFound
			}
			v.Number = next
			next++
			return nil
		},
	}
	svc := newTestResponseService(repo, nil)
	ctx := context.Background()

	for _, want := range []int{2, 3} {
		n, err := svc.AddVersion(ctx, 1, "tighten tone", "text", nil)
		if err != nil {
			t.Fatalf("AddVersion() ошибка: %v", err)
		}
		if n != want {
			t.Errorf("номер версии = %d, ожидался %d", n, want)
		}
	}

	if _, err := svc.AddVersion(ctx, 99, "p", "t", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("ожидалась ErrNotFound, получено %v", err)
	}
	if _, err := svc.AddVersion(ctx, 1, "", "t", nil); !errors.Is(err, ErrValidation) {
		t.Errorf("ожидалась ErrValidation, получено %v", err)
	}
}

// TestSetStatus проверяет идемпотентность и отказ для недопустимых значений.
func TestSetStatus(t *testing.T) {
	status := model.StatusPending
	repo := &mockResponseRepo{
		transitionStatusFn: func(_ context.Context, id int64, to model.ResponseStatus) (bool, error) {
			if id != 1 {
				return false, repository.ErrNotFound
			}
			noop, err := model.CheckTransition(status, to)
			if err != nil {
				return false, err
			}
			status = to
			return !noop, nil
		},
	}
	svc := newTestResponseService(repo, nil)
	ctx := context.Background()

	for range 2 {
		if err := svc.SetStatus(ctx, 1, "confirmed"); err != nil {
			t.Fatalf("SetStatus(confirmed) ошибка: %v", err)
		}
	}
	if status != model.StatusConfirmed {
		t.Errorf("status = %s", status)
	}

	if err := svc.SetStatus(ctx, 1, "archived"); !errors.Is(err, ErrValidation) {
		t.Errorf("archived: ожидалась ErrValidation, получено %v", err)
	}
	if err := svc.SetStatus(ctx, 1, "pending"); !errors.Is(err, ErrValidation) {
		t.Errorf("pending: ожидалась ErrValidation, получено %v", err)
	}
	if status != model.StatusConfirmed {
		t.Errorf("status изменён недопустимым значением: %s", status)
	}
	if err := svc.SetStatus(ctx, 1, "rejected"); !errors.Is(err, ErrConflict) {
		t.Errorf("выход из терминального статуса: ожидалась ErrConflict, получено %v", err)
	}
	if err := svc.SetStatus(ctx, 2, "rejected"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ожидалась ErrNotFound, получено %v", err)
	}
}

// TestListPending проверяет фильтры, значения по умолчанию и число страниц.
func TestListPending(t *testing.T) {
	var gotFilter repository.PendingFilter
	var gotLimit, gotOffset int
	repo := &mockResponseRepo{
		listPendingFn: func(
			_ context.Context, f repository.PendingFilter, limit, offset int,
		) ([]*model.AnalysisResponse, int, error) {
			gotFilter, gotLimit, gotOffset = f, limit, offset
			return []*model.AnalysisResponse{{ID: 1}, {ID: 2}, {ID: 3}}, 23, nil
		},
	}
	svc := newTestResponseService(repo, nil)

	page, err := svc.ListPending(context.Background(), PendingQuery{
		SourceID: "abc123", NameColumn: "Název", TextColumn: "Popis", AnalyzerID: "asst_1", Page: 3,
	})
	if err != nil {
		t.Fatalf("ListPending() ошибка: %v", err)
	}
	if gotLimit != 10 || gotOffset != 20 {
		t.Errorf("limit/offset = %d/%d, ожидалось 10/20", gotLimit, gotOffset)
	}
	if *gotFilter.SourceID != 7 || *gotFilter.AnalyzerID != "asst_1" {
		t.Errorf("filter = %+v", gotFilter)
	}
	if page.Total != 23 || page.TotalPages != 3 || page.PageSize != 10 || len(page.Items) > page.PageSize {
		t.Errorf("page = %+v", page)
	}
}

func TestListPending_Validation(t *testing.T) {
	svc := newTestResponseService(&mockResponseRepo{}, nil)
	ctx := context.Background()
	base := PendingQuery{SourceID: "abc123", NameColumn: "n", TextColumn: "t", AnalyzerID: "a"}

	noAnalyzer := base
	noAnalyzer.AnalyzerID = ""
	tooBig := base
	tooBig.PageSize = MaxPageSize + 1
	negative := base
	negative.Page = -1

	for _, q := range []PendingQuery{noAnalyzer, tooBig, negative} {
		if _, err := svc.ListPending(ctx, q); !errors.Is(err, ErrValidation) {
			t.Errorf("%+v: ожидалась ErrValidation, получено %v", q, err)
		}
	}

	unknown := base
	unknown.SourceID = "zzz"
	page, err := svc.ListPending(ctx, unknown)
	if err != nil || page.Total != 0 || len(page.Items) != 0 {
		t.Errorf("неизвестный источник: page = %+v, err = %v", page, err)
	}
}

// TestReprompt проверяет отправку последней версии и сохранение ответа.
func TestReprompt(t *testing.T) {
	resp := &model.AnalysisResponse{
		ID:         1,
		AnalyzerID: "asst_1",
		Versions: []model.ResponseVersion{
			{Number: 1, ImprovedText: "first text"},
			{Number: 2, ImprovedText: "The quick fox"},
		},
	}
	var message string
	analyzer := &mockAnalyzer{
		runFn: func(_ context.Context, assistantID, msg string) (string, error) {
			if assistantID != "asst_1" {
				t.Errorf("assistantID = %q", assistantID)
			}
			message = msg
			return "The quick brown fox", nil
		},
	}
	var (
		saved   *model.ResponseVersion
		gotBase int
	)
	repo := &mockResponseRepo{
		latestVersionFn: func(context.Context, int64) (*model.ResponseVersion, error) {
			v := resp.Versions[len(resp.Versions)-1]
			return &v, nil
		},
		getByIDFn: func(context.Context, int64) (*model.AnalysisResponse, error) { return resp, nil },
		appendVersionFn: func(_ context.Context, v *model.ResponseVersion, base int) error {
			gotBase = base
			v.Number = 3
			saved = v
			return nil
		},
	}
	svc := newTestResponseService(repo, analyzer)

	v, err := svc.Reprompt(context.Background(), 1, "add colour", "")
	if err != nil {
		t.Fatalf("Reprompt() ошибка: %v", err)
	}
	if !strings.Contains(message, "add colour") || !strings.Contains(message, "The quick fox") ||
		strings.Contains(message, "first text") {
		t.Errorf("сообщение = %q, ожидался текст последней версии", message)
	}
	if gotBase != 2 {
		t.Errorf("base = %d, ожидалась версия 2", gotBase)
	}
	if v != saved || v.Number != 3 || v.Prompt != "add colour" || v.ImprovedText != "The quick brown fox" {
		t.Errorf("версия = %+v", v)
	}
	if len(v.Changes) != 1 || v.Changes[0].Type != ChangeInsert || v.Changes[0].Corrected != "brown" {
		t.Errorf("Changes = %+v", v.Changes)
	}
}

// TestReprompt_StaleBase проверяет отказ сохранять результат, если пока
// работал анализатор, появилась более новая версия.
func TestReprompt_StaleBase(t *testing.T) {
	var (
		mu       sync.Mutex
		versions = []model.ResponseVersion{{Number: 1, ImprovedText: "v1 text"}}
	)
	repo := &mockResponseRepo{
		latestVersionFn: func(context.Context, int64) (*model.ResponseVersion, error) {
			mu.Lock()
			defer mu.Unlock()
			v := versions[len(versions)-1]
			return &v, nil
		},
		appendVersionFn: func(_ context.Context, v *model.ResponseVersion, base int) error {
			mu.Lock()
			defer mu.Unlock()
			if base != versions[len(versions)-1].Number {
				return repository.ErrConflict
			}
			v.Number = len(versions) + 1
			versions = append(versions, *v)
			return nil
		},
	}

	// Оба запроса читают версию 1 до того, как первый сохранит результат
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	analyzer := &mockAnalyzer{
		runFn: func(_ context.Context, _, msg string) (string, error) {
			if !strings.Contains(msg, "v1 text") {
				t.Errorf("сообщение = %q, ожидался текст версии 1", msg)
			}
			started <- struct{}{}
			<-release
			return "rewritten", nil
		},
	}
	svc := newTestResponseService(repo, analyzer)

	errs := make(chan error, 2)
	for range 2 {
		go func() {
			_, err := svc.Reprompt(context.Background(), 1, "shorter", "asst_1")
			errs <- err
		}()
	}
	<-started
	<-started
	close(release)

	var ok, conflicts int
	for range 2 {
		switch err := <-errs; {
		case err == nil:
			ok++
		case errors.Is(err, ErrConflict):
			conflicts++
		default:
			t.Fatalf("Reprompt() ошибка: %v", err)
		}
	}
	if ok != 1 || conflicts != 1 {
		t.Errorf("сохранено %d, конфликтов %d; ожидалось по одному", ok, conflicts)
	}
	if len(versions) != 2 {
		t.Errorf("версий = %d, ожидалось 2", len(versions))
	}
}

func TestReprompt_AnalyzerError(t *testing.T) {
	appended := false
	repo := &mockResponseRepo{
		latestVersionFn: func(_ context.Context, id int64) (*model.ResponseVersion, error) {
			if id != 1 {
				return nil, repository.ErrNotFound
			}
			return &model.ResponseVersion{Number: 1, ImprovedText: "t"}, nil
		},
		getByIDFn: func(context.Context, int64) (*model.AnalysisResponse, error) {
			return &model.AnalysisResponse{ID: 1, AnalyzerID: "a", Versions: []model.ResponseVersion{{Number: 1}}}, nil
		},
		appendVersionFn: func(context.Context, *model.ResponseVersion, int) error {
			appended = true
			return nil
		},
	}
	analyzer := &mockAnalyzer{
		runFn: func(context.Context, string, string) (string, error) { return "", errors.New("503") },
	}
	svc := newTestResponseService(repo, analyzer)

	if _, err := svc.Reprompt(context.Background(), 1, "p", ""); !errors.Is(err, ErrAnalyzer) {
		t.Fatalf("ожидалась ErrAnalyzer, получено %v", err)
	}
	if appended {
		t.Error("версия не должна сохраняться при ошибке анализатора")
	}
	if _, err := svc.Reprompt(context.Background(), 1, " ", ""); !errors.Is(err, ErrValidation) {
		t.Errorf("ожидалась ErrValidation, получено %v", err)
	}
	if _, err := svc.Reprompt(context.Background(), 99, "p", "a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("неизвестный ответ: ожидалась ErrNotFound, получено %v", err)
	}
}

func TestParseRepromptReply(t *testing.T) {
	text, changes := parseRepromptReply(
		`{"improved_text":"new","changes":[{"type":"replace","original":"old","corrected":"new"}]}`, "old")
	if text != "new" || len(changes) != 1 || changes[0].Original != "old" {
		t.Errorf("JSON ответ: %q, %+v", text, changes)
	}

	text, changes = parseRepromptReply("  plain reply \n", "plain")
	if text != "plain reply" || len(changes) != 1 {
		t.Errorf("текстовый ответ: %q, %+v", text, changes)
	}
}

func TestDeleteGetFeedback(t *testing.T) {
	repo := &mockResponseRepo{
		deleteFn: func(_ context.Context, id int64) error {
			if id != 1 {
				return repository.ErrNotFound
			}
			return nil
		},
		addFeedbackFn: func(_ context.Context, fb *model.Feedback) error {
			if fb.ResponseID != 1 {
				return repository.ErrNotFound
			}
			fb.ID = 5
			return nil
		},
	}
	svc := newTestResponseService(repo, nil)
	ctx := context.Background()

	if err := svc.Delete(ctx, 1); err != nil {
		t.Errorf("Delete(1) ошибка: %v", err)
	}
	if err := svc.Delete(ctx, 2); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(2): ожидалась ErrNotFound, получено %v", err)
	}
	if _, err := svc.Get(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(1): ожидалась ErrNotFound, получено %v", err)
	}

	fb, err := svc.AddFeedback(ctx, 1, "  too formal ")
	if err != nil || fb.ID != 5 || fb.Text != "too formal" {
		t.Errorf("AddFeedback() = %+v, %v", fb, err)
	}
	if _, err := svc.AddFeedback(ctx, 2, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ожидалась ErrNotFound, получено %v", err)
	}
	if _, err := svc.AddFeedback(ctx, 1, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("ожидалась ErrValidation, получено %v", err)
	}
}
