package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/bigkaa/sheetcheck/internal/domain/model"
)

// headerSource возвращает мок источника с листом "Produkty" и заданными заголовками.
func headerSource(headers []string, written *[3]string) *mockSource {
	return &mockSource{
		getMetadataFn: func(context.Context, string) (*model.SheetMetadata, error) {
			return &model.SheetMetadata{Title: "Produkty", RowCount: 100, ColumnCount: 3}, nil
		},
		getValuesFn: func(_ context.Context, _ string, rangeExpr string) ([][]string, error) {
			if rangeExpr != "Produkty!A1:ZZ1" {
				return nil, errors.New("неожиданный диапазон " + rangeExpr)
			}
			return [][]string{headers}, nil
		},
		updateCellFn: func(_ context.Context, sourceID, addr, value string) error {
			*written = [3]string{sourceID, addr, value}
			return nil
		},
	}
}

// TestWriteCell_SanitizedPrice проверяет запись очищенного значения в источник и теневую копию.
func TestWriteCell_SanitizedPrice(t *testing.T) {
	var written [3]string
	var shadow *model.ShadowCell
	cells := &mockCellRepo{
		upsertFn: func(_ context.Context, cell *model.ShadowCell) error {
			shadow = cell
			return nil
		},
	}
	cache := NewSnapshotCache(10, time.Minute)
	cache.Set("abc123", "A1:ZZ", &model.TableSnapshot{})

	svc := NewWriteBackService(headerSource([]string{"Název", "Price", "Popis"}, &written),
		registeredSource("abc123", 7), cells, cache, testLogger())

	cell, err := svc.WriteCell(context.Background(), WriteCellParams{
		SourceID: "abc123",
		RowIndex: 4,
		Column:   "Price",
		Value:    "<change>19.99</change> EUR",
	})
	if err != nil {
		t.Fatalf("WriteCell() ошибка: %v", err)
	}

	if written != [3]string{"abc123", "Produkty!B6", "19.99 EUR"} {
		t.Errorf("запись в источник = %v", written)
	}
	if shadow == nil {
		t.Fatal("теневая копия не сохранена")
	}
	if shadow.Value != "19.99 EUR" || shadow.SourceID != 7 || shadow.RowIndex != 4 || shadow.ColumnName != "Price" {
		t.Errorf("теневая копия = %+v", shadow)
	}
	if cell != shadow {
		t.Error("ожидался возврат сохранённой ячейки")
	}
	if _, ok := cache.Get("abc123", "A1:ZZ"); ok {
		t.Error("ожидалась инвалидация снимков источника после записи")
	}
}

// TestWriteCell_UnknownColumn проверяет ошибку со списком заголовков.
func TestWriteCell_UnknownColumn(t *testing.T) {
	var written [3]string
	headers := []string{"Název", "Cena"}
	svc := NewWriteBackService(headerSource(headers, &written), registeredSource("abc123", 1),
		&mockCellRepo{}, NewSnapshotCache(10, time.Minute), testLogger())

	_, err := svc.WriteCell(context.Background(), WriteCellParams{
		SourceID: "abc123", RowIndex: 0, Column: "Price", Value: "1",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("ожидалась ErrValidation, получено %v", err)
	}
	var colErr *ColumnError
	if !errors.As(err, &colErr) || !reflect.DeepEqual(colErr.Headers, headers) {
		t.Errorf("ColumnError = %+v", colErr)
	}
	if written[1] != "" {
		t.Error("запись в источник не должна выполняться")
	}
}

// TestWriteCell_RemoteFailure проверяет, что теневая копия не меняется при ошибке источника.
func TestWriteCell_RemoteFailure(t *testing.T) {
	src := &mockSource{
		getValuesFn: func(context.Context, string, string) ([][]string, error) {
			return [][]string{{"Price"}}, nil
		},
		updateCellFn: func(context.Context, string, string, string) error {
			return errors.New("403 forbidden")
		},
	}
	upserted := false
	cells := &mockCellRepo{
		upsertFn: func(context.Context, *model.ShadowCell) error {
			upserted = true
			return nil
		},
	}
	svc := NewWriteBackService(src, registeredSource("abc123", 1), cells,
		NewSnapshotCache(10, time.Minute), testLogger())

	_, err := svc.WriteCell(context.Background(), WriteCellParams{
		SourceID: "abc123", RowIndex: 2, Column: "Price", Value: "5",
	})
	if !errors.Is(err, ErrRemote) {
		t.Fatalf("ожидалась ErrRemote, получено %v", err)
	}
	if upserted {
		t.Error("теневая копия не должна обновляться при ошибке источника")
	}
}

func TestWriteCell_Validation(t *testing.T) {
	called := false
	src := &mockSource{
		getMetadataFn: func(context.Context, string) (*model.SheetMetadata, error) {
			called = true
			return &model.SheetMetadata{Title: "Sheet1"}, nil
		},
	}
	svc := NewWriteBackService(src, registeredSource("abc123", 1), &mockCellRepo{},
		NewSnapshotCache(10, time.Minute), testLogger())
	ctx := context.Background()

	tests := []struct {
		name string
		p    WriteCellParams
		want error
	}{
		{"пустая колонка", WriteCellParams{SourceID: "abc123", Column: " "}, ErrValidation},
		{"отрицательная строка", WriteCellParams{SourceID: "abc123", Column: "A", RowIndex: -1}, ErrValidation},
		{"незарегистрированный источник", WriteCellParams{SourceID: "nope", Column: "A"}, ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.WriteCell(ctx, tt.p); !errors.Is(err, tt.want) {
				t.Errorf("ожидалась %v, получено %v", tt.want, err)
			}
		})
	}
	if called {
		t.Error("источник не должен вызываться при ошибке валидации")
	}
}

func TestListCells(t *testing.T) {
	cells := &mockCellRepo{
		listBySourceFn: func(_ context.Context, sourceID int64) ([]*model.ShadowCell, error) {
			if sourceID != 7 {
				t.Errorf("sourceID = %d, ожидалось 7", sourceID)
			}
			return []*model.ShadowCell{{SourceID: 7, Value: "x"}}, nil
		},
	}
	svc := NewWriteBackService(&mockSource{}, registeredSource("abc123", 7), cells,
		NewSnapshotCache(10, time.Minute), testLogger())

	got, err := svc.ListCells(context.Background(), "abc123")
	if err != nil || len(got) != 1 {
		t.Fatalf("ListCells() = %v, %v", got, err)
	}
	if _, err := svc.ListCells(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ожидалась ErrNotFound, получено %v", err)
	}
}
