package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bigkaa/sheetcheck/internal/domain/model"
	"github.com/bigkaa/sheetcheck/internal/repository"
)

func TestSourceService_Register(t *testing.T) {
	var created *model.SourceRecord
	repo := &mockSourceRepo{
		createFn: func(_ context.Context, src *model.SourceRecord) error {
			if src.ExternalID == "dup" {
				return repository.ErrConflict
			}
			src.ID = 3
			created = src
			return nil
		},
	}
	src := &mockSource{
		getMetadataFn: func(_ context.Context, id string) (*model.SheetMetadata, error) {
			if id == "broken" {
				return nil, errors.New("404")
			}
			return &model.SheetMetadata{Title: "Produkty"}, nil
		},
	}
	svc := NewSourceService(src, repo, testLogger())
	ctx := context.Background()

	got, err := svc.Register(ctx, RegisterSourceParams{ExternalID: " abc123 "})
	if err != nil {
		t.Fatalf("Register() ошибка: %v", err)
	}
	if got != created || got.ExternalID != "abc123" || got.Name != "Produkty" {
		t.Errorf("источник = %+v", got)
	}

	tests := []struct {
		name string
		p    RegisterSourceParams
		want error
	}{
		{"пустой id", RegisterSourceParams{}, ErrValidation},
		{"некорректный url", RegisterSourceParams{ExternalID: "x", URL: "ftp://x"}, ErrValidation},
		{"источник недоступен", RegisterSourceParams{ExternalID: "broken"}, ErrRemote},
		{"повтор", RegisterSourceParams{ExternalID: "dup"}, ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tt.p); !errors.Is(err, tt.want) {
				t.Errorf("ожидалась %v, получено %v", tt.want, err)
			}
		})
	}
}

func TestDiffChanges(t *testing.T) {
	tests := []struct {
		name          string
		before, after string
		want          []model.Change
	}{
		{"без изменений", "same text", "same text", []model.Change{}},
		{"замена", "Cena je 10 Kč", "Cena je 12 Kč", []model.Change{{Type: ChangeReplace, Original: "0", Corrected: "2"}}},
		{"удаление", "very very good", "very good", []model.Change{{Type: ChangeDelete, Original: "very"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := diffChanges(tt.before, tt.after)
			if len(got) != len(tt.want) {
				t.Fatalf("diffChanges() = %+v, ожидалось %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("правка %d = %+v, ожидалось %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
