// Пакет xlsxsource — табличный источник на локальных книгах XLSX.
// Идентификатор источника — имя файла книги в каталоге SC_XLSX_DIR.
// Используется для автономной работы и тестов без Google Sheets.
package xlsxsource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/bigkaa/sheetcheck/internal/colref"
	"github.com/bigkaa/sheetcheck/internal/domain/model"
)

// ErrNotFound — книга или лист не найдены.
var ErrNotFound = errors.New("книга не найдена")

// ErrInvalidID — идентификатор не является именем файла в каталоге.
var ErrInvalidID = errors.New("некорректный идентификатор книги")

// Source — источник на каталоге книг XLSX.
// Чтение и запись одной книги сериализуются мьютексом.
type Source struct {
	dir    string
	mu     sync.Mutex
	logger *slog.Logger
}

// New создаёт источник для каталога dir.
func New(dir string, logger *slog.Logger) *Source {
	return &Source{
		dir:    dir,
		logger: logger.With(slog.String("component", "xlsx_source")),
	}
}

// GetMetadata возвращает название и размеры первого листа книги.
func (s *Source) GetMetadata(ctx context.Context, id string) (*model.SheetMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open(id)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("книга %s: %w: нет листов", id, ErrNotFound)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("чтение листа %s книги %s: %w", sheet, id, err)
	}

	md := &model.SheetMetadata{Title: sheet, RowCount: len(rows)}
	for _, row := range rows {
		md.ColumnCount = max(md.ColumnCount, len(row))
	}
	return md, nil
}

// GetValues читает значения диапазона. Хвостовые пустые ячейки строк
// и хвостовые пустые строки не возвращаются, как в Sheets API.
func (s *Source) GetValues(ctx context.Context, id, rangeExpr string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rng, err := colref.ParseRange(rangeExpr)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open(id)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet, err := resolveSheet(f, rng.Sheet)
	if err != nil {
		return nil, fmt.Errorf("книга %s: %w", id, err)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("чтение листа %s книги %s: %w", sheet, id, err)
	}

	last := len(rows)
	if rng.EndRow > 0 {
		last = min(last, rng.EndRow)
	}
	var out [][]string
	for i := rng.StartRow - 1; i < last; i++ {
		out = append(out, sliceRow(rows[i], rng.StartCol, rng.EndCol))
	}
	for len(out) > 0 && len(out[len(out)-1]) == 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

// UpdateCell записывает строковое значение в одну ячейку и сохраняет книгу.
func (s *Source) UpdateCell(ctx context.Context, id, rangeExpr, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rng, err := colref.ParseRange(rangeExpr)
	if err != nil {
		return err
	}
	if rng.StartCol != rng.EndCol || rng.StartRow != rng.EndRow {
		return fmt.Errorf("%w: ожидалась одна ячейка, получено %q", colref.ErrInvalidRef, rangeExpr)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open(id)
	if err != nil {
		return err
	}
	defer f.Close()

	sheet, err := resolveSheet(f, rng.Sheet)
	if err != nil {
		return fmt.Errorf("книга %s: %w", id, err)
	}
	cell, err := excelize.CoordinatesToCellName(rng.StartCol, rng.StartRow)
	if err != nil {
		return fmt.Errorf("адрес ячейки: %w", err)
	}
	if err := f.SetCellStr(sheet, cell, value); err != nil {
		return fmt.Errorf("запись %s!%s: %w", sheet, cell, err)
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("сохранение книги %s: %w", id, err)
	}

	s.logger.Debug("Ячейка записана",
		slog.String("book", id),
		slog.String("sheet", sheet),
		slog.String("cell", cell),
	)
	return nil
}

// CheckReady проверяет доступность каталога книг для health endpoint.
func (s *Source) CheckReady() (status, message string) {
	info, err := os.Stat(s.dir)
	if err != nil {
		return "fail", "каталог книг недоступен: " + err.Error()
	}
	if !info.IsDir() {
		return "fail", "путь " + s.dir + " не является каталогом"
	}
	return "ok", ""
}

// open открывает книгу по идентификатору. Идентификатор без расширения
// дополняется ".xlsx"; пути с разделителями отклоняются.
func (s *Source) open(id string) (*excelize.File, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	name := id
	if filepath.Ext(name) == "" {
		name += ".xlsx"
	}

	f, err := excelize.OpenFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("книга %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("открытие книги %s: %w", id, err)
	}
	return f, nil
}

// resolveSheet возвращает имя листа: заданное или первое в книге.
func resolveSheet(f *excelize.File, name string) (string, error) {
	if name == "" {
		if first := f.GetSheetName(0); first != "" {
			return first, nil
		}
		return "", fmt.Errorf("%w: нет листов", ErrNotFound)
	}
	if idx, err := f.GetSheetIndex(name); err != nil || idx < 0 {
		return "", fmt.Errorf("%w: лист %q", ErrNotFound, name)
	}
	return name, nil
}

// sliceRow вырезает колонки [startCol, endCol] и отбрасывает хвостовые пустые ячейки.
func sliceRow(row []string, startCol, endCol int) []string {
	if startCol-1 >= len(row) {
		return []string{}
	}
	end := min(len(row), endCol)
	cells := append([]string(nil), row[startCol-1:end]...)
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	if cells == nil {
		cells = []string{}
	}
	return cells
}
