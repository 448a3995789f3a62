// range.go — разбор и форматирование диапазонов в нотации A1.
package colref

import (
	"fmt"
	"strconv"
	"strings"
)

// Range — прямоугольный диапазон ячеек.
// Номера колонок и строк начинаются с 1. EndRow == 0 означает
// диапазон без нижней границы (например, "A1:ZZ").
type Range struct {
	Sheet    string
	StartCol int
	StartRow int
	EndCol   int
	EndRow   int
}

// ParseRange разбирает диапазон вида "A1:ZZ", "Лист1!A1:ZZ1" или "'Мой лист'!B2".
func ParseRange(expr string) (Range, error) {
	var r Range
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return r, fmt.Errorf("%w: пустой диапазон", ErrInvalidRef)
	}

	if i := strings.LastIndex(expr, "!"); i >= 0 {
		sheet, err := unquoteSheet(expr[:i])
		if err != nil {
			return r, err
		}
		r.Sheet = sheet
		expr = expr[i+1:]
	}

	start, end, hasEnd := strings.Cut(expr, ":")

	var err error
	r.StartCol, r.StartRow, err = parseCell(start)
	if err != nil {
		return r, err
	}
	if r.StartRow == 0 {
		r.StartRow = 1
	}

	if !hasEnd {
		r.EndCol, r.EndRow = r.StartCol, r.StartRow
		return r, nil
	}

	r.EndCol, r.EndRow, err = parseCell(end)
	if err != nil {
		return r, err
	}
	if r.EndCol < r.StartCol {
		return r, fmt.Errorf("%w: конечная колонка левее начальной в %q", ErrInvalidRef, expr)
	}
	if r.EndRow != 0 && r.EndRow < r.StartRow {
		return r, fmt.Errorf("%w: конечная строка выше начальной в %q", ErrInvalidRef, expr)
	}
	return r, nil
}

// String форматирует диапазон обратно в нотацию A1.
func (r Range) String() string {
	var b strings.Builder
	if r.Sheet != "" {
		b.WriteString(QuoteSheet(r.Sheet))
		b.WriteByte('!')
	}
	start, _ := ToLetters(r.StartCol)
	b.WriteString(start)
	b.WriteString(strconv.Itoa(r.StartRow))
	b.WriteByte(':')
	end, _ := ToLetters(r.EndCol)
	b.WriteString(end)
	if r.EndRow > 0 {
		b.WriteString(strconv.Itoa(r.EndRow))
	}
	return b.String()
}

// WithRows возвращает копию диапазона с теми же колонками и заданными строками.
func (r Range) WithRows(startRow, endRow int) Range {
	r.StartRow = startRow
	r.EndRow = endRow
	return r
}

// Width — количество колонок диапазона.
func (r Range) Width() int {
	return r.EndCol - r.StartCol + 1
}

// parseCell разбирает ссылку на ячейку "AB12" или колонку "AB".
// Для ссылки без номера строки возвращает row == 0.
func parseCell(ref string) (col, row int, err error) {
	ref = strings.TrimSpace(ref)
	i := 0
	for i < len(ref) && (ref[i] >= 'A' && ref[i] <= 'Z' || ref[i] >= 'a' && ref[i] <= 'z') {
		i++
	}
	if i == 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}

	col, err = ToIndex(ref[:i])
	if err != nil {
		return 0, 0, err
	}
	if i == len(ref) {
		return col, 0, nil
	}

	row, err = strconv.Atoi(ref[i:])
	if err != nil || row < 1 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	return col, row, nil
}

// unquoteSheet снимает кавычки с названия листа: 'It''s' → It's.
func unquoteSheet(s string) (string, error) {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'"), nil
	}
	if s == "" || strings.ContainsRune(s, '\'') {
		return "", fmt.Errorf("%w: название листа %q", ErrInvalidRef, s)
	}
	return s, nil
}
