// Пакет colref — адресация ячеек табличных источников в нотации A1.
// Преобразование номера колонки в буквенный адрес и обратно
// (биективная система счисления по основанию 26), разбор диапазонов
// вида "Лист!A1:ZZ" и формирование адреса одной ячейки.
package colref

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Ошибки адресации.
var (
	// ErrInvalidIndex — номер колонки или строки вне допустимого диапазона.
	ErrInvalidIndex = errors.New("некорректный номер колонки или строки")
	// ErrInvalidRef — строка не является корректным адресом в нотации A1.
	ErrInvalidRef = errors.New("некорректный адрес ячейки")
)

// MaxColumn — наибольший поддерживаемый номер колонки (ZZZ).
// Совпадает с пределом Google Sheets.
const MaxColumn = 18278

// ToLetters преобразует номер колонки (с 1) в буквенный адрес: 1 → A, 27 → AA.
func ToLetters(n int) (string, error) {
	if n < 1 || n > MaxColumn {
		return "", fmt.Errorf("%w: колонка %d", ErrInvalidIndex, n)
	}

	var buf [8]byte
	i := len(buf)
	for n > 0 {
		n--
		i--
		buf[i] = byte('A' + n%26)
		n /= 26
	}
	return string(buf[i:]), nil
}

// ToIndex преобразует буквенный адрес колонки в номер (с 1): A → 1, AA → 27.
// Регистр букв не учитывается.
func ToIndex(letters string) (int, error) {
	if letters == "" {
		return 0, fmt.Errorf("%w: пустой адрес колонки", ErrInvalidRef)
	}

	n := 0
	for _, r := range letters {
		switch {
		case r >= 'A' && r <= 'Z':
			n = n*26 + int(r-'A') + 1
		case r >= 'a' && r <= 'z':
			n = n*26 + int(r-'a') + 1
		default:
			return 0, fmt.Errorf("%w: %q", ErrInvalidRef, letters)
		}
		if n > MaxColumn {
			return 0, fmt.Errorf("%w: колонка %q", ErrInvalidIndex, letters)
		}
	}
	return n, nil
}

// QuoteSheet экранирует название листа для использования в адресе.
// Названия из букв, цифр и подчёркиваний возвращаются как есть,
// остальные заключаются в одинарные кавычки.
func QuoteSheet(title string) string {
	if title == "" {
		return ""
	}
	plain := true
	for _, r := range title {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z') {
			plain = false
			break
		}
	}
	if plain {
		return title
	}
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// CellAddress формирует адрес одной ячейки: Лист!B6.
// col и row нумеруются с 1.
func CellAddress(sheet string, col, row int) (string, error) {
	letters, err := ToLetters(col)
	if err != nil {
		return "", err
	}
	if row < 1 {
		return "", fmt.Errorf("%w: строка %d", ErrInvalidIndex, row)
	}
	addr := letters + strconv.Itoa(row)
	if sheet != "" {
		addr = QuoteSheet(sheet) + "!" + addr
	}
	return addr, nil
}
