// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrConflict — конфликт состояния или дублирующийся ресурс.
	ErrConflict = errors.New("конфликт")
	// ErrRemote — табличный источник недоступен или вернул ошибку.
	ErrRemote = errors.New("табличный источник недоступен")
	// ErrAnalyzer — анализатор недоступен или вернул ошибку.
	ErrAnalyzer = errors.New("анализатор недоступен")
	// ErrParse — ответ анализатора не соответствует ожидаемой структуре.
	ErrParse = errors.New("некорректный ответ анализатора")
)

// ColumnError — колонка не найдена среди заголовков источника.
// Содержит полный список доступных заголовков для диагностики.
type ColumnError struct {
	Column  string
	Headers []string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("колонка %q не найдена, доступные колонки: %s",
		e.Column, strings.Join(e.Headers, ", "))
}

// Unwrap позволяет errors.Is(err, ErrValidation).
func (e *ColumnError) Unwrap() error {
	return ErrValidation
}
