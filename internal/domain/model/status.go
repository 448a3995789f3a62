// status.go — конечный автомат статусов проверки ответа.
//
//	pending → confirmed
//	pending → rejected
//
// confirmed и rejected — конечные статусы. Повторная установка
// текущего статуса допустима и ничего не меняет.
package model

import (
	"errors"
	"fmt"
)

// ResponseStatus — статус проверки ответа анализатора.
type ResponseStatus string

const (
	// StatusPending — ответ ожидает проверки (начальный статус)
	StatusPending ResponseStatus = "pending"
	// StatusConfirmed — ответ принят оператором
	StatusConfirmed ResponseStatus = "confirmed"
	// StatusRejected — ответ отклонён оператором
	StatusRejected ResponseStatus = "rejected"
)

var (
	// ErrInvalidStatus — статус не допускается для установки вызывающим.
	ErrInvalidStatus = errors.New("недопустимый статус: допустимые значения — confirmed, rejected")
	// ErrInvalidTransition — переход из текущего статуса запрещён.
	ErrInvalidTransition = errors.New("недопустимый переход статуса")
)

// validTransitions — матрица допустимых переходов.
var validTransitions = map[ResponseStatus]map[ResponseStatus]bool{
	StatusPending:   {StatusConfirmed: true, StatusRejected: true},
	StatusConfirmed: {},
	StatusRejected:  {},
}

// ParseReviewStatus разбирает статус, который может установить оператор.
// pending и неизвестные значения отклоняются.
func ParseReviewStatus(s string) (ResponseStatus, error) {
	switch st := ResponseStatus(s); st {
	case StatusConfirmed, StatusRejected:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// IsTerminal сообщает, является ли статус конечным.
func (s ResponseStatus) IsTerminal() bool {
	return s == StatusConfirmed || s == StatusRejected
}

// CheckTransition проверяет переход from → to.
// Возвращает noop == true, если статус уже установлен.
func CheckTransition(from, to ResponseStatus) (noop bool, err error) {
	if from == to {
		return true, nil
	}
	allowed, ok := validTransitions[from]
	if !ok || !allowed[to] {
		return false, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, from, to)
	}
	return false, nil
}
