// analysis.go — результат анализа одной строки источника.
package model

import "encoding/json"

// RowOutcome — исход анализа строки.
type RowOutcome int

const (
	// OutcomeCompleted — анализатор вернул корректный структурированный ответ
	OutcomeCompleted RowOutcome = iota
	// OutcomeUnparsable — ответ анализатора не удалось разобрать
	OutcomeUnparsable
	// OutcomeFailed — ошибка при обращении к анализатору
	OutcomeFailed
)

// RowResult — событие потока анализа для одной строки.
// Набор сериализуемых полей зависит от Outcome.
type RowResult struct {
	RowIndex int
	Outcome  RowOutcome

	// OutcomeCompleted
	ProductName        string
	ProductDescription json.RawMessage
	Statistics         json.RawMessage

	// OutcomeUnparsable, OutcomeFailed
	Message    string
	RawContent string
}

// Статусы событий в сериализованном виде.
const (
	RowStatusCompleted = "completed"
	RowStatusError     = "error"
)

type completedEvent struct {
	Status             string          `json:"status"`
	ProductName        string          `json:"product_name"`
	ProductDescription json.RawMessage `json:"product_description"`
	Statistics         json.RawMessage `json:"statistics,omitempty"`
	RowIndex           int             `json:"row_index"`
}

type errorEvent struct {
	Status     string  `json:"status"`
	Message    string  `json:"message"`
	RawContent *string `json:"raw_content,omitempty"`
	RowIndex   int     `json:"row_index"`
}

// MarshalJSON сериализует событие в формате потока анализа.
func (r RowResult) MarshalJSON() ([]byte, error) {
	switch r.Outcome {
	case OutcomeCompleted:
		desc := r.ProductDescription
		if len(desc) == 0 {
			desc = json.RawMessage("null")
		}
		return json.Marshal(completedEvent{
			Status:             RowStatusCompleted,
			ProductName:        r.ProductName,
			ProductDescription: desc,
			Statistics:         r.Statistics,
			RowIndex:           r.RowIndex,
		})
	case OutcomeUnparsable:
		raw := r.RawContent
		return json.Marshal(errorEvent{
			Status:     RowStatusError,
			Message:    r.Message,
			RawContent: &raw,
			RowIndex:   r.RowIndex,
		})
	default:
		return json.Marshal(errorEvent{
			Status:   RowStatusError,
			Message:  r.Message,
			RowIndex: r.RowIndex,
		})
	}
}
