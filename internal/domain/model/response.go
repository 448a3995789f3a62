// response.go — ответы анализатора и их версии
// (таблицы analysis_responses, analysis_response_versions, analysis_feedback).
package model

import "time"

// InitialPrompt — промпт первой версии ответа.
const InitialPrompt = "Initial analysis"

// Change — одна правка текста, предложенная анализатором.
type Change struct {
	// Type — вид правки: replace, insert, delete и т.п.
	Type        string `json:"type"`
	Original    string `json:"original"`
	Corrected   string `json:"corrected"`
	Explanation string `json:"explanation,omitempty"`
}

// AnalysisResponse — сохранённый результат анализа одной строки источника.
type AnalysisResponse struct {
	ID       int64
	SourceID int64
	// SourceExternalID — внешний идентификатор источника
	SourceExternalID string
	// ProductName — значение колонки имени в проанализированной строке
	ProductName string
	// NameColumn и TextColumn — колонки, использованные при анализе
	NameColumn string
	TextColumn string
	// AnalyzerID — идентификатор ассистента анализатора
	AnalyzerID string
	// OriginalText — исходный текст до анализа
	OriginalText string
	Status       ResponseStatus
	CreatedAt    time.Time
	// Versions — цепочка версий по возрастанию номера
	Versions []ResponseVersion
	// Feedback — отзывы оператора
	Feedback []Feedback
}

// CurrentVersion возвращает версию с наибольшим номером или nil.
func (r *AnalysisResponse) CurrentVersion() *ResponseVersion {
	var cur *ResponseVersion
	for i := range r.Versions {
		if cur == nil || r.Versions[i].Number > cur.Number {
			cur = &r.Versions[i]
		}
	}
	return cur
}

// ResponseVersion — неизменяемая версия улучшенного текста.
// Номера версий одного ответа непрерывны и начинаются с 1.
type ResponseVersion struct {
	ID           int64
	ResponseID   int64
	Number       int
	ImprovedText string
	Changes      []Change
	Prompt       string
	CreatedAt    time.Time
}

// Feedback — отзыв оператора на ответ.
type Feedback struct {
	ID         int64
	ResponseID int64
	Text       string
	CreatedAt  time.Time
}
