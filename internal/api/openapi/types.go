// types.go — типы запросов и ответов API (схемы components/schemas).
package openapi

import (
	"encoding/json"
	"time"
)

// SourceId — параметр пути source_id.
type SourceId = string

// ResponseId — параметр пути response_id.
type ResponseId = int64

// Analyzer — ассистент анализатора.
type Analyzer struct {
	Name string `json:"name"`
	Id   string `json:"id"`
}

// Source — зарегистрированный табличный источник.
type Source struct {
	SourceId     string     `json:"source_id"`
	Name         string     `json:"name"`
	Url          string     `json:"url,omitempty"`
	LastSyncedAt *time.Time `json:"last_synced_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

// RegisterSourceRequest — тело POST /api/v1/sources.
type RegisterSourceRequest struct {
	SourceId string `json:"source_id"`
	Name     string `json:"name,omitempty"`
	Url      string `json:"url,omitempty"`
}

// SourceData — снимок данных источника.
type SourceData struct {
	Columns   []string            `json:"columns"`
	Rows      []map[string]string `json:"rows"`
	Warning   string              `json:"warning,omitempty"`
	FetchedAt time.Time           `json:"fetched_at"`
}

// GetSourceDataParams — параметры GET /api/v1/sources/{source_id}/data.
type GetSourceDataParams struct {
	Range *string `form:"range,omitempty" json:"range,omitempty"`
}

// ShadowCell — теневая копия записанной ячейки.
type ShadowCell struct {
	RowIndex       int             `json:"row_index"`
	Column         string          `json:"column"`
	Value          string          `json:"value"`
	Suggestion     *string         `json:"suggestion"`
	Checked        bool            `json:"checked"`
	AnalysisResult json.RawMessage `json:"analysis_result,omitempty"`
	LastUpdatedAt  time.Time       `json:"last_updated_at"`
}

// WriteCellRequest — тело PUT /api/v1/sources/{source_id}/cells.
type WriteCellRequest struct {
	RowIndex       *int            `json:"row_index"`
	Column         string          `json:"column"`
	Value          *string         `json:"value"`
	Suggestion     *string         `json:"suggestion,omitempty"`
	Checked        bool            `json:"checked"`
	AnalysisResult json.RawMessage `json:"analysis_result,omitempty"`
}

// StreamAnalysisParams — параметры GET /api/v1/analysis/stream.
type StreamAnalysisParams struct {
	SourceId   string  `form:"source_id" json:"source_id"`
	NameColumn string  `form:"name_column" json:"name_column"`
	TextColumn string  `form:"text_column" json:"text_column"`
	AnalyzerId string  `form:"analyzer_id" json:"analyzer_id"`
	Range      *string `form:"range,omitempty" json:"range,omitempty"`
}

// AnalysisRequest — тело POST /api/v1/analysis/stream.
type AnalysisRequest struct {
	SourceId   string `json:"source_id"`
	NameColumn string `json:"name_column"`
	TextColumn string `json:"text_column"`
	AnalyzerId string `json:"analyzer_id"`
	Range      string `json:"range,omitempty"`
}

// AnalyzeTextRequest — тело POST /api/v1/analysis/text.
type AnalyzeTextRequest struct {
	AnalyzerId string `json:"analyzer_id"`
	Text       string `json:"text"`
}

// AnalyzeTextResponse — ответ POST /api/v1/analysis/text.
type AnalyzeTextResponse struct {
	AnalyzedText string `json:"analyzed_text"`
}

// Change — правка текста.
type Change struct {
	Type        string `json:"type"`
	Original    string `json:"original"`
	Corrected   string `json:"corrected"`
	Explanation string `json:"explanation,omitempty"`
}

// Version — версия улучшенного текста.
type Version struct {
	Version      int       `json:"version"`
	ImprovedText string    `json:"improved_text"`
	Changes      []Change  `json:"changes"`
	Prompt       string    `json:"prompt"`
	CreatedAt    time.Time `json:"created_at"`
}

// Feedback — отзыв оператора.
type Feedback struct {
	Id        int64     `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Response — ответ анализатора с версиями.
type Response struct {
	Id           int64      `json:"id"`
	SourceId     string     `json:"source_id"`
	ProductName  string     `json:"product_name"`
	NameColumn   string     `json:"name_column,omitempty"`
	TextColumn   string     `json:"text_column,omitempty"`
	AnalyzerId   string     `json:"analyzer_id,omitempty"`
	OriginalText string     `json:"original_text,omitempty"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	Versions     []Version  `json:"versions"`
	Feedback     []Feedback `json:"feedback,omitempty"`
}

// CreateResponseRequest — тело POST /api/v1/responses.
type CreateResponseRequest struct {
	SourceId     string   `json:"source_id"`
	ProductName  string   `json:"product_name"`
	NameColumn   string   `json:"name_column"`
	TextColumn   string   `json:"text_column"`
	AnalyzerId   string   `json:"analyzer_id"`
	OriginalText string   `json:"original_text"`
	ImprovedText string   `json:"improved_text"`
	Changes      []Change `json:"changes,omitempty"`
}

// CreatedResponse — ответ POST /api/v1/responses.
type CreatedResponse struct {
	Id int64 `json:"id"`
}

// ListPendingResponsesParams — параметры GET /api/v1/responses/pending.
type ListPendingResponsesParams struct {
	SourceId   string `form:"source_id" json:"source_id"`
	NameColumn string `form:"name_column" json:"name_column"`
	TextColumn string `form:"text_column" json:"text_column"`
	AnalyzerId string `form:"analyzer_id" json:"analyzer_id"`
	Page       *int   `form:"page,omitempty" json:"page,omitempty"`
	PageSize   *int   `form:"page_size,omitempty" json:"page_size,omitempty"`
}

// PendingPage — страница ответов pending.
type PendingPage struct {
	Items      []Response `json:"items"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}

// SetStatusRequest — тело PUT /api/v1/responses/{response_id}/status.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// AddVersionRequest — тело POST /api/v1/responses/{response_id}/versions.
type AddVersionRequest struct {
	Prompt       string   `json:"prompt"`
	ImprovedText string   `json:"improved_text"`
	Changes      []Change `json:"changes,omitempty"`
}

// VersionNumber — номер созданной версии.
type VersionNumber struct {
	Version int `json:"version"`
}

// RepromptRequest — тело POST /api/v1/responses/{response_id}/reprompt.
type RepromptRequest struct {
	Prompt     string `json:"prompt"`
	AnalyzerId string `json:"analyzer_id,omitempty"`
}

// FeedbackRequest — тело POST /api/v1/responses/{response_id}/feedback.
type FeedbackRequest struct {
	Text string `json:"text"`
}
