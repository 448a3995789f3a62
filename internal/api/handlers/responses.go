// responses.go — обработчики /api/v1/responses endpoints.
// Сохранение ответов анализатора, версии, статусы проверки и отзывы.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/bigkaa/sheetcheck/internal/api/openapi"
	"github.com/bigkaa/sheetcheck/internal/domain/model"
	"github.com/bigkaa/sheetcheck/internal/service"
)

// ListResponses — GET /api/v1/responses.
func (h *APIHandler) ListResponses(w http.ResponseWriter, r *http.Request) {
	items, err := h.responses.ListAll(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "Ошибка получения ответов")
		return
	}
	writeJSON(w, http.StatusOK, mapResponses(items))
}

// CreateResponse — POST /api/v1/responses.
func (h *APIHandler) CreateResponse(w http.ResponseWriter, r *http.Request) {
	var req openapi.CreateResponseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id, err := h.responses.Create(r.Context(), service.CreateResponseParams{
		SourceID:     req.SourceId,
		ProductName:  req.ProductName,
		NameColumn:   req.NameColumn,
		TextColumn:   req.TextColumn,
		AnalyzerID:   req.AnalyzerId,
		OriginalText: req.OriginalText,
		ImprovedText: req.ImprovedText,
		Changes:      unmapChanges(req.Changes),
	})
	if err != nil {
		h.writeServiceError(w, err, "Ошибка сохранения ответа", slog.String("source_id", req.SourceId))
		return
	}
	writeJSON(w, http.StatusCreated, openapi.CreatedResponse{Id: id})
}

// ListPendingResponses — GET /api/v1/responses/pending.
func (h *APIHandler) ListPendingResponses(w http.ResponseWriter, r *http.Request, params openapi.ListPendingResponsesParams) {
	q := service.PendingQuery{
		SourceID:   params.SourceId,
		NameColumn: params.NameColumn,
		TextColumn: params.TextColumn,
		AnalyzerID: params.AnalyzerId,
	}
	if params.Page != nil {
		q.Page = *params.Page
	}
	if params.PageSize != nil {
		q.PageSize = *params.PageSize
	}

	page, err := h.responses.ListPending(r.Context(), q)
	if err != nil {
		h.writeServiceError(w, err, "Ошибка получения ответов на проверку")
		return
	}
	writeJSON(w, http.StatusOK, openapi.PendingPage{
		Items:      mapResponses(page.Items),
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	})
}

// GetResponse — GET /api/v1/responses/{response_id}.
func (h *APIHandler) GetResponse(w http.ResponseWriter, r *http.Request, responseID int64) {
	resp, err := h.responses.Get(r.Context(), responseID)
	if err != nil {
		h.writeServiceError(w, err, "Ошибка получения ответа", slog.Int64("response_id", responseID))
		return
	}
	writeJSON(w, http.StatusOK, mapResponse(resp))
}

// DeleteResponse — DELETE /api/v1/responses/{response_id}.
func (h *APIHandler) DeleteResponse(w http.ResponseWriter, r *http.Request, responseID int64) {
	if err := h.responses.Delete(r.Context(), responseID); err != nil {
		h.writeServiceError(w, err, "Ошибка удаления ответа", slog.Int64("response_id", responseID))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetResponseStatus — PUT /api/v1/responses/{response_id}/status.
func (h *APIHandler) SetResponseStatus(w http.ResponseWriter, r *http.Request, responseID int64) {
	var req openapi.SetStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.responses.SetStatus(r.Context(), responseID, req.Status); err != nil {
		h.writeServiceError(w, err, "Ошибка изменения статуса ответа", slog.Int64("response_id", responseID))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddResponseVersion — POST /api/v1/responses/{response_id}/versions.
func (h *APIHandler) AddResponseVersion(w http.ResponseWriter, r *http.Request, responseID int64) {
	var req openapi.AddVersionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	n, err := h.responses.AddVersion(r.Context(), responseID, req.Prompt, req.ImprovedText, unmapChanges(req.Changes))
	if err != nil {
		h.writeServiceError(w, err, "Ошибка добавления версии", slog.Int64("response_id", responseID))
		return
	}
	writeJSON(w, http.StatusCreated, openapi.VersionNumber{Version: n})
}

// RepromptResponse — POST /api/v1/responses/{response_id}/reprompt.
func (h *APIHandler) RepromptResponse(w http.ResponseWriter, r *http.Request, responseID int64) {
	var req openapi.RepromptRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	v, err := h.responses.Reprompt(r.Context(), responseID, req.Prompt, req.AnalyzerId)
	if err != nil {
		h.writeServiceError(w, err, "Ошибка повторного запроса", slog.Int64("response_id", responseID))
		return
	}
	writeJSON(w, http.StatusCreated, mapVersion(v))
}

// AddResponseFeedback — POST /api/v1/responses/{response_id}/feedback.
func (h *APIHandler) AddResponseFeedback(w http.ResponseWriter, r *http.Request, responseID int64) {
	var req openapi.FeedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fb, err := h.responses.AddFeedback(r.Context(), responseID, req.Text)
	if err != nil {
		h.writeServiceError(w, err, "Ошибка сохранения отзыва", slog.Int64("response_id", responseID))
		return
	}
	writeJSON(w, http.StatusCreated, openapi.Feedback{Id: fb.ID, Text: fb.Text, CreatedAt: fb.CreatedAt})
}

// --- Конвертация domain → API ---

func mapResponses(items []*model.AnalysisResponse) []openapi.Response {
	out := make([]openapi.Response, 0, len(items))
	for _, resp := range items {
		out = append(out, mapResponse(resp))
	}
	return out
}

func mapResponse(resp *model.AnalysisResponse) openapi.Response {
	out := openapi.Response{
		Id:           resp.ID,
		SourceId:     resp.SourceExternalID,
		ProductName:  resp.ProductName,
		NameColumn:   resp.NameColumn,
		TextColumn:   resp.TextColumn,
		AnalyzerId:   resp.AnalyzerID,
		OriginalText: resp.OriginalText,
		Status:       string(resp.Status),
		CreatedAt:    resp.CreatedAt,
		Versions:     make([]openapi.Version, 0, len(resp.Versions)),
	}
	for i := range resp.Versions {
		out.Versions = append(out.Versions, mapVersion(&resp.Versions[i]))
	}
	for _, fb := range resp.Feedback {
		out.Feedback = append(out.Feedback, openapi.Feedback{Id: fb.ID, Text: fb.Text, CreatedAt: fb.CreatedAt})
	}
	return out
}

func mapVersion(v *model.ResponseVersion) openapi.Version {
	changes := make([]openapi.Change, 0, len(v.Changes))
	for _, c := range v.Changes {
		changes = append(changes, openapi.Change(c))
	}
	return openapi.Version{
		Version:      v.Number,
		ImprovedText: v.ImprovedText,
		Changes:      changes,
		Prompt:       v.Prompt,
		CreatedAt:    v.CreatedAt,
	}
}

// unmapChanges конвертирует правки из запроса в доменную модель.
func unmapChanges(in []openapi.Change) []model.Change {
	if in == nil {
		return nil
	}
	out := make([]model.Change, 0, len(in))
	for _, c := range in {
		out = append(out, model.Change(c))
	}
	return out
}
