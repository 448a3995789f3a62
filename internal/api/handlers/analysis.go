// analysis.go — обработчики /api/v1/analysis endpoints.
// Построчный анализ передаётся клиенту потоком SSE (Server-Sent Events):
// одно событие "data: {json}" на строку, в конце "event: done".
// Отключение клиента отменяет контекст запроса и прекращает вызовы анализатора.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bigkaa/sheetcheck/internal/api/openapi"
	"github.com/bigkaa/sheetcheck/internal/service"
)

// Завершающее событие потока анализа.
const doneEvent = "event: done\ndata: Analysis completed successfully\n\n"

// StreamAnalysis — GET /api/v1/analysis/stream (параметры в строке запроса).
func (h *APIHandler) StreamAnalysis(w http.ResponseWriter, r *http.Request, params openapi.StreamAnalysisParams) {
	p := service.RunParams{
		SourceID:   params.SourceId,
		NameColumn: params.NameColumn,
		TextColumn: params.TextColumn,
		AnalyzerID: params.AnalyzerId,
	}
	if params.Range != nil {
		p.Range = *params.Range
	}
	h.streamAnalysis(w, r, p)
}

// StreamAnalysisPost — POST /api/v1/analysis/stream (параметры в JSON-теле).
func (h *APIHandler) StreamAnalysisPost(w http.ResponseWriter, r *http.Request) {
	var req openapi.AnalysisRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.streamAnalysis(w, r, service.RunParams{
		SourceID:   req.SourceId,
		Range:      req.Range,
		NameColumn: req.NameColumn,
		TextColumn: req.TextColumn,
		AnalyzerID: req.AnalyzerId,
	})
}

// streamAnalysis запускает анализ и пишет события в поток SSE.
// Ошибки до начала потока возвращаются обычным JSON-ответом.
func (h *APIHandler) streamAnalysis(w http.ResponseWriter, r *http.Request, p service.RunParams) {
	ctx := r.Context()

	run, err := h.analysis.Run(ctx, p)
	if err != nil {
		h.writeServiceError(w, err, "Ошибка запуска анализа", slog.String("source_id", p.SourceID))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Отключаем буферизацию Nginx
	w.Header().Set("X-Analysis-Run-ID", run.ID)

	// ResponseController находит http.Flusher через Unwrap() обёрток middleware.
	rc := http.NewResponseController(w)
	// Анализ длится дольше HTTPWriteTimeout — снимаем дедлайн записи.
	_ = rc.SetWriteDeadline(time.Time{})
	w.WriteHeader(http.StatusOK)
	_ = rc.Flush()

	logger := h.logger.With(slog.String("run_id", run.ID))
	logger.Debug("SSE клиент подключён",
		slog.String("remote_addr", r.RemoteAddr),
		slog.Int("rows", run.Rows),
	)

	if run.Warning != "" {
		data, _ := json.Marshal(map[string]string{"warning": run.Warning})
		fmt.Fprintf(w, "event: warning\ndata: %s\n\n", data)
		_ = rc.Flush()
	}

	sent := 0
	for res := range run.Results {
		data, err := json.Marshal(res)
		if err != nil {
			logger.Error("Ошибка сериализации события анализа", slog.String("error", err.Error()))
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		_ = rc.Flush()
		sent++
	}

	if ctx.Err() != nil {
		logger.Debug("SSE клиент отключён", slog.Int("sent", sent))
		return
	}

	fmt.Fprint(w, doneEvent)
	_ = rc.Flush()
}

// AnalyzeText — POST /api/v1/analysis/text.
func (h *APIHandler) AnalyzeText(w http.ResponseWriter, r *http.Request) {
	var req openapi.AnalyzeTextRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	text, err := h.analysis.AnalyzeText(r.Context(), req.AnalyzerId, req.Text)
	if err != nil {
		h.writeServiceError(w, err, "Ошибка анализа текста", slog.String("analyzer_id", req.AnalyzerId))
		return
	}
	writeJSON(w, http.StatusOK, openapi.AnalyzeTextResponse{AnalyzedText: text})
}
