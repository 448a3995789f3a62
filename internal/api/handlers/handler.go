// handler.go — основной обработчик API, реализующий openapi.ServerInterface.
// Объединяет health и доменные обработчики и делегирует запросы в сервисный слой.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/sheetcheck/internal/api/errors"
	"github.com/bigkaa/sheetcheck/internal/api/openapi"
	"github.com/bigkaa/sheetcheck/internal/config"
	"github.com/bigkaa/sheetcheck/internal/service"
)

// APIHandler — основной обработчик API sheetcheck.
type APIHandler struct {
	health    *HealthHandler
	tables    *service.TableService
	cells     *service.WriteBackService
	analysis  *service.AnalysisService
	responses *service.ResponseService
	sources   *service.SourceService
	analyzers []config.Analyzer
	logger    *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	health *HealthHandler,
	tables *service.TableService,
	cells *service.WriteBackService,
	analysis *service.AnalysisService,
	responses *service.ResponseService,
	sources *service.SourceService,
	analyzers []config.Analyzer,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:    health,
		tables:    tables,
		cells:     cells,
		analysis:  analysis,
		responses: responses,
		sources:   sources,
		analyzers: analyzers,
		logger:    logger.With(slog.String("component", "api_handler")),
	}
}

var _ openapi.ServerInterface = (*APIHandler)(nil)

// --- Health endpoints (делегируются в HealthHandler) ---

// HealthLive — liveness probe.
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe.
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики.
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// GetOpenAPI — GET /api/v1/openapi.json.
func (h *APIHandler) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	doc, err := openapi.GetSwagger()
	if err != nil {
		h.logger.Error("Ошибка загрузки OpenAPI документа", slog.String("error", err.Error()))
		apierrors.InternalError(w, "Описание API недоступно")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// ListAnalyzers — GET /api/v1/analyzers.
func (h *APIHandler) ListAnalyzers(w http.ResponseWriter, _ *http.Request) {
	items := make([]openapi.Analyzer, 0, len(h.analyzers))
	for _, a := range h.analyzers {
		items = append(items, openapi.Analyzer{Name: a.Name, Id: a.ID})
	}
	writeJSON(w, http.StatusOK, items)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON разбирает тело запроса. При ошибке пишет 400 и возвращает false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return false
	}
	return true
}

// writeServiceError переводит ошибку сервисного слоя в HTTP-ответ.
// Непредвиденные ошибки логируются, клиент получает обобщённое сообщение msg.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, err error, msg string, attrs ...any) {
	var colErr *service.ColumnError
	switch {
	case errors.As(err, &colErr):
		apierrors.ColumnNotFound(w, colErr.Error(), colErr.Headers)
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, err.Error())
	case errors.Is(err, service.ErrConflict):
		apierrors.Conflict(w, err.Error())
	case errors.Is(err, service.ErrRemote):
		h.logger.Warn(msg, append(attrs, slog.String("error", err.Error()))...)
		apierrors.SourceUnavailable(w, err.Error())
	case errors.Is(err, service.ErrAnalyzer), errors.Is(err, service.ErrParse):
		h.logger.Warn(msg, append(attrs, slog.String("error", err.Error()))...)
		apierrors.AnalyzerUnavailable(w, err.Error())
	default:
		h.logger.Error(msg, append(attrs, slog.String("error", err.Error()))...)
		apierrors.InternalError(w, msg)
	}
}
