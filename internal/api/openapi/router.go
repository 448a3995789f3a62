// router.go — подключение сгенерированного роутера (server.gen.go)
// к JSON-конверту ошибок API.
package openapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/bigkaa/sheetcheck/internal/api/errors"
)

// ParamErrorHandler отвечает 400 VALIDATION_ERROR, если параметр пути
// или запроса отсутствует либо не связывается с типом из openapi.yaml.
func ParamErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	apierrors.ValidationError(w, err.Error())
}

// Mount регистрирует маршруты API на роутере с ParamErrorHandler.
func Mount(si ServerInterface, r chi.Router) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: ParamErrorHandler,
	})
}
