// Пакет openapi — HTTP-контракт sheetcheck: встроенный документ OpenAPI,
// типы запросов и ответов, интерфейс обработчиков и маршрутизация chi.
package openapi

//go:generate go run github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen@v2.5.1 -config oapi-codegen.yaml openapi.yaml

import (
	"context"
	_ "embed"
	"fmt"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var specYAML []byte

var (
	swaggerOnce sync.Once
	swagger     *openapi3.T
	swaggerErr  error
)

// GetSwagger возвращает разобранный и проверенный документ OpenAPI.
// Документ загружается один раз.
func GetSwagger() (*openapi3.T, error) {
	swaggerOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(specYAML)
		if err != nil {
			swaggerErr = fmt.Errorf("загрузка OpenAPI документа: %w", err)
			return
		}
		if err := doc.Validate(context.Background()); err != nil {
			swaggerErr = fmt.Errorf("валидация OpenAPI документа: %w", err)
			return
		}
		swagger = doc
	})
	return swagger, swaggerErr
}
