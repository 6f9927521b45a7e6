package swagger

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Handler serves Swagger UI pointed at the OpenAPI document at specURL.
func Handler(specURL string) http.Handler {
	if specURL == "" {
		specURL = "/openapi.yml"
	}
	return httpSwagger.Handler(
		httpSwagger.URL(specURL),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DeepLinking(true),
	)
}
