package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS creates permissive CORS middleware: any origin and any request
// headers, preflight answered with 204 and no body.
func CORS() func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:       []string{"*"},
		AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:       []string{"*"},
		OptionsSuccessStatus: http.StatusNoContent,
		MaxAge:               86400,
	})
	return c.Handler
}
