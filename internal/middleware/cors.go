package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows cross-origin calls from origin ("*" for any) and answers
// preflight requests itself. An empty origin disables it.
func CORS(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{origin},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         600,
	})
}
