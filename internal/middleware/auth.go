package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/notepad/internal/auth"
)

const (
	msgNoToken     = "Not authorized, no token"
	msgTokenFailed = "Not authorized, token failed"
)

type TokenVerifier interface {
	Verify(token string) (string, error)
}

// RequireBearer verifies the Authorization bearer token and attaches the
// caller's auth.Identity to the request context. Rejected requests get a
// single 401 JSON response and never reach next.
func RequireBearer(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, msgNoToken)
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				logger.Debug("token rejected", "path", r.URL.Path, "error", err)
				unauthorized(w, msgTokenFailed)
				return
			}

			ctx := auth.WithIdentity(r.Context(), auth.Identity{UserID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
