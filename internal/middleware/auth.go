package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	logpkg "github.com/nidrosoft/rizzer-sub001/internal/logger"
	"github.com/nidrosoft/rizzer-sub001/internal/models"
	"github.com/nidrosoft/rizzer-sub001/internal/request"
	"go.uber.org/zap"
)

// TokenVerifier verifies a bearer token and returns its claims
type TokenVerifier interface {
	Verify(tokenString string) (*models.JWTClaims, error)
}

// Auth creates authentication middleware that validates bearer JWTs and
// attaches the caller to the request context. Preflight requests pass
// through untouched.
func Auth(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "Missing Authorization header", logger)
				return
			}

			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
				respondError(w, http.StatusUnauthorized, "Invalid Authorization header format", logger)
				return
			}

			claims, err := verifier.Verify(strings.TrimSpace(tokenString))
			if err != nil {
				logger.Info("token_verification_failed",
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
					zap.String("error", logpkg.SanitizeError(err)),
				)
				respondError(w, http.StatusUnauthorized, "Invalid or expired token", logger)
				return
			}

			ctx := request.WithCaller(r.Context(), models.CallerFromClaims(*claims))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func respondError(w http.ResponseWriter, status int, message string, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success": false,
		"error":   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil && logger != nil {
		logger.Error("failed_to_encode_error_response", zap.Error(err), zap.Int("status_code", status))
	}
}
