package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/carlot/carlot/internal/auth"
	"github.com/carlot/carlot/internal/metrics"
	"github.com/carlot/carlot/internal/model"
)

// Response bodies of the bearer gate.
const (
	msgNotAuthorised = "not authorised"
	msgInvalidToken  = "not valid token"
)

// TokenVerifier checks a bearer token and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*model.Claims, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Verifier TokenVerifier
	Metrics  metrics.Recorder
}

// Auth returns a middleware that authenticates API requests.
// It takes the second space-separated segment of the Authorization header
// as the token, verifies it, and injects the claims into the request.
// The scheme segment is not inspected.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	reject := func(w http.ResponseWriter, r *http.Request, reason, message string) {
		cfg.Logger.Warn("authentication failed",
			slog.String("reason", reason),
			slog.String("ip", r.RemoteAddr),
			slog.String("endpoint", r.Method+" "+r.URL.Path),
			slog.String("request_id", GetRequestID(r.Context())),
		)
		recorder.IncAuthRejected(reason)
		writeMessage(w, http.StatusUnauthorized, message)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				reject(w, r, metrics.RejectMissingHeader, msgNotAuthorised)
				return
			}

			token := extractBearer(header)
			if token == "" {
				reject(w, r, metrics.RejectMalformed, msgInvalidToken)
				return
			}

			claims, err := cfg.Verifier.Verify(token)
			if err != nil {
				reject(w, r, metrics.RejectInvalidToken, msgInvalidToken)
				return
			}

			annotateUser(r.Context(), claims.UserID)
			ctx := auth.ContextWithClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearer returns the segment after the first space, up to the next one.
func extractBearer(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
