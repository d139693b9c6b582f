package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/castpro/castpro/internal/auth"
	"github.com/castpro/castpro/internal/model"
)

// UserResolver resolves a token subject to a stored user record.
type UserResolver interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// AuthUserCache caches resolved users keyed by a token digest.
type AuthUserCache interface {
	GetAuthUser(ctx context.Context, cacheKey string) (*model.User, error)
	SetAuthUser(ctx context.Context, cacheKey string, user *model.User) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger
	Tokens *auth.TokenIssuer
	Users  UserResolver
	// Cache is optional; nil disables the resolution cache.
	Cache AuthUserCache
}

// Auth returns a middleware that authenticates requests with a bearer
// token. It verifies the JWT, resolves the embedded subject to a user
// record, and injects the user into the request context. Every failure
// mode produces the same 401 response so account existence is not leaked.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			subject, err := cfg.Tokens.Verify(token)
			if err != nil {
				reason := "invalid_token"
				if err == auth.ErrTokenExpired {
					reason = "token_expired"
				}
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			// Check cache first
			cacheKey := auth.QuickHash(token)
			var user *model.User
			if cfg.Cache != nil {
				user, _ = cfg.Cache.GetAuthUser(r.Context(), cacheKey)
			}

			cacheHit := user != nil
			if user == nil {
				user, err = cfg.Users.GetUserByEmail(r.Context(), subject)
				if err != nil {
					cfg.Logger.Warn("authentication failed",
						slog.String("reason", "unknown_subject"),
						slog.String("endpoint", r.Method+" "+r.URL.Path),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					writeAuthError(w)
					return
				}

				if cfg.Cache != nil {
					_ = cfg.Cache.SetAuthUser(r.Context(), cacheKey, user)
				}
			}

			cfg.Logger.Debug("authentication successful",
				slog.Int64("user_id", user.ID),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.Bool("cache_hit", cacheHit),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken extracts the bearer token from the Authorization header.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
}
