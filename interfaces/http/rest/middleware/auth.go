package middleware

import (
	"net/http"
	"strings"

	"taskflow-backend/pkg/auth"
	"taskflow-backend/pkg/common"
)

// Authenticate validates the bearer token on every request and stores the
// authenticated identity in the request context. An optional per-IP rate
// limiter runs before token validation so unauthenticated floods are cut
// off early.
func Authenticate(tokens *auth.JWTManager, ipLimiter *auth.IPRateLimiter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ipLimiter != nil {
				allowed, err := ipLimiter.Allow(r.Context(), remoteIP(r))
				if err == nil && !allowed {
					common.RespondError(w, http.StatusTooManyRequests,
						common.StandardErrorCodes.TooManyRequests, "Too many requests")
					return
				}
			}

			token := bearerToken(r)
			if token == "" {
				common.RespondError(w, http.StatusUnauthorized,
					common.StandardErrorCodes.Unauthorized, "Missing or malformed Authorization header")
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				common.RespondError(w, http.StatusUnauthorized,
					common.StandardErrorCodes.Unauthorized, "Invalid or expired token")
				return
			}

			ctx := auth.WithUserContext(r.Context(), auth.UserContext{
				UserID: claims.UserID,
				Email:  claims.Email,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func remoteIP(r *http.Request) string {
	// RealIP middleware has already rewritten RemoteAddr when the request
	// came through a trusted proxy
	if i := strings.LastIndex(r.RemoteAddr, ":"); i > 0 {
		return r.RemoteAddr[:i]
	}
	return r.RemoteAddr
}
