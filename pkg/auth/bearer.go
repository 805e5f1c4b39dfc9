// Package auth provides the access gate protecting the streaming endpoint.
//
// The gate is independent of the Homebox credentials: it protects the SSE
// endpoint itself, not the backing-service calls.
package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/oangelo/homebox-mcp/pkg/errors"
	"github.com/oangelo/homebox-mcp/pkg/logger"
)

// BearerMiddleware creates an HTTP middleware that requires a bearer token
// matching the configured secret. When disabled it passes every request
// through. Rejection happens before any session state is created.
//
// Basic credentials are accepted as a fallback: MCP clients that only speak
// OAuth client-credential forms send the secret as the Basic password.
func BearerMiddleware(enabled bool, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				reject(w, "Missing Authorization header")
				return
			}

			token, ok := extractToken(header)
			if !ok {
				reject(w, "Invalid Authorization header format")
				return
			}

			if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				logger.Warnw("gate rejected request", "path", r.URL.Path, "error", errors.ErrAccessDenied)
				reject(w, "Invalid token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractToken pulls the secret out of a Bearer or Basic Authorization header.
func extractToken(header string) (string, bool) {
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token, true
	}

	if encoded, ok := strings.CutPrefix(header, "Basic "); ok {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return "", false
		}
		// Format is client_id:client_secret; the secret is the token.
		if _, secret, found := strings.Cut(string(decoded), ":"); found {
			return secret, true
		}
		return string(decoded), true
	}

	return "", false
}

func reject(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="MCP"`)
	http.Error(w, message, http.StatusUnauthorized)
}
