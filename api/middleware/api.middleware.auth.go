package middleware

import (
	"net/http"
	"strings"

	"github.com/helmsense/hub/internal/errors"
	"github.com/helmsense/hub/internal/hubservice"
)

// TokenConfig maps static bearer tokens to roles. Tokens are issued out
// of band: device tokens to helmet firmware, admin tokens to dashboard
// operators.
type TokenConfig struct {
	DeviceTokens []string
	AdminTokens  []string
}

type TokenMiddleware struct {
	roles map[string][]string
}

func NewTokenMiddleware(config TokenConfig) *TokenMiddleware {
	roles := make(map[string][]string)
	for _, token := range config.DeviceTokens {
		roles[token] = []string{"device"}
	}
	for _, token := range config.AdminTokens {
		roles[token] = []string{"admin", "device"}
	}
	return &TokenMiddleware{roles: roles}
}

// Authenticate validates the bearer token and adds the caller's roles to
// the request context.
func (m *TokenMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			handleError(w, errors.NewAuthError("no token provided", nil))
			return
		}

		roles, ok := m.roles[token]
		if !ok {
			handleError(w, errors.NewAuthError("invalid token", nil))
			return
		}

		next.ServeHTTP(w, r.WithContext(hubservice.WithRoles(r.Context(), roles)))
	})
}

// RequireRoles middleware ensures the caller has the required roles
func (m *TokenMiddleware) RequireRoles(roles []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userRoles := hubservice.GetUserRoles(r.Context())

			if !hasRequiredRoles(userRoles, roles) {
				handleError(w, errors.NewAuthorizationError("insufficient permissions", nil))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Helper functions

func extractToken(r *http.Request) string {
	bearerToken := r.Header.Get("Authorization")
	if len(strings.Split(bearerToken, " ")) == 2 {
		return strings.Split(bearerToken, " ")[1]
	}
	return ""
}

func hasRequiredRoles(userRoles, requiredRoles []string) bool {
	if len(requiredRoles) == 0 {
		return true
	}

	roleMap := make(map[string]bool)
	for _, role := range userRoles {
		roleMap[role] = true
	}

	for _, required := range requiredRoles {
		if required == "*" {
			return true
		}
		if !roleMap[required] {
			return false
		}
	}
	return true
}

func handleError(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(*errors.APIError); ok {
		http.Error(w, apiErr.Message, apiErr.Code)
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
