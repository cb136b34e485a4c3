package web

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type authClaimsKey struct{}

// AuthClaims holds the caller's identity extracted from the JWT.
type AuthClaims struct {
	UserID    int
	CompanyID int
	Role      string
}

// authFromContext returns the auth claims stored in ctx, or nil.
func authFromContext(ctx context.Context) *AuthClaims {
	v, _ := ctx.Value(authClaimsKey{}).(*AuthClaims)
	return v
}

// jwtClaims is the JWT payload issued by the ERP login.
type jwtClaims struct {
	UserID    int    `json:"user_id"`
	CompanyID int    `json:"company_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// tokenFromRequest prefers an Authorization bearer token and falls back to the
// auth_token cookie set by the ERP front-end.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireAuth is chi middleware that validates the caller's JWT and injects
// AuthClaims into the request context. Returns 401 if the token is absent or invalid.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := tokenFromRequest(r)
		if raw == "" {
			writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}

		claims := &jwtClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(h.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			writeError(w, r, "invalid or expired token", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsKey{}, &AuthClaims{
			UserID:    claims.UserID,
			CompanyID: claims.CompanyID,
			Role:      claims.Role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// me handles GET /api/auth/me and echoes the verified claims.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	if claims == nil {
		writeError(w, r, "not authenticated", "UNAUTHORIZED", http.StatusUnauthorized)
		return
	}

	type meResponse struct {
		UserID    int    `json:"user_id"`
		CompanyID int    `json:"company_id"`
		Role      string `json:"role"`
	}
	writeJSON(w, meResponse{UserID: claims.UserID, CompanyID: claims.CompanyID, Role: claims.Role})
}
