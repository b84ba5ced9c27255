package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/mgarcia-dev/biblioteca-api/internal/domain"
	"github.com/mgarcia-dev/biblioteca-api/internal/service"
)

type contextKey string

const claimsKey contextKey = "tokenClaims"

func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				log.Printf("ERROR [middleware.Auth] missing bearer token")
				writeEnvelope(w, http.StatusForbidden, "Acceso denegado. Token no proporcionado")
				return
			}

			claims, err := authService.ValidateToken(token)
			if err != nil {
				log.Printf("ERROR [middleware.Auth] token validation failed: %v", err)
				if errors.Is(err, domain.ErrTokenExpired) {
					writeEnvelope(w, http.StatusUnauthorized, "Token expirado. Por favor, inicia sesión nuevamente")
					return
				}
				writeEnvelope(w, http.StatusUnauthorized, "Token inválido")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// GetClaims returns the token claims stored by Auth.
func GetClaims(ctx context.Context) (*service.TokenClaims, bool) {
	claims, ok := ctx.Value(claimsKey).(*service.TokenClaims)
	return claims, ok
}

func writeEnvelope(w http.ResponseWriter, status int, mensaje string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"mensaje": mensaje,
	})
}
