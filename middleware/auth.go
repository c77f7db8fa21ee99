package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"authnet-cim/models"
	"authnet-cim/services/auth"
	"authnet-cim/utils"
)

type contextKey string

const ClientContextKey contextKey = "client"

// TokenValidator is implemented by *auth.JWTService.
type TokenValidator interface {
	ValidateToken(token string) (*models.AuthClient, error)
}

// AuthMiddleware requires a valid "Authorization: Bearer <token>" header.
func AuthMiddleware(validator TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing Authorization header", zap.String("remote_addr", r.RemoteAddr))
				utils.SendErrorResponse(w, http.StatusUnauthorized, "Missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				logger.Debug("Invalid Authorization header format", zap.String("remote_addr", r.RemoteAddr))
				utils.SendErrorResponse(w, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}

			client, err := validator.ValidateToken(parts[1])
			if err != nil {
				logger.Info("Token validation failed", zap.String("remote_addr", r.RemoteAddr), zap.Error(err))

				message := "Authentication failed"
				switch {
				case errors.Is(err, auth.ErrTokenExpired):
					message = "Token expired"
				case errors.Is(err, auth.ErrInvalidToken):
					message = "Invalid token"
				}

				utils.SendErrorResponse(w, http.StatusUnauthorized, message)
				return
			}

			ctx := context.WithValue(r.Context(), ClientContextKey, client)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetClientFromContext(ctx context.Context) *models.AuthClient {
	client, ok := ctx.Value(ClientContextKey).(*models.AuthClient)
	if !ok {
		return nil
	}
	return client
}
