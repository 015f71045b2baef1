package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"quest-server/shared/models"

	"github.com/gin-gonic/gin"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TokenVerifier - сигнатура проверки токена (реализуется authutils.JWTVerifier).
type TokenVerifier func(ctx context.Context, tokenString string) (*models.Claims, error)

// ContextUserIDKey - ключ, под которым middleware кладет верифицированный userID
// в контекст фреймворка.
const ContextUserIDKey = "user_id"

// ContextRolesKey - ключ для ролей пользователя.
const ContextRolesKey = "user_roles"

func bearerToken(authHeader string) (string, bool) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

func authErrorMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrTokenExpired):
		return "Token has expired"
	case errors.Is(err, models.ErrTokenMalformed):
		return "Token is malformed"
	default:
		return "Token is invalid"
	}
}

func authErrorCode(err error) string {
	if errors.Is(err, models.ErrTokenExpired) {
		return models.ErrCodeTokenExpired
	}
	return models.ErrCodeTokenInvalid
}

// withClaims кладет верифицированные userID и роли в context.Context запроса,
// чтобы код ниже по стеку (вне фреймворка) читал их через
// models.GetUserIDFromContext / models.GetRolesFromContext.
func withClaims(ctx context.Context, claims *models.Claims) context.Context {
	ctx = context.WithValue(ctx, models.UserContextKey, claims.UserID)
	ctx = context.WithValue(ctx, models.RolesContextKey, claims.Roles)
	return ctx
}

// EchoAuthMiddleware создает Echo middleware, которое проверяет JWT access токен
// и кладет верифицированный userID в контекст. Движки квестов никогда не видят
// не-верифицированные клеймы.
func EchoAuthMiddleware(verify TokenVerifier, logger *zap.Logger) echo.MiddlewareFunc {
	log := logger.Named("AuthMiddleware")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header missing")
			}

			tokenString, ok := bearerToken(authHeader)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			claims, err := verify(c.Request().Context(), tokenString)
			if err != nil {
				log.Warn("Token verification failed", zap.Error(err))
				return echo.NewHTTPError(http.StatusUnauthorized, authErrorMessage(err))
			}

			c.Set(ContextUserIDKey, claims.UserID)
			c.Set(ContextRolesKey, claims.Roles)
			c.SetRequest(c.Request().WithContext(withClaims(c.Request().Context(), claims)))
			return next(c)
		}
	}
}

// GinAuthMiddleware - аналог для Gin (admin-service). Дополнительно может
// требовать административную роль.
func GinAuthMiddleware(verify TokenVerifier, logger *zap.Logger, requireAdmin bool) gin.HandlerFunc {
	log := logger.Named("AuthMiddleware")
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Code: models.ErrCodeTokenInvalid, Message: "Authorization header missing"})
			return
		}

		tokenString, ok := bearerToken(authHeader)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Code: models.ErrCodeTokenInvalid, Message: "Invalid Authorization header format"})
			return
		}

		claims, err := verify(c.Request.Context(), tokenString)
		if err != nil {
			log.Warn("Token verification failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Code: authErrorCode(err), Message: authErrorMessage(err)})
			return
		}

		if requireAdmin && !claims.IsAdmin() {
			log.Warn("User lacks admin role", zap.String("userID", claims.UserID))
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{Message: "Forbidden"})
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextRolesKey, claims.Roles)
		c.Request = c.Request.WithContext(withClaims(c.Request.Context(), claims))
		c.Next()
	}
}
