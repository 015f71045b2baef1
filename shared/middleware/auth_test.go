package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"quest-server/shared/middleware"
	"quest-server/shared/models"

	"github.com/gin-gonic/gin"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func staticVerifier(claims *models.Claims, verifyErr error) middleware.TokenVerifier {
	return func(ctx context.Context, tokenString string) (*models.Claims, error) {
		if verifyErr != nil {
			return nil, verifyErr
		}
		return claims, nil
	}
}

func TestEchoAuthMiddleware(t *testing.T) {
	verify := staticVerifier(&models.Claims{UserID: "user-1", Roles: []string{models.RoleUser}}, nil)

	t.Run("Claims land in framework and request context", func(t *testing.T) {
		e := echo.New()
		var ctxUserID string
		var ctxRoles []string
		handler := middleware.EchoAuthMiddleware(verify, zap.NewNop())(func(c echo.Context) error {
			// Значения должны читаться и вне фреймворка, из context.Context
			ctxUserID, _ = models.GetUserIDFromContext(c.Request().Context())
			ctxRoles, _ = models.GetRolesFromContext(c.Request().Context())
			assert.Equal(t, "user-1", c.Get(middleware.ContextUserIDKey))
			return c.NoContent(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer token")
		err := handler(e.NewContext(req, httptest.NewRecorder()))

		assert.NoError(t, err)
		assert.Equal(t, "user-1", ctxUserID)
		assert.Equal(t, []string{models.RoleUser}, ctxRoles)
	})

	t.Run("Missing header", func(t *testing.T) {
		e := echo.New()
		handler := middleware.EchoAuthMiddleware(verify, zap.NewNop())(func(c echo.Context) error {
			t.Fatal("handler must not be called")
			return nil
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		err := handler(e.NewContext(req, httptest.NewRecorder()))

		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("Expired token", func(t *testing.T) {
		e := echo.New()
		handler := middleware.EchoAuthMiddleware(staticVerifier(nil, models.ErrTokenExpired), zap.NewNop())(func(c echo.Context) error {
			t.Fatal("handler must not be called")
			return nil
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer expired")
		err := handler(e.NewContext(req, httptest.NewRecorder()))

		httpErr, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
		assert.Equal(t, "Token has expired", httpErr.Message)
	})
}

func TestGinAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(verify middleware.TokenVerifier, requireAdmin bool, handler gin.HandlerFunc) *gin.Engine {
		router := gin.New()
		router.GET("/guarded", middleware.GinAuthMiddleware(verify, zap.NewNop(), requireAdmin), handler)
		return router
	}

	t.Run("Admin claims land in request context", func(t *testing.T) {
		verify := staticVerifier(&models.Claims{UserID: "admin-1", Roles: []string{models.RoleAdmin}}, nil)
		var ctxUserID string
		var ctxRoles []string
		router := newRouter(verify, true, func(c *gin.Context) {
			ctxUserID, _ = models.GetUserIDFromContext(c.Request.Context())
			ctxRoles, _ = models.GetRolesFromContext(c.Request.Context())
			c.Status(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		req.Header.Set("Authorization", "Bearer token")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "admin-1", ctxUserID)
		assert.Equal(t, []string{models.RoleAdmin}, ctxRoles)
	})

	t.Run("Non-admin is forbidden when admin role required", func(t *testing.T) {
		verify := staticVerifier(&models.Claims{UserID: "user-1", Roles: []string{models.RoleUser}}, nil)
		router := newRouter(verify, true, func(c *gin.Context) {
			t.Fatal("handler must not be called")
		})

		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		req.Header.Set("Authorization", "Bearer token")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Expired token yields expired code", func(t *testing.T) {
		router := newRouter(staticVerifier(nil, models.ErrTokenExpired), false, func(c *gin.Context) {
			t.Fatal("handler must not be called")
		})

		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		req.Header.Set("Authorization", "Bearer expired")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		var resp models.ErrorResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, models.ErrCodeTokenExpired, resp.Code)
	})

	t.Run("Invalid token yields invalid code", func(t *testing.T) {
		router := newRouter(staticVerifier(nil, models.ErrTokenInvalid), false, func(c *gin.Context) {
			t.Fatal("handler must not be called")
		})

		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		var resp models.ErrorResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, models.ErrCodeTokenInvalid, resp.Code)
	})
}
