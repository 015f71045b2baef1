package handler

import (
	"errors"
	"net/http"

	"quest-server/admin-service/internal/service"
	"quest-server/shared/authutils"
	sharedMiddleware "quest-server/shared/middleware"
	sharedModels "quest-server/shared/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// AdminHandler обрабатывает HTTP запросы авторского сервиса.
type AdminHandler struct {
	authoring service.AuthoringService
	logger    *zap.Logger
	verifier  *authutils.JWTVerifier
}

// NewAdminHandler создает новый AdminHandler.
func NewAdminHandler(authoring service.AuthoringService, logger *zap.Logger, jwtSecret string) *AdminHandler {
	verifier, err := authutils.NewJWTVerifier(jwtSecret, logger)
	if err != nil {
		logger.Fatal("Failed to create JWT Verifier", zap.Error(err))
	}
	return &AdminHandler{
		authoring: authoring,
		logger:    logger.Named("AdminHandler"),
		verifier:  verifier,
	}
}

// RegisterRoutes регистрирует маршруты авторского сервиса.
// Все операции требуют административную роль.
func (h *AdminHandler) RegisterRoutes(router *gin.Engine) {
	adminAuth := sharedMiddleware.GinAuthMiddleware(h.verifier.VerifyToken, h.logger, true)

	api := router.Group("/admin/api", adminAuth)
	{
		api.POST("/quests", h.createQuest)
		api.GET("/quests", h.listQuests)
		api.GET("/quests/:questId", h.getQuest)
		api.PUT("/quests/:questId", h.updateQuest)
		api.DELETE("/quests/:questId", h.deleteQuest)
		api.GET("/quests/:questId/leaderboard", h.getLeaderboard)
		api.POST("/quests/:questId/assets", h.uploadAsset)
		api.GET("/users/by-email", h.findUserByEmail)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// handleServiceError - маппинг ошибок сервисного слоя в HTTP ответы Gin.
func (h *AdminHandler) handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var errResp sharedModels.ErrorResponse

	switch {
	case errors.Is(err, sharedModels.ErrQuestNotFound):
		statusCode = http.StatusNotFound
		errResp = sharedModels.ErrorResponse{Code: sharedModels.ErrCodeQuestNotFound, Message: "Quest not found"}
	case errors.Is(err, sharedModels.ErrUserNotFound):
		statusCode = http.StatusNotFound
		errResp = sharedModels.ErrorResponse{Code: sharedModels.ErrCodeUserNotFound, Message: "User not found"}
	case errors.Is(err, sharedModels.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		errResp = sharedModels.ErrorResponse{Code: sharedModels.ErrCodeValidation, Message: err.Error()}
	case errors.Is(err, sharedModels.ErrBadRequest):
		statusCode = http.StatusBadRequest
		errResp = sharedModels.ErrorResponse{Code: sharedModels.ErrCodeBadRequest, Message: err.Error()}
	case errors.Is(err, sharedModels.ErrCorruptData):
		statusCode = http.StatusInternalServerError
		errResp = sharedModels.ErrorResponse{Code: sharedModels.ErrCodeInternal, Message: "Stored quest data is corrupt"}
	default:
		h.logger.Error("Unhandled service error", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResp = sharedModels.ErrorResponse{Code: sharedModels.ErrCodeInternal, Message: "Internal server error"}
	}
	c.AbortWithStatusJSON(statusCode, errResp)
}
