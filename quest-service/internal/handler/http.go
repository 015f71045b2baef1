package handler

import (
	"errors"
	"fmt"
	"net/http"

	"quest-server/quest-service/internal/service"
	"quest-server/quest-service/internal/session"
	"quest-server/shared/authutils"
	sharedMiddleware "quest-server/shared/middleware"
	sharedModels "quest-server/shared/models"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// QuestHandler обрабатывает HTTP запросы игрового сервиса квестов.
type QuestHandler struct {
	progress   service.ProgressService
	completion service.CompletionService
	sessions   *session.Manager
	logger     *zap.Logger
	verifier   *authutils.JWTVerifier
}

// NewQuestHandler создает новый QuestHandler.
func NewQuestHandler(
	progress service.ProgressService,
	completion service.CompletionService,
	sessions *session.Manager,
	logger *zap.Logger,
	jwtSecret string,
) *QuestHandler {
	verifier, err := authutils.NewJWTVerifier(jwtSecret, logger)
	if err != nil {
		logger.Fatal("Failed to create JWT Verifier", zap.Error(err))
	}
	return &QuestHandler{
		progress:   progress,
		completion: completion,
		sessions:   sessions,
		logger:     logger.Named("QuestHandler"),
		verifier:   verifier,
	}
}

// RegisterRoutes регистрирует маршруты игрового сервиса.
func (h *QuestHandler) RegisterRoutes(e *echo.Echo) {
	authMiddleware := sharedMiddleware.EchoAuthMiddleware(h.verifier.VerifyToken, h.logger)

	// --- Прямые операции движков (API для клиентского приложения) ---
	questsGroup := e.Group("/quests", authMiddleware)
	{
		questsGroup.POST("/:questId/start", h.startQuest)
		questsGroup.POST("/:questId/collect", h.collectArtefact)
		questsGroup.POST("/:questId/complete", h.completeQuest)
		questsGroup.GET("/:questId/progress", h.getProgress)
		questsGroup.PATCH("/:questId/progress", h.recordHintAttempt)
		questsGroup.DELETE("/:questId/progress", h.deleteProgress)
	}

	// --- Сессионные маршруты (один активный квест на пользователя) ---
	sessionGroup := e.Group("/session", authMiddleware)
	{
		sessionGroup.POST("/quests/:questId/accept", h.acceptQuest)
		sessionGroup.POST("/artefacts/:artefactId/submit", h.submitArtefact)
		sessionGroup.GET("/active", h.activeQuest)
		sessionGroup.DELETE("/active", h.cancelQuest)
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// getUserIDFromContext извлекает верифицированный userID из контекста Echo.
func getUserIDFromContext(c echo.Context) (string, error) {
	userIDVal := c.Get(sharedMiddleware.ContextUserIDKey)
	if userIDVal == nil {
		return "", fmt.Errorf("user_id отсутствует в контексте")
	}
	userID, ok := userIDVal.(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("неверный user_id в контексте: %v", userIDVal)
	}
	return userID, nil
}

func handleServiceError(c echo.Context, err error) error {
	var statusCode int
	var errResp sharedModels.ErrorResponse

	if oos, ok := sharedModels.IsOutOfSequence(err); ok {
		// Ожидаемый исход обычной игры: отдаем счетчик попыток,
		// чтобы клиент мог вычислить подсказку
		return c.JSON(http.StatusConflict, outOfSequenceResponse{
			ErrorResponse: sharedModels.ErrorResponse{
				Code:    sharedModels.ErrCodeOutOfSequence,
				Message: "Artefact submitted out of sequence",
			},
			ArtefactID: oos.ArtefactID,
			Attempts:   oos.Attempts,
		})
	}

	switch {
	case errors.Is(err, sharedModels.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		errResp = sharedModels.ErrorResponse{Message: "Unauthorized"}
	case errors.Is(err, sharedModels.ErrQuestNotFound):
		statusCode = http.StatusNotFound
		errResp = sharedModels.ErrorResponse{Code: sharedModels.ErrCodeQuestNotFound, Message: "Quest not found"}
	case errors.Is(err, sharedModels.ErrProgressNotFound):
		statusCode = http.StatusNotFound
		errResp = sharedModels.ErrorResponse{Code: sharedModels.ErrCodeProgressNotFound, Message: "Quest progress not found"}
	case errors.Is(err, sharedModels.ErrQuestAlreadyStarted):
		statusCode = http.StatusConflict
		errResp = sharedModels.ErrorResponse{Code: sharedModels.ErrCodeAlreadyStarted, Message: err.Error()}
	case errors.Is(err, sharedModels.ErrNoActiveQuest):
		statusCode = http.StatusNotFound
		errResp = sharedModels.ErrorResponse{Code: sharedModels.ErrCodeNoActiveQuest, Message: err.Error()}
	case errors.Is(err, sharedModels.ErrQuestNotCompletable):
		statusCode = http.StatusBadRequest
		errResp = sharedModels.ErrorResponse{Code: sharedModels.ErrCodeBadRequest, Message: err.Error()}
	case errors.Is(err, sharedModels.ErrInvalidInput), errors.Is(err, sharedModels.ErrBadRequest):
		statusCode = http.StatusBadRequest
		errResp = sharedModels.ErrorResponse{Code: sharedModels.ErrCodeBadRequest, Message: err.Error()}
	case errors.Is(err, sharedModels.ErrCorruptData):
		// Кривые данные в хранилище - громкая 500, а не пустой ответ
		statusCode = http.StatusInternalServerError
		errResp = sharedModels.ErrorResponse{Code: sharedModels.ErrCodeInternal, Message: "Stored quest data is corrupt"}
	default:
		statusCode = http.StatusInternalServerError
		errResp = sharedModels.ErrorResponse{Code: sharedModels.ErrCodeInternal, Message: "Internal server error"}
	}
	return c.JSON(statusCode, errResp)
}
