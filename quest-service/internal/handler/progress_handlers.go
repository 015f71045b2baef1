package handler

import (
	"net/http"

	sharedModels "quest-server/shared/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// startQuest - POST /quests/:questId/start
func (h *QuestHandler) startQuest(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, sharedModels.ErrUnauthorized)
	}
	questID := c.Param("questId")
	if questID == "" {
		return handleServiceError(c, sharedModels.ErrBadRequest)
	}

	progress, err := h.progress.StartQuest(c.Request().Context(), userID, questID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toProgressResponse(progress))
}

// collectArtefact - POST /quests/:questId/collect
func (h *QuestHandler) collectArtefact(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, sharedModels.ErrUnauthorized)
	}
	questID := c.Param("questId")

	var req collectRequest
	if err := c.Bind(&req); err != nil || req.ArtefactID == "" {
		h.logger.Warn("Invalid collect request body", zap.Error(err))
		return handleServiceError(c, sharedModels.ErrBadRequest)
	}

	result, err := h.progress.CollectArtefact(c.Request().Context(), userID, questID, req.ArtefactID)
	if err != nil {
		if _, ok := sharedModels.IsOutOfSequence(err); ok {
			collectionsTotal.WithLabelValues("out_of_sequence").Inc()
		} else {
			collectionsTotal.WithLabelValues("error").Inc()
		}
		return handleServiceError(c, err)
	}
	if result.AlreadyCollected {
		collectionsTotal.WithLabelValues("duplicate").Inc()
	} else {
		collectionsTotal.WithLabelValues("accepted").Inc()
	}
	return c.JSON(http.StatusOK, result)
}

// completeQuest - POST /quests/:questId/complete
func (h *QuestHandler) completeQuest(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, sharedModels.ErrUnauthorized)
	}
	questID := c.Param("questId")

	result, err := h.completion.CompleteQuest(c.Request().Context(), userID, questID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// getProgress - GET /quests/:questId/progress
// Отсутствие записи - не ошибка: отдается пустой прогресс.
func (h *QuestHandler) getProgress(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, sharedModels.ErrUnauthorized)
	}
	questID := c.Param("questId")

	progress, err := h.progress.GetProgress(c.Request().Context(), userID, questID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toProgressResponse(progress))
}

// recordHintAttempt - PATCH /quests/:questId/progress
func (h *QuestHandler) recordHintAttempt(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, sharedModels.ErrUnauthorized)
	}
	questID := c.Param("questId")

	var req patchProgressRequest
	if err := c.Bind(&req); err != nil {
		h.logger.Warn("Invalid patch request body", zap.Error(err))
		return handleServiceError(c, sharedModels.ErrBadRequest)
	}

	progress, err := h.progress.RecordHintAttempt(c.Request().Context(), userID, questID, req.DisplayedHints)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toProgressResponse(progress))
}

// deleteProgress - DELETE /quests/:questId/progress
func (h *QuestHandler) deleteProgress(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, sharedModels.ErrUnauthorized)
	}
	questID := c.Param("questId")

	if err := h.progress.DeleteProgress(c.Request().Context(), userID, questID); err != nil {
		return handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
