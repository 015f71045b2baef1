package handler

import (
	"net/http"

	sharedModels "quest-server/shared/models"

	"github.com/labstack/echo/v4"
)

// acceptQuest - POST /session/quests/:questId/accept
// Конфликт "уже начат" здесь не всплывает: менеджер возобновляет сессию.
func (h *QuestHandler) acceptQuest(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, sharedModels.ErrUnauthorized)
	}
	questID := c.Param("questId")
	if questID == "" {
		return handleServiceError(c, sharedModels.ErrBadRequest)
	}

	state, err := h.sessions.AcceptQuest(c.Request().Context(), userID, questID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

// submitArtefact - POST /session/artefacts/:artefactId/submit
// Единая точка сдачи: questId берется из активной сессии, завершение
// квеста срабатывает здесь же при покрытии всех артефактов.
func (h *QuestHandler) submitArtefact(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, sharedModels.ErrUnauthorized)
	}
	artefactID := c.Param("artefactId")
	if artefactID == "" {
		return handleServiceError(c, sharedModels.ErrBadRequest)
	}

	result, err := h.sessions.SubmitArtefact(c.Request().Context(), userID, artefactID)
	if err != nil {
		sessionSubmitsTotal.WithLabelValues("error").Inc()
		return handleServiceError(c, err)
	}
	switch {
	case !result.Accepted:
		sessionSubmitsTotal.WithLabelValues("out_of_sequence").Inc()
	case result.AlreadyCollected:
		sessionSubmitsTotal.WithLabelValues("duplicate").Inc()
	case result.QuestCompleted:
		sessionSubmitsTotal.WithLabelValues("completed").Inc()
	default:
		sessionSubmitsTotal.WithLabelValues("accepted").Inc()
	}
	return c.JSON(http.StatusOK, result)
}

// activeQuest - GET /session/active
func (h *QuestHandler) activeQuest(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, sharedModels.ErrUnauthorized)
	}

	state, err := h.sessions.Active(c.Request().Context(), userID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

// cancelQuest - DELETE /session/active
func (h *QuestHandler) cancelQuest(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return handleServiceError(c, sharedModels.ErrUnauthorized)
	}

	if err := h.sessions.Cancel(c.Request().Context(), userID); err != nil {
		return handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
