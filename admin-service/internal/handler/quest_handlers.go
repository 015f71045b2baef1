package handler

import (
	"io"
	"net/http"
	"strconv"

	sharedModels "quest-server/shared/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ограничение размера загружаемого ассета (изображения, 3D-модели)
const maxAssetSize = 32 << 20 // 32 MiB

// createQuest - POST /admin/api/quests
func (h *AdminHandler) createQuest(c *gin.Context) {
	var quest sharedModels.Quest
	if err := c.ShouldBindJSON(&quest); err != nil {
		h.logger.Warn("Invalid quest payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, sharedModels.ErrorResponse{
			Code: sharedModels.ErrCodeBadRequest, Message: "Invalid quest payload",
		})
		return
	}

	created, err := h.authoring.CreateQuest(c.Request.Context(), &quest)
	if err != nil {
		questWritesTotal.WithLabelValues("create", "error").Inc()
		h.handleServiceError(c, err)
		return
	}
	questWritesTotal.WithLabelValues("create", "ok").Inc()
	c.JSON(http.StatusCreated, created)
}

// listQuests - GET /admin/api/quests?limit=&offset=
func (h *AdminHandler) listQuests(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	quests, err := h.authoring.ListQuests(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quests": quests, "count": len(quests)})
}

// getQuest - GET /admin/api/quests/:questId
func (h *AdminHandler) getQuest(c *gin.Context) {
	quest, err := h.authoring.GetQuest(c.Request.Context(), c.Param("questId"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, quest)
}

// updateQuest - PUT /admin/api/quests/:questId
func (h *AdminHandler) updateQuest(c *gin.Context) {
	var quest sharedModels.Quest
	if err := c.ShouldBindJSON(&quest); err != nil {
		h.logger.Warn("Invalid quest payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, sharedModels.ErrorResponse{
			Code: sharedModels.ErrCodeBadRequest, Message: "Invalid quest payload",
		})
		return
	}
	// Идентификатор из пути - источник истины
	quest.ID = c.Param("questId")

	updated, err := h.authoring.UpdateQuest(c.Request.Context(), &quest)
	if err != nil {
		questWritesTotal.WithLabelValues("update", "error").Inc()
		h.handleServiceError(c, err)
		return
	}
	questWritesTotal.WithLabelValues("update", "ok").Inc()
	c.JSON(http.StatusOK, updated)
}

// deleteQuest - DELETE /admin/api/quests/:questId
func (h *AdminHandler) deleteQuest(c *gin.Context) {
	if err := h.authoring.DeleteQuest(c.Request.Context(), c.Param("questId")); err != nil {
		questWritesTotal.WithLabelValues("delete", "error").Inc()
		h.handleServiceError(c, err)
		return
	}
	questWritesTotal.WithLabelValues("delete", "ok").Inc()
	c.Status(http.StatusNoContent)
}

// getLeaderboard - GET /admin/api/quests/:questId/leaderboard
func (h *AdminHandler) getLeaderboard(c *gin.Context) {
	entries, err := h.authoring.GetLeaderboard(c.Request.Context(), c.Param("questId"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if entries == nil {
		entries = []sharedModels.LeaderboardEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

// uploadAsset - POST /admin/api/quests/:questId/assets (multipart form, поле "file")
func (h *AdminHandler) uploadAsset(c *gin.Context) {
	questID := c.Param("questId")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, sharedModels.ErrorResponse{
			Code: sharedModels.ErrCodeBadRequest, Message: "Form file 'file' is required",
		})
		return
	}
	if fileHeader.Size > maxAssetSize {
		c.JSON(http.StatusRequestEntityTooLarge, sharedModels.ErrorResponse{
			Code: sharedModels.ErrCodeBadRequest, Message: "Asset is too large",
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAssetSize))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	result, err := h.authoring.UploadAsset(c.Request.Context(), questID, fileHeader.Filename, contentType, data)
	if err != nil {
		assetUploadsTotal.WithLabelValues("error").Inc()
		h.handleServiceError(c, err)
		return
	}
	assetUploadsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusCreated, result)
}

// findUserByEmail - GET /admin/api/users/by-email?email=
func (h *AdminHandler) findUserByEmail(c *gin.Context) {
	user, err := h.authoring.FindUserByEmail(c.Request.Context(), c.Query("email"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
