package handler

import (
	"time"

	sharedModels "quest-server/shared/models"
)

// collectRequest - тело сдачи артефакта через прямой API.
type collectRequest struct {
	ArtefactID string `json:"artefactId"`
}

// patchProgressRequest - частичное обновление прогресса: отметка показа
// подсказки. Счетчик hintAttempts инкрементируется сервером, клиент шлет
// только карту показанных подсказок.
type patchProgressRequest struct {
	DisplayedHints map[string]bool `json:"displayedHints"`
}

// progressResponse - прогресс квеста в формате клиентского приложения.
type progressResponse struct {
	UserID               string          `json:"userId"`
	QuestID              string          `json:"questId"`
	CollectedArtefactIDs []string        `json:"collectedArtefactIds"`
	Attempts             []int32         `json:"attempts"`
	HintAttempts         int32           `json:"hintAttempts"`
	DisplayedHints       map[string]bool `json:"displayedHints,omitempty"`
	Completed            bool            `json:"completed"`
	StartTime            *time.Time      `json:"startTime,omitempty"`
	CompletedAt          *time.Time      `json:"completedAt,omitempty"`
}

func toProgressResponse(p *sharedModels.UserQuestProgress) progressResponse {
	return progressResponse{
		UserID:               p.UserID,
		QuestID:              p.QuestID,
		CollectedArtefactIDs: p.CollectedArtefactIDs,
		Attempts:             p.Attempts,
		HintAttempts:         p.HintAttempts,
		DisplayedHints:       p.DisplayedHints,
		Completed:            p.Completed,
		StartTime:            p.StartTime,
		CompletedAt:          p.CompletedAt,
	}
}

// outOfSequenceResponse расширяет стандартную ошибку счетчиком попыток,
// чтобы клиент мог выбрать подсказку без дополнительного запроса.
type outOfSequenceResponse struct {
	sharedModels.ErrorResponse
	ArtefactID string `json:"artefactId"`
	Attempts   int32  `json:"attempts"`
}
