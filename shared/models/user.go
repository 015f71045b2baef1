package models

import "time"

// CompletedQuestRecord - запись в истории завершённых квестов пользователя.
// На пару (userID, questID) существует не более одной записи независимо от
// ретраев - это проверяет координатор завершения перед добавлением.
type CompletedQuestRecord struct {
	QuestID     string    `json:"questId"`
	CompletedAt time.Time `json:"completedAt"`
	Prize       *string   `json:"prize"`
}

// CollectedArtefactRecord - вспомогательная история собранных артефактов.
// Заполняется авторской стороной, движки прогресса её не трогают.
type CollectedArtefactRecord struct {
	ArtefactID  string    `json:"artefactId"`
	QuestID     string    `json:"questId"`
	CollectedAt time.Time `json:"collectedAt"`
}

// UserData - профиль пользователя клиентского приложения.
// Создаётся лениво при первом завершении квеста, если его ещё нет.
type UserData struct {
	ID                 string                    `db:"id" json:"userId"`
	Email              string                    `db:"email" json:"email"`
	DisplayName        string                    `db:"display_name" json:"displayName"`
	ProfileImage       string                    `db:"profile_image" json:"profileImage"`
	CompletedQuests    []CompletedQuestRecord    `db:"completed_quests" json:"completed_quests"`
	ArtefactsCollected []CollectedArtefactRecord `db:"artefacts_collected" json:"artefacts_collected"`
	CreatedAt          time.Time                 `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time                 `db:"updated_at" json:"updatedAt"`
}

// HasCompletedQuest проверяет, есть ли уже запись о завершении квеста.
func (u *UserData) HasCompletedQuest(questID string) bool {
	for _, rec := range u.CompletedQuests {
		if rec.QuestID == questID {
			return true
		}
	}
	return false
}
