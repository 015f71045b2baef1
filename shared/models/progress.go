package models

import "time"

// UserQuestProgress - прогресс пользователя по квесту, ключ (userID, questID).
//
// Здесь намеренно живут ДВА независимых счётчика попыток:
//   - Attempts: массив по слотам артефактов sequential-квеста, растёт при
//     попытках сдать артефакт вне очереди; от него зависит выбор подсказки;
//   - HintAttempts: глобальный счётчик PATCH-запросов "пользователь смотрел
//     подсказку", с ним же связан ленивый старт таймера.
//
// Раздвоение сохранено осознанно, чтобы UI-семантика обоих путей не менялась.
type UserQuestProgress struct {
	UserID               string          `db:"user_id" json:"userId"`
	QuestID              string          `db:"quest_id" json:"questId"`
	CollectedArtefactIDs []string        `db:"collected_artefact_ids" json:"collectedArtefactIds"`
	Attempts             []int32         `db:"attempts" json:"attempts"`
	HintAttempts         int32           `db:"hint_attempts" json:"hintAttempts"`
	DisplayedHints       map[string]bool `db:"displayed_hints" json:"displayedHints,omitempty"`
	Completed            bool            `db:"completed" json:"completed"`
	StartTime            *time.Time      `db:"start_time" json:"startTime,omitempty"`
	EndTime              *time.Time      `db:"end_time" json:"endTime,omitempty"`
	CompletedAt          *time.Time      `db:"completed_at" json:"completedAt,omitempty"`
	CreatedAt            time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time       `db:"updated_at" json:"updatedAt"`
}

// HasCollected сообщает, принят ли уже артефакт.
func (p *UserQuestProgress) HasCollected(artefactID string) bool {
	for _, id := range p.CollectedArtefactIDs {
		if id == artefactID {
			return true
		}
	}
	return false
}

// AttemptsFor возвращает счётчик попыток для слота артефакта.
// Слоты за пределами массива ещё не трогали - для них ноль.
func (p *UserQuestProgress) AttemptsFor(slot int) int32 {
	if slot < 0 || slot >= len(p.Attempts) {
		return 0
	}
	return p.Attempts[slot]
}

// CoversAll проверяет закон завершения: каждый требуемый артефакт присутствует
// в собранных. Проверка по включению множеств, порядок не важен даже для
// sequential-квестов - порядок уже гарантирован на этапе приёма.
func (p *UserQuestProgress) CoversAll(requiredIDs []string) bool {
	if len(requiredIDs) == 0 {
		return false
	}
	collected := make(map[string]struct{}, len(p.CollectedArtefactIDs))
	for _, id := range p.CollectedArtefactIDs {
		collected[id] = struct{}{}
	}
	for _, id := range requiredIDs {
		if _, ok := collected[id]; !ok {
			return false
		}
	}
	return true
}
