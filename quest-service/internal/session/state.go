package session

import (
	"time"

	"quest-server/shared/models"
)

// State - сессионное состояние клиента: не более одного активного квеста
// на пользователя, плюс локальный кэш серверного прогресса. Переходы
// none -> active -> none; хранится в Redis с TTL.
type State struct {
	QuestID              string           `json:"questId"`
	QuestTitle           string           `json:"questTitle"`
	QuestType            models.QuestType `json:"questType"`
	CollectedArtefactIDs []string         `json:"collectedArtefactIds"`
	Attempts             []int32          `json:"attempts"`
	Completed            bool             `json:"completed"`
	AcceptedAt           time.Time        `json:"acceptedAt"`
	UpdatedAt            time.Time        `json:"updatedAt"`
}

// applyProgress обновляет локальный кэш из серверного прогресса.
func (s *State) applyProgress(progress *models.UserQuestProgress) {
	s.CollectedArtefactIDs = progress.CollectedArtefactIDs
	s.Attempts = progress.Attempts
	s.Completed = progress.Completed
	s.UpdatedAt = time.Now().UTC()
}

// nextUncollectedIndex возвращает индекс первого несобранного артефакта
// в авторском порядке или -1, если все собраны.
func nextUncollectedIndex(quest *models.Quest, collected []string) int {
	collectedSet := make(map[string]struct{}, len(collected))
	for _, id := range collected {
		collectedSet[id] = struct{}{}
	}
	for i, a := range quest.Artefacts {
		if _, ok := collectedSet[a.ArtefactID]; !ok {
			return i
		}
	}
	return -1
}

// IsNextSequential - чистая функция без I/O: для concurrent-квестов всегда
// true, для sequential - true только для первого несобранного артефакта
// в авторском порядке.
func IsNextSequential(quest *models.Quest, collected []string, artefactID string) bool {
	if quest.QuestType != models.QuestTypeSequential {
		return true
	}
	next := nextUncollectedIndex(quest, collected)
	if next < 0 {
		return false
	}
	return quest.Artefacts[next].ArtefactID == artefactID
}

// NextHint - чистая функция: подсказка для следующего несобранного артефакта
// sequential-квеста. Счетчик попыток прижимается к последней подсказке, чтобы
// повторные неудачи не вышли за границу массива. Для concurrent-квестов и
// артефактов без подсказок - nil.
func NextHint(quest *models.Quest, collected []string, attempts []int32) *string {
	if quest.QuestType != models.QuestTypeSequential {
		return nil
	}
	next := nextUncollectedIndex(quest, collected)
	if next < 0 {
		return nil
	}
	hints := quest.Artefacts[next].Hints
	if len(hints) == 0 {
		return nil
	}

	idx := 0
	if next < len(attempts) {
		idx = int(attempts[next])
	}
	if idx > len(hints)-1 {
		idx = len(hints) - 1
	}
	return &hints[idx].Text
}
