package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// QuestType определяет порядок сбора артефактов внутри квеста.
type QuestType string

const (
	// QuestTypeSequential - артефакты собираются строго в авторском порядке.
	QuestTypeSequential QuestType = "sequential"
	// QuestTypeConcurrent - артефакты собираются в любом порядке.
	QuestTypeConcurrent QuestType = "concurrent"
)

// HintDisplayMode определяет порядок показа подсказок для артефакта.
type HintDisplayMode string

const (
	HintDisplaySequential HintDisplayMode = "sequential"
	HintDisplayRandom     HintDisplayMode = "random"
)

// Hint - одна подсказка артефакта.
type Hint struct {
	Text string `json:"text"`
}

// QuestArtefact - артефакт в составе квеста. Порядок в слайсе Artefacts
// семантически значим для sequential-квестов.
type QuestArtefact struct {
	ArtefactID      string          `json:"artefactId"`
	Name            string          `json:"name"`
	Hints           []Hint          `json:"hints,omitempty"`
	HintDisplayMode HintDisplayMode `json:"hintDisplayMode,omitempty"`
}

// DateRange - окно активности квеста. Авторская настройка,
// движок прогресса его не проверяет.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Prize - приз за завершение квеста.
type Prize struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// LeaderboardEntry - запись в таблице лидеров квеста.
// Инвариант "не более одной записи на пользователя" обеспечивает
// координатор завершения, а не хранилище.
type LeaderboardEntry struct {
	UserID      string    `json:"userId"`
	CompletedAt time.Time `json:"completedAt"`
	TimeTaken   int64     `json:"timeTaken"` // целые секунды, >= 1
}

// Quest - определение квеста, создаётся авторским сервисом.
type Quest struct {
	ID          string             `db:"id" json:"questId"`
	Title       string             `db:"title" json:"title"`
	Description string             `db:"description" json:"description"`
	QuestType   QuestType          `db:"quest_type" json:"questType"`
	Artefacts   []QuestArtefact    `db:"artefacts" json:"artefacts"`
	DateRange   *DateRange         `db:"date_range" json:"dateRange,omitempty"`
	Prize       *Prize             `db:"prize" json:"prize,omitempty"`
	Leaderboard []LeaderboardEntry `db:"leaderboard" json:"leaderboard"`
	CreatedAt   time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `db:"updated_at" json:"updatedAt"`
}

// RequiredArtefactIDs возвращает идентификаторы всех артефактов квеста
// в авторском порядке.
func (q *Quest) RequiredArtefactIDs() []string {
	ids := make([]string, len(q.Artefacts))
	for i, a := range q.Artefacts {
		ids[i] = a.ArtefactID
	}
	return ids
}

// ArtefactIndex возвращает позицию артефакта в авторском порядке или -1.
func (q *Quest) ArtefactIndex(artefactID string) int {
	for i, a := range q.Artefacts {
		if a.ArtefactID == artefactID {
			return i
		}
	}
	return -1
}

// ParseArtefacts разбирает jsonb-колонку artefacts в типизированный слайс.
// Кривой JSON - это ErrCorruptData, а не пустой список: молчаливый фолбэк
// маскировал бы потерю данных.
func ParseArtefacts(raw []byte) ([]QuestArtefact, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: artefacts column is empty", ErrCorruptData)
	}
	var artefacts []QuestArtefact
	if err := json.Unmarshal(raw, &artefacts); err != nil {
		return nil, fmt.Errorf("%w: artefacts: %v", ErrCorruptData, err)
	}
	return artefacts, nil
}

// ParseLeaderboard разбирает jsonb-колонку leaderboard. В отличие от artefacts,
// отсутствующее или не-массивное значение трактуется как пустая таблица лидеров:
// это best-effort данные, их потеря не ломает прохождение.
func ParseLeaderboard(raw []byte) []LeaderboardEntry {
	if len(raw) == 0 {
		return nil
	}
	var entries []LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}
	return entries
}
