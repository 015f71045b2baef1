package messaging

import "time"

// Имена очередей клиентских обновлений.
const (
	// ClientUpdatesQueue - очередь событий для клиентского приложения
	// (пуши о завершении квестов, обновления таблицы лидеров).
	ClientUpdatesQueue = "quest_client_updates"
)

// QuestCompletedEvent публикуется координатором завершения после успешной
// записи квеста в историю пользователя. Доставка best-effort: сбой публикации
// логируется как warning и не влияет на результат завершения.
type QuestCompletedEvent struct {
	EventID     string    `json:"event_id"`
	UserID      string    `json:"user_id"`
	QuestID     string    `json:"quest_id"`
	QuestTitle  string    `json:"quest_title"`
	TimeTaken   int64     `json:"time_taken"` // секунды
	Prize       *string   `json:"prize,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}
