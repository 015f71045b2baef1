package interfaces

import (
	"context"
	"time"

	"quest-server/shared/models"
)

// QuestProgressRepository - доступ к коллекции userQuestProgress.
//
// Транзакций между документами нет намеренно: каждая операция - отдельный
// read-modify-write, как в исходной модели хранилища. Где хранилище позволяет,
// обновления выполняются одним условным выражением.
type QuestProgressRepository interface {
	// Create создаёт запись прогресса. Если запись для пары (userID, questID)
	// уже существует - models.ErrQuestAlreadyStarted: случайный повторный
	// старт не должен молча сбрасывать прогресс.
	Create(ctx context.Context, progress *models.UserQuestProgress) error
	// GetByUserAndQuest возвращает прогресс или models.ErrProgressNotFound.
	GetByUserAndQuest(ctx context.Context, userID, questID string) (*models.UserQuestProgress, error)

	// SaveCollection персистит результат принятой сдачи артефакта одной
	// записью: collectedArtefactIds, completed, completedAt и (неизменённый)
	// массив attempts.
	SaveCollection(ctx context.Context, progress *models.UserQuestProgress) error
	// SaveAttempts персистит массив по-слотовых попыток после сдачи вне
	// очереди. Конкурентные записи работают по принципу last-write-wins;
	// недосчёт попыток допустим - подсказки не граница безопасности.
	SaveAttempts(ctx context.Context, userID, questID string, attempts []int32) error
	// RecordHintAttempt атомарно инкрементирует глобальный счётчик попыток,
	// вливает патч displayedHints и выставляет startTime, если он ещё пуст.
	RecordHintAttempt(ctx context.Context, userID, questID string, displayedHints map[string]bool) (*models.UserQuestProgress, error)
	// MarkCompleted идемпотентно выставляет completed/completedAt/endTime.
	MarkCompleted(ctx context.Context, userID, questID string, at time.Time) error
	// Delete безусловно удаляет запись прогресса. Отсутствие записи - не ошибка.
	Delete(ctx context.Context, userID, questID string) error
}
