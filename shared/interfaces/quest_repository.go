package interfaces

import (
	"context"

	"quest-server/shared/models"
)

// QuestRepository - доступ к коллекции quests документного хранилища.
type QuestRepository interface {
	// Create сохраняет новый квест. Возвращает models.ErrInvalidInput при
	// конфликте идентификатора.
	Create(ctx context.Context, quest *models.Quest) error
	// GetByID возвращает квест по идентификатору или models.ErrQuestNotFound.
	// Кривой jsonb в определении артефактов - models.ErrCorruptData.
	GetByID(ctx context.Context, questID string) (*models.Quest, error)
	// Update перезаписывает авторские поля квеста (title, description,
	// artefacts, questType, dateRange, prize). Leaderboard не трогает.
	Update(ctx context.Context, quest *models.Quest) error
	// Delete удаляет квест целиком. Авторская операция.
	Delete(ctx context.Context, questID string) error
	// List возвращает квесты постранично в порядке создания.
	List(ctx context.Context, limit, offset int) ([]*models.Quest, error)

	// AppendLeaderboardEntry дописывает запись в таблицу лидеров квеста,
	// если записи этого пользователя там ещё нет. Возвращает false, если
	// запись уже существовала. Выполняется одним условным обновлением,
	// поэтому двойное завершение не даёт дубликата.
	AppendLeaderboardEntry(ctx context.Context, questID string, entry models.LeaderboardEntry) (bool, error)
	// GetLeaderboard возвращает текущую таблицу лидеров квеста.
	GetLeaderboard(ctx context.Context, questID string) ([]models.LeaderboardEntry, error)
}
