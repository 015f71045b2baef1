package interfaces

import (
	"context"

	"quest-server/shared/models"
)

// UserRepository - доступ к коллекции userData.
type UserRepository interface {
	// GetByID возвращает профиль пользователя или models.ErrUserNotFound.
	GetByID(ctx context.Context, userID string) (*models.UserData, error)
	// EnsureExists создаёт пустой профиль, если его ещё нет. Идемпотентна.
	EnsureExists(ctx context.Context, userID string) error
	// AppendCompletedQuest дописывает запись в completed_quests, если записи
	// для этого квеста там ещё нет, и обновляет updatedAt. Возвращает false,
	// если запись уже существовала.
	AppendCompletedQuest(ctx context.Context, userID string, record models.CompletedQuestRecord) (bool, error)
	// FindByEmail ищет профиль по email линейным сканом. Авторская операция,
	// движками прогресса не используется.
	FindByEmail(ctx context.Context, email string) (*models.UserData, error)
}
