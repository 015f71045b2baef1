package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quest-server/shared/interfaces"
	"quest-server/shared/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Compile-time check to ensure pgUserRepository implements UserRepository
var _ interfaces.UserRepository = (*pgUserRepository)(nil)

type pgUserRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgUserRepository создает новый экземпляр репозитория профилей.
func NewPgUserRepository(pool *pgxpool.Pool, logger *zap.Logger) interfaces.UserRepository {
	return &pgUserRepository{
		pool:   pool,
		logger: logger.Named("UserRepository"),
	}
}

const userColumns = `id, email, display_name, profile_image, completed_quests, artefacts_collected, created_at, updated_at`

func (r *pgUserRepository) scanUser(row pgx.Row) (*models.UserData, error) {
	var (
		user          models.UserData
		rawCompleted  []byte
		rawArtefacts  []byte
	)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.ProfileImage,
		&rawCompleted,
		&rawArtefacts,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(rawCompleted) > 0 {
		if err := json.Unmarshal(rawCompleted, &user.CompletedQuests); err != nil {
			return nil, fmt.Errorf("user %s: %w: completed_quests: %v", user.ID, models.ErrCorruptData, err)
		}
	}
	if len(rawArtefacts) > 0 {
		if err := json.Unmarshal(rawArtefacts, &user.ArtefactsCollected); err != nil {
			return nil, fmt.Errorf("user %s: %w: artefacts_collected: %v", user.ID, models.ErrCorruptData, err)
		}
	}
	return &user, nil
}

// GetByID возвращает профиль пользователя.
func (r *pgUserRepository) GetByID(ctx context.Context, userID string) (*models.UserData, error) {
	query := `SELECT ` + userColumns + ` FROM user_data WHERE id = $1`

	user, err := r.scanUser(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("User not found", zap.String("userID", userID))
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Error getting user", zap.String("userID", userID), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// EnsureExists лениво создает пустой профиль. Повторные вызовы - no-op.
func (r *pgUserRepository) EnsureExists(ctx context.Context, userID string) error {
	query := `INSERT INTO user_data (id, email, display_name, profile_image, completed_quests, artefacts_collected, created_at, updated_at)
              VALUES ($1, '', '', '', '[]'::jsonb, '[]'::jsonb, $2, $2)
              ON CONFLICT (id) DO NOTHING`
	_, err := r.pool.Exec(ctx, query, userID, time.Now().UTC())
	if err != nil {
		r.logger.Error("Error ensuring user exists", zap.String("userID", userID), zap.Error(err))
		return err
	}
	return nil
}

// AppendCompletedQuest дописывает запись в историю завершенных квестов одним
// условным обновлением: запись добавляется только если квеста в истории еще
// нет. Гарантирует не более одной записи на (userID, questID) при любых ретраях.
func (r *pgUserRepository) AppendCompletedQuest(ctx context.Context, userID string, record models.CompletedQuestRecord) (bool, error) {
	recordJSON, err := json.Marshal(record)
	if err != nil {
		return false, fmt.Errorf("failed to marshal completed quest record: %w", err)
	}

	query := `UPDATE user_data SET
              completed_quests = COALESCE(completed_quests, '[]'::jsonb) || $2::jsonb,
              updated_at = $3
              WHERE id = $1
                AND NOT EXISTS (
                    SELECT 1 FROM jsonb_array_elements(COALESCE(completed_quests, '[]'::jsonb)) AS rec
                    WHERE rec->>'questId' = $4
                )`
	result, err := r.pool.Exec(ctx, query, userID, recordJSON, time.Now().UTC(), record.QuestID)
	if err != nil {
		r.logger.Error("Error appending completed quest",
			zap.String("userID", userID), zap.String("questID", record.QuestID), zap.Error(err))
		return false, err
	}
	if result.RowsAffected() == 0 {
		var exists bool
		if checkErr := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM user_data WHERE id = $1)`, userID).Scan(&exists); checkErr != nil {
			return false, checkErr
		}
		if !exists {
			return false, models.ErrUserNotFound
		}
		r.logger.Debug("Completed quest already recorded, skipping",
			zap.String("userID", userID), zap.String("questID", record.QuestID))
		return false, nil
	}
	return true, nil
}

// FindByEmail ищет профиль по email. Линейный скан - авторская операция,
// в горячем пути прохождения не используется.
func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*models.UserData, error) {
	query := `SELECT ` + userColumns + ` FROM user_data WHERE email = $1 LIMIT 1`

	user, err := r.scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		r.logger.Error("Error finding user by email", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	return user, nil
}

// --- Database Schema ---
// Ensure the following table exists in your PostgreSQL database.
// It's recommended to use a migration tool (e.g., goose, migrate) to manage schema changes.
/*
-- Migration Up
CREATE TABLE IF NOT EXISTS user_data (
    id VARCHAR(255) PRIMARY KEY,
    email TEXT NOT NULL DEFAULT '',
    display_name TEXT NOT NULL DEFAULT '',
    profile_image TEXT NOT NULL DEFAULT '',
    completed_quests JSONB NOT NULL DEFAULT '[]'::jsonb,
    artefacts_collected JSONB NOT NULL DEFAULT '[]'::jsonb,
    created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_user_data_email ON user_data (email);

-- Migration Down
DROP INDEX IF EXISTS idx_user_data_email;
DROP TABLE IF EXISTS user_data;
*/
