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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Compile-time check to ensure pgQuestRepository implements QuestRepository
var _ interfaces.QuestRepository = (*pgQuestRepository)(nil)

type pgQuestRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgQuestRepository создает новый экземпляр репозитория квестов.
func NewPgQuestRepository(pool *pgxpool.Pool, logger *zap.Logger) interfaces.QuestRepository {
	return &pgQuestRepository{
		pool:   pool,
		logger: logger.Named("QuestRepository"),
	}
}

const questColumns = `id, title, description, quest_type, artefacts, date_range, prize, leaderboard, created_at, updated_at`

// scanQuest разбирает строку квеста. Jsonb-поля парсятся здесь один раз,
// на границе хранилища: кривое определение артефактов - ErrCorruptData,
// а не пустой список.
func (r *pgQuestRepository) scanQuest(row pgx.Row) (*models.Quest, error) {
	var (
		quest          models.Quest
		rawArtefacts   []byte
		rawDateRange   []byte
		rawPrize       []byte
		rawLeaderboard []byte
	)
	err := row.Scan(
		&quest.ID,
		&quest.Title,
		&quest.Description,
		&quest.QuestType,
		&rawArtefacts,
		&rawDateRange,
		&rawPrize,
		&rawLeaderboard,
		&quest.CreatedAt,
		&quest.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	quest.Artefacts, err = models.ParseArtefacts(rawArtefacts)
	if err != nil {
		return nil, fmt.Errorf("quest %s: %w", quest.ID, err)
	}
	if len(rawDateRange) > 0 {
		var dr models.DateRange
		if err := json.Unmarshal(rawDateRange, &dr); err != nil {
			return nil, fmt.Errorf("quest %s: %w: date_range: %v", quest.ID, models.ErrCorruptData, err)
		}
		quest.DateRange = &dr
	}
	if len(rawPrize) > 0 {
		var prize models.Prize
		if err := json.Unmarshal(rawPrize, &prize); err != nil {
			return nil, fmt.Errorf("quest %s: %w: prize: %v", quest.ID, models.ErrCorruptData, err)
		}
		quest.Prize = &prize
	}
	// Таблица лидеров - best-effort данные, не-массив трактуем как пустую
	quest.Leaderboard = models.ParseLeaderboard(rawLeaderboard)

	return &quest, nil
}

// Create сохраняет новый квест.
func (r *pgQuestRepository) Create(ctx context.Context, quest *models.Quest) error {
	artefacts, dateRange, prize, err := marshalQuestFields(quest)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	quest.CreatedAt = now
	quest.UpdatedAt = now

	query := `INSERT INTO quests (id, title, description, quest_type, artefacts, date_range, prize, leaderboard, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, '[]'::jsonb, $8, $8)`
	_, err = r.pool.Exec(ctx, query,
		quest.ID, quest.Title, quest.Description, quest.QuestType, artefacts, dateRange, prize, now,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.logger.Warn("Quest already exists", zap.String("questID", quest.ID))
			return fmt.Errorf("%w: quest %s already exists", models.ErrInvalidInput, quest.ID)
		}
		r.logger.Error("Error creating quest", zap.String("questID", quest.ID), zap.Error(err))
		return err
	}
	r.logger.Debug("Quest created", zap.String("questID", quest.ID))
	return nil
}

// GetByID возвращает квест по идентификатору.
func (r *pgQuestRepository) GetByID(ctx context.Context, questID string) (*models.Quest, error) {
	query := `SELECT ` + questColumns + ` FROM quests WHERE id = $1`

	quest, err := r.scanQuest(r.pool.QueryRow(ctx, query, questID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("Quest not found", zap.String("questID", questID))
			return nil, models.ErrQuestNotFound
		}
		if errors.Is(err, models.ErrCorruptData) {
			r.logger.Error("Corrupt quest definition in storage", zap.String("questID", questID), zap.Error(err))
			return nil, err
		}
		r.logger.Error("Error getting quest", zap.String("questID", questID), zap.Error(err))
		return nil, err
	}
	return quest, nil
}

// Update перезаписывает авторские поля квеста. Leaderboard не трогает.
func (r *pgQuestRepository) Update(ctx context.Context, quest *models.Quest) error {
	artefacts, dateRange, prize, err := marshalQuestFields(quest)
	if err != nil {
		return err
	}

	query := `UPDATE quests SET
              title = $2, description = $3, quest_type = $4,
              artefacts = $5, date_range = $6, prize = $7, updated_at = $8
              WHERE id = $1`
	result, err := r.pool.Exec(ctx, query,
		quest.ID, quest.Title, quest.Description, quest.QuestType, artefacts, dateRange, prize, time.Now().UTC(),
	)
	if err != nil {
		r.logger.Error("Error updating quest", zap.String("questID", quest.ID), zap.Error(err))
		return err
	}
	if result.RowsAffected() == 0 {
		return models.ErrQuestNotFound
	}
	r.logger.Debug("Quest updated", zap.String("questID", quest.ID))
	return nil
}

// Delete удаляет квест целиком.
func (r *pgQuestRepository) Delete(ctx context.Context, questID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM quests WHERE id = $1`, questID)
	if err != nil {
		r.logger.Error("Error deleting quest", zap.String("questID", questID), zap.Error(err))
		return err
	}
	if result.RowsAffected() == 0 {
		return models.ErrQuestNotFound
	}
	return nil
}

// List возвращает квесты постранично в порядке создания.
func (r *pgQuestRepository) List(ctx context.Context, limit, offset int) ([]*models.Quest, error) {
	query := `SELECT ` + questColumns + ` FROM quests ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Error listing quests", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var quests []*models.Quest
	for rows.Next() {
		quest, err := r.scanQuest(rows)
		if err != nil {
			r.logger.Error("Error scanning quest row", zap.Error(err))
			return nil, err
		}
		quests = append(quests, quest)
	}
	return quests, rows.Err()
}

// AppendLeaderboardEntry дописывает запись в таблицу лидеров одним условным
// обновлением: запись добавляется только если userId там еще не встречается.
// Не-массивное значение leaderboard (след ручной правки данных) заменяется
// пустым массивом перед дозаписью.
func (r *pgQuestRepository) AppendLeaderboardEntry(ctx context.Context, questID string, entry models.LeaderboardEntry) (bool, error) {
	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return false, fmt.Errorf("failed to marshal leaderboard entry: %w", err)
	}

	query := `UPDATE quests SET
              leaderboard = (CASE WHEN jsonb_typeof(leaderboard) = 'array' THEN leaderboard ELSE '[]'::jsonb END) || $2::jsonb,
              updated_at = $3
              WHERE id = $1
                AND NOT EXISTS (
                    SELECT 1 FROM jsonb_array_elements(
                        CASE WHEN jsonb_typeof(leaderboard) = 'array' THEN leaderboard ELSE '[]'::jsonb END
                    ) AS entry
                    WHERE entry->>'userId' = $4
                )`
	result, err := r.pool.Exec(ctx, query, questID, entryJSON, time.Now().UTC(), entry.UserID)
	if err != nil {
		r.logger.Error("Error appending leaderboard entry",
			zap.String("questID", questID), zap.String("userID", entry.UserID), zap.Error(err))
		return false, err
	}
	if result.RowsAffected() == 0 {
		// Либо квест пропал, либо пользователь уже в таблице. Различаем.
		var exists bool
		if checkErr := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM quests WHERE id = $1)`, questID).Scan(&exists); checkErr != nil {
			return false, checkErr
		}
		if !exists {
			return false, models.ErrQuestNotFound
		}
		r.logger.Debug("Leaderboard entry already present, skipping",
			zap.String("questID", questID), zap.String("userID", entry.UserID))
		return false, nil
	}
	return true, nil
}

// GetLeaderboard возвращает текущую таблицу лидеров квеста.
func (r *pgQuestRepository) GetLeaderboard(ctx context.Context, questID string) ([]models.LeaderboardEntry, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, `SELECT leaderboard FROM quests WHERE id = $1`, questID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrQuestNotFound
		}
		r.logger.Error("Error getting leaderboard", zap.String("questID", questID), zap.Error(err))
		return nil, err
	}
	return models.ParseLeaderboard(raw), nil
}

func marshalQuestFields(quest *models.Quest) (artefacts, dateRange, prize []byte, err error) {
	artefacts, err = json.Marshal(quest.Artefacts)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal artefacts: %w", err)
	}
	if quest.DateRange != nil {
		dateRange, err = json.Marshal(quest.DateRange)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal date range: %w", err)
		}
	}
	if quest.Prize != nil {
		prize, err = json.Marshal(quest.Prize)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to marshal prize: %w", err)
		}
	}
	return artefacts, dateRange, prize, nil
}

// --- Database Schema ---
// Ensure the following table exists in your PostgreSQL database.
// It's recommended to use a migration tool (e.g., goose, migrate) to manage schema changes.
/*
-- Migration Up
CREATE TABLE IF NOT EXISTS quests (
    id VARCHAR(255) PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    quest_type VARCHAR(32) NOT NULL,
    artefacts JSONB NOT NULL,
    date_range JSONB,
    prize JSONB,
    leaderboard JSONB NOT NULL DEFAULT '[]'::jsonb,
    created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
);

-- Migration Down
DROP TABLE IF EXISTS quests;
*/
