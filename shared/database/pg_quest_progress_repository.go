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

// Compile-time check to ensure pgQuestProgressRepository implements QuestProgressRepository
var _ interfaces.QuestProgressRepository = (*pgQuestProgressRepository)(nil)

type pgQuestProgressRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPgQuestProgressRepository создает новый экземпляр репозитория прогресса.
func NewPgQuestProgressRepository(pool *pgxpool.Pool, logger *zap.Logger) interfaces.QuestProgressRepository {
	return &pgQuestProgressRepository{
		pool:   pool,
		logger: logger.Named("QuestProgressRepository"),
	}
}

const progressColumns = `user_id, quest_id, collected_artefact_ids, attempts, hint_attempts, displayed_hints, completed, start_time, end_time, completed_at, created_at, updated_at`

func (r *pgQuestProgressRepository) scanProgress(row pgx.Row) (*models.UserQuestProgress, error) {
	var (
		progress          models.UserQuestProgress
		rawDisplayedHints []byte
	)
	err := row.Scan(
		&progress.UserID,
		&progress.QuestID,
		&progress.CollectedArtefactIDs,
		&progress.Attempts,
		&progress.HintAttempts,
		&rawDisplayedHints,
		&progress.Completed,
		&progress.StartTime,
		&progress.EndTime,
		&progress.CompletedAt,
		&progress.CreatedAt,
		&progress.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(rawDisplayedHints) > 0 {
		if err := json.Unmarshal(rawDisplayedHints, &progress.DisplayedHints); err != nil {
			return nil, fmt.Errorf("progress (%s, %s): %w: displayed_hints: %v",
				progress.UserID, progress.QuestID, models.ErrCorruptData, err)
		}
	}
	return &progress, nil
}

// Create создает запись прогресса. Существующая запись - это конфликт
// (ErrQuestAlreadyStarted), а не повод для тихой перезаписи.
func (r *pgQuestProgressRepository) Create(ctx context.Context, progress *models.UserQuestProgress) error {
	now := time.Now().UTC()
	progress.CreatedAt = now
	progress.UpdatedAt = now

	displayedHints, err := marshalDisplayedHints(progress.DisplayedHints)
	if err != nil {
		return err
	}

	query := `INSERT INTO user_quest_progress
              (user_id, quest_id, collected_artefact_ids, attempts, hint_attempts, displayed_hints, completed, start_time, end_time, completed_at, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`
	_, err = r.pool.Exec(ctx, query,
		progress.UserID, progress.QuestID,
		progress.CollectedArtefactIDs, progress.Attempts, progress.HintAttempts, displayedHints,
		progress.Completed, progress.StartTime, progress.EndTime, progress.CompletedAt, now,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.logger.Warn("Quest progress already exists",
				zap.String("userID", progress.UserID), zap.String("questID", progress.QuestID))
			return models.ErrQuestAlreadyStarted
		}
		r.logger.Error("Error creating quest progress",
			zap.String("userID", progress.UserID), zap.String("questID", progress.QuestID), zap.Error(err))
		return err
	}
	r.logger.Debug("Quest progress created",
		zap.String("userID", progress.UserID), zap.String("questID", progress.QuestID))
	return nil
}

// GetByUserAndQuest возвращает прогресс или ErrProgressNotFound.
func (r *pgQuestProgressRepository) GetByUserAndQuest(ctx context.Context, userID, questID string) (*models.UserQuestProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM user_quest_progress WHERE user_id = $1 AND quest_id = $2`

	progress, err := r.scanProgress(r.pool.QueryRow(ctx, query, userID, questID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Quest progress not found",
				zap.String("userID", userID), zap.String("questID", questID))
			return nil, models.ErrProgressNotFound
		}
		r.logger.Error("Error getting quest progress",
			zap.String("userID", userID), zap.String("questID", questID), zap.Error(err))
		return nil, err
	}
	return progress, nil
}

// SaveCollection персистит принятую сдачу артефакта одной записью:
// collectedArtefactIds, completed, completedAt и массив attempts вместе.
func (r *pgQuestProgressRepository) SaveCollection(ctx context.Context, progress *models.UserQuestProgress) error {
	query := `UPDATE user_quest_progress SET
              collected_artefact_ids = $3, attempts = $4, completed = $5, completed_at = $6, updated_at = $7
              WHERE user_id = $1 AND quest_id = $2`
	result, err := r.pool.Exec(ctx, query,
		progress.UserID, progress.QuestID,
		progress.CollectedArtefactIDs, progress.Attempts, progress.Completed, progress.CompletedAt,
		time.Now().UTC(),
	)
	if err != nil {
		r.logger.Error("Error saving collection progress",
			zap.String("userID", progress.UserID), zap.String("questID", progress.QuestID), zap.Error(err))
		return err
	}
	if result.RowsAffected() == 0 {
		return models.ErrProgressNotFound
	}
	return nil
}

// SaveAttempts персистит массив по-слотовых попыток.
// Конкурентные сдачи вне очереди перезаписывают друг друга (last-write-wins):
// недосчет попыток допустим, подсказки - не граница безопасности.
func (r *pgQuestProgressRepository) SaveAttempts(ctx context.Context, userID, questID string, attempts []int32) error {
	query := `UPDATE user_quest_progress SET attempts = $3, updated_at = $4
              WHERE user_id = $1 AND quest_id = $2`
	result, err := r.pool.Exec(ctx, query, userID, questID, attempts, time.Now().UTC())
	if err != nil {
		r.logger.Error("Error saving attempts",
			zap.String("userID", userID), zap.String("questID", questID), zap.Error(err))
		return err
	}
	if result.RowsAffected() == 0 {
		return models.ErrProgressNotFound
	}
	return nil
}

// RecordHintAttempt атомарно инкрементирует глобальный счетчик попыток,
// вливает патч displayedHints и лениво выставляет startTime.
// Этот счетчик независим от по-слотового массива attempts.
func (r *pgQuestProgressRepository) RecordHintAttempt(ctx context.Context, userID, questID string, displayedHints map[string]bool) (*models.UserQuestProgress, error) {
	patch, err := marshalDisplayedHints(displayedHints)
	if err != nil {
		return nil, err
	}

	query := `UPDATE user_quest_progress SET
              hint_attempts = hint_attempts + 1,
              displayed_hints = COALESCE(displayed_hints, '{}'::jsonb) || COALESCE($3::jsonb, '{}'::jsonb),
              start_time = COALESCE(start_time, $4),
              updated_at = $4
              WHERE user_id = $1 AND quest_id = $2
              RETURNING ` + progressColumns

	progress, err := r.scanProgress(r.pool.QueryRow(ctx, query, userID, questID, patch, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrProgressNotFound
		}
		r.logger.Error("Error recording hint attempt",
			zap.String("userID", userID), zap.String("questID", questID), zap.Error(err))
		return nil, err
	}
	return progress, nil
}

// MarkCompleted идемпотентно выставляет завершение. Повторный вызов безопасен.
func (r *pgQuestProgressRepository) MarkCompleted(ctx context.Context, userID, questID string, at time.Time) error {
	query := `UPDATE user_quest_progress SET
              completed = TRUE,
              completed_at = COALESCE(completed_at, $3),
              end_time = COALESCE(end_time, $3),
              updated_at = $3
              WHERE user_id = $1 AND quest_id = $2`
	result, err := r.pool.Exec(ctx, query, userID, questID, at)
	if err != nil {
		r.logger.Error("Error marking progress completed",
			zap.String("userID", userID), zap.String("questID", questID), zap.Error(err))
		return err
	}
	if result.RowsAffected() == 0 {
		return models.ErrProgressNotFound
	}
	return nil
}

// Delete безусловно удаляет запись прогресса.
func (r *pgQuestProgressRepository) Delete(ctx context.Context, userID, questID string) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM user_quest_progress WHERE user_id = $1 AND quest_id = $2`, userID, questID)
	if err != nil {
		r.logger.Error("Error deleting quest progress",
			zap.String("userID", userID), zap.String("questID", questID), zap.Error(err))
		return err
	}
	if result.RowsAffected() == 0 {
		// Отсутствие записи при удалении - не ошибка
		r.logger.Debug("Quest progress not found for deletion, operation considered successful",
			zap.String("userID", userID), zap.String("questID", questID))
	}
	return nil
}

func marshalDisplayedHints(hints map[string]bool) ([]byte, error) {
	if hints == nil {
		return nil, nil
	}
	data, err := json.Marshal(hints)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal displayed hints: %w", err)
	}
	return data, nil
}

// --- Database Schema ---
// Ensure the following table exists in your PostgreSQL database.
// It's recommended to use a migration tool (e.g., goose, migrate) to manage schema changes.
/*
-- Migration Up
CREATE TABLE IF NOT EXISTS user_quest_progress (
    user_id VARCHAR(255) NOT NULL,
    quest_id VARCHAR(255) NOT NULL,
    collected_artefact_ids TEXT[] NOT NULL DEFAULT '{}',
    attempts INTEGER[] NOT NULL DEFAULT '{}',
    hint_attempts INTEGER NOT NULL DEFAULT 0,
    displayed_hints JSONB,
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    start_time TIMESTAMPTZ,
    end_time TIMESTAMPTZ,
    completed_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (user_id, quest_id)
);

-- Migration Down
DROP TABLE IF EXISTS user_quest_progress;
*/
