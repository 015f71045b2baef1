package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quest-server/shared/interfaces"
	"quest-server/shared/models"

	"go.uber.org/zap"
)

// CollectResult - исход одной попытки сдачи артефакта.
type CollectResult struct {
	AlreadyCollected     bool     `json:"alreadyCollected"`
	CollectedArtefactIDs []string `json:"collectedArtefactIds"`
	Completed            bool     `json:"completed"`
	Attempts             []int32  `json:"attempts"`
}

// ProgressService - движок прогресса квеста: решает судьбу каждой сдачи
// артефакта и инкрементально обновляет персистентный прогресс.
type ProgressService interface {
	// StartQuest создает запись прогресса. Повторный старт - конфликт
	// (models.ErrQuestAlreadyStarted), прогресс не сбрасывается.
	StartQuest(ctx context.Context, userID, questID string) (*models.UserQuestProgress, error)
	// CollectArtefact обрабатывает сдачу артефакта. Возможные исходы:
	// успех, повторная сдача (флаг AlreadyCollected, без мутаций),
	// *models.OutOfSequenceError для sequential-квестов.
	CollectArtefact(ctx context.Context, userID, questID, artefactID string) (*CollectResult, error)
	// RecordHintAttempt - PATCH-семантика: инкремент глобального счетчика
	// попыток, слияние патча displayedHints, ленивый startTime.
	RecordHintAttempt(ctx context.Context, userID, questID string, displayedHints map[string]bool) (*models.UserQuestProgress, error)
	// GetProgress возвращает прогресс; при отсутствии записи - пустой
	// прогресс, а не ошибку.
	GetProgress(ctx context.Context, userID, questID string) (*models.UserQuestProgress, error)
	// DeleteProgress безусловно удаляет прогресс (отмена пользователем или
	// очистка после завершения).
	DeleteProgress(ctx context.Context, userID, questID string) error
}

type progressServiceImpl struct {
	questRepo    interfaces.QuestRepository
	progressRepo interfaces.QuestProgressRepository
	logger       *zap.Logger
}

// NewProgressService создает движок прогресса.
func NewProgressService(
	questRepo interfaces.QuestRepository,
	progressRepo interfaces.QuestProgressRepository,
	logger *zap.Logger,
) ProgressService {
	return &progressServiceImpl{
		questRepo:    questRepo,
		progressRepo: progressRepo,
		logger:       logger.Named("ProgressService"),
	}
}

// StartQuest создает чистую запись прогресса для пары (userID, questID).
func (s *progressServiceImpl) StartQuest(ctx context.Context, userID, questID string) (*models.UserQuestProgress, error) {
	log := s.logger.With(zap.String("userID", userID), zap.String("questID", questID))
	log.Info("StartQuest called")

	// Квест должен существовать до старта
	if _, err := s.questRepo.GetByID(ctx, questID); err != nil {
		log.Warn("Cannot start quest", zap.Error(err))
		return nil, err
	}

	progress := &models.UserQuestProgress{
		UserID:               userID,
		QuestID:              questID,
		CollectedArtefactIDs: []string{},
		Attempts:             []int32{},
		Completed:            false,
	}
	if err := s.progressRepo.Create(ctx, progress); err != nil {
		return nil, err
	}

	log.Info("Quest started")
	return progress, nil
}

// CollectArtefact решает, принимается ли сдача артефакта, и обновляет прогресс.
func (s *progressServiceImpl) CollectArtefact(ctx context.Context, userID, questID, artefactID string) (*CollectResult, error) {
	log := s.logger.With(
		zap.String("userID", userID),
		zap.String("questID", questID),
		zap.String("artefactID", artefactID),
	)

	quest, err := s.questRepo.GetByID(ctx, questID)
	if err != nil {
		log.Warn("Failed to load quest for collection", zap.Error(err))
		return nil, err
	}
	requiredIDs := quest.RequiredArtefactIDs()

	progress, err := s.progressRepo.GetByUserAndQuest(ctx, userID, questID)
	if err != nil {
		log.Warn("Failed to load progress for collection", zap.Error(err))
		return nil, err
	}

	// Повторная сдача уже принятого артефакта - идемпотентный успех без мутаций
	if progress.HasCollected(artefactID) {
		log.Debug("Artefact already collected, short-circuiting")
		return &CollectResult{
			AlreadyCollected:     true,
			CollectedArtefactIDs: progress.CollectedArtefactIDs,
			Completed:            progress.Completed,
			Attempts:             progress.Attempts,
		}, nil
	}

	slot := quest.ArtefactIndex(artefactID)
	if slot < 0 {
		log.Warn("Artefact does not belong to quest")
		return nil, fmt.Errorf("%w: artefact %s is not part of quest %s", models.ErrInvalidInput, artefactID, questID)
	}

	if quest.QuestType == models.QuestTypeSequential {
		expectedIndex := len(progress.CollectedArtefactIDs)
		if expectedIndex >= len(quest.Artefacts) || quest.Artefacts[expectedIndex].ArtefactID != artefactID {
			// Сдача вне очереди: инкрементируем личный счетчик попыток
			// ЭТОГО артефакта (не ожидаемого слота), растя массив нулями.
			attempts := growAttempts(progress.Attempts, slot)
			attempts[slot] = progress.AttemptsFor(slot) + 1

			if err := s.progressRepo.SaveAttempts(ctx, userID, questID, attempts); err != nil {
				log.Error("Failed to persist attempt counter", zap.Error(err))
				return nil, err
			}

			log.Info("Out-of-sequence submission",
				zap.Int("expectedIndex", expectedIndex),
				zap.Int("artefactSlot", slot),
				zap.Int32("attempts", attempts[slot]),
			)
			return nil, &models.OutOfSequenceError{ArtefactID: artefactID, Attempts: attempts[slot]}
		}
	}

	progress.CollectedArtefactIDs = append(progress.CollectedArtefactIDs, artefactID)

	// Завершение - это проверка покрытия множеств, а не последнего индекса:
	// порядок для sequential-квестов уже гарантирован выше.
	isComplete := progress.CoversAll(requiredIDs)
	progress.Completed = isComplete
	if isComplete {
		now := time.Now().UTC()
		progress.CompletedAt = &now
	} else {
		progress.CompletedAt = nil
	}

	if err := s.progressRepo.SaveCollection(ctx, progress); err != nil {
		log.Error("Failed to persist collection", zap.Error(err))
		return nil, err
	}

	log.Info("Artefact collected",
		zap.Int("collectedCount", len(progress.CollectedArtefactIDs)),
		zap.Bool("completed", isComplete),
	)
	return &CollectResult{
		CollectedArtefactIDs: progress.CollectedArtefactIDs,
		Completed:            isComplete,
		Attempts:             progress.Attempts,
	}, nil
}

// RecordHintAttempt отмечает просмотр подсказки. Глобальный счетчик намеренно
// отделен от по-слотового массива attempts (см. models.UserQuestProgress).
func (s *progressServiceImpl) RecordHintAttempt(ctx context.Context, userID, questID string, displayedHints map[string]bool) (*models.UserQuestProgress, error) {
	progress, err := s.progressRepo.RecordHintAttempt(ctx, userID, questID, displayedHints)
	if err != nil {
		s.logger.Warn("Failed to record hint attempt",
			zap.String("userID", userID), zap.String("questID", questID), zap.Error(err))
		return nil, err
	}
	return progress, nil
}

// GetProgress возвращает прогресс, подменяя отсутствие записи пустым прогрессом.
func (s *progressServiceImpl) GetProgress(ctx context.Context, userID, questID string) (*models.UserQuestProgress, error) {
	progress, err := s.progressRepo.GetByUserAndQuest(ctx, userID, questID)
	if err != nil {
		if errors.Is(err, models.ErrProgressNotFound) {
			return &models.UserQuestProgress{
				UserID:               userID,
				QuestID:              questID,
				CollectedArtefactIDs: []string{},
				Attempts:             []int32{},
			}, nil
		}
		return nil, err
	}
	return progress, nil
}

// DeleteProgress удаляет запись прогресса.
func (s *progressServiceImpl) DeleteProgress(ctx context.Context, userID, questID string) error {
	return s.progressRepo.Delete(ctx, userID, questID)
}

// growAttempts возвращает копию массива попыток длиной не меньше slot+1,
// добивая недостающие слоты нулями.
func growAttempts(attempts []int32, slot int) []int32 {
	size := len(attempts)
	if slot+1 > size {
		size = slot + 1
	}
	grown := make([]int32, size)
	copy(grown, attempts)
	return grown
}
