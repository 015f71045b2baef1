package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quest-server/quest-service/internal/messaging"
	"quest-server/shared/interfaces"
	sharedMessaging "quest-server/shared/messaging"
	"quest-server/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CompletionResult - итог завершения квеста. Warnings несут сбои best-effort
// шагов (таблица лидеров, публикация события), которые не считаются провалом
// самого завершения, но должны быть видны в логах и метриках.
type CompletionResult struct {
	TimeTaken        int64    `json:"timeTaken"` // целые секунды, >= 1
	AlreadyCompleted bool     `json:"alreadyCompleted"`
	Prize            *string  `json:"prize,omitempty"`
	Warnings         []string `json:"-"`
}

// CompletionService - координатор завершения: идемпотентно переводит квест
// со всеми собранными артефактами в историю пользователя и таблицу лидеров.
type CompletionService interface {
	// CompleteQuest безопасно перевызываем: повторное завершение возвращает
	// успех с AlreadyCompleted и не плодит дубликатов ни в таблице лидеров,
	// ни в completed_quests.
	CompleteQuest(ctx context.Context, userID, questID string) (*CompletionResult, error)
}

type completionServiceImpl struct {
	questRepo    interfaces.QuestRepository
	progressRepo interfaces.QuestProgressRepository
	userRepo     interfaces.UserRepository
	publisher    messaging.ClientUpdatePublisher // nil допустим: события не публикуются
	logger       *zap.Logger
}

// NewCompletionService создает координатор завершения.
func NewCompletionService(
	questRepo interfaces.QuestRepository,
	progressRepo interfaces.QuestProgressRepository,
	userRepo interfaces.UserRepository,
	publisher messaging.ClientUpdatePublisher,
	logger *zap.Logger,
) CompletionService {
	return &completionServiceImpl{
		questRepo:    questRepo,
		progressRepo: progressRepo,
		userRepo:     userRepo,
		publisher:    publisher,
		logger:       logger.Named("CompletionService"),
	}
}

// CompleteQuest выполняет переход (AllCollected) -> Completing -> Completed.
//
// Порядок шагов намеренный: флаг завершения в прогрессе персистится ДО
// таблицы лидеров и профиля. Упав между шагами, мы оставляем восстановимую
// несогласованность, которую чинит повторный вызов - поэтому метод обязан
// быть безопасно перевызываемым.
func (s *completionServiceImpl) CompleteQuest(ctx context.Context, userID, questID string) (*CompletionResult, error) {
	log := s.logger.With(zap.String("userID", userID), zap.String("questID", questID))
	log.Info("CompleteQuest called")

	quest, err := s.questRepo.GetByID(ctx, questID)
	if err != nil {
		log.Warn("Failed to load quest for completion", zap.Error(err))
		return nil, err
	}
	// Квест без артефактов не имеет закона завершения
	if len(quest.RequiredArtefactIDs()) == 0 {
		log.Warn("Quest has no artefacts, completion rejected")
		return nil, models.ErrQuestNotCompletable
	}

	now := time.Now().UTC()
	var prize *string
	if quest.Prize != nil {
		title := quest.Prize.Title
		prize = &title
	}

	progress, err := s.progressRepo.GetByUserAndQuest(ctx, userID, questID)
	if err != nil {
		if errors.Is(err, models.ErrProgressNotFound) {
			// Прогресс уже мог быть вычищен после удачного завершения.
			// Если квест в истории пользователя - это идемпотентный ретрай.
			if user, userErr := s.userRepo.GetByID(ctx, userID); userErr == nil && user.HasCompletedQuest(questID) {
				log.Info("Progress already cleaned up, completion previously recorded")
				return &CompletionResult{TimeTaken: 1, AlreadyCompleted: true, Prize: prize}, nil
			}
		}
		log.Warn("Failed to load progress for completion", zap.Error(err))
		return nil, err
	}

	timeTaken := computeTimeTaken(progress, now)

	// Идемпотентная отметка завершения в прогрессе - до всего остального
	if err := s.progressRepo.MarkCompleted(ctx, userID, questID, now); err != nil {
		log.Error("Failed to mark progress completed", zap.Error(err))
		return nil, err
	}

	if err := s.userRepo.EnsureExists(ctx, userID); err != nil {
		log.Error("Failed to ensure user record", zap.Error(err))
		return nil, err
	}

	result := &CompletionResult{TimeTaken: timeTaken, Prize: prize}

	// Таблица лидеров - изолированный best-effort шаг: любой сбой здесь
	// не должен помешать записи завершения в профиль пользователя.
	entry := models.LeaderboardEntry{UserID: userID, CompletedAt: now, TimeTaken: timeTaken}
	if appended, lbErr := s.questRepo.AppendLeaderboardEntry(ctx, questID, entry); lbErr != nil {
		leaderboardWriteFailures.Inc()
		log.Warn("Leaderboard update failed, continuing with completion", zap.Error(lbErr))
		result.Warnings = append(result.Warnings, fmt.Sprintf("leaderboard update failed: %v", lbErr))
	} else if !appended {
		log.Debug("User already present in leaderboard")
	}

	// Страховка от дубликатов истории: запись добавляется только если ее нет
	appended, err := s.userRepo.AppendCompletedQuest(ctx, userID, models.CompletedQuestRecord{
		QuestID:     questID,
		CompletedAt: now,
		Prize:       prize,
	})
	if err != nil {
		log.Error("Failed to append completed quest to user history", zap.Error(err))
		return nil, err
	}
	if !appended {
		log.Info("Quest already in user history, treating as idempotent retry")
		result.AlreadyCompleted = true
		return result, nil
	}

	completionsTotal.Inc()
	s.publishCompletedEvent(ctx, log, quest, userID, timeTaken, prize, now, result)

	log.Info("Quest completed", zap.Int64("timeTaken", timeTaken))
	return result, nil
}

// publishCompletedEvent - best-effort уведомление клиентского приложения.
func (s *completionServiceImpl) publishCompletedEvent(
	ctx context.Context,
	log *zap.Logger,
	quest *models.Quest,
	userID string,
	timeTaken int64,
	prize *string,
	completedAt time.Time,
	result *CompletionResult,
) {
	if s.publisher == nil {
		return
	}
	event := sharedMessaging.QuestCompletedEvent{
		EventID:     uuid.NewString(),
		UserID:      userID,
		QuestID:     quest.ID,
		QuestTitle:  quest.Title,
		TimeTaken:   timeTaken,
		Prize:       prize,
		CompletedAt: completedAt,
	}
	if err := s.publisher.PublishQuestCompleted(ctx, event); err != nil {
		log.Warn("Failed to publish quest completed event", zap.Error(err))
		result.Warnings = append(result.Warnings, fmt.Sprintf("event publish failed: %v", err))
	}
}

// computeTimeTaken считает время прохождения в целых секундах.
// База - startTime, иначе время создания прогресса, иначе текущий момент.
// Значения <= 0 (скачки часов, завершение в тот же миг) поднимаются до 1.
func computeTimeTaken(progress *models.UserQuestProgress, now time.Time) int64 {
	start := now
	switch {
	case progress.StartTime != nil:
		start = *progress.StartTime
	case !progress.CreatedAt.IsZero():
		start = progress.CreatedAt
	}
	taken := int64(now.Sub(start).Seconds())
	if taken <= 0 {
		taken = 1
	}
	return taken
}
