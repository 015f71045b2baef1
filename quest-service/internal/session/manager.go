package session

import (
	"context"
	"errors"
	"time"

	"quest-server/quest-service/internal/service"
	"quest-server/shared/interfaces"
	"quest-server/shared/models"

	"go.uber.org/zap"
)

// SubmitResult - исход сдачи артефакта через сессию, дополненный данными
// для немедленной обратной связи (подсказка, приз) без второго запроса.
type SubmitResult struct {
	Accepted             bool     `json:"accepted"`
	AlreadyCollected     bool     `json:"alreadyCollected,omitempty"`
	CollectedArtefactIDs []string `json:"collectedArtefactIds"`
	QuestCompleted       bool     `json:"questCompleted"`
	Hint                 *string  `json:"hint,omitempty"`
	Attempts             int32    `json:"attempts,omitempty"`
	TimeTaken            int64    `json:"timeTaken,omitempty"`
	Prize                *string  `json:"prize,omitempty"`
}

// Manager - сессионный оркестратор клиентского прохождения: оборачивает
// движок прогресса и координатор завершения, держит локальный кэш прогресса
// и вычисляет подсказки без дополнительных раундтрипов.
type Manager struct {
	progress   service.ProgressService
	completion service.CompletionService
	questRepo  interfaces.QuestRepository
	store      Store
	logger     *zap.Logger
}

// NewManager создает сессионный менеджер.
func NewManager(
	progress service.ProgressService,
	completion service.CompletionService,
	questRepo interfaces.QuestRepository,
	store Store,
	logger *zap.Logger,
) *Manager {
	return &Manager{
		progress:   progress,
		completion: completion,
		questRepo:  questRepo,
		store:      store,
		logger:     logger.Named("SessionManager"),
	}
}

// AcceptQuest делает квест активным в сессии. Конфликт "квест уже начат" -
// НЕ ошибка, а путь возобновления: повторный клик или перезагрузка страницы
// не должны показывать пользователю сбой.
func (m *Manager) AcceptQuest(ctx context.Context, userID, questID string) (*State, error) {
	log := m.logger.With(zap.String("userID", userID), zap.String("questID", questID))

	quest, err := m.questRepo.GetByID(ctx, questID)
	if err != nil {
		return nil, err
	}

	progress, err := m.progress.StartQuest(ctx, userID, questID)
	if err != nil {
		if !errors.Is(err, models.ErrQuestAlreadyStarted) {
			return nil, err
		}
		log.Info("Quest already started, resuming existing progress")
		progress, err = m.progress.GetProgress(ctx, userID, questID)
		if err != nil {
			return nil, err
		}
	}

	state := &State{
		QuestID:    questID,
		QuestTitle: quest.Title,
		QuestType:  quest.QuestType,
		AcceptedAt: time.Now().UTC(),
	}
	state.applyProgress(progress)

	if err := m.store.Save(ctx, userID, state); err != nil {
		return nil, err
	}
	log.Info("Quest accepted into session")
	return state, nil
}

// Active возвращает состояние активного квеста сессии.
func (m *Manager) Active(ctx context.Context, userID string) (*State, error) {
	return m.store.Get(ctx, userID)
}

// SubmitArtefact - единственная точка, запускающая завершение квеста:
// сдача последнего артефакта и есть триггер, отдельного опроса нет.
func (m *Manager) SubmitArtefact(ctx context.Context, userID, artefactID string) (*SubmitResult, error) {
	state, err := m.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	log := m.logger.With(
		zap.String("userID", userID),
		zap.String("questID", state.QuestID),
		zap.String("artefactID", artefactID),
	)

	quest, err := m.questRepo.GetByID(ctx, state.QuestID)
	if err != nil {
		return nil, err
	}

	collectResult, err := m.progress.CollectArtefact(ctx, userID, state.QuestID, artefactID)
	if err != nil {
		if oos, ok := models.IsOutOfSequence(err); ok {
			// Обновляем локальный счетчик из ответа сервера и сразу
			// считаем подсказку - вместо голого отказа.
			slot := quest.ArtefactIndex(artefactID)
			if slot >= 0 {
				state.Attempts = growAttemptsTo(state.Attempts, slot)
				state.Attempts[slot] = oos.Attempts
			}
			if saveErr := m.store.Save(ctx, userID, state); saveErr != nil {
				log.Warn("Failed to persist session attempts cache", zap.Error(saveErr))
			}
			hint := NextHint(quest, state.CollectedArtefactIDs, state.Attempts)
			log.Info("Submission rejected out of sequence", zap.Int32("attempts", oos.Attempts))
			return &SubmitResult{
				Accepted:             false,
				CollectedArtefactIDs: state.CollectedArtefactIDs,
				Hint:                 hint,
				Attempts:             oos.Attempts,
			}, nil
		}
		// Сбой хранилища: локальный кэш не трогаем, чтобы клиент и сервер
		// не разъехались на неоднозначной ошибке.
		return nil, err
	}

	state.CollectedArtefactIDs = collectResult.CollectedArtefactIDs
	state.Attempts = collectResult.Attempts
	state.Completed = collectResult.Completed
	state.UpdatedAt = time.Now().UTC()

	result := &SubmitResult{
		Accepted:             true,
		AlreadyCollected:     collectResult.AlreadyCollected,
		CollectedArtefactIDs: collectResult.CollectedArtefactIDs,
		QuestCompleted:       collectResult.Completed,
	}

	if !collectResult.Completed {
		if err := m.store.Save(ctx, userID, state); err != nil {
			log.Warn("Failed to persist session progress cache", zap.Error(err))
		}
		return result, nil
	}

	completionResult, err := m.completion.CompleteQuest(ctx, userID, state.QuestID)
	if err != nil {
		// Прогресс уже помечен собранным; завершение доедет при ретрае
		log.Error("Completion failed after final artefact, retry will self-heal", zap.Error(err))
		if saveErr := m.store.Save(ctx, userID, state); saveErr != nil {
			log.Warn("Failed to persist session progress cache", zap.Error(saveErr))
		}
		return nil, err
	}
	result.TimeTaken = completionResult.TimeTaken
	result.Prize = completionResult.Prize

	// Очистка - вне критического пути: завершение уже в профиле,
	// недочищенный прогресс не делает операцию провалом.
	if err := m.progress.DeleteProgress(ctx, userID, state.QuestID); err != nil {
		log.Warn("Post-completion progress cleanup failed", zap.Error(err))
	}
	if err := m.store.Delete(ctx, userID); err != nil {
		log.Warn("Failed to clear session after completion", zap.Error(err))
	}

	log.Info("Quest completed via session", zap.Int64("timeTaken", completionResult.TimeTaken))
	return result, nil
}

// Cancel сбрасывает активный квест: удаляет серверный прогресс и сессию.
func (m *Manager) Cancel(ctx context.Context, userID string) error {
	state, err := m.store.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := m.progress.DeleteProgress(ctx, userID, state.QuestID); err != nil {
		return err
	}
	return m.store.Delete(ctx, userID)
}

// growAttemptsTo добивает локальный массив попыток нулями до слота.
func growAttemptsTo(attempts []int32, slot int) []int32 {
	size := len(attempts)
	if slot+1 > size {
		size = slot + 1
	}
	grown := make([]int32, size)
	copy(grown, attempts)
	return grown
}
