package service_test

import (
	"context"
	"errors"
	"testing"

	"quest-server/quest-service/internal/service"
	sharedMocks "quest-server/shared/interfaces/mocks"
	sharedModels "quest-server/shared/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func sequentialQuest() *sharedModels.Quest {
	return &sharedModels.Quest{
		ID:        "quest-1",
		Title:     "Залы древнего Египта",
		QuestType: sharedModels.QuestTypeSequential,
		Artefacts: []sharedModels.QuestArtefact{
			{ArtefactID: "a1", Name: "Саркофаг", Hints: []sharedModels.Hint{{Text: "hint a1-0"}, {Text: "hint a1-1"}}},
			{ArtefactID: "a2", Name: "Свиток", Hints: []sharedModels.Hint{{Text: "hint a2-0"}}},
			{ArtefactID: "a3", Name: "Амулет"},
		},
	}
}

func concurrentQuest() *sharedModels.Quest {
	return &sharedModels.Quest{
		ID:        "quest-2",
		Title:     "Сокровища запасников",
		QuestType: sharedModels.QuestTypeConcurrent,
		Artefacts: []sharedModels.QuestArtefact{
			{ArtefactID: "b1"}, {ArtefactID: "b2"}, {ArtefactID: "b3"},
		},
	}
}

func TestStartQuest(t *testing.T) {
	ctx := context.Background()

	t.Run("Successful start", func(t *testing.T) {
		mockQuestRepo := new(sharedMocks.QuestRepository)
		mockProgressRepo := new(sharedMocks.QuestProgressRepository)
		svc := service.NewProgressService(mockQuestRepo, mockProgressRepo, zap.NewNop())

		mockQuestRepo.On("GetByID", ctx, "quest-1").Return(sequentialQuest(), nil).Once()
		mockProgressRepo.On("Create", ctx, mock.MatchedBy(func(p *sharedModels.UserQuestProgress) bool {
			assert.Equal(t, "user-1", p.UserID)
			assert.Equal(t, "quest-1", p.QuestID)
			assert.Empty(t, p.CollectedArtefactIDs)
			assert.False(t, p.Completed)
			return true
		})).Return(nil).Once()

		progress, err := svc.StartQuest(ctx, "user-1", "quest-1")
		assert.NoError(t, err)
		assert.NotNil(t, progress)
		mockQuestRepo.AssertExpectations(t)
		mockProgressRepo.AssertExpectations(t)
	})

	t.Run("Unknown quest", func(t *testing.T) {
		mockQuestRepo := new(sharedMocks.QuestRepository)
		mockProgressRepo := new(sharedMocks.QuestProgressRepository)
		svc := service.NewProgressService(mockQuestRepo, mockProgressRepo, zap.NewNop())

		mockQuestRepo.On("GetByID", ctx, "missing").Return(nil, sharedModels.ErrQuestNotFound).Once()

		progress, err := svc.StartQuest(ctx, "user-1", "missing")
		assert.Nil(t, progress)
		assert.True(t, errors.Is(err, sharedModels.ErrQuestNotFound))
		mockProgressRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Restart does not reset progress", func(t *testing.T) {
		mockQuestRepo := new(sharedMocks.QuestRepository)
		mockProgressRepo := new(sharedMocks.QuestProgressRepository)
		svc := service.NewProgressService(mockQuestRepo, mockProgressRepo, zap.NewNop())

		mockQuestRepo.On("GetByID", ctx, "quest-1").Return(sequentialQuest(), nil).Once()
		mockProgressRepo.On("Create", ctx, mock.Anything).Return(sharedModels.ErrQuestAlreadyStarted).Once()

		progress, err := svc.StartQuest(ctx, "user-1", "quest-1")
		assert.Nil(t, progress)
		assert.True(t, errors.Is(err, sharedModels.ErrQuestAlreadyStarted))
	})
}

func TestCollectArtefact(t *testing.T) {
	ctx := context.Background()
	userID := "user-1"

	newService := func() (*sharedMocks.QuestRepository, *sharedMocks.QuestProgressRepository, service.ProgressService) {
		mockQuestRepo := new(sharedMocks.QuestRepository)
		mockProgressRepo := new(sharedMocks.QuestProgressRepository)
		return mockQuestRepo, mockProgressRepo, service.NewProgressService(mockQuestRepo, mockProgressRepo, zap.NewNop())
	}

	t.Run("Sequential in-order collection", func(t *testing.T) {
		mockQuestRepo, mockProgressRepo, svc := newService()
		mockQuestRepo.On("GetByID", ctx, "quest-1").Return(sequentialQuest(), nil).Once()
		mockProgressRepo.On("GetByUserAndQuest", ctx, userID, "quest-1").Return(&sharedModels.UserQuestProgress{
			UserID: userID, QuestID: "quest-1",
			CollectedArtefactIDs: []string{}, Attempts: []int32{},
		}, nil).Once()
		mockProgressRepo.On("SaveCollection", ctx, mock.MatchedBy(func(p *sharedModels.UserQuestProgress) bool {
			assert.Equal(t, []string{"a1"}, p.CollectedArtefactIDs)
			assert.False(t, p.Completed)
			return true
		})).Return(nil).Once()

		result, err := svc.CollectArtefact(ctx, userID, "quest-1", "a1")
		assert.NoError(t, err)
		assert.False(t, result.AlreadyCollected)
		assert.False(t, result.Completed)
		assert.Equal(t, []string{"a1"}, result.CollectedArtefactIDs)
		mockProgressRepo.AssertExpectations(t)
	})

	t.Run("Sequential out-of-order increments attempts", func(t *testing.T) {
		mockQuestRepo, mockProgressRepo, svc := newService()
		mockQuestRepo.On("GetByID", ctx, "quest-1").Return(sequentialQuest(), nil).Once()
		mockProgressRepo.On("GetByUserAndQuest", ctx, userID, "quest-1").Return(&sharedModels.UserQuestProgress{
			UserID: userID, QuestID: "quest-1",
			CollectedArtefactIDs: []string{}, Attempts: []int32{},
		}, nil).Once()
		// Попытка пишется в слот сданного артефакта (a3, индекс 2)
		mockProgressRepo.On("SaveAttempts", ctx, userID, "quest-1", []int32{0, 0, 1}).Return(nil).Once()

		result, err := svc.CollectArtefact(ctx, userID, "quest-1", "a3")
		assert.Nil(t, result)
		oos, ok := sharedModels.IsOutOfSequence(err)
		assert.True(t, ok)
		assert.Equal(t, "a3", oos.ArtefactID)
		assert.Equal(t, int32(1), oos.Attempts)
		mockProgressRepo.AssertExpectations(t)
	})

	t.Run("Repeated out-of-order submissions accumulate attempts", func(t *testing.T) {
		mockQuestRepo, mockProgressRepo, svc := newService()
		mockQuestRepo.On("GetByID", ctx, "quest-1").Return(sequentialQuest(), nil).Once()
		mockProgressRepo.On("GetByUserAndQuest", ctx, userID, "quest-1").Return(&sharedModels.UserQuestProgress{
			UserID: userID, QuestID: "quest-1",
			CollectedArtefactIDs: []string{}, Attempts: []int32{0, 0, 4},
		}, nil).Once()
		mockProgressRepo.On("SaveAttempts", ctx, userID, "quest-1", []int32{0, 0, 5}).Return(nil).Once()

		_, err := svc.CollectArtefact(ctx, userID, "quest-1", "a3")
		oos, ok := sharedModels.IsOutOfSequence(err)
		assert.True(t, ok)
		assert.Equal(t, int32(5), oos.Attempts)
	})

	t.Run("Duplicate collection is idempotent success", func(t *testing.T) {
		mockQuestRepo, mockProgressRepo, svc := newService()
		mockQuestRepo.On("GetByID", ctx, "quest-1").Return(sequentialQuest(), nil).Once()
		mockProgressRepo.On("GetByUserAndQuest", ctx, userID, "quest-1").Return(&sharedModels.UserQuestProgress{
			UserID: userID, QuestID: "quest-1",
			CollectedArtefactIDs: []string{"a1"}, Attempts: []int32{},
		}, nil).Once()

		result, err := svc.CollectArtefact(ctx, userID, "quest-1", "a1")
		assert.NoError(t, err)
		assert.True(t, result.AlreadyCollected)
		assert.Equal(t, []string{"a1"}, result.CollectedArtefactIDs)
		// Ни SaveCollection, ни SaveAttempts не должны быть вызваны
		mockProgressRepo.AssertNotCalled(t, "SaveCollection", mock.Anything, mock.Anything)
		mockProgressRepo.AssertNotCalled(t, "SaveAttempts", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Foreign artefact rejected without attempt increment", func(t *testing.T) {
		mockQuestRepo, mockProgressRepo, svc := newService()
		mockQuestRepo.On("GetByID", ctx, "quest-1").Return(sequentialQuest(), nil).Once()
		mockProgressRepo.On("GetByUserAndQuest", ctx, userID, "quest-1").Return(&sharedModels.UserQuestProgress{
			UserID: userID, QuestID: "quest-1",
			CollectedArtefactIDs: []string{}, Attempts: []int32{},
		}, nil).Once()

		result, err := svc.CollectArtefact(ctx, userID, "quest-1", "stranger")
		assert.Nil(t, result)
		assert.True(t, errors.Is(err, sharedModels.ErrInvalidInput))
		mockProgressRepo.AssertNotCalled(t, "SaveAttempts", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Concurrent quest accepts any order", func(t *testing.T) {
		mockQuestRepo, mockProgressRepo, svc := newService()
		mockQuestRepo.On("GetByID", ctx, "quest-2").Return(concurrentQuest(), nil).Once()
		mockProgressRepo.On("GetByUserAndQuest", ctx, userID, "quest-2").Return(&sharedModels.UserQuestProgress{
			UserID: userID, QuestID: "quest-2",
			CollectedArtefactIDs: []string{}, Attempts: []int32{},
		}, nil).Once()
		mockProgressRepo.On("SaveCollection", ctx, mock.Anything).Return(nil).Once()

		result, err := svc.CollectArtefact(ctx, userID, "quest-2", "b3")
		assert.NoError(t, err)
		assert.Equal(t, []string{"b3"}, result.CollectedArtefactIDs)
	})

	t.Run("Last artefact marks completion", func(t *testing.T) {
		mockQuestRepo, mockProgressRepo, svc := newService()
		mockQuestRepo.On("GetByID", ctx, "quest-1").Return(sequentialQuest(), nil).Once()
		mockProgressRepo.On("GetByUserAndQuest", ctx, userID, "quest-1").Return(&sharedModels.UserQuestProgress{
			UserID: userID, QuestID: "quest-1",
			CollectedArtefactIDs: []string{"a1", "a2"}, Attempts: []int32{},
		}, nil).Once()
		mockProgressRepo.On("SaveCollection", ctx, mock.MatchedBy(func(p *sharedModels.UserQuestProgress) bool {
			assert.True(t, p.Completed)
			assert.NotNil(t, p.CompletedAt)
			return true
		})).Return(nil).Once()

		result, err := svc.CollectArtefact(ctx, userID, "quest-1", "a3")
		assert.NoError(t, err)
		assert.True(t, result.Completed)
	})

	t.Run("Corrupt quest definition fails loudly", func(t *testing.T) {
		mockQuestRepo, mockProgressRepo, svc := newService()
		mockQuestRepo.On("GetByID", ctx, "quest-1").Return(nil, sharedModels.ErrCorruptData).Once()

		result, err := svc.CollectArtefact(ctx, userID, "quest-1", "a1")
		assert.Nil(t, result)
		assert.True(t, errors.Is(err, sharedModels.ErrCorruptData))
		mockProgressRepo.AssertNotCalled(t, "GetByUserAndQuest", mock.Anything, mock.Anything, mock.Anything)
	})
}

// Сценарий: sequential-квест из трех артефактов, сдача a2 до a1 дважды,
// затем честное прохождение.
func TestCollectArtefact_FullScenario(t *testing.T) {
	ctx := context.Background()
	userID := "visitor-7"
	quest := sequentialQuest()

	mockQuestRepo := new(sharedMocks.QuestRepository)
	mockProgressRepo := new(sharedMocks.QuestProgressRepository)
	svc := service.NewProgressService(mockQuestRepo, mockProgressRepo, zap.NewNop())

	// Текущее персистентное состояние, которое "хранит" мок
	state := &sharedModels.UserQuestProgress{
		UserID: userID, QuestID: quest.ID,
		CollectedArtefactIDs: []string{}, Attempts: []int32{},
	}

	mockQuestRepo.On("GetByID", ctx, quest.ID).Return(quest, nil)
	mockProgressRepo.On("GetByUserAndQuest", ctx, userID, quest.ID).Return(state, nil)
	mockProgressRepo.On("SaveAttempts", ctx, userID, quest.ID, mock.Anything).Run(func(args mock.Arguments) {
		state.Attempts = args.Get(3).([]int32)
	}).Return(nil)
	mockProgressRepo.On("SaveCollection", ctx, mock.Anything).Return(nil)

	// Две сдачи a2 вне очереди
	_, err := svc.CollectArtefact(ctx, userID, quest.ID, "a2")
	oos, ok := sharedModels.IsOutOfSequence(err)
	assert.True(t, ok)
	assert.Equal(t, int32(1), oos.Attempts)

	_, err = svc.CollectArtefact(ctx, userID, quest.ID, "a2")
	oos, ok = sharedModels.IsOutOfSequence(err)
	assert.True(t, ok)
	assert.Equal(t, int32(2), oos.Attempts)

	// Честное прохождение
	for i, artefactID := range []string{"a1", "a2", "a3"} {
		result, err := svc.CollectArtefact(ctx, userID, quest.ID, artefactID)
		assert.NoError(t, err)
		state.CollectedArtefactIDs = result.CollectedArtefactIDs
		assert.Equal(t, i == 2, result.Completed)
	}
	assert.Equal(t, []string{"a1", "a2", "a3"}, state.CollectedArtefactIDs)
}

func TestGetProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing progress is empty, not an error", func(t *testing.T) {
		mockQuestRepo := new(sharedMocks.QuestRepository)
		mockProgressRepo := new(sharedMocks.QuestProgressRepository)
		svc := service.NewProgressService(mockQuestRepo, mockProgressRepo, zap.NewNop())

		mockProgressRepo.On("GetByUserAndQuest", ctx, "user-1", "quest-1").
			Return(nil, sharedModels.ErrProgressNotFound).Once()

		progress, err := svc.GetProgress(ctx, "user-1", "quest-1")
		assert.NoError(t, err)
		assert.NotNil(t, progress)
		assert.Empty(t, progress.CollectedArtefactIDs)
		assert.False(t, progress.Completed)
	})

	t.Run("Storage failure propagates", func(t *testing.T) {
		mockQuestRepo := new(sharedMocks.QuestRepository)
		mockProgressRepo := new(sharedMocks.QuestProgressRepository)
		svc := service.NewProgressService(mockQuestRepo, mockProgressRepo, zap.NewNop())

		dbErr := errors.New("connection refused")
		mockProgressRepo.On("GetByUserAndQuest", ctx, "user-1", "quest-1").Return(nil, dbErr).Once()

		progress, err := svc.GetProgress(ctx, "user-1", "quest-1")
		assert.Nil(t, progress)
		assert.Error(t, err)
	})
}

func TestRecordHintAttempt(t *testing.T) {
	ctx := context.Background()
	mockQuestRepo := new(sharedMocks.QuestRepository)
	mockProgressRepo := new(sharedMocks.QuestProgressRepository)
	svc := service.NewProgressService(mockQuestRepo, mockProgressRepo, zap.NewNop())

	displayed := map[string]bool{"a1:0": true}
	mockProgressRepo.On("RecordHintAttempt", ctx, "user-1", "quest-1", displayed).
		Return(&sharedModels.UserQuestProgress{
			UserID: "user-1", QuestID: "quest-1",
			HintAttempts:   3,
			DisplayedHints: displayed,
		}, nil).Once()

	progress, err := svc.RecordHintAttempt(ctx, "user-1", "quest-1", displayed)
	assert.NoError(t, err)
	assert.Equal(t, int32(3), progress.HintAttempts)
	assert.True(t, progress.DisplayedHints["a1:0"])
	mockProgressRepo.AssertExpectations(t)
}
