package mocks

import (
	"context"

	"quest-server/quest-service/internal/service"
	"quest-server/shared/models"

	"github.com/stretchr/testify/mock"
)

// Mock ProgressService
type ProgressService struct {
	mock.Mock
}

func (m *ProgressService) StartQuest(ctx context.Context, userID, questID string) (*models.UserQuestProgress, error) {
	args := m.Called(ctx, userID, questID)
	progress, _ := args.Get(0).(*models.UserQuestProgress)
	return progress, args.Error(1)
}
func (m *ProgressService) CollectArtefact(ctx context.Context, userID, questID, artefactID string) (*service.CollectResult, error) {
	args := m.Called(ctx, userID, questID, artefactID)
	result, _ := args.Get(0).(*service.CollectResult)
	return result, args.Error(1)
}
func (m *ProgressService) RecordHintAttempt(ctx context.Context, userID, questID string, displayedHints map[string]bool) (*models.UserQuestProgress, error) {
	args := m.Called(ctx, userID, questID, displayedHints)
	progress, _ := args.Get(0).(*models.UserQuestProgress)
	return progress, args.Error(1)
}
func (m *ProgressService) GetProgress(ctx context.Context, userID, questID string) (*models.UserQuestProgress, error) {
	args := m.Called(ctx, userID, questID)
	progress, _ := args.Get(0).(*models.UserQuestProgress)
	return progress, args.Error(1)
}
func (m *ProgressService) DeleteProgress(ctx context.Context, userID, questID string) error {
	args := m.Called(ctx, userID, questID)
	return args.Error(0)
}

// Mock CompletionService
type CompletionService struct {
	mock.Mock
}

func (m *CompletionService) CompleteQuest(ctx context.Context, userID, questID string) (*service.CompletionResult, error) {
	args := m.Called(ctx, userID, questID)
	result, _ := args.Get(0).(*service.CompletionResult)
	return result, args.Error(1)
}
