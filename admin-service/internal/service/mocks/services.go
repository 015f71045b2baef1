package mocks

import (
	"context"

	"quest-server/admin-service/internal/service"
	"quest-server/shared/models"

	"github.com/stretchr/testify/mock"
)

// Mock AuthoringService
type AuthoringService struct {
	mock.Mock
}

func (m *AuthoringService) CreateQuest(ctx context.Context, quest *models.Quest) (*models.Quest, error) {
	args := m.Called(ctx, quest)
	created, _ := args.Get(0).(*models.Quest)
	return created, args.Error(1)
}
func (m *AuthoringService) GetQuest(ctx context.Context, questID string) (*models.Quest, error) {
	args := m.Called(ctx, questID)
	quest, _ := args.Get(0).(*models.Quest)
	return quest, args.Error(1)
}
func (m *AuthoringService) UpdateQuest(ctx context.Context, quest *models.Quest) (*models.Quest, error) {
	args := m.Called(ctx, quest)
	updated, _ := args.Get(0).(*models.Quest)
	return updated, args.Error(1)
}
func (m *AuthoringService) DeleteQuest(ctx context.Context, questID string) error {
	args := m.Called(ctx, questID)
	return args.Error(0)
}
func (m *AuthoringService) ListQuests(ctx context.Context, limit, offset int) ([]*models.Quest, error) {
	args := m.Called(ctx, limit, offset)
	quests, _ := args.Get(0).([]*models.Quest)
	return quests, args.Error(1)
}
func (m *AuthoringService) GetLeaderboard(ctx context.Context, questID string) ([]models.LeaderboardEntry, error) {
	args := m.Called(ctx, questID)
	entries, _ := args.Get(0).([]models.LeaderboardEntry)
	return entries, args.Error(1)
}
func (m *AuthoringService) UploadAsset(ctx context.Context, questID, filename, contentType string, data []byte) (*service.AssetUploadResult, error) {
	args := m.Called(ctx, questID, filename, contentType, data)
	result, _ := args.Get(0).(*service.AssetUploadResult)
	return result, args.Error(1)
}
func (m *AuthoringService) FindUserByEmail(ctx context.Context, email string) (*models.UserData, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.UserData)
	return user, args.Error(1)
}
