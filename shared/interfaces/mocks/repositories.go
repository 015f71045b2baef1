package mocks

import (
	"context"
	"time"

	"quest-server/shared/models"

	"github.com/stretchr/testify/mock"
)

// Mock QuestRepository
type QuestRepository struct {
	mock.Mock
}

func (m *QuestRepository) Create(ctx context.Context, quest *models.Quest) error {
	args := m.Called(ctx, quest)
	return args.Error(0)
}
func (m *QuestRepository) GetByID(ctx context.Context, questID string) (*models.Quest, error) {
	args := m.Called(ctx, questID)
	quest, _ := args.Get(0).(*models.Quest)
	return quest, args.Error(1)
}
func (m *QuestRepository) Update(ctx context.Context, quest *models.Quest) error {
	args := m.Called(ctx, quest)
	return args.Error(0)
}
func (m *QuestRepository) Delete(ctx context.Context, questID string) error {
	args := m.Called(ctx, questID)
	return args.Error(0)
}
func (m *QuestRepository) List(ctx context.Context, limit, offset int) ([]*models.Quest, error) {
	args := m.Called(ctx, limit, offset)
	quests, _ := args.Get(0).([]*models.Quest)
	return quests, args.Error(1)
}
func (m *QuestRepository) AppendLeaderboardEntry(ctx context.Context, questID string, entry models.LeaderboardEntry) (bool, error) {
	args := m.Called(ctx, questID, entry)
	return args.Bool(0), args.Error(1)
}
func (m *QuestRepository) GetLeaderboard(ctx context.Context, questID string) ([]models.LeaderboardEntry, error) {
	args := m.Called(ctx, questID)
	entries, _ := args.Get(0).([]models.LeaderboardEntry)
	return entries, args.Error(1)
}

// Mock QuestProgressRepository
type QuestProgressRepository struct {
	mock.Mock
}

func (m *QuestProgressRepository) Create(ctx context.Context, progress *models.UserQuestProgress) error {
	args := m.Called(ctx, progress)
	return args.Error(0)
}
func (m *QuestProgressRepository) GetByUserAndQuest(ctx context.Context, userID, questID string) (*models.UserQuestProgress, error) {
	args := m.Called(ctx, userID, questID)
	progress, _ := args.Get(0).(*models.UserQuestProgress)
	return progress, args.Error(1)
}
func (m *QuestProgressRepository) SaveCollection(ctx context.Context, progress *models.UserQuestProgress) error {
	args := m.Called(ctx, progress)
	return args.Error(0)
}
func (m *QuestProgressRepository) SaveAttempts(ctx context.Context, userID, questID string, attempts []int32) error {
	args := m.Called(ctx, userID, questID, attempts)
	return args.Error(0)
}
func (m *QuestProgressRepository) RecordHintAttempt(ctx context.Context, userID, questID string, displayedHints map[string]bool) (*models.UserQuestProgress, error) {
	args := m.Called(ctx, userID, questID, displayedHints)
	progress, _ := args.Get(0).(*models.UserQuestProgress)
	return progress, args.Error(1)
}
func (m *QuestProgressRepository) MarkCompleted(ctx context.Context, userID, questID string, at time.Time) error {
	args := m.Called(ctx, userID, questID, at)
	return args.Error(0)
}
func (m *QuestProgressRepository) Delete(ctx context.Context, userID, questID string) error {
	args := m.Called(ctx, userID, questID)
	return args.Error(0)
}

// Mock UserRepository
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) GetByID(ctx context.Context, userID string) (*models.UserData, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*models.UserData)
	return user, args.Error(1)
}
func (m *UserRepository) EnsureExists(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
func (m *UserRepository) AppendCompletedQuest(ctx context.Context, userID string, record models.CompletedQuestRecord) (bool, error) {
	args := m.Called(ctx, userID, record)
	return args.Bool(0), args.Error(1)
}
func (m *UserRepository) FindByEmail(ctx context.Context, email string) (*models.UserData, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.UserData)
	return user, args.Error(1)
}

// Mock BlobStore
type BlobStore struct {
	mock.Mock
}

func (m *BlobStore) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}
func (m *BlobStore) PresignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}
