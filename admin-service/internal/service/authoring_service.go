package service

import (
	"context"
	"fmt"
	"time"

	"quest-server/shared/interfaces"
	"quest-server/shared/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// минимальное число артефактов для concurrent-квеста: сбор "в любом порядке"
// из одного-двух предметов вырождается в sequential
const minConcurrentArtefacts = 3

// AssetUploadResult - итог загрузки ассета в блоб-хранилище.
type AssetUploadResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// AuthoringService - авторские операции над квестами: CRUD определений,
// загрузка ассетов, чтение таблиц лидеров и поиск пользователей.
type AuthoringService interface {
	CreateQuest(ctx context.Context, quest *models.Quest) (*models.Quest, error)
	GetQuest(ctx context.Context, questID string) (*models.Quest, error)
	UpdateQuest(ctx context.Context, quest *models.Quest) (*models.Quest, error)
	DeleteQuest(ctx context.Context, questID string) error
	ListQuests(ctx context.Context, limit, offset int) ([]*models.Quest, error)
	GetLeaderboard(ctx context.Context, questID string) ([]models.LeaderboardEntry, error)
	// UploadAsset кладет ассет квеста в блоб-хранилище и возвращает
	// временную ссылку на чтение.
	UploadAsset(ctx context.Context, questID, filename, contentType string, data []byte) (*AssetUploadResult, error)
	FindUserByEmail(ctx context.Context, email string) (*models.UserData, error)
}

type authoringServiceImpl struct {
	questRepo   interfaces.QuestRepository
	userRepo    interfaces.UserRepository
	blobStore   interfaces.BlobStore
	assetURLTTL time.Duration
	logger      *zap.Logger
}

// NewAuthoringService создает авторский сервис.
func NewAuthoringService(
	questRepo interfaces.QuestRepository,
	userRepo interfaces.UserRepository,
	blobStore interfaces.BlobStore,
	assetURLTTL time.Duration,
	logger *zap.Logger,
) AuthoringService {
	return &authoringServiceImpl{
		questRepo:   questRepo,
		userRepo:    userRepo,
		blobStore:   blobStore,
		assetURLTTL: assetURLTTL,
		logger:      logger.Named("AuthoringService"),
	}
}

// validateQuest проверяет авторские инварианты определения квеста.
func validateQuest(quest *models.Quest) error {
	if quest.Title == "" {
		return fmt.Errorf("%w: title is required", models.ErrInvalidInput)
	}
	switch quest.QuestType {
	case models.QuestTypeSequential, models.QuestTypeConcurrent:
	default:
		return fmt.Errorf("%w: unknown quest type %q", models.ErrInvalidInput, quest.QuestType)
	}
	if len(quest.Artefacts) == 0 {
		return fmt.Errorf("%w: quest must have at least one artefact", models.ErrInvalidInput)
	}
	if quest.QuestType == models.QuestTypeConcurrent && len(quest.Artefacts) < minConcurrentArtefacts {
		return fmt.Errorf("%w: concurrent quest must have at least %d artefacts",
			models.ErrInvalidInput, minConcurrentArtefacts)
	}

	seen := make(map[string]struct{}, len(quest.Artefacts))
	for i, a := range quest.Artefacts {
		if a.ArtefactID == "" {
			return fmt.Errorf("%w: artefact #%d has empty id", models.ErrInvalidInput, i)
		}
		if _, dup := seen[a.ArtefactID]; dup {
			return fmt.Errorf("%w: duplicate artefact id %q", models.ErrInvalidInput, a.ArtefactID)
		}
		seen[a.ArtefactID] = struct{}{}

		switch a.HintDisplayMode {
		case "", models.HintDisplaySequential, models.HintDisplayRandom:
		default:
			return fmt.Errorf("%w: artefact %q has unknown hint display mode %q",
				models.ErrInvalidInput, a.ArtefactID, a.HintDisplayMode)
		}
	}

	if quest.DateRange != nil && quest.DateRange.To.Before(quest.DateRange.From) {
		return fmt.Errorf("%w: dateRange.to is before dateRange.from", models.ErrInvalidInput)
	}
	return nil
}

func (s *authoringServiceImpl) CreateQuest(ctx context.Context, quest *models.Quest) (*models.Quest, error) {
	if err := validateQuest(quest); err != nil {
		return nil, err
	}
	if quest.ID == "" {
		quest.ID = uuid.NewString()
	}
	quest.Leaderboard = []models.LeaderboardEntry{}

	if err := s.questRepo.Create(ctx, quest); err != nil {
		s.logger.Error("Failed to create quest", zap.String("questID", quest.ID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Quest created", zap.String("questID", quest.ID), zap.String("title", quest.Title))
	return quest, nil
}

func (s *authoringServiceImpl) GetQuest(ctx context.Context, questID string) (*models.Quest, error) {
	return s.questRepo.GetByID(ctx, questID)
}

func (s *authoringServiceImpl) UpdateQuest(ctx context.Context, quest *models.Quest) (*models.Quest, error) {
	if quest.ID == "" {
		return nil, fmt.Errorf("%w: quest id is required", models.ErrInvalidInput)
	}
	if err := validateQuest(quest); err != nil {
		return nil, err
	}
	// Квест должен существовать; заодно убеждаемся, что его данные читаемы
	if _, err := s.questRepo.GetByID(ctx, quest.ID); err != nil {
		return nil, err
	}
	if err := s.questRepo.Update(ctx, quest); err != nil {
		s.logger.Error("Failed to update quest", zap.String("questID", quest.ID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Quest updated", zap.String("questID", quest.ID))
	return quest, nil
}

func (s *authoringServiceImpl) DeleteQuest(ctx context.Context, questID string) error {
	if err := s.questRepo.Delete(ctx, questID); err != nil {
		return err
	}
	s.logger.Info("Quest deleted", zap.String("questID", questID))
	return nil
}

func (s *authoringServiceImpl) ListQuests(ctx context.Context, limit, offset int) ([]*models.Quest, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.questRepo.List(ctx, limit, offset)
}

func (s *authoringServiceImpl) GetLeaderboard(ctx context.Context, questID string) ([]models.LeaderboardEntry, error) {
	return s.questRepo.GetLeaderboard(ctx, questID)
}

// UploadAsset сохраняет ассет под ключом quests/<questId>/<uuid>-<filename>.
func (s *authoringServiceImpl) UploadAsset(ctx context.Context, questID, filename, contentType string, data []byte) (*AssetUploadResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: asset payload is empty", models.ErrInvalidInput)
	}
	if _, err := s.questRepo.GetByID(ctx, questID); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("quests/%s/%s-%s", questID, uuid.NewString(), filename)
	if err := s.blobStore.PutObject(ctx, key, data, contentType); err != nil {
		s.logger.Error("Failed to upload asset", zap.String("questID", questID), zap.String("key", key), zap.Error(err))
		return nil, err
	}

	url, err := s.blobStore.PresignedGetURL(ctx, key, s.assetURLTTL)
	if err != nil {
		s.logger.Error("Failed to presign asset URL", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Asset uploaded", zap.String("questID", questID), zap.String("key", key), zap.Int("size", len(data)))
	return &AssetUploadResult{Key: key, URL: url}, nil
}

func (s *authoringServiceImpl) FindUserByEmail(ctx context.Context, email string) (*models.UserData, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", models.ErrInvalidInput)
	}
	return s.userRepo.FindByEmail(ctx, email)
}
