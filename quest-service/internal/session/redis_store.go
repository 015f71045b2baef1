package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quest-server/shared/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store - персистенция сессионного состояния.
type Store interface {
	// Get возвращает состояние сессии или models.ErrNoActiveQuest.
	Get(ctx context.Context, userID string) (*State, error)
	// Save сохраняет состояние с продлением TTL.
	Save(ctx context.Context, userID string, state *State) error
	// Delete очищает сессию (переход active -> none).
	Delete(ctx context.Context, userID string) error
}

// Compile-time check to ensure redisSessionStore implements Store
var _ Store = (*redisSessionStore)(nil)

type redisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStore создает Redis-хранилище сессий.
func NewRedisStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) Store {
	return &redisSessionStore{
		client: client,
		ttl:    ttl,
		logger: logger.Named("SessionStore"),
	}
}

func sessionKey(userID string) string {
	return fmt.Sprintf("quest_session:%s", userID)
}

func (s *redisSessionStore) Get(ctx context.Context, userID string) (*State, error) {
	data, err := s.client.Get(ctx, sessionKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrNoActiveQuest
		}
		s.logger.Error("Failed to read session from redis", zap.String("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		// Кривое состояние сессии чинится перезапуском квеста, падать нельзя
		s.logger.Warn("Corrupt session state in redis, treating as absent",
			zap.String("userID", userID), zap.Error(err))
		return nil, models.ErrNoActiveQuest
	}
	return &state, nil
}

func (s *redisSessionStore) Save(ctx context.Context, userID string, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(userID), data, s.ttl).Err(); err != nil {
		s.logger.Error("Failed to save session to redis", zap.String("userID", userID), zap.Error(err))
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *redisSessionStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		s.logger.Error("Failed to delete session from redis", zap.String("userID", userID), zap.Error(err))
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
