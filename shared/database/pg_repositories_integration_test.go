package database_test

import (
	"context"
	"testing"
	"time"

	"quest-server/shared/database"
	"quest-server/shared/interfaces"
	"quest-server/shared/models"

	"github.com/docker/docker/client"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// Схема тестовой базы повторяет блоки -- Migration Up из файлов репозиториев.
const testSchema = `
CREATE TABLE IF NOT EXISTS quests (
    id VARCHAR(255) PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    quest_type VARCHAR(32) NOT NULL,
    artefacts JSONB NOT NULL,
    date_range JSONB,
    prize JSONB,
    leaderboard JSONB NOT NULL DEFAULT '[]'::jsonb,
    created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS user_data (
    id VARCHAR(255) PRIMARY KEY,
    email TEXT NOT NULL DEFAULT '',
    display_name TEXT NOT NULL DEFAULT '',
    profile_image TEXT NOT NULL DEFAULT '',
    completed_quests JSONB NOT NULL DEFAULT '[]'::jsonb,
    artefacts_collected JSONB NOT NULL DEFAULT '[]'::jsonb,
    created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
);
`

type IntegrationTestSuite struct {
	suite.Suite
	ctx         context.Context
	pgContainer *postgres.PostgresContainer
	pool        *pgxpool.Pool
	questRepo   interfaces.QuestRepository
	userRepo    interfaces.UserRepository
}

func (s *IntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()

	pgContainer, err := postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute)),
	)
	require.NoError(s.T(), err)
	s.pgContainer = pgContainer

	connStr, err := pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	s.pool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err)

	_, err = s.pool.Exec(s.ctx, testSchema)
	require.NoError(s.T(), err)

	s.questRepo = database.NewPgQuestRepository(s.pool, zap.NewNop())
	s.userRepo = database.NewPgUserRepository(s.pool, zap.NewNop())
}

func (s *IntegrationTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.pgContainer != nil {
		require.NoError(s.T(), s.pgContainer.Terminate(s.ctx))
	}
}

func (s *IntegrationTestSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, `TRUNCATE TABLE quests, user_data`)
	require.NoError(s.T(), err)
}

func (s *IntegrationTestSuite) createQuest(questID string) {
	quest := &models.Quest{
		ID:        questID,
		Title:     "Залы древнего Египта",
		QuestType: models.QuestTypeSequential,
		Artefacts: []models.QuestArtefact{{ArtefactID: "a1"}},
	}
	require.NoError(s.T(), s.questRepo.Create(s.ctx, quest))
}

func (s *IntegrationTestSuite) TestAppendLeaderboardEntry_AtMostOnePerUser() {
	t := s.T()
	s.createQuest("quest-1")
	entry := models.LeaderboardEntry{UserID: "user-1", CompletedAt: time.Now().UTC(), TimeTaken: 42}

	appended, err := s.questRepo.AppendLeaderboardEntry(s.ctx, "quest-1", entry)
	require.NoError(t, err)
	require.True(t, appended)

	// Ретрай с другим временем не плодит вторую запись того же пользователя
	entry.TimeTaken = 99
	appended, err = s.questRepo.AppendLeaderboardEntry(s.ctx, "quest-1", entry)
	require.NoError(t, err)
	require.False(t, appended)

	entries, err := s.questRepo.GetLeaderboard(s.ctx, "quest-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "user-1", entries[0].UserID)
	require.Equal(t, int64(42), entries[0].TimeTaken)

	// Другой пользователь дописывается рядом
	appended, err = s.questRepo.AppendLeaderboardEntry(s.ctx, "quest-1",
		models.LeaderboardEntry{UserID: "user-2", CompletedAt: time.Now().UTC(), TimeTaken: 7})
	require.NoError(t, err)
	require.True(t, appended)

	entries, err = s.questRepo.GetLeaderboard(s.ctx, "quest-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func (s *IntegrationTestSuite) TestAppendLeaderboardEntry_QuestMissing() {
	t := s.T()
	entry := models.LeaderboardEntry{UserID: "user-1", CompletedAt: time.Now().UTC(), TimeTaken: 1}

	appended, err := s.questRepo.AppendLeaderboardEntry(s.ctx, "ghost", entry)
	require.ErrorIs(t, err, models.ErrQuestNotFound)
	require.False(t, appended)
}

func (s *IntegrationTestSuite) TestAppendLeaderboardEntry_HealsNonArrayColumn() {
	t := s.T()
	s.createQuest("quest-1")

	// След ручной правки данных: leaderboard перестал быть массивом
	_, err := s.pool.Exec(s.ctx, `UPDATE quests SET leaderboard = '"oops"'::jsonb WHERE id = 'quest-1'`)
	require.NoError(t, err)

	appended, err := s.questRepo.AppendLeaderboardEntry(s.ctx, "quest-1",
		models.LeaderboardEntry{UserID: "user-1", CompletedAt: time.Now().UTC(), TimeTaken: 5})
	require.NoError(t, err)
	require.True(t, appended)

	entries, err := s.questRepo.GetLeaderboard(s.ctx, "quest-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func (s *IntegrationTestSuite) TestAppendCompletedQuest_AtMostOncePerQuest() {
	t := s.T()
	require.NoError(t, s.userRepo.EnsureExists(s.ctx, "user-1"))
	// Повторный EnsureExists - no-op
	require.NoError(t, s.userRepo.EnsureExists(s.ctx, "user-1"))

	record := models.CompletedQuestRecord{QuestID: "quest-1", CompletedAt: time.Now().UTC()}

	appended, err := s.userRepo.AppendCompletedQuest(s.ctx, "user-1", record)
	require.NoError(t, err)
	require.True(t, appended)

	appended, err = s.userRepo.AppendCompletedQuest(s.ctx, "user-1", record)
	require.NoError(t, err)
	require.False(t, appended)

	user, err := s.userRepo.GetByID(s.ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, user.CompletedQuests, 1)
	require.Equal(t, "quest-1", user.CompletedQuests[0].QuestID)
	require.True(t, user.HasCompletedQuest("quest-1"))
}

func (s *IntegrationTestSuite) TestAppendCompletedQuest_UserMissing() {
	t := s.T()
	record := models.CompletedQuestRecord{QuestID: "quest-1", CompletedAt: time.Now().UTC()}

	appended, err := s.userRepo.AppendCompletedQuest(s.ctx, "ghost", record)
	require.ErrorIs(t, err, models.ErrUserNotFound)
	require.False(t, appended)
}

func TestIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}

	cli, err := client.NewClientWithOpts(client.FromEnv)
	if err != nil {
		t.Fatalf("Failed to create Docker client: %v", err)
	}
	defer cli.Close()
	if _, err = cli.Ping(context.Background()); err != nil {
		t.Fatalf("Docker is not available: %v", err)
	}

	suite.Run(t, new(IntegrationTestSuite))
}
