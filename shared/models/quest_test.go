package models_test

import (
	"errors"
	"testing"

	"quest-server/shared/models"

	"github.com/stretchr/testify/assert"
)

func TestParseArtefacts(t *testing.T) {
	t.Run("Valid payload", func(t *testing.T) {
		artefacts, err := models.ParseArtefacts([]byte(`[{"artefactId":"a1","name":"Саркофаг"}]`))
		assert.NoError(t, err)
		assert.Len(t, artefacts, 1)
		assert.Equal(t, "a1", artefacts[0].ArtefactID)
	})

	t.Run("Corrupt payload is loud", func(t *testing.T) {
		_, err := models.ParseArtefacts([]byte(`{"not":"an array"`))
		assert.True(t, errors.Is(err, models.ErrCorruptData))
	})

	t.Run("Empty column is corrupt, not an empty quest", func(t *testing.T) {
		_, err := models.ParseArtefacts(nil)
		assert.True(t, errors.Is(err, models.ErrCorruptData))
	})
}

func TestParseLeaderboard(t *testing.T) {
	// Таблица лидеров - лояльный парсинг: кривые данные не ломают прохождение
	assert.Nil(t, models.ParseLeaderboard(nil))
	assert.Nil(t, models.ParseLeaderboard([]byte(`"oops"`)))

	entries := models.ParseLeaderboard([]byte(`[{"userId":"u1","timeTaken":42}]`))
	assert.Len(t, entries, 1)
	assert.Equal(t, int64(42), entries[0].TimeTaken)
}

func TestProgressCoversAll(t *testing.T) {
	progress := &models.UserQuestProgress{
		CollectedArtefactIDs: []string{"a1", "a2", "a3"},
	}
	assert.True(t, progress.CoversAll([]string{"a1", "a2", "a3"}))
	assert.True(t, progress.CoversAll([]string{"a3", "a1"}))
	assert.False(t, progress.CoversAll([]string{"a1", "a4"}))
	// Пустой список обязательных артефактов не означает завершение
	assert.False(t, progress.CoversAll(nil))
}

func TestProgressAttemptsFor(t *testing.T) {
	progress := &models.UserQuestProgress{Attempts: []int32{0, 2}}
	assert.Equal(t, int32(2), progress.AttemptsFor(1))
	// Нетронутые и некорректные слоты - ноль попыток
	assert.Equal(t, int32(0), progress.AttemptsFor(0))
	assert.Equal(t, int32(0), progress.AttemptsFor(5))
	assert.Equal(t, int32(0), progress.AttemptsFor(-1))
}

func TestHasRole(t *testing.T) {
	roles := []string{models.RoleUser, models.RoleAdmin}
	assert.True(t, models.HasRole(roles, models.RoleAdmin))
	assert.False(t, models.HasRole([]string{models.RoleUser}, models.RoleAdmin))
	assert.False(t, models.HasRole(nil, models.RoleUser))

	assert.True(t, (&models.Claims{Roles: roles}).IsAdmin())
	assert.False(t, (&models.Claims{Roles: []string{models.RoleUser}}).IsAdmin())
}

func TestOutOfSequenceError(t *testing.T) {
	var err error = &models.OutOfSequenceError{ArtefactID: "a2", Attempts: 3}

	oos, ok := models.IsOutOfSequence(err)
	assert.True(t, ok)
	assert.Equal(t, "a2", oos.ArtefactID)
	assert.Equal(t, int32(3), oos.Attempts)

	_, ok = models.IsOutOfSequence(models.ErrQuestNotFound)
	assert.False(t, ok)
}
