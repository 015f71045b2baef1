package session_test

import (
	"testing"

	"quest-server/quest-service/internal/session"
	sharedModels "quest-server/shared/models"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func hintedQuest() *sharedModels.Quest {
	return &sharedModels.Quest{
		ID:        "quest-1",
		QuestType: sharedModels.QuestTypeSequential,
		Artefacts: []sharedModels.QuestArtefact{
			{ArtefactID: "a1", Hints: []sharedModels.Hint{{Text: "первый зал"}, {Text: "у окна"}}},
			{ArtefactID: "a2", Hints: []sharedModels.Hint{{Text: "второй зал"}}},
			{ArtefactID: "a3"},
		},
	}
}

func TestIsNextSequential(t *testing.T) {
	quest := hintedQuest()

	assert.True(t, session.IsNextSequential(quest, nil, "a1"))
	assert.False(t, session.IsNextSequential(quest, nil, "a2"))
	assert.True(t, session.IsNextSequential(quest, []string{"a1"}, "a2"))
	assert.False(t, session.IsNextSequential(quest, []string{"a1"}, "a3"))
	// Все собрано - следующего нет
	assert.False(t, session.IsNextSequential(quest, []string{"a1", "a2", "a3"}, "a1"))

	concurrent := &sharedModels.Quest{
		QuestType: sharedModels.QuestTypeConcurrent,
		Artefacts: []sharedModels.QuestArtefact{{ArtefactID: "b1"}, {ArtefactID: "b2"}},
	}
	assert.True(t, session.IsNextSequential(concurrent, nil, "b2"))
}

func TestNextHint(t *testing.T) {
	quest := hintedQuest()

	t.Run("Attempt counter selects hint and clamps to last", func(t *testing.T) {
		// attempts для a1: 0 -> первая подсказка, 1 -> вторая, дальше прижимается
		for attempts, want := range map[int32]string{0: "первый зал", 1: "у окна", 5: "у окна", 100: "у окна"} {
			hint := session.NextHint(quest, nil, []int32{attempts})
			assert.NotNil(t, hint)
			assert.Equal(t, want, *hint)
		}
	})

	t.Run("Missing attempts slot means first hint", func(t *testing.T) {
		hint := session.NextHint(quest, nil, nil)
		assert.NotNil(t, hint)
		assert.Equal(t, "первый зал", *hint)
	})

	t.Run("Next artefact without hints", func(t *testing.T) {
		hint := session.NextHint(quest, []string{"a1", "a2"}, []int32{0, 0, 3})
		assert.Nil(t, hint)
	})

	t.Run("All collected", func(t *testing.T) {
		assert.Nil(t, session.NextHint(quest, []string{"a1", "a2", "a3"}, nil))
	})

	t.Run("Concurrent quests have no directional hints", func(t *testing.T) {
		concurrent := &sharedModels.Quest{
			QuestType: sharedModels.QuestTypeConcurrent,
			Artefacts: []sharedModels.QuestArtefact{
				{ArtefactID: "b1", Hints: []sharedModels.Hint{{Text: "зал"}}},
			},
		}
		assert.Nil(t, session.NextHint(concurrent, nil, nil))
	})
}

// Свойство: для sequential-квеста с любым префиксом собранных артефактов
// ровно один артефакт проходит проверку порядка, и NextHint никогда не
// паникует, каким бы ни был счетчик попыток.
func TestSequentialOrderProperties(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		numArtefacts := rapid.IntRange(1, 8).Draw(rt, "numArtefacts")
		quest := &sharedModels.Quest{
			ID:        "prop-quest",
			QuestType: sharedModels.QuestTypeSequential,
		}
		for i := 0; i < numArtefacts; i++ {
			a := sharedModels.QuestArtefact{ArtefactID: string(rune('a' + i))}
			numHints := rapid.IntRange(0, 4).Draw(rt, "numHints")
			for h := 0; h < numHints; h++ {
				a.Hints = append(a.Hints, sharedModels.Hint{Text: "hint"})
			}
			quest.Artefacts = append(quest.Artefacts, a)
		}

		prefix := rapid.IntRange(0, numArtefacts).Draw(rt, "prefix")
		collected := quest.RequiredArtefactIDs()[:prefix]

		accepted := 0
		for _, id := range quest.RequiredArtefactIDs() {
			if session.IsNextSequential(quest, collected, id) {
				accepted++
				assert.Equal(t, quest.Artefacts[prefix].ArtefactID, id)
			}
		}
		if prefix < numArtefacts {
			assert.Equal(t, 1, accepted)
		} else {
			assert.Equal(t, 0, accepted)
		}

		attempts := make([]int32, rapid.IntRange(0, numArtefacts).Draw(rt, "attemptsLen"))
		for i := range attempts {
			attempts[i] = int32(rapid.IntRange(0, 1000).Draw(rt, "attempt"))
		}
		hint := session.NextHint(quest, collected, attempts)
		if prefix < numArtefacts && len(quest.Artefacts[prefix].Hints) > 0 {
			assert.NotNil(t, hint)
		} else {
			assert.Nil(t, hint)
		}
	})
}
