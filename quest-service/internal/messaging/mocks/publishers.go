package mocks

import (
	"context"

	sharedMessaging "quest-server/shared/messaging"

	"github.com/stretchr/testify/mock"
)

// Mock ClientUpdatePublisher
type ClientUpdatePublisher struct {
	mock.Mock
}

func (m *ClientUpdatePublisher) PublishQuestCompleted(ctx context.Context, event sharedMessaging.QuestCompletedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
