package mocks

import (
	"github.com/stretchr/testify/mock"

	"reportprint/domain/events"
)

// MockRunEventPublisher is a mock implementation of RunEventPublisher for testing
type MockRunEventPublisher struct {
	mock.Mock
}

func (m *MockRunEventPublisher) PublishRunStarted(event events.RunStartedEvent) {
	m.Called(event)
}

func (m *MockRunEventPublisher) PublishRunProgress(event events.RunProgressEvent) {
	m.Called(event)
}

func (m *MockRunEventPublisher) PublishRunFinished(event events.RunFinishedEvent) {
	m.Called(event)
}
