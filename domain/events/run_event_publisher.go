package events

// RunEventPublisher defines the interface for publishing print run events.
type RunEventPublisher interface {
	PublishRunStarted(event RunStartedEvent)
	PublishRunProgress(event RunProgressEvent)
	PublishRunFinished(event RunFinishedEvent)
}
