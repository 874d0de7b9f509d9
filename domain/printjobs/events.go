package printjobs

import "fmt"

// EventType tags a ProgressEvent.
type EventType string

const (
	EventInit      EventType = "init"
	EventStartItem EventType = "start_item"
	EventDoneItem  EventType = "done_item"
	EventErrorItem EventType = "error_item"
	// EventSentAll means no more submissions will be attempted. It does not
	// mean the printer has finished.
	EventSentAll EventType = "sent_all"
)

// ProgressEvent is what the submission worker reports to the foreground.
// Only the fields relevant to Type are set.
type ProgressEvent struct {
	Type    EventType `json:"type"`
	Total   int       `json:"total,omitempty"`
	Index   int       `json:"index"`
	Name    string    `json:"name,omitempty"`
	Message string    `json:"message,omitempty"`
}

func InitEvent(total int) ProgressEvent {
	return ProgressEvent{Type: EventInit, Total: total}
}

func StartItemEvent(index int, name string) ProgressEvent {
	return ProgressEvent{Type: EventStartItem, Index: index, Name: name}
}

func DoneItemEvent(index int, name string) ProgressEvent {
	return ProgressEvent{Type: EventDoneItem, Index: index, Name: name}
}

func ErrorItemEvent(index int, name, message string) ProgressEvent {
	return ProgressEvent{Type: EventErrorItem, Index: index, Name: name, Message: message}
}

func SentAllEvent() ProgressEvent {
	return ProgressEvent{Type: EventSentAll}
}

// IsTerminal reports whether the event closes out a job.
func (e ProgressEvent) IsTerminal() bool {
	return e.Type == EventDoneItem || e.Type == EventErrorItem
}

func (e ProgressEvent) String() string {
	switch e.Type {
	case EventInit:
		return fmt.Sprintf("init(%d)", e.Total)
	case EventStartItem, EventDoneItem:
		return fmt.Sprintf("%s(%d, %s)", e.Type, e.Index, e.Name)
	case EventErrorItem:
		return fmt.Sprintf("%s(%d, %s, %s)", e.Type, e.Index, e.Name, e.Message)
	default:
		return string(e.Type)
	}
}
