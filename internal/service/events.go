package service

import "github.com/t9fiction/Solana-Task-Manager/internal/task"

// TaskEventType labels a lifecycle transition.
type TaskEventType string

const (
	EventTaskCreated   TaskEventType = "task_created"
	EventTaskUpdated   TaskEventType = "task_updated"
	EventTaskCompleted TaskEventType = "task_completed"
	EventTaskDeleted   TaskEventType = "task_deleted"
)

// TaskEvent is broadcast to websocket subscribers after a transition commits.
type TaskEvent struct {
	Type    TaskEventType `json:"type"`
	Address string        `json:"address"`
	Author  string        `json:"author"`
	Task    *task.Task    `json:"task,omitempty"`
}

// EventPublisher receives committed task events. Implementations must not
// block the caller.
type EventPublisher interface {
	PublishTaskEvent(evt TaskEvent)
}
