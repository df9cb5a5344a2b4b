package service

import (
	"context"

	"github.com/t9fiction/Solana-Task-Manager/internal/ledger"
	"github.com/t9fiction/Solana-Task-Manager/internal/logger"
	"github.com/t9fiction/Solana-Task-Manager/internal/solana"
	"github.com/t9fiction/Solana-Task-Manager/internal/task"
)

// TaskService is the reusable client context for task transitions: one
// explicitly constructed object holding the ledger handle, program ID and
// lifecycle engine, instead of a handle re-derived per call.
type TaskService struct {
	engine *task.Engine
	events EventPublisher
}

// NewTaskService wires the lifecycle engine to a ledger. events may be nil.
func NewTaskService(l ledger.Ledger, programID solana.PublicKey, events EventPublisher) *TaskService {
	return &TaskService{
		engine: task.NewEngine(l, programID),
		events: events,
	}
}

// Engine exposes the underlying lifecycle engine. Test hook.
func (s *TaskService) Engine() *task.Engine {
	return s.engine
}

func (s *TaskService) publish(evt TaskEvent) {
	if s.events != nil {
		s.events.PublishTaskEvent(evt)
	}
}

// Create submits the create transition for the caller's wallet.
func (s *TaskService) Create(ctx context.Context, author solana.PublicKey, title, description string) (*task.Record, error) {
	rec, err := s.engine.Create(ctx, author, title, description)
	if err != nil {
		return nil, err
	}

	logger.Info("task created",
		"title", rec.Task.Title,
		"author", rec.Task.Author.String(),
		"created_at", rec.Task.CreatedAt,
	)
	s.publish(TaskEvent{
		Type:    EventTaskCreated,
		Address: rec.Address.String(),
		Author:  rec.Task.Author.String(),
		Task:    rec.Task,
	})
	return rec, nil
}

// Update replaces the task description.
func (s *TaskService) Update(ctx context.Context, caller solana.PublicKey, addr solana.PublicKey, description string) (*task.Record, error) {
	rec, err := s.engine.Update(ctx, caller, addr, description)
	if err != nil {
		return nil, err
	}

	logger.Info("task description updated",
		"title", rec.Task.Title,
		"author", rec.Task.Author.String(),
	)
	s.publish(TaskEvent{
		Type:    EventTaskUpdated,
		Address: rec.Address.String(),
		Author:  rec.Task.Author.String(),
		Task:    rec.Task,
	})
	return rec, nil
}

// Complete marks the task completed. The second return value reports
// whether it already was; that case commits nothing and publishes nothing.
func (s *TaskService) Complete(ctx context.Context, caller solana.PublicKey, addr solana.PublicKey) (*task.Record, bool, error) {
	rec, already, err := s.engine.Complete(ctx, caller, addr)
	if err != nil {
		return nil, false, err
	}
	if already {
		logger.Warn("task already completed", "title", rec.Task.Title, "author", rec.Task.Author.String())
		return rec, true, nil
	}

	logger.Info("task marked complete",
		"title", rec.Task.Title,
		"author", rec.Task.Author.String(),
	)
	s.publish(TaskEvent{
		Type:    EventTaskCompleted,
		Address: rec.Address.String(),
		Author:  rec.Task.Author.String(),
		Task:    rec.Task,
	})
	return rec, false, nil
}

// Delete closes the task account. Confirmation prompts are a UI concern;
// the service deletes directly.
func (s *TaskService) Delete(ctx context.Context, caller solana.PublicKey, addr solana.PublicKey) error {
	// read the record first so the event can carry the title
	rec, err := s.engine.Get(ctx, addr)
	if err != nil {
		return err
	}
	if err := s.engine.Delete(ctx, caller, addr); err != nil {
		return err
	}

	logger.Info("task deleted",
		"title", rec.Task.Title,
		"author", rec.Task.Author.String(),
	)
	s.publish(TaskEvent{
		Type:    EventTaskDeleted,
		Address: addr.String(),
		Author:  rec.Task.Author.String(),
	})
	return nil
}

// Get reads one task by address.
func (s *TaskService) Get(ctx context.Context, addr solana.PublicKey) (*task.Record, error) {
	return s.engine.Get(ctx, addr)
}

// List returns tasks in ledger insertion order, optionally filtered to one
// owner.
func (s *TaskService) List(ctx context.Context, owner *solana.PublicKey) ([]task.Record, error) {
	return s.engine.List(ctx, owner)
}
