package task

import (
	"strings"

	"github.com/t9fiction/Solana-Task-Manager/internal/solana"
)

// Field bounds, enforced before submission and again at the point of
// mutation.
const (
	MaxTitleLen       = 100
	MaxDescriptionLen = 1000
)

// Task is the sole record type. Author and Title are immutable after
// creation: both feed the derived account address, so changing either would
// move the account.
type Task struct {
	Author      solana.PublicKey `json:"author"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	IsCompleted bool             `json:"is_completed"`
	CreatedAt   int64            `json:"created_at"`
}

// ValidateTitle checks the title bounds. Emptiness is judged on the trimmed
// string, length on the raw byte length.
func ValidateTitle(title string) error {
	if len(title) > MaxTitleLen {
		return ErrTitleTooLong
	}
	if strings.TrimSpace(title) == "" {
		return ErrTitleIsEmpty
	}
	return nil
}

// ValidateDescription checks the description bounds.
func ValidateDescription(description string) error {
	if len(description) > MaxDescriptionLen {
		return ErrDescriptionTooLong
	}
	if strings.TrimSpace(description) == "" {
		return ErrDescriptionIsEmpty
	}
	return nil
}

// Validate checks all mutable and immutable field bounds.
func (t *Task) Validate() error {
	if err := ValidateTitle(t.Title); err != nil {
		return err
	}
	return ValidateDescription(t.Description)
}
