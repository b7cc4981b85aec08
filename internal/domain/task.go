package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskID is a value object for task identity.
type TaskID struct{ uuid.UUID }

// NewTaskID creates a new TaskID from uuid.
func NewTaskID(id uuid.UUID) TaskID { return TaskID{UUID: id} }

// String returns the canonical string form.
func (t TaskID) String() string { return t.UUID.String() }

// Task is scoped entirely to one organization.
type Task struct {
	ID             TaskID
	OrganizationID OrganizationID
	CreatedBy      UserID
	Title          string
	Description    string
	DueDate        *time.Time
	IsCompleted    bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
