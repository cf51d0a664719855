package task

import (
	"strings"
	"time"
	"unicode/utf8"
)

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in-progress"
	StatusCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

const (
	maxTitleLen       = 100
	maxDescriptionLen = 500
)

// Task is a single unit of work owned by exactly one user. The owner is fixed
// at creation and never changes afterwards.
type Task struct {
	ID          string       `db:"id" json:"id"`
	Title       string       `db:"title" json:"title"`
	Description string       `db:"description" json:"description"`
	Status      TaskStatus   `db:"status" json:"status"`
	Priority    TaskPriority `db:"priority" json:"priority"`
	OwnerID     string       `db:"owner_id" json:"owner_id"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// Actor is the identity a request acts as, resolved by the auth middleware.
type Actor struct {
	ID    string
	Admin bool
}

// TaskFilter narrows a list query. Zero values mean "no constraint".
type TaskFilter struct {
	Status   string
	Priority string
}

// CreateTaskRequest captures payload for creating a task. There is no owner
// field on purpose: the owner always comes from the authenticated actor.
type CreateTaskRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
}

// UpdateTaskRequest captures a partial update. Nil fields are left untouched.
type UpdateTaskRequest struct {
	Title       *string       `json:"title,omitempty"`
	Description *string       `json:"description,omitempty"`
	Status      *TaskStatus   `json:"status,omitempty"`
	Priority    *TaskPriority `json:"priority,omitempty"`
}

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Validate trims string fields, applies defaults and checks the field rules.
func (r *CreateTaskRequest) Validate() error {
	var errs ValidationErrors

	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)

	if r.Title == "" {
		errs = append(errs, FieldError{"title", "Title is required"})
	} else if utf8.RuneCountInString(r.Title) > maxTitleLen {
		errs = append(errs, FieldError{"title", "Title cannot exceed 100 characters"})
	}

	if utf8.RuneCountInString(r.Description) > maxDescriptionLen {
		errs = append(errs, FieldError{"description", "Description cannot exceed 500 characters"})
	}

	if r.Status == "" {
		r.Status = StatusPending
	} else if !r.Status.Valid() {
		errs = append(errs, FieldError{"status", "Status must be pending, in-progress, or completed"})
	}

	if r.Priority == "" {
		r.Priority = PriorityMedium
	} else if !r.Priority.Valid() {
		errs = append(errs, FieldError{"priority", "Priority must be low, medium, or high"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Validate trims supplied fields and checks the field rules. Absent fields are
// not validated.
func (r *UpdateTaskRequest) Validate() error {
	var errs ValidationErrors

	if r.Title != nil {
		trimmed := strings.TrimSpace(*r.Title)
		r.Title = &trimmed
		if trimmed == "" {
			errs = append(errs, FieldError{"title", "Title is required"})
		} else if utf8.RuneCountInString(trimmed) > maxTitleLen {
			errs = append(errs, FieldError{"title", "Title cannot exceed 100 characters"})
		}
	}

	if r.Description != nil {
		trimmed := strings.TrimSpace(*r.Description)
		r.Description = &trimmed
		if utf8.RuneCountInString(trimmed) > maxDescriptionLen {
			errs = append(errs, FieldError{"description", "Description cannot exceed 500 characters"})
		}
	}

	if r.Status != nil && !r.Status.Valid() {
		errs = append(errs, FieldError{"status", "Status must be pending, in-progress, or completed"})
	}

	if r.Priority != nil && !r.Priority.Valid() {
		errs = append(errs, FieldError{"priority", "Priority must be low, medium, or high"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Empty reports whether the patch carries no fields at all.
func (r *UpdateTaskRequest) Empty() bool {
	return r.Title == nil && r.Description == nil && r.Status == nil && r.Priority == nil
}
