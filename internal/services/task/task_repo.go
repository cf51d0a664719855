package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

var ErrTaskNotFound = errors.New("task not found")

// Scope restricts a mutation to rows the actor may touch. Admin lifts the
// ownership constraint.
type Scope struct {
	OwnerID string
	Admin   bool
}

// Store is the persistence surface the task service depends on.
type Store interface {
	List(ctx context.Context, ownerID string, filter TaskFilter) ([]*Task, error)
	GetByID(ctx context.Context, id string) (*Task, error)
	Create(ctx context.Context, ownerID string, req *CreateTaskRequest) (*Task, error)
	UpdateScoped(ctx context.Context, id string, scope Scope, req *UpdateTaskRequest) (*Task, error)
	DeleteScoped(ctx context.Context, id string, scope Scope) error
}

// TaskRepo handles database operations for tasks
type TaskRepo struct {
	db *sqlx.DB
}

// NewTaskRepo creates a new task repository
func NewTaskRepo(db *sqlx.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

// List retrieves tasks newest-first. An empty ownerID means no ownership
// constraint (admin listing); status/priority filters are equality matches.
func (r *TaskRepo) List(ctx context.Context, ownerID string, filter TaskFilter) ([]*Task, error) {
	whereParts := []string{}
	args := []interface{}{}

	if ownerID != "" {
		args = append(args, ownerID)
		whereParts = append(whereParts, fmt.Sprintf("owner_id = $%d", len(args)))
	}

	if filter.Status != "" {
		args = append(args, filter.Status)
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}

	if filter.Priority != "" {
		args = append(args, filter.Priority)
		whereParts = append(whereParts, fmt.Sprintf("priority = $%d", len(args)))
	}

	where := ""
	if len(whereParts) > 0 {
		where = "WHERE " + strings.Join(whereParts, " AND ")
	}

	query := fmt.Sprintf(`
        SELECT id, title, description, status, priority, owner_id, created_at, updated_at
        FROM tasks
        %s
        ORDER BY created_at DESC
    `, where)

	tasks := []*Task{}
	err := r.db.SelectContext(ctx, &tasks, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// GetByID retrieves a task by ID
func (r *TaskRepo) GetByID(ctx context.Context, id string) (*Task, error) {
	query := `
        SELECT id, title, description, status, priority, owner_id, created_at, updated_at
        FROM tasks
        WHERE id = $1
    `

	var t Task
	err := r.db.GetContext(ctx, &t, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	return &t, nil
}

// Create inserts a new task for the given owner.
func (r *TaskRepo) Create(ctx context.Context, ownerID string, req *CreateTaskRequest) (*Task, error) {
	query := `
        INSERT INTO tasks (title, description, status, priority, owner_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, title, description, status, priority, owner_id, created_at, updated_at
    `

	var t Task
	err := r.db.GetContext(ctx, &t, query, req.Title, req.Description, req.Status, req.Priority, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return &t, nil
}

// UpdateScoped applies a partial update as a single conditional statement keyed
// on both the id and the scope, so the ownership check and the mutation cannot
// race. Returns ErrTaskNotFound when no row matched; the caller decides whether
// that means missing or forbidden.
func (r *TaskRepo) UpdateScoped(ctx context.Context, id string, scope Scope, req *UpdateTaskRequest) (*Task, error) {
	setParts := []string{}
	args := []interface{}{}

	if req.Title != nil {
		args = append(args, *req.Title)
		setParts = append(setParts, fmt.Sprintf("title = $%d", len(args)))
	}

	if req.Description != nil {
		args = append(args, *req.Description)
		setParts = append(setParts, fmt.Sprintf("description = $%d", len(args)))
	}

	if req.Status != nil {
		args = append(args, *req.Status)
		setParts = append(setParts, fmt.Sprintf("status = $%d", len(args)))
	}

	if req.Priority != nil {
		args = append(args, *req.Priority)
		setParts = append(setParts, fmt.Sprintf("priority = $%d", len(args)))
	}

	setParts = append(setParts, "updated_at = NOW()")

	args = append(args, id)
	idPos := len(args)
	args = append(args, scope.OwnerID)
	ownerPos := len(args)
	args = append(args, scope.Admin)
	adminPos := len(args)

	query := fmt.Sprintf(`
        UPDATE tasks
        SET %s
        WHERE id = $%d AND (owner_id = $%d OR $%d)
        RETURNING id, title, description, status, priority, owner_id, created_at, updated_at
    `, strings.Join(setParts, ", "), idPos, ownerPos, adminPos)

	var t Task
	err := r.db.GetContext(ctx, &t, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return &t, nil
}

// DeleteScoped removes a task with the same conditional pattern as UpdateScoped.
func (r *TaskRepo) DeleteScoped(ctx context.Context, id string, scope Scope) error {
	query := `DELETE FROM tasks WHERE id = $1 AND (owner_id = $2 OR $3)`

	result, err := r.db.ExecContext(ctx, query, id, scope.OwnerID, scope.Admin)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrTaskNotFound
	}

	return nil
}
