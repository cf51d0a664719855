package task

import (
	"context"
	"errors"
	"fmt"
)

// ErrTaskForbidden is returned when the task exists but the actor may not
// touch it.
var ErrTaskForbidden = errors.New("not authorized to access this task")

// TaskService contains the ownership policy and business logic for tasks
type TaskService struct {
	repo Store
}

// NewTaskService constructs a new TaskService
func NewTaskService(repo Store) *TaskService {
	return &TaskService{repo: repo}
}

// CanAccess is the single-resource authorization rule: admins may act on any
// task, everyone else only on their own.
func CanAccess(actor Actor, ownerID string) bool {
	return actor.Admin || actor.ID == ownerID
}

// List returns tasks matching the filter, newest first. Non-admin actors are
// implicitly scoped to their own tasks at the query level; admins see all.
// Filter values are matched as-is: an unknown status or priority simply
// matches no rows.
func (s *TaskService) List(ctx context.Context, actor Actor, filter TaskFilter) ([]*Task, error) {
	ownerID := actor.ID
	if actor.Admin {
		ownerID = ""
	}

	tasks, err := s.repo.List(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// Get fetches a single task, then applies the access rule. A missing task is
// reported before a denied one.
func (s *TaskService) Get(ctx context.Context, actor Actor, id string) (*Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if !CanAccess(actor, t.OwnerID) {
		return nil, ErrTaskForbidden
	}

	return t, nil
}

// Create stores a new task owned by the actor. Any owner supplied in the
// payload never reaches this layer; the request type has no owner field.
func (s *TaskService) Create(ctx context.Context, actor Actor, req *CreateTaskRequest) (*Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, actor.ID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return created, nil
}

// Update applies a partial patch to a task the actor may touch. The mutation
// runs as one conditional statement against the store; when nothing matches,
// a follow-up fetch resolves not-found versus forbidden.
func (s *TaskService) Update(ctx context.Context, actor Actor, id string, req *UpdateTaskRequest) (*Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// An all-absent patch writes nothing; resolve it as a scoped read so the
	// not-found and forbidden answers stay the same.
	if req.Empty() {
		return s.Get(ctx, actor, id)
	}

	updated, err := s.repo.UpdateScoped(ctx, id, s.scope(actor), req)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil, s.resolveMiss(ctx, id)
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return updated, nil
}

// Delete removes a task the actor may touch. A repeated delete reports
// not-found, not success.
func (s *TaskService) Delete(ctx context.Context, actor Actor, id string) error {
	if err := s.repo.DeleteScoped(ctx, id, s.scope(actor)); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return s.resolveMiss(ctx, id)
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

func (s *TaskService) scope(actor Actor) Scope {
	return Scope{OwnerID: actor.ID, Admin: actor.Admin}
}

// resolveMiss distinguishes a task that never existed from one the scope
// excluded. Called only after a scoped mutation matched zero rows.
func (s *TaskService) resolveMiss(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err == nil {
		return ErrTaskForbidden
	} else if !errors.Is(err, ErrTaskNotFound) {
		return fmt.Errorf("failed to get task: %w", err)
	}
	return ErrTaskNotFound
}
