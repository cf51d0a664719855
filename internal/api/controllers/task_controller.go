package controllers

import (
	"context"
	"errors"

	"github.com/fasthttp/router"
	"github.com/taskflow/taskflow/internal/perrors"
	"github.com/taskflow/taskflow/internal/services"
	task2 "github.com/taskflow/taskflow/internal/services/task"
	"github.com/valyala/fasthttp"
)

func RegisterTaskRoutes(r *router.Router, svc *services.Services) {
	// List tasks (users see own; admins see all)
	r.GET("/api/v1/tasks", func(ctx *fasthttp.RequestCtx) {
		stdCtx, span := tracer.Start(requestContext(ctx), "Controller.Task.List")
		defer span.End()
		u := currentUser(ctx)
		if u == nil {
			writeError(ctx, stdCtx, "Unauthorized", perrors.NewErrUnauthorized("Unauthorized", errors.New("no authenticated user")))
			return
		}

		filter := task2.TaskFilter{
			Status:   string(ctx.QueryArgs().Peek("status")),
			Priority: string(ctx.QueryArgs().Peek("priority")),
		}

		tasks, err := svc.Task.List(stdCtx, asActor(u), filter)
		if err != nil {
			writeTaskError(ctx, stdCtx, "Failed to list tasks", err)
			return
		}

		writeOK(ctx, stdCtx, "Tasks retrieved successfully", tasks)
	})

	// Get single task
	r.GET("/api/v1/tasks/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx, span := tracer.Start(requestContext(ctx), "Controller.Task.Get")
		defer span.End()
		u := currentUser(ctx)
		if u == nil {
			writeError(ctx, stdCtx, "Unauthorized", perrors.NewErrUnauthorized("Unauthorized", errors.New("no authenticated user")))
			return
		}

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		t, err := svc.Task.Get(stdCtx, asActor(u), id.String())
		if err != nil {
			writeTaskError(ctx, stdCtx, "Failed to get task", err)
			return
		}

		writeOK(ctx, stdCtx, "Task retrieved successfully", t)
	})

	// Create task
	r.POST("/api/v1/tasks", func(ctx *fasthttp.RequestCtx) {
		stdCtx, span := tracer.Start(requestContext(ctx), "Controller.Task.Create")
		defer span.End()
		u := currentUser(ctx)
		if u == nil {
			writeError(ctx, stdCtx, "Unauthorized", perrors.NewErrUnauthorized("Unauthorized", errors.New("no authenticated user")))
			return
		}

		var body task2.CreateTaskRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		created, err := svc.Task.Create(stdCtx, asActor(u), &body)
		if err != nil {
			writeTaskError(ctx, stdCtx, "Failed to create task", err)
			return
		}

		writeCreated(ctx, stdCtx, "Task created successfully", created)
	})

	// Update task
	r.PUT("/api/v1/tasks/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx, span := tracer.Start(requestContext(ctx), "Controller.Task.Update")
		defer span.End()
		u := currentUser(ctx)
		if u == nil {
			writeError(ctx, stdCtx, "Unauthorized", perrors.NewErrUnauthorized("Unauthorized", errors.New("no authenticated user")))
			return
		}

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		var body task2.UpdateTaskRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		updated, err := svc.Task.Update(stdCtx, asActor(u), id.String(), &body)
		if err != nil {
			writeTaskError(ctx, stdCtx, "Failed to update task", err)
			return
		}

		writeOK(ctx, stdCtx, "Task updated successfully", updated)
	})

	// Delete task
	r.DELETE("/api/v1/tasks/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx, span := tracer.Start(requestContext(ctx), "Controller.Task.Delete")
		defer span.End()
		u := currentUser(ctx)
		if u == nil {
			writeError(ctx, stdCtx, "Unauthorized", perrors.NewErrUnauthorized("Unauthorized", errors.New("no authenticated user")))
			return
		}

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		if err := svc.Task.Delete(stdCtx, asActor(u), id.String()); err != nil {
			writeTaskError(ctx, stdCtx, "Failed to delete task", err)
			return
		}

		writeOK(ctx, stdCtx, "Task deleted successfully", map[string]any{})
	})
}

// writeTaskError maps task service failures onto the error taxonomy.
func writeTaskError(ctx *fasthttp.RequestCtx, stdCtx context.Context, message string, err error) {
	var verrs task2.ValidationErrors

	switch {
	case errors.As(err, &verrs):
		writeError(ctx, stdCtx, "Validation failed", perrors.NewErrInvalidRequest("Validation failed", err, map[string]interface{}{"errors": verrs}))
	case errors.Is(err, task2.ErrTaskNotFound):
		writeError(ctx, stdCtx, "Task not found", perrors.NewErrNotFound("Task not found", err))
	case errors.Is(err, task2.ErrTaskForbidden):
		writeError(ctx, stdCtx, "Not authorized to access this task", perrors.NewErrForbidden("Not authorized to access this task", err))
	default:
		writeError(ctx, stdCtx, message, perrors.NewErrInternalServerError(message, err))
	}
}
