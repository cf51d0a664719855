package response

import (
	"context"
	"errors"
	"net/http"
	"testing"

	json "github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskflow/taskflow/internal/perrors"
	"github.com/valyala/fasthttp"
)

func TestWriteSuccess(t *testing.T) {
	ctx := &fasthttp.RequestCtx{}

	NewResponse(context.Background(), "success", map[string]string{"hello": "world"}).Write(ctx)

	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "application/json", string(ctx.Response.Header.Peek("content-type")))

	var body struct {
		Error   bool              `json:"error"`
		Message string            `json:"message"`
		Data    map[string]string `json:"data"`
		Status  int               `json:"status"`
	}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
	assert.False(t, body.Error)
	assert.Equal(t, "success", body.Message)
	assert.Equal(t, "world", body.Data["hello"])
}

func TestWithErrorMapsStatusFromPerror(t *testing.T) {
	ctx := &fasthttp.RequestCtx{}

	NewResponse[any](context.Background(), "Task not found", nil).
		WithError(perrors.NewErrNotFound("Task not found", errors.New("no such task"))).
		Write(ctx)

	assert.Equal(t, http.StatusNotFound, ctx.Response.StatusCode())

	var body struct {
		Error   bool   `json:"error"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
	assert.True(t, body.Error)
	assert.Equal(t, "Task not found", body.Message)
}

func TestWithErrorWrapsUnknownErrorsAsInternal(t *testing.T) {
	ctx := &fasthttp.RequestCtx{}

	NewResponse[any](context.Background(), "Something broke", nil).
		WithError(errors.New("driver: bad connection")).
		Write(ctx)

	assert.Equal(t, http.StatusInternalServerError, ctx.Response.StatusCode())
}

func TestSanitizedErrorHidesRawError(t *testing.T) {
	SanitizeErrors(true)
	t.Cleanup(func() { SanitizeErrors(false) })

	ctx := &fasthttp.RequestCtx{}

	NewResponse[any](context.Background(), "Failed to create task", nil).
		WithError(perrors.NewErrInternalServerError("Failed to create task", errors.New("pq: connection refused host=db-internal"))).
		Write(ctx)

	assert.Equal(t, http.StatusInternalServerError, ctx.Response.StatusCode())
	assert.NotContains(t, string(ctx.Response.Body()), "db-internal")

	var body struct {
		ErrorDetails struct {
			Err string `json:"error"`
		} `json:"errorDetails"`
	}
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &body))
	assert.Equal(t, "Failed to create task", body.ErrorDetails.Err)
}

func TestUnsanitizedErrorKeepsRawError(t *testing.T) {
	SanitizeErrors(false)

	ctx := &fasthttp.RequestCtx{}

	NewResponse[any](context.Background(), "Failed to create task", nil).
		WithError(perrors.NewErrInternalServerError("Failed to create task", errors.New("pq: connection refused"))).
		Write(ctx)

	assert.Contains(t, string(ctx.Response.Body()), "pq: connection refused")
}

func TestWithStatusOverride(t *testing.T) {
	ctx := &fasthttp.RequestCtx{}

	NewResponse(context.Background(), "created", "id-1").
		WithStatus(http.StatusCreated).
		Write(ctx)

	assert.Equal(t, http.StatusCreated, ctx.Response.StatusCode())
}
