package controllers

import (
	"context"
	"errors"
	"fmt"

	json "github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/taskflow/taskflow/internal/api/response"
	"github.com/taskflow/taskflow/internal/services/task"
	"github.com/taskflow/taskflow/internal/services/user"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("Controller")

// requestContext returns the context the middleware attached to the request,
// carrying the trace context extracted from the incoming headers. fasthttp does
// not provide a standard context, so Background is the fallback.
func requestContext(ctx *fasthttp.RequestCtx) context.Context {
	if stdCtx, ok := ctx.UserValue("traceCtx").(context.Context); ok {
		return stdCtx
	}
	return context.Background()
}

func parseBody(ctx *fasthttp.RequestCtx, target any) error {
	body := ctx.PostBody()
	if len(body) == 0 {
		return errors.New("request body is empty")
	}

	return json.Unmarshal(body, target)
}

func writeError(ctx *fasthttp.RequestCtx, stdCtx context.Context, message string, err error) {
	if span := trace.SpanFromContext(stdCtx); span.IsRecording() {
		span.RecordError(err)
		span.SetStatus(codes.Error, message)
	}
	response.NewResponse[any](stdCtx, message, nil).WithError(err).Write(ctx)
}

func writeOK(ctx *fasthttp.RequestCtx, stdCtx context.Context, message string, data any) {
	response.NewResponse(stdCtx, message, data).Write(ctx)
}

func writeCreated(ctx *fasthttp.RequestCtx, stdCtx context.Context, message string, data any) {
	response.NewResponse(stdCtx, message, data).WithStatus(fasthttp.StatusCreated).Write(ctx)
}

func pathParam(ctx *fasthttp.RequestCtx, key string) (string, error) {
	val := ctx.UserValue(key)
	if val == nil {
		return "", fmt.Errorf("%s is required", key)
	}

	return fmt.Sprint(val), nil
}

func pathParamUUID(ctx *fasthttp.RequestCtx, key string) (uuid.UUID, error) {
	val, err := pathParam(ctx, key)
	if err != nil {
		return uuid.Nil, err
	}

	return uuid.Parse(val)
}

// currentUser returns the identity the auth middleware attached, or nil for
// unauthenticated requests.
func currentUser(ctx *fasthttp.RequestCtx) *user.User {
	u, ok := ctx.UserValue("authUser").(*user.User)
	if !ok {
		return nil
	}
	return u
}

func asActor(u *user.User) task.Actor {
	return task.Actor{ID: u.ID, Admin: u.IsAdmin()}
}
