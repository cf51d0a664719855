package api

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fasthttp/router"
	"github.com/redis/go-redis/v9"
	"github.com/taskflow/taskflow/internal/api/authenticator"
	"github.com/taskflow/taskflow/internal/api/controllers"
	"github.com/taskflow/taskflow/internal/api/ratelimit"
	"github.com/taskflow/taskflow/internal/api/response"
	"github.com/taskflow/taskflow/internal/perrors"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/propagation"
)

var tracePropagator = propagation.TraceContext{}

func (s *Server) initRoutes() fasthttp.RequestHandler {
	r := router.New()

	r.GET("/api/v1/health", func(ctx *fasthttp.RequestCtx) {
		response.NewResponse(context.Background(), "TaskFlow API is running", map[string]any{
			"version":   "1.0.0",
			"timestamp": time.Now().Format(time.RFC3339),
		}).Write(ctx)
	})

	r.NotFound = func(ctx *fasthttp.RequestCtx) {
		response.NewResponse[any](context.Background(), "Route not found", nil).
			WithError(perrors.NewErrNotFound("Route not found", errors.New(string(ctx.Path())))).
			Write(ctx)
	}

	auth, err := authenticator.New(s.conf)
	if err != nil {
		log.Fatal(err)
	}

	controllers.RegisterAuthRoutes(r, s.services, auth, controllers.AuthRateLimit{
		Storage: s.newRateLimitStorage(),
		Limit:   ratelimit.Limit{Requests: s.conf.AUTH_RATE_LIMIT, Window: time.Minute},
	})
	controllers.RegisterTaskRoutes(r, s.services)

	return s.withMiddlewares(r.Handler, auth)
}

// newRateLimitStorage picks Redis-backed buckets when a Redis address is
// configured, otherwise per-process ones.
func (s *Server) newRateLimitStorage() ratelimit.Storage {
	if s.conf.REDIS_ADDR == "" {
		return ratelimit.NewInMemoryStorage()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     s.conf.REDIS_ADDR,
		Password: s.conf.REDIS_PASSWORD,
	})
	storage := ratelimit.NewRedisStorage(client, "taskflow:auth:")
	if err := storage.Ping(context.Background()); err != nil {
		slog.Warn("Failed to connect to Redis, falling back to in-memory rate limiting", slog.Any("error", err))
		return ratelimit.NewInMemoryStorage()
	}

	slog.Info("Connected to Redis for rate limiting")
	return storage
}

func (s *Server) withMiddlewares(next fasthttp.RequestHandler, auth *authenticator.Authenticator) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		applyCORS(ctx)
		if string(ctx.Method()) == fasthttp.MethodOptions {
			ctx.SetStatusCode(fasthttp.StatusNoContent)
			return
		}

		start := time.Now()
		uri := ctx.URI()
		requestURI := string(uri.FullURI())
		slog.Info("Started processing", slog.String("method", string(ctx.Method())), slog.String("request_uri", requestURI))

		h := http.Header{}
		ctx.Request.Header.VisitAll(func(k, v []byte) {
			h[string(k)] = []string{string(v)}
		})
		traceCtx := tracePropagator.Extract(ctx, propagation.HeaderCarrier(h))
		ctx.SetUserValue("traceCtx", traceCtx)

		// Auth check
		if !isPublicRoute(ctx) {
			accessToken := strings.TrimPrefix(string(ctx.Request.Header.Peek("Authorization")), "Bearer ")
			if accessToken == "" {
				accessToken = string(ctx.Request.Header.Cookie("access_token"))
			}

			if accessToken == "" {
				writeUnauthorized(ctx, "Not authorized, no token provided")
				return
			}

			claims, err := auth.VerifyAccessToken(accessToken)
			if err != nil {
				if errors.Is(err, authenticator.ErrTokenExpired) {
					writeUnauthorized(ctx, "Token has expired")
				} else {
					writeUnauthorized(ctx, "Invalid token")
				}
				return
			}

			// The token is only a pointer to the identity. The user record is
			// the source of truth for the current role, and the account may
			// have been removed since the token was issued.
			u, err := s.services.User.GetByID(context.Background(), claims.UserID)
			if err != nil {
				writeUnauthorized(ctx, "Not authorized")
				return
			}

			ctx.SetUserValue("authUser", u)
		}

		next(ctx)

		slog.Info("Finished processing", slog.String("method", string(ctx.Method())), slog.String("request_uri", requestURI), slog.Duration("duration", time.Since(start)))
	}
}

func writeUnauthorized(ctx *fasthttp.RequestCtx, msg string) {
	response.NewResponse[any](context.Background(), msg, nil).
		WithError(perrors.NewErrUnauthorized(msg, errors.New(msg))).
		Write(ctx)
}

func applyCORS(ctx *fasthttp.RequestCtx) {
	headers := &ctx.Response.Header
	headers.Set("Access-Control-Allow-Origin", string(ctx.Request.Header.Peek("Origin")))
	headers.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS,PATCH")
	headers.Set("Access-Control-Allow-Headers", os.Getenv("ALLOWED_HEADERS"))
	headers.Set("Access-Control-Allow-Credentials", "true")
}

func isPublicRoute(ctx *fasthttp.RequestCtx) bool {
	path := string(ctx.Path())

	publicAuthRoutes := []string{
		"/api/v1/auth/register",
		"/api/v1/auth/login",
	}

	switch {
	case path == "/api/v1/health":
		return true
	default:
		for _, route := range publicAuthRoutes {
			if path == route {
				return true
			}
		}
		return false
	}
}
