package controllers

import (
	"errors"
	"time"

	"github.com/fasthttp/router"
	"github.com/taskflow/taskflow/internal/api/authenticator"
	"github.com/taskflow/taskflow/internal/api/ratelimit"
	"github.com/taskflow/taskflow/internal/perrors"
	"github.com/taskflow/taskflow/internal/services"
	user2 "github.com/taskflow/taskflow/internal/services/user"
	"github.com/valyala/fasthttp"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func newUserResponse(u *user2.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
	}
}

type AuthRateLimit struct {
	Storage ratelimit.Storage
	Limit   ratelimit.Limit
}

func RegisterAuthRoutes(r *router.Router, svc *services.Services, auth *authenticator.Authenticator, rl AuthRateLimit) {
	// Register a new account
	r.POST("/api/v1/auth/register", func(ctx *fasthttp.RequestCtx) {
		stdCtx, span := tracer.Start(requestContext(ctx), "Controller.Auth.Register")
		defer span.End()

		if !allowAuthRequest(ctx, rl) {
			writeError(ctx, stdCtx, "Too many requests", perrors.New(perrors.ErrCodeTooManyRequests, "Too many requests", errors.New("auth rate limit exceeded")))
			return
		}

		var req user2.RegisterRequest
		if err := parseBody(ctx, &req); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		created, err := svc.User.Register(stdCtx, &req)
		if err != nil {
			switch {
			case errors.Is(err, user2.ErrEmailTaken):
				writeError(ctx, stdCtx, "Email is already registered", perrors.NewErrConflict("Email is already registered", err))
			case errors.Is(err, user2.ErrInvalidInput):
				writeError(ctx, stdCtx, err.Error(), perrors.NewErrInvalidRequest(err.Error(), err))
			default:
				writeError(ctx, stdCtx, "Failed to register", perrors.NewErrInternalServerError("Failed to register", err))
			}
			return
		}

		token, err := auth.GenerateToken(created.ID, created.Email, created.Name, string(created.Role))
		if err != nil {
			writeError(ctx, stdCtx, "Failed to generate token", perrors.NewErrInternalServerError("Failed to generate token", err))
			return
		}

		setAccessTokenCookie(ctx, token, auth.TokenTTL())

		writeCreated(ctx, stdCtx, "Registered successfully", LoginResponse{
			Token: token,
			User:  newUserResponse(created),
		})
	})

	// Login with email/password
	r.POST("/api/v1/auth/login", func(ctx *fasthttp.RequestCtx) {
		stdCtx, span := tracer.Start(requestContext(ctx), "Controller.Auth.Login")
		defer span.End()

		if !allowAuthRequest(ctx, rl) {
			writeError(ctx, stdCtx, "Too many requests", perrors.New(perrors.ErrCodeTooManyRequests, "Too many requests", errors.New("auth rate limit exceeded")))
			return
		}

		var req LoginRequest
		if err := parseBody(ctx, &req); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		if req.Email == "" || req.Password == "" {
			writeError(ctx, stdCtx, "Email and password are required", perrors.NewErrInvalidRequest("Email and password are required", errors.New("missing credentials")))
			return
		}

		found, err := svc.User.Authenticate(stdCtx, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, user2.ErrInvalidCredentials) {
				writeError(ctx, stdCtx, "Invalid credentials", perrors.NewErrUnauthorized("Invalid credentials", err))
			} else {
				writeError(ctx, stdCtx, "Failed to authenticate", perrors.NewErrInternalServerError("Failed to authenticate", err))
			}
			return
		}

		token, err := auth.GenerateToken(found.ID, found.Email, found.Name, string(found.Role))
		if err != nil {
			writeError(ctx, stdCtx, "Failed to generate token", perrors.NewErrInternalServerError("Failed to generate token", err))
			return
		}

		setAccessTokenCookie(ctx, token, auth.TokenTTL())

		writeOK(ctx, stdCtx, "Logged in successfully", LoginResponse{
			Token: token,
			User:  newUserResponse(found),
		})
	})

	// Get current user info
	r.GET("/api/v1/auth/me", func(ctx *fasthttp.RequestCtx) {
		stdCtx, span := tracer.Start(requestContext(ctx), "Controller.Auth.Me")
		defer span.End()

		u := currentUser(ctx)
		if u == nil {
			writeError(ctx, stdCtx, "Unauthorized", perrors.NewErrUnauthorized("Unauthorized", errors.New("no authenticated user")))
			return
		}

		writeOK(ctx, stdCtx, "success", newUserResponse(u))
	})

	// Logout endpoint
	r.POST("/api/v1/auth/logout", func(ctx *fasthttp.RequestCtx) {
		stdCtx, span := tracer.Start(requestContext(ctx), "Controller.Auth.Logout")
		defer span.End()

		// Clear the access_token cookie
		var cookie fasthttp.Cookie
		cookie.SetKey("access_token")
		cookie.SetValue("")
		cookie.SetPath("/")
		cookie.SetHTTPOnly(true)
		cookie.SetExpire(time.Now().Add(-1 * time.Hour))
		ctx.Response.Header.SetCookie(&cookie)

		writeOK(ctx, stdCtx, "Logged out successfully", map[string]any{
			"message": "Logged out successfully",
		})
	})
}

func allowAuthRequest(ctx *fasthttp.RequestCtx, rl AuthRateLimit) bool {
	if rl.Storage == nil {
		return true
	}

	allowed, err := rl.Storage.Allow(requestContext(ctx), ctx.RemoteIP().String(), rl.Limit)
	if err != nil {
		// A broken limiter must not lock everyone out
		return true
	}
	return allowed
}

func setAccessTokenCookie(ctx *fasthttp.RequestCtx, token string, ttl time.Duration) {
	var cookie fasthttp.Cookie
	cookie.SetKey("access_token")
	cookie.SetValue(token)
	cookie.SetPath("/")
	cookie.SetHTTPOnly(true)
	cookie.SetSecure(false) // Set to true in production (HTTPS)
	cookie.SetSameSite(fasthttp.CookieSameSiteLaxMode)
	cookie.SetExpire(time.Now().Add(ttl))
	ctx.Response.Header.SetCookie(&cookie)
}
