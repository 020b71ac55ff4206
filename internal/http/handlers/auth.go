package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tumorvision/tumorvision/internal/auth"
	"github.com/tumorvision/tumorvision/internal/domain/user"
)

// Authenticator resolves credentials and establishes the session on success.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (user.User, error)
	SignUp(ctx context.Context, name, email, password string) (user.User, error)
}

// SessionAccess is what logout and /auth/me need from the session manager.
type SessionAccess interface {
	Current() (user.User, bool)
	Clear(ctx context.Context) error
}

type AuthHandler struct {
	authenticator Authenticator
	sessions      SessionAccess
}

func NewAuthHandler(authenticator Authenticator, sessions SessionAccess) *AuthHandler {
	return &AuthHandler{
		authenticator: authenticator,
		sessions:      sessions,
	}
}

// Shape validation lives in the auth service, not in binding tags, so the
// response codes match the service's own rules.
type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SignUpRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// resolution latency is simulated, so give the handler generous room
const authTimeout = 10 * time.Second

func (h *AuthHandler) SignIn(ctx *gin.Context) {
	var req SignInRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), authTimeout)
	defer cancel()

	u, err := h.authenticator.SignIn(cctx, req.Email, req.Password)
	if err != nil {
		respondAuthError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user":     u,
		"redirect": "upload",
	})
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), authTimeout)
	defer cancel()

	u, err := h.authenticator.SignUp(cctx, req.Name, req.Email, req.Password)
	if err != nil {
		respondAuthError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"user":     u,
		"redirect": "upload",
	})
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.sessions.Clear(cctx); err != nil {
		RespondInternal(ctx, "Could not end session")
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	u, ok := h.sessions.Current()
	if !ok {
		RespondUnAuthorized(ctx, "no_session", "No active session")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

func respondAuthError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidEmail):
		RespondBadRequest(ctx, "invalid_email", "Please enter a valid email address.", nil)
	case errors.Is(err, auth.ErrPasswordTooShort):
		RespondBadRequest(ctx, "password_too_short", "Password must be at least 6 characters.", nil)
	case errors.Is(err, auth.ErrNameTooShort):
		RespondBadRequest(ctx, "name_too_short", "Please enter your full name.", nil)
	case errors.Is(err, auth.ErrInvalidCredentials):
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
	case errors.Is(err, auth.ErrEmailTaken):
		RespondConflict(ctx, "email_taken", "An account with this email already exists.")
	default:
		RespondInternal(ctx, "Could not complete the request")
	}
}
