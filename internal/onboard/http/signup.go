package http

import (
	"errors"
	"net/http"

	"github.com/platolabs/onboard/internal/onboard/service"
	"github.com/platolabs/onboard/pkg/httpx"
	"github.com/platolabs/onboard/pkg/slogx"
)

// SignupHandler serves POST /v1/auth/signup
type SignupHandler struct {
	AccountService *service.AccountService
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`

	// CheckOnly short-circuits into an email availability probe for the
	// signup form; no account is created.
	CheckOnly bool `json:"check_only,omitempty"`
}

type SignupResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type EmailCheckResponse struct {
	Exists bool `json:"exists"`
}

// ServeHTTP godoc
//
//	@Summary		Signup Endpoint
//	@Description	Creates an unverified account and emails a 6-digit verification code.
//	@Description	With check_only=true it only checks availability: 200 when the email is free,
//	@Description	the usual duplicate rejection when it is taken.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		SignupRequest		true	"email, password, optional role (user, startup, investor), optional check_only"
//	@Success		200		{object}	EmailCheckResponse	"exists (check_only mode)"
//	@Success		201		{object}	SignupResponse		"user_id, email, role"
//	@Failure		400		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/auth/signup [post].
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// Availability probe for the signup form. A taken email gets the
	// same rejection as a full signup attempt would.
	if req.CheckOnly {
		if req.Email == "" {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email is required")
			return
		}
		exists, err := h.AccountService.EmailExists(ctx, req.Email)
		if err != nil {
			log.Error("email availability check failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to check email")
			return
		}
		if exists {
			httpx.WriteError(w, http.StatusBadRequest, "user_exists", "An account with this email already exists")
			return
		}
		httpx.WriteJSON(w, http.StatusOK, EmailCheckResponse{Exists: false})
		return
	}

	user, err := h.AccountService.Signup(ctx, req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSignupRequest):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		case errors.Is(err, service.ErrInvalidRole):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "role must be one of user, startup, investor")
		case errors.Is(err, service.ErrUserExists):
			httpx.WriteError(w, http.StatusBadRequest, "user_exists", "An account with this email already exists")
		default:
			log.Error("signup failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to create account")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, SignupResponse{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role.String(),
	})
}
