package http

import (
	"errors"
	"net/http"

	"github.com/platolabs/onboard/internal/onboard/service"
	"github.com/platolabs/onboard/pkg/httpx"
	"github.com/platolabs/onboard/pkg/slogx"
)

// LoginHandler serves POST /v1/auth/login
type LoginHandler struct {
	AccountService *service.AccountService
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
}

// ServeHTTP godoc
//
//	@Summary		Login Endpoint
//	@Description	Exchanges email and password for a short-lived bearer access token.
//	@Description	Accounts must complete email verification before they can log in.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest		true	"email, password"
//	@Success		200		{object}	LoginResponse		"access_token, token_type, expires_in, user_id, role"
//	@Failure		400		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	httpx.ErrorResponse	"error, error_description"
//	@Header			200		{string}	Cache-Control		"no-store"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.AccountService.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "Email or password is incorrect")
		case errors.Is(err, service.ErrEmailNotVerified):
			httpx.WriteError(w, http.StatusForbidden, "email_not_verified", "Verify your email before logging in")
		default:
			log.Error("login failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to log in")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.AccountService.AccessTTL.Seconds()),
		UserID:      user.ID,
		Role:        user.Role.String(),
	})
}
