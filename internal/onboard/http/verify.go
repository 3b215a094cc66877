package http

import (
	"errors"
	"net/http"

	"github.com/platolabs/onboard/internal/onboard/service"
	"github.com/platolabs/onboard/pkg/httpx"
	"github.com/platolabs/onboard/pkg/slogx"
)

// VerifyHandler serves POST /v1/auth/verify
type VerifyHandler struct {
	VerificationService *service.VerificationService
}

type VerifyRequest struct {
	Code string `json:"code"`
}

type VerifyResponse struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
}

// ServeHTTP godoc
//
//	@Summary		Verify Endpoint
//	@Description	Consumes a pending 6-digit verification code and marks the matching account verified.
//	@Description	Each code works exactly once; wrong, stale and already-used codes all get the same rejection.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		VerifyRequest		true	"code"
//	@Success		200		{object}	VerifyResponse		"user_id, email, verified"
//	@Failure		400		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/auth/verify [post].
func (h *VerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req VerifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.VerificationService.VerifyCode(ctx, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCode):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_or_expired_code", "Verification code is invalid or expired")
		default:
			log.Error("verification failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to verify account")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, VerifyResponse{
		UserID:   user.ID,
		Email:    user.Email,
		Verified: true,
	})
}
