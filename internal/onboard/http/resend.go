package http

import (
	"errors"
	"net/http"

	"github.com/platolabs/onboard/internal/onboard/mail"
	"github.com/platolabs/onboard/internal/onboard/service"
	"github.com/platolabs/onboard/pkg/httpx"
	"github.com/platolabs/onboard/pkg/slogx"
)

// ResendHandler serves POST /v1/auth/resend
type ResendHandler struct {
	VerificationService *service.VerificationService
}

type ResendRequest struct {
	Email string `json:"email"`
}

type ResendResponse struct {
	Status string `json:"status"`
}

// ServeHTTP godoc
//
//	@Summary		Resend Verification Code Endpoint
//	@Description	Regenerates the pending verification code for an unverified account and re-sends it.
//	@Description	The previous code stops validating. Unknown emails and verified accounts get the same rejection.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ResendRequest		true	"email"
//	@Success		200		{object}	ResendResponse		"status"
//	@Failure		400		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		502		{object}	httpx.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	httpx.ErrorResponse	"error, error_description"
//	@Router			/v1/auth/resend [post].
func (h *ResendHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req ResendRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email is required")
		return
	}

	if err := h.VerificationService.ResendCode(ctx, req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyVerifiedOrNotFound):
			httpx.WriteError(w, http.StatusBadRequest, "already_verified_or_not_found", "No unverified account with this email")
		case errors.Is(err, mail.ErrTransport):
			log.Error("resend delivery failed", "err", err)
			httpx.WriteError(w, http.StatusBadGateway, "delivery_failed", "Could not send the verification email")
		default:
			log.Error("resend failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to resend verification code")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ResendResponse{Status: "sent"})
}
