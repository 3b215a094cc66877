package http

import (
	"errors"
	"net/http"

	"github.com/platolabs/onboard/internal/onboard/service"
	"github.com/platolabs/onboard/pkg/httpx"
	"github.com/platolabs/onboard/pkg/slogx"
)

// OrganizationsHandler serves the /v1/organizations endpoints.
type OrganizationsHandler struct {
	OrganizationService *service.OrganizationService
}

type CreateOrganizationRequest struct {
	Name string `json:"name"`
}

type OrganizationResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type MyOrganizationResponse struct {
	OrganizationSlug *string `json:"organization_slug"`
}

// HandleCreate godoc
//
//	@Summary		Create Organization Endpoint
//	@Description	Creates an organization named by the caller and attaches the caller as its first member.
//	@Description	The URL slug is derived from the name; duplicate names get a numeric suffix (acme-inc, acme-inc-1, ...).
//	@Tags			Organizations
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateOrganizationRequest	true	"name"
//	@Success		201		{object}	OrganizationResponse		"id, name, slug"
//	@Failure		400		{object}	httpx.ErrorResponse			"error, error_description"
//	@Failure		401		{object}	httpx.ErrorResponse			"error, error_description"
//	@Failure		500		{object}	httpx.ErrorResponse			"error, error_description"
//	@Router			/v1/organizations [post].
func (h *OrganizationsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "Authentication required")
		return
	}

	var req CreateOrganizationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	org, err := h.OrganizationService.CreateOrganization(ctx, req.Name, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOrganizationRequest):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "name must contain at least one letter or digit")
		case errors.Is(err, service.ErrFounderNotFound):
			// Token subject no longer maps to a user row.
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "Account no longer exists")
		case errors.Is(err, service.ErrOrganizationCreateFailed):
			log.Error("organization create exhausted retries")
			httpx.WriteError(w, http.StatusInternalServerError, "creation_failed", "Could not create organization, try again")
		default:
			log.Error("organization create failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to create organization")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, OrganizationResponse{
		ID:   org.ID,
		Name: org.Name,
		Slug: org.Slug,
	})
}

// HandleGetBySlug godoc
//
//	@Summary		Organization Lookup Endpoint
//	@Description	Fetches an organization by its URL slug.
//	@Tags			Organizations
//	@Produce		json
//	@Param			slug	path		string					true	"Organization slug"
//	@Success		200		{object}	OrganizationResponse	"id, name, slug"
//	@Failure		404		{object}	httpx.ErrorResponse		"error, error_description"
//	@Failure		500		{object}	httpx.ErrorResponse		"error, error_description"
//	@Router			/v1/organizations/{slug} [get].
func (h *OrganizationsHandler) HandleGetBySlug(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	slug := r.PathValue("slug")

	org, err := h.OrganizationService.GetBySlug(ctx, slug)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrganizationNotFound):
			httpx.WriteError(w, http.StatusNotFound, "not_found", "No organization with this slug")
		default:
			log.Error("organization lookup failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to look up organization")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, OrganizationResponse{
		ID:   org.ID,
		Name: org.Name,
		Slug: org.Slug,
	})
}

// HandleMine godoc
//
//	@Summary		My Organization Endpoint
//	@Description	Returns the slug of the caller's organization, or null when they have none yet.
//	@Description	Backs the onboarding flow's decision between "create one" and "go to dashboard".
//	@Tags			Organizations
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	MyOrganizationResponse	"organization_slug"
//	@Failure		401	{object}	httpx.ErrorResponse		"error, error_description"
//	@Failure		500	{object}	httpx.ErrorResponse		"error, error_description"
//	@Router			/v1/me/organization [get].
func (h *OrganizationsHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := httpx.UserIDFromContext(ctx)
	if userID == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "Authentication required")
		return
	}

	org, err := h.OrganizationService.OrganizationForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrOrganizationNotFound) {
			httpx.WriteJSON(w, http.StatusOK, MyOrganizationResponse{OrganizationSlug: nil})
			return
		}
		log.Error("my organization lookup failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Failed to look up organization")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, MyOrganizationResponse{OrganizationSlug: &org.Slug})
}
