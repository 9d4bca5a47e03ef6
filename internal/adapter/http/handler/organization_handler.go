package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackclub/hermes/internal/adapter/http/dto"
	"github.com/hackclub/hermes/internal/domain"
	"github.com/hackclub/hermes/internal/usecase"
)

// OrganizationService defines the behavior needed by OrganizationHandler.
type OrganizationService interface {
	CreateOrganization(ctx context.Context, input usecase.CreateOrganizationInput) (*domain.Organization, error)
	GetOrganization(ctx context.Context, id string) (*domain.Organization, error)
	ListOrganizations(ctx context.Context, input usecase.ListOrganizationsInput) ([]*domain.Organization, error)
	UpdateAccountSlug(ctx context.Context, id, accountSlug string) (*domain.Organization, error)
}

// OrganizationHandler handles organization-related HTTP requests.
type OrganizationHandler struct {
	orgUC OrganizationService
}

// NewOrganizationHandler creates a new OrganizationHandler.
func NewOrganizationHandler(orgUC OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgUC: orgUC}
}

// Create registers a new organization.
func (h *OrganizationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	org, err := h.orgUC.CreateOrganization(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create organization", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.OrganizationFromDomain(org))
}

// Get retrieves an organization by ID.
func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing organization ID", "")
		return
	}

	org, err := h.orgUC.GetOrganization(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get organization", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.OrganizationFromDomain(org))
}

// List lists organizations.
func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	orgs, err := h.orgUC.ListOrganizations(r.Context(), usecase.ListOrganizationsInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list organizations", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListOrganizationsResponse{
		Organizations: dto.OrganizationsFromDomain(orgs),
		Total:         int64(len(orgs)),
	})
}

// UpdateSlug sets or clears the ledger account an organization is billed
// through.
func (h *OrganizationHandler) UpdateSlug(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing organization ID", "")
		return
	}

	var req dto.UpdateAccountSlugRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	org, err := h.orgUC.UpdateAccountSlug(r.Context(), id, req.AccountSlug)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to update account slug", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.OrganizationFromDomain(org))
}
