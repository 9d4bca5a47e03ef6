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

// ItemService defines the behavior needed by ItemHandler.
type ItemService interface {
	CreateItem(ctx context.Context, input usecase.CreateItemInput) (*domain.BillableItem, error)
	GetItem(ctx context.Context, id string) (*domain.BillableItem, error)
	ListItemsByOrganization(ctx context.Context, input usecase.ListItemsByOrganizationInput) ([]*domain.BillableItem, error)
}

// ItemHandler handles billable item HTTP requests.
type ItemHandler struct {
	itemUC ItemService
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(itemUC ItemService) *ItemHandler {
	return &ItemHandler{itemUC: itemUC}
}

// Create records a billable item against an organization.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	item, err := h.itemUC.CreateItem(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create item", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ItemFromDomain(item))
}

// Get retrieves an item by ID.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing item ID", "")
		return
	}

	item, err := h.itemUC.GetItem(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get item", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ItemFromDomain(item))
}

// ListByOrganization lists an organization's items, newest first.
func (h *ItemHandler) ListByOrganization(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "id")
	if orgID == "" {
		writeError(w, http.StatusBadRequest, "missing organization ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	items, err := h.itemUC.ListItemsByOrganization(r.Context(), usecase.ListItemsByOrganizationInput{
		OrganizationID: orgID,
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list items", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListItemsResponse{
		Items: dto.ItemsFromDomain(items),
		Total: int64(len(items)),
	})
}
