package usecase

import (
	"context"
	"time"

	"github.com/hackclub/hermes/internal/domain"
)

// ItemUseCase handles billable item ingestion from upstream processing.
type ItemUseCase struct {
	itemRepo ItemRepository
	orgRepo  OrganizationRepository
	idGen    IDGenerator
}

// NewItemUseCase creates a new ItemUseCase.
func NewItemUseCase(itemRepo ItemRepository, orgRepo OrganizationRepository, idGen IDGenerator) *ItemUseCase {
	return &ItemUseCase{
		itemRepo: itemRepo,
		orgRepo:  orgRepo,
		idGen:    idGen,
	}
}

// CreateItemInput represents input for recording a billable item.
type CreateItemInput struct {
	OrganizationID string
	CostCents      int64
}

// CreateItem records one unit of billable work. Items always start unbilled;
// the billing pass picks them up on its next run.
func (uc *ItemUseCase) CreateItem(ctx context.Context, input CreateItemInput) (*domain.BillableItem, error) {
	if err := domain.ValidateCostCents(input.CostCents); err != nil {
		return nil, err
	}

	// Reject items for organizations that do not exist; a dangling
	// reference would sit unbilled forever.
	if _, err := uc.orgRepo.GetByID(ctx, input.OrganizationID); err != nil {
		return nil, err
	}

	item := &domain.BillableItem{
		ID:             uc.idGen.Generate(),
		OrganizationID: input.OrganizationID,
		CostCents:      input.CostCents,
		Billed:         false,
		CreatedAt:      time.Now().UTC(),
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	if err := uc.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// GetItem retrieves a billable item by ID.
func (uc *ItemUseCase) GetItem(ctx context.Context, id string) (*domain.BillableItem, error) {
	return uc.itemRepo.GetByID(ctx, id)
}

// ListItemsByOrganizationInput represents input for listing items.
type ListItemsByOrganizationInput struct {
	OrganizationID string
	Limit          int
	Offset         int
}

// ListItemsByOrganization lists an organization's items, newest first.
func (uc *ItemUseCase) ListItemsByOrganization(ctx context.Context, input ListItemsByOrganizationInput) ([]*domain.BillableItem, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.itemRepo.ListByOrganization(ctx, input.OrganizationID, input.Limit, input.Offset)
}
