package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/hackclub/hermes/internal/domain"
)

// OrganizationUseCase handles organization business logic.
type OrganizationUseCase struct {
	orgRepo OrganizationRepository
	idGen   IDGenerator
}

// NewOrganizationUseCase creates a new OrganizationUseCase.
func NewOrganizationUseCase(orgRepo OrganizationRepository, idGen IDGenerator) *OrganizationUseCase {
	return &OrganizationUseCase{
		orgRepo: orgRepo,
		idGen:   idGen,
	}
}

// CreateOrganizationInput represents input for creating an organization.
// ID is optional; upstream systems may carry their own identifiers.
type CreateOrganizationInput struct {
	ID          string
	Name        string
	AccountSlug string
}

// CreateOrganization creates a new organization. An empty account slug is
// stored as null, meaning the organization cannot be billed yet.
func (uc *OrganizationUseCase) CreateOrganization(ctx context.Context, input CreateOrganizationInput) (*domain.Organization, error) {
	if err := domain.ValidateOrganizationName(input.Name); err != nil {
		return nil, err
	}

	slug := normalizeSlug(input.AccountSlug)
	if slug != nil {
		if err := domain.ValidateSlug(*slug); err != nil {
			return nil, err
		}
	}

	id := input.ID
	if id == "" {
		id = uc.idGen.Generate()
	}

	now := time.Now().UTC()
	org := &domain.Organization{
		ID:          id,
		Name:        strings.TrimSpace(input.Name),
		AccountSlug: slug,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.orgRepo.Create(ctx, org); err != nil {
		return nil, err
	}

	return org, nil
}

// GetOrganization retrieves an organization by ID.
func (uc *OrganizationUseCase) GetOrganization(ctx context.Context, id string) (*domain.Organization, error) {
	return uc.orgRepo.GetByID(ctx, id)
}

// ListOrganizationsInput represents input for listing organizations.
type ListOrganizationsInput struct {
	Limit  int
	Offset int
}

// ListOrganizations lists organizations with pagination.
func (uc *OrganizationUseCase) ListOrganizations(ctx context.Context, input ListOrganizationsInput) ([]*domain.Organization, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.orgRepo.List(ctx, input.Limit, input.Offset)
}

// UpdateAccountSlug sets or clears an organization's account slug. Clearing
// takes the organization out of billing; backfilling lets pending work for
// it resume on the next pass.
func (uc *OrganizationUseCase) UpdateAccountSlug(ctx context.Context, id, accountSlug string) (*domain.Organization, error) {
	slug := normalizeSlug(accountSlug)
	if slug != nil {
		if err := domain.ValidateSlug(*slug); err != nil {
			return nil, err
		}
	}

	org, err := uc.orgRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := uc.orgRepo.UpdateAccountSlug(ctx, id, slug, now); err != nil {
		return nil, err
	}

	org.AccountSlug = slug
	org.UpdatedAt = now
	return org, nil
}

// normalizeSlug maps whitespace-only slugs to null so "has a slug" has one
// representation in the store.
func normalizeSlug(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
