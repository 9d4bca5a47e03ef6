package dto

import (
	"github.com/go-playground/validator/v10"

	"github.com/hackclub/hermes/internal/usecase"
)

var validate = validator.New()

// CreateOrganizationRequest represents a request to register an organization.
type CreateOrganizationRequest struct {
	ID          string `json:"id,omitempty" validate:"omitempty,max=100"`
	Name        string `json:"name" validate:"required,max=255"`
	AccountSlug string `json:"account_slug,omitempty" validate:"omitempty,max=100"`
}

// Validate checks the request against its field rules.
func (r *CreateOrganizationRequest) Validate() error {
	return validate.Struct(r)
}

// ToUseCaseInput converts the request to use case input.
func (r *CreateOrganizationRequest) ToUseCaseInput() usecase.CreateOrganizationInput {
	return usecase.CreateOrganizationInput{
		ID:          r.ID,
		Name:        r.Name,
		AccountSlug: r.AccountSlug,
	}
}

// UpdateAccountSlugRequest sets or clears the ledger account an organization
// is billed through. An empty slug clears it, which pauses billing for the
// organization.
type UpdateAccountSlugRequest struct {
	AccountSlug string `json:"account_slug" validate:"omitempty,max=100"`
}

// Validate checks the request against its field rules.
func (r *UpdateAccountSlugRequest) Validate() error {
	return validate.Struct(r)
}

// CreateItemRequest represents a request to record a billable item.
type CreateItemRequest struct {
	OrganizationID string `json:"organization_id" validate:"required,max=100"`
	CostCents      int64  `json:"cost_cents" validate:"min=0"`
}

// Validate checks the request against its field rules.
func (r *CreateItemRequest) Validate() error {
	return validate.Struct(r)
}

// ToUseCaseInput converts the request to use case input.
func (r *CreateItemRequest) ToUseCaseInput() usecase.CreateItemInput {
	return usecase.CreateItemInput{
		OrganizationID: r.OrganizationID,
		CostCents:      r.CostCents,
	}
}
