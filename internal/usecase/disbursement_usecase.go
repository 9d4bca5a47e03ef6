package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hackclub/hermes/internal/domain"
)

// TransferLookupLimit is how many recent transfers a verification fetches
// from the gateway when searching for a disbursement's transfer by memo.
const TransferLookupLimit = 100

// DisbursementUseCase handles disbursement queries and the manual
// reconciliation lookup against the payment platform.
type DisbursementUseCase struct {
	disbRepo DisbursementRepository
	orgRepo  OrganizationRepository
	gateway  PaymentGateway
}

// NewDisbursementUseCase creates a new DisbursementUseCase.
func NewDisbursementUseCase(
	disbRepo DisbursementRepository,
	orgRepo OrganizationRepository,
	gateway PaymentGateway,
) *DisbursementUseCase {
	return &DisbursementUseCase{
		disbRepo: disbRepo,
		orgRepo:  orgRepo,
		gateway:  gateway,
	}
}

// GetDisbursement retrieves a disbursement by ID.
func (uc *DisbursementUseCase) GetDisbursement(ctx context.Context, id string) (*domain.Disbursement, error) {
	return uc.disbRepo.GetByID(ctx, id)
}

// ListDisbursementsInput represents input for listing disbursements.
type ListDisbursementsInput struct {
	Status domain.DisbursementStatus
	Limit  int
	Offset int
}

// ListDisbursements lists disbursements in one status, oldest first.
func (uc *DisbursementUseCase) ListDisbursements(ctx context.Context, input ListDisbursementsInput) ([]*domain.Disbursement, error) {
	switch input.Status {
	case domain.DisbursementStatusPending, domain.DisbursementStatusCompleted, domain.DisbursementStatusFailed:
	default:
		return nil, fmt.Errorf("unknown disbursement status %q", input.Status)
	}

	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return uc.disbRepo.ListByStatus(ctx, input.Status, input.Limit, input.Offset)
}

// ListByOrganization lists an organization's disbursements, newest first.
func (uc *DisbursementUseCase) ListByOrganization(ctx context.Context, orgID string, limit, offset int) ([]*domain.Disbursement, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return uc.disbRepo.ListByOrganization(ctx, orgID, limit, offset)
}

// VerifyResult reports whether a transfer matching a disbursement exists on
// the payment platform.
type VerifyResult struct {
	Disbursement *domain.Disbursement
	Matched      bool
	Transfer     *domain.TransferRecord
	CheckedAt    time.Time
}

// VerifyDisbursement searches the organization's recent transfers for one
// whose memo contains the disbursement's idempotency key and whose amount
// matches exactly. This is the operator's tool for answering "did the money
// actually move" when a disbursement is stuck or failed; the automated
// passes never call it.
func (uc *DisbursementUseCase) VerifyDisbursement(ctx context.Context, id string) (*VerifyResult, error) {
	d, err := uc.disbRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	org, err := uc.orgRepo.GetByID(ctx, d.OrganizationID)
	if err != nil {
		return nil, err
	}

	if !org.Billable() {
		return nil, domain.ErrMissingAccountSlug
	}

	records, err := uc.gateway.ListTransfers(ctx, org.Slug(), TransferLookupLimit)
	if err != nil {
		return nil, fmt.Errorf("listing transfers for %s: %w", org.Slug(), err)
	}

	result := &VerifyResult{
		Disbursement: d,
		CheckedAt:    time.Now().UTC(),
	}

	for _, record := range records {
		if record.AmountCents == d.AmountCents && strings.Contains(record.Memo, d.IdempotencyKey) {
			result.Matched = true
			result.Transfer = record
			break
		}
	}

	return result, nil
}
