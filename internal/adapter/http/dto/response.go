package dto

import (
	"time"

	"github.com/hackclub/hermes/internal/domain"
	"github.com/hackclub/hermes/internal/usecase"
)

// OrganizationResponse represents an organization in API responses.
type OrganizationResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	AccountSlug *string   `json:"account_slug"`
	Billable    bool      `json:"billable"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OrganizationFromDomain converts a domain organization to a response.
func OrganizationFromDomain(o *domain.Organization) *OrganizationResponse {
	return &OrganizationResponse{
		ID:          o.ID,
		Name:        o.Name,
		AccountSlug: o.AccountSlug,
		Billable:    o.Billable(),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// OrganizationsFromDomain converts domain organizations to responses.
func OrganizationsFromDomain(orgs []*domain.Organization) []*OrganizationResponse {
	result := make([]*OrganizationResponse, len(orgs))
	for i, o := range orgs {
		result[i] = OrganizationFromDomain(o)
	}
	return result
}

// ItemResponse represents a billable item in API responses.
type ItemResponse struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	CostCents      int64      `json:"cost_cents"`
	Billed         bool       `json:"billed"`
	CreatedAt      time.Time  `json:"created_at"`
	BilledAt       *time.Time `json:"billed_at,omitempty"`
}

// ItemFromDomain converts a domain item to a response.
func ItemFromDomain(it *domain.BillableItem) *ItemResponse {
	return &ItemResponse{
		ID:             it.ID,
		OrganizationID: it.OrganizationID,
		CostCents:      it.CostCents,
		Billed:         it.Billed,
		CreatedAt:      it.CreatedAt,
		BilledAt:       it.BilledAt,
	}
}

// ItemsFromDomain converts domain items to responses.
func ItemsFromDomain(items []*domain.BillableItem) []*ItemResponse {
	result := make([]*ItemResponse, len(items))
	for i, it := range items {
		result[i] = ItemFromDomain(it)
	}
	return result
}

// DisbursementResponse represents a disbursement in API responses.
type DisbursementResponse struct {
	ID             string     `json:"id"`
	IdempotencyKey string     `json:"idempotency_key"`
	OrganizationID string     `json:"organization_id"`
	AmountCents    int64      `json:"amount_cents"`
	ItemCount      int        `json:"item_count"`
	Status         string     `json:"status"`
	TransferID     *string    `json:"transfer_id,omitempty"`
	ErrorDetail    *string    `json:"error_detail,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAttemptAt  time.Time  `json:"last_attempt_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// DisbursementFromDomain converts a domain disbursement to a response.
func DisbursementFromDomain(d *domain.Disbursement) *DisbursementResponse {
	return &DisbursementResponse{
		ID:             d.ID,
		IdempotencyKey: d.IdempotencyKey,
		OrganizationID: d.OrganizationID,
		AmountCents:    d.AmountCents,
		ItemCount:      d.ItemCount,
		Status:         string(d.Status),
		TransferID:     d.TransferID,
		ErrorDetail:    d.ErrorDetail,
		CreatedAt:      d.CreatedAt,
		LastAttemptAt:  d.LastAttemptAt,
		CompletedAt:    d.CompletedAt,
	}
}

// DisbursementsFromDomain converts domain disbursements to responses.
func DisbursementsFromDomain(ds []*domain.Disbursement) []*DisbursementResponse {
	result := make([]*DisbursementResponse, len(ds))
	for i, d := range ds {
		result[i] = DisbursementFromDomain(d)
	}
	return result
}

// VerifyResponse reports whether a disbursement's transfer was found on the
// ledger with a matching memo and amount.
type VerifyResponse struct {
	Disbursement *DisbursementResponse   `json:"disbursement"`
	Matched      bool                    `json:"matched"`
	Transfer     *TransferRecordResponse `json:"transfer,omitempty"`
	CheckedAt    time.Time               `json:"checked_at"`
}

// TransferRecordResponse represents a ledger transfer in API responses.
type TransferRecordResponse struct {
	TransferID  string `json:"transfer_id"`
	Memo        string `json:"memo"`
	AmountCents int64  `json:"amount_cents"`
}

// VerifyFromUseCase converts a verification result to a response.
func VerifyFromUseCase(v *usecase.VerifyResult) *VerifyResponse {
	resp := &VerifyResponse{
		Disbursement: DisbursementFromDomain(v.Disbursement),
		Matched:      v.Matched,
		CheckedAt:    v.CheckedAt,
	}
	if v.Transfer != nil {
		resp.Transfer = &TransferRecordResponse{
			TransferID:  v.Transfer.TransferID,
			Memo:        v.Transfer.Memo,
			AmountCents: v.Transfer.AmountCents,
		}
	}
	return resp
}

// BillingRunResponse represents one persisted billing pass report.
type BillingRunResponse struct {
	ID         string           `json:"id"`
	Pass       string           `json:"pass"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Result     domain.RunResult `json:"result"`
}

// BillingRunFromDomain converts a domain billing run to a response.
func BillingRunFromDomain(r *domain.BillingRun) *BillingRunResponse {
	return &BillingRunResponse{
		ID:         r.ID,
		Pass:       r.Pass,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Result:     r.Result,
	}
}

// BillingRunsFromDomain converts domain billing runs to responses.
func BillingRunsFromDomain(runs []*domain.BillingRun) []*BillingRunResponse {
	result := make([]*BillingRunResponse, len(runs))
	for i, r := range runs {
		result[i] = BillingRunFromDomain(r)
	}
	return result
}

// RunReportResponse pairs the two passes executed by a manual billing run.
type RunReportResponse struct {
	ReconcilePending domain.RunResult `json:"reconcile_pending"`
	NewBillables     domain.RunResult `json:"process_new_billables"`
}

// SummaryResponse represents the billing backlog and recent run history.
type SummaryResponse struct {
	UnbilledItems        int64                 `json:"unbilled_items"`
	PendingDisbursements int                   `json:"pending_disbursements"`
	RecentRuns           []*BillingRunResponse `json:"recent_runs"`
}

// SummaryFromUseCase converts a billing summary to a response.
func SummaryFromUseCase(s *usecase.BillingSummary) *SummaryResponse {
	return &SummaryResponse{
		UnbilledItems:        s.UnbilledItems,
		PendingDisbursements: s.PendingDisbursements,
		RecentRuns:           BillingRunsFromDomain(s.RecentRuns),
	}
}

// ListOrganizationsResponse wraps a page of organizations.
type ListOrganizationsResponse struct {
	Organizations []*OrganizationResponse `json:"organizations"`
	Total         int64                   `json:"total"`
}

// ListItemsResponse wraps a page of billable items.
type ListItemsResponse struct {
	Items []*ItemResponse `json:"items"`
	Total int64           `json:"total"`
}

// ListDisbursementsResponse wraps a page of disbursements.
type ListDisbursementsResponse struct {
	Disbursements []*DisbursementResponse `json:"disbursements"`
	Total         int64                   `json:"total"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
