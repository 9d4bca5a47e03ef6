package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type BillableItem struct {
	ID             string             `json:"id"`
	OrganizationID string             `json:"organization_id"`
	CostCents      int64              `json:"cost_cents"`
	Billed         bool               `json:"billed"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
	BilledAt       pgtype.Timestamptz `json:"billed_at"`
}

type BillingRun struct {
	ID         string             `json:"id"`
	Pass       string             `json:"pass"`
	StartedAt  pgtype.Timestamptz `json:"started_at"`
	FinishedAt pgtype.Timestamptz `json:"finished_at"`
	Result     []byte             `json:"result"`
}

type Disbursement struct {
	ID             string             `json:"id"`
	IdempotencyKey string             `json:"idempotency_key"`
	OrganizationID string             `json:"organization_id"`
	AmountCents    int64              `json:"amount_cents"`
	ItemCount      int32              `json:"item_count"`
	Status         string             `json:"status"`
	TransferID     pgtype.Text        `json:"transfer_id"`
	ErrorDetail    pgtype.Text        `json:"error_detail"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
	LastAttemptAt  pgtype.Timestamptz `json:"last_attempt_at"`
	CompletedAt    pgtype.Timestamptz `json:"completed_at"`
}

type Organization struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	AccountSlug pgtype.Text        `json:"account_slug"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}
