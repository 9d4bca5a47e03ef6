package domain

import (
	"fmt"
	"time"
)

type DisbursementStatus string

const (
	DisbursementStatusPending   DisbursementStatus = "pending"
	DisbursementStatusCompleted DisbursementStatus = "completed"
	DisbursementStatusFailed    DisbursementStatus = "failed"
)

// Disbursement is the durable record of one attempted transfer from an
// organization to the fulfillment account. It is created before the gateway
// is ever called and is never deleted; the table is the billing audit trail.
//
// Lifecycle: pending -> completed on gateway success, pending -> failed on a
// permanent gateway error or a missing organization. A row left in pending
// by a crash or transient error is re-attempted by the recovery pass using
// the stored idempotency key.
type Disbursement struct {
	ID             string
	IdempotencyKey string
	OrganizationID string
	AmountCents    int64
	ItemCount      int
	Status         DisbursementStatus
	TransferID     *string
	ErrorDetail    *string
	CreatedAt      time.Time
	LastAttemptAt  time.Time
	CompletedAt    *time.Time
}

// Memo returns the transfer memo. The idempotency key is embedded so a
// transfer can be found again by memo search even if the response was lost.
func (d *Disbursement) Memo() string {
	return fmt.Sprintf("Hermes Fulfillment // %d items // %s", d.ItemCount, d.IdempotencyKey)
}

// Terminal reports whether the disbursement can still change state.
func (d *Disbursement) Terminal() bool {
	return d.Status == DisbursementStatusCompleted || d.Status == DisbursementStatusFailed
}

// Validate checks disbursement invariants before persistence.
func (d *Disbursement) Validate() error {
	if d.IdempotencyKey == "" {
		return ErrMissingIdempotencyKey
	}
	if d.AmountCents < 0 {
		return ErrNegativeCost
	}
	if d.ItemCount <= 0 {
		return ErrEmptyDisbursement
	}
	return nil
}
