package domain

import "time"

// BillableItem is one unit of completed work whose cost has not necessarily
// been transferred yet. Items are created by upstream processing and only
// ever flag-mutated by billing; they are never deleted.
type BillableItem struct {
	ID             string
	OrganizationID string
	CostCents      int64
	Billed         bool
	CreatedAt      time.Time
	BilledAt       *time.Time
}

// Validate checks item invariants at ingestion time.
func (i *BillableItem) Validate() error {
	if i.OrganizationID == "" {
		return ErrInvalidIDFormat
	}
	if i.CostCents < 0 {
		return ErrNegativeCost
	}
	return nil
}
