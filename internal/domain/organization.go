package domain

import "time"

// Organization represents a billing entity whose usage is disbursed to the
// fulfillment account on the payment platform.
type Organization struct {
	ID          string
	Name        string
	AccountSlug *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Billable reports whether the organization can receive a disbursement.
// An organization without an account slug has nowhere to be billed from
// and is skipped until the slug is backfilled.
func (o *Organization) Billable() bool {
	return o.AccountSlug != nil && *o.AccountSlug != ""
}

// Slug returns the account slug or the empty string when unset.
func (o *Organization) Slug() string {
	if o.AccountSlug == nil {
		return ""
	}
	return *o.AccountSlug
}
