package domain

import "errors"

var (
	// Organization errors
	ErrOrganizationNotFound  = errors.New("organization not found")
	ErrDuplicateOrganization = errors.New("organization already exists")
	ErrMissingAccountSlug    = errors.New("organization has no account slug")

	// Billable item errors
	ErrItemNotFound = errors.New("billable item not found")
	ErrNegativeCost = errors.New("cost must not be negative")

	// Disbursement errors
	ErrDisbursementNotFound  = errors.New("disbursement not found")
	ErrDuplicateDisbursement = errors.New("idempotency key already used")
	ErrMissingIdempotencyKey = errors.New("disbursement has no idempotency key")
	ErrEmptyDisbursement     = errors.New("disbursement covers no items")
	ErrDisbursementTerminal  = errors.New("disbursement is already completed or failed")

	// Billing run errors
	ErrRunInProgress = errors.New("a billing run is already in progress")
)
