package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultRunLockTTL is how long the billing run lock is held before it
	// expires on its own. Covers a pass that dies without releasing.
	DefaultRunLockTTL = 30 * time.Minute

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// PendingBatchSize bounds how many stuck disbursements one recovery
	// pass will pick up.
	PendingBatchSize = 500
)
