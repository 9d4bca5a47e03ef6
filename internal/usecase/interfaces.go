package usecase

import (
	"context"
	"time"

	"github.com/hackclub/hermes/internal/domain"
)

// OrganizationRepository defines data access for organizations.
type OrganizationRepository interface {
	Create(ctx context.Context, org *domain.Organization) error
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
	GetByIDs(ctx context.Context, ids []string) ([]*domain.Organization, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Organization, error)
	UpdateAccountSlug(ctx context.Context, id string, slug *string, updatedAt time.Time) error
}

// ItemRepository defines data access for billable items.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.BillableItem) error
	GetByID(ctx context.Context, id string) (*domain.BillableItem, error)
	// ListUnbilled returns every item whose billed flag is false, ordered by
	// organization then id. The returned slice is the pass's snapshot.
	ListUnbilled(ctx context.Context) ([]*domain.BillableItem, error)
	// MarkBilled flags exactly the given ids inside tx and returns how many
	// rows changed. Rows already billed are left untouched.
	MarkBilled(ctx context.Context, tx Transaction, ids []string, billedAt time.Time) (int64, error)
	ListByOrganization(ctx context.Context, orgID string, limit, offset int) ([]*domain.BillableItem, error)
	CountUnbilled(ctx context.Context) (int64, error)
}

// DisbursementRepository defines data access for disbursements.
type DisbursementRepository interface {
	Create(ctx context.Context, tx Transaction, d *domain.Disbursement) error
	GetByID(ctx context.Context, id string) (*domain.Disbursement, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*domain.Disbursement, error)
	// ListByStatus returns disbursements oldest first so recovery replays
	// attempts in creation order.
	ListByStatus(ctx context.Context, status domain.DisbursementStatus, limit, offset int) ([]*domain.Disbursement, error)
	MarkCompleted(ctx context.Context, id string, transferID string, completedAt time.Time) error
	MarkFailed(ctx context.Context, id string, errorDetail string, failedAt time.Time) error
	MarkAttempted(ctx context.Context, id string, attemptedAt time.Time) error
	ListByOrganization(ctx context.Context, orgID string, limit, offset int) ([]*domain.Disbursement, error)
}

// RunRepository records billing pass reports for operational history.
type RunRepository interface {
	Create(ctx context.Context, run *domain.BillingRun) error
	ListRecent(ctx context.Context, limit int) ([]*domain.BillingRun, error)
}

// PaymentGateway creates transfers on the payment platform. Implementations
// return *domain.GatewayError for platform failures so callers can classify
// them; any other error means the request never got a usable response.
type PaymentGateway interface {
	// CreateTransfer moves amountCents from the source account to the
	// destination account. Destination may be an organization id or slug.
	CreateTransfer(ctx context.Context, sourceSlug, destination string, amountCents int64, memo string) (*domain.TransferReceipt, error)
	// ListTransfers returns recent transfers for an account, newest first.
	ListTransfers(ctx context.Context, accountSlug string, limit int) ([]*domain.TransferRecord, error)
}

// Notifier delivers human-facing billing notices. Both methods are
// best-effort: callers log failures and move on.
type Notifier interface {
	NotifySuccess(ctx context.Context, notice domain.DisbursementCompletedNotice) error
	NotifyFailure(ctx context.Context, notice domain.DisbursementFailedNotice) error
}

// RunLock serializes billing passes across processes.
type RunLock interface {
	// Acquire takes the lock, returning false when another run holds it.
	Acquire(ctx context.Context, ttl time.Duration) (bool, error)
	Release(ctx context.Context) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// KeyGenerator generates idempotency keys. A key is generated exactly once
// per disbursement and reused verbatim on every retry.
type KeyGenerator interface {
	NewKey() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
