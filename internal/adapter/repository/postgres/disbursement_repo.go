package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackclub/hermes/internal/domain"
	"github.com/hackclub/hermes/internal/infrastructure/postgres/generated"
	"github.com/hackclub/hermes/internal/usecase"
)

// DisbursementRepository implements usecase.DisbursementRepository.
type DisbursementRepository struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
}

// NewDisbursementRepository creates a new DisbursementRepository.
func NewDisbursementRepository(pool *pgxpool.Pool) *DisbursementRepository {
	return &DisbursementRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Create inserts a pending disbursement inside the supplied transaction. The
// unique constraint on the idempotency key is the last line of defense
// against two rows covering the same attempt.
func (r *DisbursementRepository) Create(ctx context.Context, tx usecase.Transaction, d *domain.Disbursement) error {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	_, err := queries.CreateDisbursement(ctx, generated.CreateDisbursementParams{
		ID:             d.ID,
		IdempotencyKey: d.IdempotencyKey,
		OrganizationID: d.OrganizationID,
		AmountCents:    d.AmountCents,
		ItemCount:      int32(d.ItemCount),
		Status:         string(d.Status),
		TransferID:     stringPtrToText(d.TransferID),
		ErrorDetail:    stringPtrToText(d.ErrorDetail),
		CreatedAt:      timeToPgTimestamptz(d.CreatedAt),
		LastAttemptAt:  timeToPgTimestamptz(d.LastAttemptAt),
		CompletedAt:    timePtrToPgTimestamptz(d.CompletedAt),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrDuplicateDisbursement
		}
		return err
	}

	return nil
}

// GetByID retrieves a disbursement by ID.
func (r *DisbursementRepository) GetByID(ctx context.Context, id string) (*domain.Disbursement, error) {
	row, err := r.queries.GetDisbursementByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDisbursementNotFound
		}

		return nil, err
	}

	return rowToDisbursement(row), nil
}

// GetByIdempotencyKey retrieves a disbursement by its idempotency key.
func (r *DisbursementRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Disbursement, error) {
	row, err := r.queries.GetDisbursementByIdempotencyKey(ctx, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDisbursementNotFound
		}

		return nil, err
	}

	return rowToDisbursement(row), nil
}

// ListByStatus lists disbursements in one status, oldest first, so recovery
// always works on the longest-stuck rows before fresher ones.
func (r *DisbursementRepository) ListByStatus(ctx context.Context, status domain.DisbursementStatus, limit, offset int) ([]*domain.Disbursement, error) {
	rows, err := r.queries.ListDisbursementsByStatus(ctx, generated.ListDisbursementsByStatusParams{
		Status: string(status),
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	disbs := make([]*domain.Disbursement, 0, len(rows))
	for _, row := range rows {
		disbs = append(disbs, rowToDisbursement(row))
	}

	return disbs, nil
}

// MarkCompleted transitions a pending disbursement to completed. The status
// guard in the query keeps terminal rows immutable.
func (r *DisbursementRepository) MarkCompleted(ctx context.Context, id string, transferID string, completedAt time.Time) error {
	updated, err := r.queries.MarkDisbursementCompleted(ctx, generated.MarkDisbursementCompletedParams{
		ID:          id,
		TransferID:  stringPtrToText(&transferID),
		CompletedAt: timeToPgTimestamptz(completedAt),
	})
	if err != nil {
		return err
	}
	if updated == 0 {
		return domain.ErrDisbursementTerminal
	}

	return nil
}

// MarkFailed transitions a pending disbursement to failed, recording why.
func (r *DisbursementRepository) MarkFailed(ctx context.Context, id string, errorDetail string, failedAt time.Time) error {
	updated, err := r.queries.MarkDisbursementFailed(ctx, generated.MarkDisbursementFailedParams{
		ID:            id,
		ErrorDetail:   stringPtrToText(&errorDetail),
		LastAttemptAt: timeToPgTimestamptz(failedAt),
	})
	if err != nil {
		return err
	}
	if updated == 0 {
		return domain.ErrDisbursementTerminal
	}

	return nil
}

// MarkAttempted records that a recovery attempt touched the disbursement.
func (r *DisbursementRepository) MarkAttempted(ctx context.Context, id string, attemptedAt time.Time) error {
	updated, err := r.queries.MarkDisbursementAttempted(ctx, generated.MarkDisbursementAttemptedParams{
		ID:            id,
		LastAttemptAt: timeToPgTimestamptz(attemptedAt),
	})
	if err != nil {
		return err
	}
	if updated == 0 {
		return domain.ErrDisbursementNotFound
	}

	return nil
}

// ListByOrganization lists an organization's disbursements with pagination,
// newest first.
func (r *DisbursementRepository) ListByOrganization(ctx context.Context, orgID string, limit, offset int) ([]*domain.Disbursement, error) {
	rows, err := r.queries.ListDisbursementsByOrganization(ctx, generated.ListDisbursementsByOrganizationParams{
		OrganizationID: orgID,
		Limit:          int32(limit),
		Offset:         int32(offset),
	})
	if err != nil {
		return nil, err
	}

	disbs := make([]*domain.Disbursement, 0, len(rows))
	for _, row := range rows {
		disbs = append(disbs, rowToDisbursement(row))
	}

	return disbs, nil
}

func rowToDisbursement(row generated.Disbursement) *domain.Disbursement {
	return &domain.Disbursement{
		ID:             row.ID,
		IdempotencyKey: row.IdempotencyKey,
		OrganizationID: row.OrganizationID,
		AmountCents:    row.AmountCents,
		ItemCount:      int(row.ItemCount),
		Status:         domain.DisbursementStatus(row.Status),
		TransferID:     textToStringPtr(row.TransferID),
		ErrorDetail:    textToStringPtr(row.ErrorDetail),
		CreatedAt:      row.CreatedAt.Time,
		LastAttemptAt:  row.LastAttemptAt.Time,
		CompletedAt:    pgTimestamptzToTimePtr(row.CompletedAt),
	}
}
