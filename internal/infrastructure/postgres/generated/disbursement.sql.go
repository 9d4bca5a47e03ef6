package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const countDisbursementsByStatus = `-- name: CountDisbursementsByStatus :one
SELECT COUNT(*) FROM disbursements WHERE status = $1
`

func (q *Queries) CountDisbursementsByStatus(ctx context.Context, status string) (int64, error) {
	row := q.db.QueryRow(ctx, countDisbursementsByStatus, status)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createDisbursement = `-- name: CreateDisbursement :one
INSERT INTO disbursements (id, idempotency_key, organization_id, amount_cents, item_count, status, transfer_id, error_detail, created_at, last_attempt_at, completed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id, idempotency_key, organization_id, amount_cents, item_count, status, transfer_id, error_detail, created_at, last_attempt_at, completed_at
`

type CreateDisbursementParams struct {
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

func (q *Queries) CreateDisbursement(ctx context.Context, arg CreateDisbursementParams) (Disbursement, error) {
	row := q.db.QueryRow(ctx, createDisbursement,
		arg.ID,
		arg.IdempotencyKey,
		arg.OrganizationID,
		arg.AmountCents,
		arg.ItemCount,
		arg.Status,
		arg.TransferID,
		arg.ErrorDetail,
		arg.CreatedAt,
		arg.LastAttemptAt,
		arg.CompletedAt,
	)
	var i Disbursement
	err := row.Scan(
		&i.ID,
		&i.IdempotencyKey,
		&i.OrganizationID,
		&i.AmountCents,
		&i.ItemCount,
		&i.Status,
		&i.TransferID,
		&i.ErrorDetail,
		&i.CreatedAt,
		&i.LastAttemptAt,
		&i.CompletedAt,
	)
	return i, err
}

const getDisbursementByID = `-- name: GetDisbursementByID :one
SELECT id, idempotency_key, organization_id, amount_cents, item_count, status, transfer_id, error_detail, created_at, last_attempt_at, completed_at FROM disbursements WHERE id = $1
`

func (q *Queries) GetDisbursementByID(ctx context.Context, id string) (Disbursement, error) {
	row := q.db.QueryRow(ctx, getDisbursementByID, id)
	var i Disbursement
	err := row.Scan(
		&i.ID,
		&i.IdempotencyKey,
		&i.OrganizationID,
		&i.AmountCents,
		&i.ItemCount,
		&i.Status,
		&i.TransferID,
		&i.ErrorDetail,
		&i.CreatedAt,
		&i.LastAttemptAt,
		&i.CompletedAt,
	)
	return i, err
}

const getDisbursementByIdempotencyKey = `-- name: GetDisbursementByIdempotencyKey :one
SELECT id, idempotency_key, organization_id, amount_cents, item_count, status, transfer_id, error_detail, created_at, last_attempt_at, completed_at FROM disbursements WHERE idempotency_key = $1
`

func (q *Queries) GetDisbursementByIdempotencyKey(ctx context.Context, idempotencyKey string) (Disbursement, error) {
	row := q.db.QueryRow(ctx, getDisbursementByIdempotencyKey, idempotencyKey)
	var i Disbursement
	err := row.Scan(
		&i.ID,
		&i.IdempotencyKey,
		&i.OrganizationID,
		&i.AmountCents,
		&i.ItemCount,
		&i.Status,
		&i.TransferID,
		&i.ErrorDetail,
		&i.CreatedAt,
		&i.LastAttemptAt,
		&i.CompletedAt,
	)
	return i, err
}

const listDisbursementsByOrganization = `-- name: ListDisbursementsByOrganization :many
SELECT id, idempotency_key, organization_id, amount_cents, item_count, status, transfer_id, error_detail, created_at, last_attempt_at, completed_at FROM disbursements
WHERE organization_id = $1
ORDER BY created_at DESC, id
LIMIT $2 OFFSET $3
`

type ListDisbursementsByOrganizationParams struct {
	OrganizationID string `json:"organization_id"`
	Limit          int32  `json:"limit"`
	Offset         int32  `json:"offset"`
}

func (q *Queries) ListDisbursementsByOrganization(ctx context.Context, arg ListDisbursementsByOrganizationParams) ([]Disbursement, error) {
	rows, err := q.db.Query(ctx, listDisbursementsByOrganization, arg.OrganizationID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Disbursement{}
	for rows.Next() {
		var i Disbursement
		if err := rows.Scan(
			&i.ID,
			&i.IdempotencyKey,
			&i.OrganizationID,
			&i.AmountCents,
			&i.ItemCount,
			&i.Status,
			&i.TransferID,
			&i.ErrorDetail,
			&i.CreatedAt,
			&i.LastAttemptAt,
			&i.CompletedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listDisbursementsByStatus = `-- name: ListDisbursementsByStatus :many
SELECT id, idempotency_key, organization_id, amount_cents, item_count, status, transfer_id, error_detail, created_at, last_attempt_at, completed_at FROM disbursements
WHERE status = $1
ORDER BY created_at, id
LIMIT $2 OFFSET $3
`

type ListDisbursementsByStatusParams struct {
	Status string `json:"status"`
	Limit  int32  `json:"limit"`
	Offset int32  `json:"offset"`
}

func (q *Queries) ListDisbursementsByStatus(ctx context.Context, arg ListDisbursementsByStatusParams) ([]Disbursement, error) {
	rows, err := q.db.Query(ctx, listDisbursementsByStatus, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Disbursement{}
	for rows.Next() {
		var i Disbursement
		if err := rows.Scan(
			&i.ID,
			&i.IdempotencyKey,
			&i.OrganizationID,
			&i.AmountCents,
			&i.ItemCount,
			&i.Status,
			&i.TransferID,
			&i.ErrorDetail,
			&i.CreatedAt,
			&i.LastAttemptAt,
			&i.CompletedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markDisbursementAttempted = `-- name: MarkDisbursementAttempted :execrows
UPDATE disbursements
SET last_attempt_at = $2
WHERE id = $1
`

type MarkDisbursementAttemptedParams struct {
	ID            string             `json:"id"`
	LastAttemptAt pgtype.Timestamptz `json:"last_attempt_at"`
}

func (q *Queries) MarkDisbursementAttempted(ctx context.Context, arg MarkDisbursementAttemptedParams) (int64, error) {
	result, err := q.db.Exec(ctx, markDisbursementAttempted, arg.ID, arg.LastAttemptAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const markDisbursementCompleted = `-- name: MarkDisbursementCompleted :execrows
UPDATE disbursements
SET status = 'completed', transfer_id = $2, completed_at = $3
WHERE id = $1 AND status = 'pending'
`

type MarkDisbursementCompletedParams struct {
	ID          string             `json:"id"`
	TransferID  pgtype.Text        `json:"transfer_id"`
	CompletedAt pgtype.Timestamptz `json:"completed_at"`
}

func (q *Queries) MarkDisbursementCompleted(ctx context.Context, arg MarkDisbursementCompletedParams) (int64, error) {
	result, err := q.db.Exec(ctx, markDisbursementCompleted, arg.ID, arg.TransferID, arg.CompletedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const markDisbursementFailed = `-- name: MarkDisbursementFailed :execrows
UPDATE disbursements
SET status = 'failed', error_detail = $2, last_attempt_at = $3
WHERE id = $1 AND status = 'pending'
`

type MarkDisbursementFailedParams struct {
	ID            string             `json:"id"`
	ErrorDetail   pgtype.Text        `json:"error_detail"`
	LastAttemptAt pgtype.Timestamptz `json:"last_attempt_at"`
}

func (q *Queries) MarkDisbursementFailed(ctx context.Context, arg MarkDisbursementFailedParams) (int64, error) {
	result, err := q.db.Exec(ctx, markDisbursementFailed, arg.ID, arg.ErrorDetail, arg.LastAttemptAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
