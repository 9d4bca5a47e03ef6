package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const countUnbilledItems = `-- name: CountUnbilledItems :one
SELECT COUNT(*) FROM billable_items WHERE NOT billed
`

func (q *Queries) CountUnbilledItems(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countUnbilledItems)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createBillableItem = `-- name: CreateBillableItem :one
INSERT INTO billable_items (id, organization_id, cost_cents, billed, created_at, billed_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, organization_id, cost_cents, billed, created_at, billed_at
`

type CreateBillableItemParams struct {
	ID             string             `json:"id"`
	OrganizationID string             `json:"organization_id"`
	CostCents      int64              `json:"cost_cents"`
	Billed         bool               `json:"billed"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
	BilledAt       pgtype.Timestamptz `json:"billed_at"`
}

func (q *Queries) CreateBillableItem(ctx context.Context, arg CreateBillableItemParams) (BillableItem, error) {
	row := q.db.QueryRow(ctx, createBillableItem,
		arg.ID,
		arg.OrganizationID,
		arg.CostCents,
		arg.Billed,
		arg.CreatedAt,
		arg.BilledAt,
	)
	var i BillableItem
	err := row.Scan(
		&i.ID,
		&i.OrganizationID,
		&i.CostCents,
		&i.Billed,
		&i.CreatedAt,
		&i.BilledAt,
	)
	return i, err
}

const getBillableItemByID = `-- name: GetBillableItemByID :one
SELECT id, organization_id, cost_cents, billed, created_at, billed_at FROM billable_items WHERE id = $1
`

func (q *Queries) GetBillableItemByID(ctx context.Context, id string) (BillableItem, error) {
	row := q.db.QueryRow(ctx, getBillableItemByID, id)
	var i BillableItem
	err := row.Scan(
		&i.ID,
		&i.OrganizationID,
		&i.CostCents,
		&i.Billed,
		&i.CreatedAt,
		&i.BilledAt,
	)
	return i, err
}

const listItemsByOrganization = `-- name: ListItemsByOrganization :many
SELECT id, organization_id, cost_cents, billed, created_at, billed_at FROM billable_items
WHERE organization_id = $1
ORDER BY created_at DESC, id
LIMIT $2 OFFSET $3
`

type ListItemsByOrganizationParams struct {
	OrganizationID string `json:"organization_id"`
	Limit          int32  `json:"limit"`
	Offset         int32  `json:"offset"`
}

func (q *Queries) ListItemsByOrganization(ctx context.Context, arg ListItemsByOrganizationParams) ([]BillableItem, error) {
	rows, err := q.db.Query(ctx, listItemsByOrganization, arg.OrganizationID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []BillableItem{}
	for rows.Next() {
		var i BillableItem
		if err := rows.Scan(
			&i.ID,
			&i.OrganizationID,
			&i.CostCents,
			&i.Billed,
			&i.CreatedAt,
			&i.BilledAt,
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

const listUnbilledItems = `-- name: ListUnbilledItems :many
SELECT id, organization_id, cost_cents, billed, created_at, billed_at FROM billable_items
WHERE NOT billed
ORDER BY organization_id, id
`

func (q *Queries) ListUnbilledItems(ctx context.Context) ([]BillableItem, error) {
	rows, err := q.db.Query(ctx, listUnbilledItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []BillableItem{}
	for rows.Next() {
		var i BillableItem
		if err := rows.Scan(
			&i.ID,
			&i.OrganizationID,
			&i.CostCents,
			&i.Billed,
			&i.CreatedAt,
			&i.BilledAt,
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

const markItemsBilled = `-- name: MarkItemsBilled :execrows
UPDATE billable_items
SET billed = TRUE, billed_at = $2
WHERE id = ANY($1::text[]) AND NOT billed
`

type MarkItemsBilledParams struct {
	Column1  []string           `json:"column_1"`
	BilledAt pgtype.Timestamptz `json:"billed_at"`
}

func (q *Queries) MarkItemsBilled(ctx context.Context, arg MarkItemsBilledParams) (int64, error) {
	result, err := q.db.Exec(ctx, markItemsBilled, arg.Column1, arg.BilledAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
