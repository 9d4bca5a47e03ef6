package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackclub/hermes/internal/domain"
	"github.com/hackclub/hermes/internal/infrastructure/postgres/generated"
	"github.com/hackclub/hermes/internal/usecase"
)

// ItemRepository implements usecase.ItemRepository.
type ItemRepository struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
}

// NewItemRepository creates a new ItemRepository.
func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Create records a new billable item.
func (r *ItemRepository) Create(ctx context.Context, item *domain.BillableItem) error {
	_, err := r.queries.CreateBillableItem(ctx, generated.CreateBillableItemParams{
		ID:             item.ID,
		OrganizationID: item.OrganizationID,
		CostCents:      item.CostCents,
		Billed:         item.Billed,
		CreatedAt:      timeToPgTimestamptz(item.CreatedAt),
		BilledAt:       timePtrToPgTimestamptz(item.BilledAt),
	})

	return err
}

// GetByID retrieves a billable item by ID.
func (r *ItemRepository) GetByID(ctx context.Context, id string) (*domain.BillableItem, error) {
	row, err := r.queries.GetBillableItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}

		return nil, err
	}

	return rowToItem(row), nil
}

// ListUnbilled returns every unbilled item, ordered by organization then id
// so a billing pass walks organizations in a stable sequence.
func (r *ItemRepository) ListUnbilled(ctx context.Context) ([]*domain.BillableItem, error) {
	rows, err := r.queries.ListUnbilledItems(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]*domain.BillableItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, rowToItem(row))
	}

	return items, nil
}

// MarkBilled flags the given items billed inside the supplied transaction and
// reports how many rows actually flipped. The update only touches rows that
// are still unbilled, so the count tells the caller whether its snapshot was
// raced by another writer.
func (r *ItemRepository) MarkBilled(ctx context.Context, tx usecase.Transaction, ids []string, billedAt time.Time) (int64, error) {
	pgxTx := tx.(*Tx).PgxTx()
	queries := generated.New(pgxTx)

	return queries.MarkItemsBilled(ctx, generated.MarkItemsBilledParams{
		Column1:  ids,
		BilledAt: timeToPgTimestamptz(billedAt),
	})
}

// ListByOrganization lists an organization's items with pagination, newest
// first.
func (r *ItemRepository) ListByOrganization(ctx context.Context, orgID string, limit, offset int) ([]*domain.BillableItem, error) {
	rows, err := r.queries.ListItemsByOrganization(ctx, generated.ListItemsByOrganizationParams{
		OrganizationID: orgID,
		Limit:          int32(limit),
		Offset:         int32(offset),
	})
	if err != nil {
		return nil, err
	}

	items := make([]*domain.BillableItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, rowToItem(row))
	}

	return items, nil
}

// CountUnbilled reports how many items are waiting to be billed.
func (r *ItemRepository) CountUnbilled(ctx context.Context) (int64, error) {
	return r.queries.CountUnbilledItems(ctx)
}

func rowToItem(row generated.BillableItem) *domain.BillableItem {
	return &domain.BillableItem{
		ID:             row.ID,
		OrganizationID: row.OrganizationID,
		CostCents:      row.CostCents,
		Billed:         row.Billed,
		CreatedAt:      row.CreatedAt.Time,
		BilledAt:       pgTimestamptzToTimePtr(row.BilledAt),
	}
}
