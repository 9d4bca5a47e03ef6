package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackclub/hermes/internal/domain"
	"github.com/hackclub/hermes/internal/infrastructure/postgres/generated"
)

// OrganizationRepository implements usecase.OrganizationRepository.
type OrganizationRepository struct {
	pool    *pgxpool.Pool
	queries *generated.Queries
}

// NewOrganizationRepository creates a new OrganizationRepository.
func NewOrganizationRepository(pool *pgxpool.Pool) *OrganizationRepository {
	return &OrganizationRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Create creates a new organization.
func (r *OrganizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	_, err := r.queries.CreateOrganization(ctx, generated.CreateOrganizationParams{
		ID:          org.ID,
		Name:        org.Name,
		AccountSlug: stringPtrToText(org.AccountSlug),
		CreatedAt:   timeToPgTimestamptz(org.CreatedAt),
		UpdatedAt:   timeToPgTimestamptz(org.UpdatedAt),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrDuplicateOrganization
		}
		return err
	}

	return nil
}

// GetByID retrieves an organization by ID.
func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	row, err := r.queries.GetOrganizationByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrganizationNotFound
		}

		return nil, err
	}

	return rowToOrganization(row), nil
}

// GetByIDs retrieves multiple organizations by ID. Organizations that do not
// exist are simply absent from the result.
func (r *OrganizationRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Organization, error) {
	rows, err := r.queries.GetOrganizationsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	orgs := make([]*domain.Organization, 0, len(rows))
	for _, row := range rows {
		orgs = append(orgs, rowToOrganization(row))
	}

	return orgs, nil
}

// List lists organizations with pagination, newest first.
func (r *OrganizationRepository) List(ctx context.Context, limit, offset int) ([]*domain.Organization, error) {
	rows, err := r.queries.ListOrganizations(ctx, generated.ListOrganizationsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	orgs := make([]*domain.Organization, 0, len(rows))
	for _, row := range rows {
		orgs = append(orgs, rowToOrganization(row))
	}

	return orgs, nil
}

// UpdateAccountSlug sets or clears an organization's account slug.
func (r *OrganizationRepository) UpdateAccountSlug(ctx context.Context, id string, slug *string, updatedAt time.Time) error {
	updated, err := r.queries.UpdateOrganizationSlug(ctx, generated.UpdateOrganizationSlugParams{
		ID:          id,
		AccountSlug: stringPtrToText(slug),
		UpdatedAt:   timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}
	if updated == 0 {
		return domain.ErrOrganizationNotFound
	}

	return nil
}

func rowToOrganization(row generated.Organization) *domain.Organization {
	return &domain.Organization{
		ID:          row.ID,
		Name:        row.Name,
		AccountSlug: textToStringPtr(row.AccountSlug),
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}

// Type conversion helpers.
func stringPtrToText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}

	return pgtype.Text{String: *s, Valid: true}
}

func textToStringPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}

	s := t.String

	return &s
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func timePtrToPgTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{}
	}

	return pgtype.Timestamptz{Time: *t, Valid: true}
}

func pgTimestamptzToTimePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}

	v := t.Time

	return &v
}
