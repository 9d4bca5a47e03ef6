package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Validation errors
var (
	ErrInvalidOrganizationName = errors.New("invalid organization name")
	ErrInvalidSlug             = errors.New("invalid account slug")
	ErrCostTooLarge            = errors.New("cost exceeds maximum allowed")
	ErrInvalidIDFormat         = errors.New("invalid ID format")
)

// Validation constants
const (
	MaxOrganizationNameLength = 255
	MinOrganizationNameLength = 1
	MaxSlugLength             = 100

	// MaxItemCostCents caps a single item at one million dollars. Anything
	// larger is a data error upstream, not a real charge.
	MaxItemCostCents = 100_000_000
)

// Account slugs are the payment platform's URL identifiers.
var slugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// ValidateOrganizationName validates an organization display name.
func ValidateOrganizationName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinOrganizationNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidOrganizationName)
	}

	if len(name) > MaxOrganizationNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidOrganizationName, MaxOrganizationNameLength)
	}

	return nil
}

// ValidateSlug validates a payment-platform account slug. The empty string
// is allowed and means "not billable yet".
func ValidateSlug(slug string) error {
	if slug == "" {
		return nil
	}

	if len(slug) > MaxSlugLength {
		return fmt.Errorf("%w: slug exceeds %d characters", ErrInvalidSlug, MaxSlugLength)
	}

	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("%w: %q must be lowercase letters, digits and hyphens", ErrInvalidSlug, slug)
	}

	return nil
}

// ValidateCostCents validates an item cost in minor currency units.
func ValidateCostCents(cents int64) error {
	if cents < 0 {
		return ErrNegativeCost
	}

	if cents > MaxItemCostCents {
		return fmt.Errorf("%w: maximum is %d cents", ErrCostTooLarge, MaxItemCostCents)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int, error) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset, nil
}
