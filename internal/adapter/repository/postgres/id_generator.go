package postgres

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates ULID-based IDs. ULIDs sort by creation time, which
// keeps ordered scans over disbursements and items cheap.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate generates a new ULID.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}

// UUIDKeyGenerator mints idempotency keys for disbursements. A key is
// generated exactly once per disbursement and never rotated, so a plain
// random UUID is all that is needed.
type UUIDKeyGenerator struct{}

// NewUUIDKeyGenerator creates a new UUIDKeyGenerator.
func NewUUIDKeyGenerator() *UUIDKeyGenerator {
	return &UUIDKeyGenerator{}
}

// NewKey generates a new idempotency key.
func (g *UUIDKeyGenerator) NewKey() string {
	return uuid.New().String()
}
