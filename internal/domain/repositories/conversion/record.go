package conversion

import (
	"context"

	"mdconv/internal/domain/models/conversion"
)

// RecordRepository is the append-only history of conversion requests.
// Implementations must make each Append atomic: a record is either fully
// stored or not stored at all.
type RecordRepository interface {
	// Append stores a new record and sets its ID and CreatedAt.
	// IDs are assigned monotonically by the store.
	Append(ctx context.Context, record *conversion.ConversionRecord) error

	// GetByID retrieves a record by ID.
	// Returns an error wrapping domain.ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id int64) (*conversion.ConversionRecord, error)

	// List returns record summaries ordered by created_at DESC, id DESC.
	List(ctx context.Context, offset, limit int) ([]conversion.ConversionSummary, error)

	// Ping checks the store is reachable (health checks).
	Ping(ctx context.Context) error
}
