package repository

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence surface the buyers service depends on.
// The pgx implementation lives in this package; tests substitute fakes.
type Repository interface {
	Create(ctx context.Context, params CreateBuyerParams) (Buyer, error)
	CreateMany(ctx context.Context, params []CreateBuyerParams) (int, error)
	GetByID(ctx context.Context, id uuid.UUID) (Buyer, error)
	List(ctx context.Context, params ListBuyersParams) ([]Buyer, int, error)
	ListAll(ctx context.Context, params ListBuyersParams) ([]Buyer, error)
	// UpdateIfUnchanged applies the field changes only when the stored row
	// still carries the given concurrency token; ErrStaleToken otherwise.
	UpdateIfUnchanged(ctx context.Context, id uuid.UUID, params UpdateBuyerParams) (Buyer, error)
	Delete(ctx context.Context, id uuid.UUID) error

	AppendHistory(ctx context.Context, params AppendHistoryParams) error
	ListHistory(ctx context.Context, buyerID uuid.UUID, limit int) ([]HistoryEntry, error)
}
