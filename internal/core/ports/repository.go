package ports

import (
	"context"

	"github.com/srgjo27/tripdesk/internal/core/domain"
)

type LeadRepository interface {
	Create(ctx context.Context, lead *domain.Lead) error
	GetByID(ctx context.Context, id string) (*domain.Lead, error)
	List(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, error)
	ListUnowned(ctx context.Context, limit int) ([]domain.Lead, error)
	// Update applies patch only if the stored version equals
	// expectedVersion, returning the updated lead.
	Update(ctx context.Context, id string, expectedVersion int, patch domain.LeadPatch) (*domain.Lead, error)
}

// OwnerCursor hands out monotonically increasing positions in the owner
// rotation. Implementations must be atomic across processes.
type OwnerCursor interface {
	Next(ctx context.Context) (int64, error)
}
