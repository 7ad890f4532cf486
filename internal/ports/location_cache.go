package ports

import (
	"context"
	"tow-dispatch-service/internal/domain"
)

// Optional cache of owner coordinates consulted before remote lookups.
// Implementations must treat a miss as (zero, false, nil), not an error.
type LocationCache interface {
	// Return the cached coordinates for one owner.
	Get(ctx context.Context, ownerID int) (domain.Coordinates, bool, error)
	// Return cached coordinates for many owners; absent owners are
	// simply missing from the result map.
	GetMany(ctx context.Context, ownerIDs []int) (map[int]domain.Coordinates, error)
	// Store the coordinates for one owner.
	Put(ctx context.Context, ownerID int, coords domain.Coordinates) error
}
