package ports

import (
	"context"
	"tow-dispatch-service/internal/domain"
)

// Optional extension of LocationResolver that supports batched lookups.
type LocationPrefetcher interface {
	LocationResolver
	// Return already-known coordinates for many owners in one round
	// trip. An owner without a known location is simply absent from the
	// result; callers resolve such owners individually. An error means
	// the batch as a whole failed and nothing was prefetched.
	PrefetchLocations(ctx context.Context, ownerIDs []int) (map[int]domain.Coordinates, error)
}
