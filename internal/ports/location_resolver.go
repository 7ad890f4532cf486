package ports

import (
	"context"
	"tow-dispatch-service/internal/domain"
)

// Contract for looking up the current coordinates of an asset owner.
type LocationResolver interface {
	// Return the owner's last known coordinates. Any error (transport,
	// non-success status, malformed payload) means the owner's asset is
	// excluded from the current planning pass.
	ResolveLocation(ctx context.Context, ownerID int) (domain.Coordinates, error)
}
