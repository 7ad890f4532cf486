package ports

import (
	"context"
	"tow-dispatch-service/internal/domain"
)

// Port: a boundary for retrieving PendingAsset entities from a data source.
type AssetRepository interface {
	// Retrieve all assets awaiting collection.
	ListPendingAssets(ctx context.Context) ([]domain.PendingAsset, error)
}
