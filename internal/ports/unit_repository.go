package ports

import (
	"context"
	"tow-dispatch-service/internal/domain"
)

// Port: a boundary for retrieving TowUnit entities from a data source.
type UnitRepository interface {
	// Retrieve all tow units available for dispatch, in dispatch order.
	ListUnits(ctx context.Context) ([]domain.TowUnit, error)
}
