package services

import (
	"context"
	"errors"
	"fmt"
	"tow-dispatch-service/internal/ports"
)

// DispatchCollections loads the unit and pending-asset rosters and runs
// one assignment pass over them.
func DispatchCollections(
	ctx context.Context,
	planner *Planner,
	unitRepo ports.UnitRepository,
	assetRepo ports.AssetRepository,
) (*PlanResult, error) {
	if planner == nil {
		return nil, errors.New("dispatch collections: planner must be non-nil")
	}

	units, err := unitRepo.ListUnits(ctx)
	if err != nil {
		return nil, fmt.Errorf("dispatch collections: list units: %w", err)
	}

	pending, err := assetRepo.ListPendingAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("dispatch collections: list pending assets: %w", err)
	}

	result, err := planner.Plan(ctx, units, pending)
	if err != nil {
		return nil, fmt.Errorf("dispatch collections: %w", err)
	}

	return result, nil
}
