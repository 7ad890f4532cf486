package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"tow-dispatch-service/internal/domain"
	"tow-dispatch-service/internal/platform/obs"
	"tow-dispatch-service/internal/ports"
)

// PlannerConfig carries the planner's explicit configuration so no
// behavior depends on ambient package-level state.
type PlannerConfig struct {
	// Per-unit assignment cap applied when a unit does not specify one.
	DefaultCapacity int
	// Maximum concurrent case-opening calls in flight.
	CaseWorkers int
}

// Planner assigns pending assets to tow units by geographic proximity.
//
// The algorithm is a greedy nearest-neighbor match under per-unit
// capacity: units are processed in input order, each taking its nearest
// still-unassigned assets. It does not attempt global optimization; the
// design prioritizes determinism and simplicity over optimality.
//
// Coupling calls are strictly sequential so capacity accounting and
// assignment order stay exact. Case-opening for already-committed
// assignments runs concurrently since its outcome never affects ranking.
type Planner struct {
	resolver ports.LocationResolver
	coupler  ports.CouplingGateway
	cases    ports.CaseOpener

	defaultCapacity int
	caseWorkers     int
}

func NewPlanner(
	cfg PlannerConfig,
	resolver ports.LocationResolver,
	coupler ports.CouplingGateway,
	cases ports.CaseOpener,
) (*Planner, error) {
	if resolver == nil {
		return nil, errors.New("new planner: resolver must be non-nil")
	}
	if coupler == nil {
		return nil, errors.New("new planner: coupling gateway must be non-nil")
	}
	if cases == nil {
		return nil, errors.New("new planner: case opener must be non-nil")
	}

	defaultCapacity := cfg.DefaultCapacity
	if defaultCapacity == 0 {
		defaultCapacity = domain.DefaultUnitCapacity
	}
	if defaultCapacity < 0 {
		return nil, fmt.Errorf("new planner: default capacity must be positive, got %d", cfg.DefaultCapacity)
	}

	caseWorkers := cfg.CaseWorkers
	if caseWorkers == 0 {
		caseWorkers = 5
	}
	if caseWorkers < 0 {
		return nil, fmt.Errorf("new planner: case workers must be positive, got %d", cfg.CaseWorkers)
	}

	return &Planner{
		resolver:        resolver,
		coupler:         coupler,
		cases:           cases,
		defaultCapacity: defaultCapacity,
		caseWorkers:     caseWorkers,
	}, nil
}

// PlanStats counts per-pass outcomes across all assets and units.
type PlanStats struct {
	Resolved     int
	Unresolved   int
	Coupled      int
	Rejected     int
	CaseFailures int
}

// PlanResult is the outcome of one planning pass.
type PlanResult struct {
	Plan          *domain.AssignmentPlan
	Stats         PlanStats
	SkippedOwners []int
}

type caseResult struct {
	ownerID int
	assetID int
	err     error
}

type rankedCandidate struct {
	asset      domain.ResolvedAsset
	distanceKm float64
}

// Plan runs a single assignment pass.
//
// Remote call failures never terminate the pass: unresolved owners are
// dropped, coupling rejections exclude the asset for the rest of the
// pass, and case-opening failures are reported without retracting the
// coupling. The only errors returned are contract violations detected
// before any remote call is made.
func (p *Planner) Plan(
	ctx context.Context,
	units []domain.TowUnit,
	pending []domain.PendingAsset,
) (_ *PlanResult, err error) {
	defer obs.Time(ctx, "planner.Plan")(&err)

	if err := validateInputs(units, pending); err != nil {
		return nil, fmt.Errorf("plan assignments: %w", err)
	}

	result := &PlanResult{Plan: domain.NewAssignmentPlan()}

	// Resolve phase: owners that cannot be located are excluded from the
	// pass permanently and surfaced via SkippedOwners. Known locations
	// are warmed in one batched lookup; the rest resolve one at a time.
	prefetched := p.prefetchLocations(ctx, pending)

	resolved := make([]domain.ResolvedAsset, 0, len(pending))
	for _, asset := range pending {
		coords, ok := prefetched[asset.OwnerID]
		if !ok {
			var err error
			coords, err = p.resolver.ResolveLocation(ctx, asset.OwnerID)
			if err != nil {
				log.Printf("resolve location failed: owner_id=%d asset_id=%d err=%v", asset.OwnerID, asset.AssetID, err)
				result.SkippedOwners = append(result.SkippedOwners, asset.OwnerID)
				result.Stats.Unresolved++
				continue
			}
		}

		resolved = append(resolved, domain.ResolvedAsset{PendingAsset: asset, Location: coords})
		result.Stats.Resolved++
	}

	assigned := make(map[int]struct{}, len(resolved))
	rejected := make(map[int]struct{})

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.caseWorkers)
	caseResults := make(chan caseResult, len(resolved))

	// Dispatch phase: one unit at a time, in input order.
	for _, unit := range units {
		capacity := unit.EffectiveCapacity(p.defaultCapacity)

		pool := make([]rankedCandidate, 0, len(resolved))
		for _, a := range resolved {
			if _, ok := assigned[a.AssetID]; ok {
				continue
			}
			if _, ok := rejected[a.AssetID]; ok {
				continue
			}
			pool = append(pool, rankedCandidate{
				asset:      a,
				distanceKm: domain.Distance(unit.Location, a.Location),
			})
		}

		if len(pool) == 0 {
			continue
		}

		// Stable sort keeps input order on equal distances, so re-runs
		// over the same inputs produce identical plans.
		slices.SortStableFunc(pool, func(a, b rankedCandidate) int {
			return cmp.Compare(a.distanceKm, b.distanceKm)
		})

		if len(pool) > capacity {
			pool = pool[:capacity]
		}

		for _, candidate := range pool {
			// The prefix already bounds the take, but capacity is
			// re-checked after every successful append.
			if len(result.Plan.AssetsFor(unit.UnitID)) >= capacity {
				break
			}

			asset := candidate.asset
			if err := p.coupler.Couple(ctx, asset.AssetID, unit.UnitID); err != nil {
				log.Printf("couple failed: asset_id=%d unit_id=%d err=%v", asset.AssetID, unit.UnitID, err)
				rejected[asset.AssetID] = struct{}{}
				result.Stats.Rejected++
				continue
			}

			result.Plan.Append(unit.UnitID, asset.AssetID)
			assigned[asset.AssetID] = struct{}{}
			result.Stats.Coupled++

			wg.Add(1)
			go func(ownerID, assetID int) {
				sem <- struct{}{}
				defer wg.Done()
				defer func() { <-sem }()

				caseResults <- caseResult{
					ownerID: ownerID,
					assetID: assetID,
					err:     p.cases.OpenCase(ctx, ownerID),
				}
			}(asset.OwnerID, asset.AssetID)
		}
	}

	wg.Wait()
	close(caseResults)

	for res := range caseResults {
		if res.err != nil {
			// Non-corrective: the coupling already took effect, so the
			// asset stays in the plan.
			log.Printf("open case failed: owner_id=%d asset_id=%d err=%v", res.ownerID, res.assetID, res.err)
			result.Stats.CaseFailures++
		}
	}

	return result, nil
}

// prefetchLocations warms owner coordinates in one batched lookup when
// the resolver supports it. A failed or unsupported prefetch costs
// nothing: every owner simply falls back to individual resolution.
func (p *Planner) prefetchLocations(ctx context.Context, pending []domain.PendingAsset) map[int]domain.Coordinates {
	pf, ok := p.resolver.(ports.LocationPrefetcher)
	if !ok || len(pending) == 0 {
		return nil
	}

	ownerIDs := make([]int, 0, len(pending))
	for _, a := range pending {
		ownerIDs = append(ownerIDs, a.OwnerID)
	}

	hits, err := pf.PrefetchLocations(ctx, ownerIDs)
	if err != nil {
		log.Printf("prefetch locations failed: owners=%d err=%v", len(ownerIDs), err)
		return nil
	}

	return hits
}

// ErrInvalidInput marks contract violations in the unit or asset lists,
// detected before any remote call is issued.
var ErrInvalidInput = errors.New("invalid input")

// validateInputs rejects malformed unit and asset lists before any
// remote call is issued.
func validateInputs(units []domain.TowUnit, pending []domain.PendingAsset) error {
	seenUnits := make(map[int]struct{}, len(units))
	for _, u := range units {
		if u.Capacity < 0 {
			return fmt.Errorf("%w: unit %d has negative capacity %d", ErrInvalidInput, u.UnitID, u.Capacity)
		}
		if !u.Location.Valid() {
			return fmt.Errorf("%w: unit %d has out-of-range location lat=%v lon=%v", ErrInvalidInput, u.UnitID, u.Location.Lat, u.Location.Lon)
		}
		if _, ok := seenUnits[u.UnitID]; ok {
			return fmt.Errorf("%w: duplicate unit id %d", ErrInvalidInput, u.UnitID)
		}
		seenUnits[u.UnitID] = struct{}{}
	}

	seenAssets := make(map[int]struct{}, len(pending))
	seenOwners := make(map[int]struct{}, len(pending))
	for _, a := range pending {
		if _, ok := seenAssets[a.AssetID]; ok {
			return fmt.Errorf("%w: duplicate asset id %d", ErrInvalidInput, a.AssetID)
		}
		seenAssets[a.AssetID] = struct{}{}

		if _, ok := seenOwners[a.OwnerID]; ok {
			return fmt.Errorf("%w: duplicate owner id %d", ErrInvalidInput, a.OwnerID)
		}
		seenOwners[a.OwnerID] = struct{}{}
	}

	return nil
}
