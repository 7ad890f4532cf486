package services

import (
	"context"
	"testing"
	"tow-dispatch-service/internal/adapters/fleet"
	"tow-dispatch-service/internal/domain"
)

// Assets are laid out along the equator so ranking follows longitude.
func equatorAsset(lon float64) domain.Coordinates {
	return domain.Coordinates{Lat: 0, Lon: lon}
}

func newTestPlanner(t *testing.T, mock *fleet.MockClient, cfg PlannerConfig) *Planner {
	t.Helper()

	planner, err := NewPlanner(cfg, mock, mock, mock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return planner
}

func assertAssets(t *testing.T, got []int, want []int) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("assets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("assets = %v, want %v", got, want)
		}
	}
}

func TestPlannerCapacitySplit(t *testing.T) {
	// Unit 1 sits at the origin, unit 2 far east, and all seven assets
	// are far closer to unit 1. Unit 1 (capacity 3) must take the three
	// nearest; unit 2 (capacity 4) takes four of the remainder ranked
	// from its own position.
	locations := map[int]domain.Coordinates{}
	pending := make([]domain.PendingAsset, 0, 7)
	for i := 1; i <= 7; i++ {
		owner := 100 + i
		locations[owner] = equatorAsset(float64(i))
		pending = append(pending, domain.PendingAsset{OwnerID: owner, AssetID: 200 + i})
	}

	mock := fleet.NewMockClient(locations)
	planner := newTestPlanner(t, mock, PlannerConfig{})

	units := []domain.TowUnit{
		{UnitID: 1, Location: equatorAsset(0), Capacity: 3},
		{UnitID: 2, Location: equatorAsset(100), Capacity: 4},
	}

	result, err := planner.Plan(context.Background(), units, pending)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertAssets(t, result.Plan.AssetsFor(1), []int{201, 202, 203})
	// Unit 2 ranks the leftovers by its own distance: highest longitude first.
	assertAssets(t, result.Plan.AssetsFor(2), []int{207, 206, 205, 204})

	if result.Stats.Coupled != 7 || result.Stats.Resolved != 7 {
		t.Fatalf("stats = %+v, want 7 resolved and 7 coupled", result.Stats)
	}

	// Every coupled assignment opens a case for its owner.
	if len(mock.OpenCaseCalls) != 7 {
		t.Fatalf("expected 7 open-case calls, got %d", len(mock.OpenCaseCalls))
	}
}

func TestPlannerGlobalExclusivity(t *testing.T) {
	locations := map[int]domain.Coordinates{}
	pending := make([]domain.PendingAsset, 0, 6)
	for i := 1; i <= 6; i++ {
		owner := 100 + i
		locations[owner] = equatorAsset(float64(i))
		pending = append(pending, domain.PendingAsset{OwnerID: owner, AssetID: 200 + i})
	}

	mock := fleet.NewMockClient(locations)
	planner := newTestPlanner(t, mock, PlannerConfig{})

	// Both units sit at the same point, so they compete for the same
	// nearest assets.
	units := []domain.TowUnit{
		{UnitID: 1, Location: equatorAsset(3), Capacity: 2},
		{UnitID: 2, Location: equatorAsset(3), Capacity: 2},
	}

	result, err := planner.Plan(context.Background(), units, pending)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := map[int]int{}
	for _, entry := range result.Plan.Units {
		if len(entry.AssetIDs) > 2 {
			t.Fatalf("unit %d exceeded capacity: %v", entry.UnitID, entry.AssetIDs)
		}
		for _, assetID := range entry.AssetIDs {
			if prev, ok := seen[assetID]; ok {
				t.Fatalf("asset %d assigned to both unit %d and unit %d", assetID, prev, entry.UnitID)
			}
			seen[assetID] = entry.UnitID
		}
	}

	if result.Plan.TotalAssigned() != 4 {
		t.Fatalf("expected 4 assignments total, got %d", result.Plan.TotalAssigned())
	}
}

func TestPlannerResolutionFailureExcludesAsset(t *testing.T) {
	locations := map[int]domain.Coordinates{
		101: equatorAsset(1),
		103: equatorAsset(3),
	}

	mock := fleet.NewMockClient(locations)
	mock.FailResolve = map[int]bool{102: true}

	planner := newTestPlanner(t, mock, PlannerConfig{})

	pending := []domain.PendingAsset{
		{OwnerID: 101, AssetID: 201},
		{OwnerID: 102, AssetID: 202},
		{OwnerID: 103, AssetID: 203},
	}
	units := []domain.TowUnit{
		{UnitID: 1, Location: equatorAsset(0), Capacity: 5},
	}

	result, err := planner.Plan(context.Background(), units, pending)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertAssets(t, result.Plan.AssetsFor(1), []int{201, 203})

	if result.Stats.Unresolved != 1 {
		t.Fatalf("stats = %+v, want 1 unresolved", result.Stats)
	}
	if len(result.SkippedOwners) != 1 || result.SkippedOwners[0] != 102 {
		t.Fatalf("skipped owners = %v, want [102]", result.SkippedOwners)
	}

	// The unresolved owner must never reach the coupling gateway.
	for _, call := range mock.CoupleCalls {
		if call.AssetID == 202 {
			t.Fatalf("asset 202 was offered for coupling despite failed resolution")
		}
	}
}

func TestPlannerCouplingFailureFallsBackToNextNearest(t *testing.T) {
	locations := map[int]domain.Coordinates{
		101: equatorAsset(1),
		102: equatorAsset(2),
		103: equatorAsset(3),
	}

	mock := fleet.NewMockClient(locations)
	mock.FailCouple = map[int]bool{201: true}

	planner := newTestPlanner(t, mock, PlannerConfig{})

	pending := []domain.PendingAsset{
		{OwnerID: 101, AssetID: 201},
		{OwnerID: 102, AssetID: 202},
		{OwnerID: 103, AssetID: 203},
	}
	units := []domain.TowUnit{
		{UnitID: 1, Location: equatorAsset(0), Capacity: 2},
		{UnitID: 2, Location: equatorAsset(0), Capacity: 2},
	}

	result, err := planner.Plan(context.Background(), units, pending)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The ranked prefix for unit 1 is [201, 202]; the rejected nearest
	// consumes its slot and the next-nearest is coupled instead.
	assertAssets(t, result.Plan.AssetsFor(1), []int{202})

	// The rejected asset is not re-offered to a later unit in the same
	// pass; unit 2 picks up the remaining unassigned asset.
	assertAssets(t, result.Plan.AssetsFor(2), []int{203})
	for _, call := range mock.CoupleCalls {
		if call.AssetID == 201 && call.UnitID != 1 {
			t.Fatalf("rejected asset 201 was re-offered to unit %d", call.UnitID)
		}
	}

	if result.Stats.Rejected != 1 || result.Stats.Coupled != 2 {
		t.Fatalf("stats = %+v, want 1 rejected and 2 coupled", result.Stats)
	}
}

func TestPlannerCouplingFailureBoundedByCapacity(t *testing.T) {
	// Capacity 1 fixes unit 1's ranked prefix to the single nearest
	// asset before any coupling is attempted. When that coupling fails,
	// the rejection must not pull the next-nearest into the prefix:
	// unit 1 ends the pass empty.
	locations := map[int]domain.Coordinates{
		101: equatorAsset(1),
		102: equatorAsset(2),
	}

	mock := fleet.NewMockClient(locations)
	mock.FailCouple = map[int]bool{201: true}

	planner := newTestPlanner(t, mock, PlannerConfig{})

	pending := []domain.PendingAsset{
		{OwnerID: 101, AssetID: 201},
		{OwnerID: 102, AssetID: 202},
	}
	units := []domain.TowUnit{
		{UnitID: 1, Location: equatorAsset(0), Capacity: 1},
		{UnitID: 2, Location: equatorAsset(0), Capacity: 1},
	}

	result, err := planner.Plan(context.Background(), units, pending)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := result.Plan.AssetsFor(1); got != nil {
		t.Fatalf("unit 1 assets = %v, want none", got)
	}
	assertAssets(t, result.Plan.AssetsFor(2), []int{202})

	// Asset 202 was outside unit 1's prefix and must never have been
	// offered to it.
	for _, call := range mock.CoupleCalls {
		if call.UnitID == 1 && call.AssetID != 201 {
			t.Fatalf("unit 1 was offered asset %d beyond its prefix", call.AssetID)
		}
	}

	if result.Stats.Rejected != 1 || result.Stats.Coupled != 1 {
		t.Fatalf("stats = %+v, want 1 rejected and 1 coupled", result.Stats)
	}
}

func TestPlannerCaseFailureKeepsAssignment(t *testing.T) {
	locations := map[int]domain.Coordinates{
		101: equatorAsset(1),
		102: equatorAsset(2),
	}

	mock := fleet.NewMockClient(locations)
	mock.FailOpenCase = map[int]bool{101: true}

	planner := newTestPlanner(t, mock, PlannerConfig{})

	pending := []domain.PendingAsset{
		{OwnerID: 101, AssetID: 201},
		{OwnerID: 102, AssetID: 202},
	}
	units := []domain.TowUnit{
		{UnitID: 1, Location: equatorAsset(0), Capacity: 5},
	}

	result, err := planner.Plan(context.Background(), units, pending)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Case failure is reported only; the coupling stands.
	assertAssets(t, result.Plan.AssetsFor(1), []int{201, 202})

	if result.Stats.CaseFailures != 1 {
		t.Fatalf("stats = %+v, want 1 case failure", result.Stats)
	}
}

func TestPlannerDeterministicRerun(t *testing.T) {
	// Owners 101 and 102 are equidistant from the unit; input order
	// breaks the tie, so repeated runs must agree.
	locations := map[int]domain.Coordinates{
		101: equatorAsset(2),
		102: equatorAsset(-2),
		103: equatorAsset(5),
	}

	pending := []domain.PendingAsset{
		{OwnerID: 101, AssetID: 201},
		{OwnerID: 102, AssetID: 202},
		{OwnerID: 103, AssetID: 203},
	}
	units := []domain.TowUnit{
		{UnitID: 1, Location: equatorAsset(0), Capacity: 2},
		{UnitID: 2, Location: equatorAsset(5), Capacity: 2},
	}

	var first *PlanResult
	for run := 0; run < 3; run++ {
		mock := fleet.NewMockClient(locations)
		planner := newTestPlanner(t, mock, PlannerConfig{})

		result, err := planner.Plan(context.Background(), units, pending)
		if err != nil {
			t.Fatalf("run %d: unexpected error: %v", run, err)
		}

		assertAssets(t, result.Plan.AssetsFor(1), []int{201, 202})
		assertAssets(t, result.Plan.AssetsFor(2), []int{203})

		if first == nil {
			first = result
			continue
		}

		if len(result.Plan.Units) != len(first.Plan.Units) {
			t.Fatalf("run %d produced a different plan shape", run)
		}
		for i, entry := range result.Plan.Units {
			assertAssets(t, entry.AssetIDs, first.Plan.Units[i].AssetIDs)
		}
	}
}

func TestPlannerDefaultCapacity(t *testing.T) {
	locations := map[int]domain.Coordinates{}
	pending := make([]domain.PendingAsset, 0, 4)
	for i := 1; i <= 4; i++ {
		owner := 100 + i
		locations[owner] = equatorAsset(float64(i))
		pending = append(pending, domain.PendingAsset{OwnerID: owner, AssetID: 200 + i})
	}

	mock := fleet.NewMockClient(locations)
	planner := newTestPlanner(t, mock, PlannerConfig{DefaultCapacity: 2})

	// Capacity unset on the unit: the configured default applies.
	units := []domain.TowUnit{
		{UnitID: 1, Location: equatorAsset(0)},
	}

	result, err := planner.Plan(context.Background(), units, pending)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertAssets(t, result.Plan.AssetsFor(1), []int{201, 202})
}

// prefetchingMock warms a fixed set of owner locations in one batch,
// on top of the scripted per-owner behavior of the embedded mock.
type prefetchingMock struct {
	*fleet.MockClient
	Warm          map[int]domain.Coordinates
	PrefetchCalls [][]int
}

func (m *prefetchingMock) PrefetchLocations(ctx context.Context, ownerIDs []int) (map[int]domain.Coordinates, error) {
	m.PrefetchCalls = append(m.PrefetchCalls, ownerIDs)

	out := make(map[int]domain.Coordinates)
	for _, id := range ownerIDs {
		if c, ok := m.Warm[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func TestPlannerUsesPrefetchedLocations(t *testing.T) {
	// Owner 101 is only known to the batch prefetch; owner 102 only to
	// per-owner resolution. Both must end up assigned, and 101 must
	// never hit the individual lookup path.
	mock := &prefetchingMock{
		MockClient: fleet.NewMockClient(map[int]domain.Coordinates{
			102: equatorAsset(2),
		}),
		Warm: map[int]domain.Coordinates{
			101: equatorAsset(1),
		},
	}

	planner, err := NewPlanner(PlannerConfig{}, mock, mock, mock)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pending := []domain.PendingAsset{
		{OwnerID: 101, AssetID: 201},
		{OwnerID: 102, AssetID: 202},
	}
	units := []domain.TowUnit{
		{UnitID: 1, Location: equatorAsset(0), Capacity: 5},
	}

	result, err := planner.Plan(context.Background(), units, pending)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertAssets(t, result.Plan.AssetsFor(1), []int{201, 202})

	if len(mock.PrefetchCalls) != 1 || len(mock.PrefetchCalls[0]) != 2 {
		t.Fatalf("prefetch calls = %v, want one batch of both owners", mock.PrefetchCalls)
	}
	// Only the prefetch miss resolves individually.
	if len(mock.ResolveCalls) != 1 || mock.ResolveCalls[0] != 102 {
		t.Fatalf("resolve calls = %v, want [102]", mock.ResolveCalls)
	}
}

func TestPlannerEmptyInputs(t *testing.T) {
	mock := fleet.NewMockClient(nil)
	planner := newTestPlanner(t, mock, PlannerConfig{})

	result, err := planner.Plan(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Plan.Units) != 0 {
		t.Fatalf("expected empty plan, got %+v", result.Plan.Units)
	}
	if len(mock.CoupleCalls) != 0 || len(mock.OpenCaseCalls) != 0 {
		t.Fatal("no remote calls expected for empty inputs")
	}
}

func TestPlannerRejectsMalformedInputs(t *testing.T) {
	mock := fleet.NewMockClient(map[int]domain.Coordinates{101: equatorAsset(1)})
	planner := newTestPlanner(t, mock, PlannerConfig{})

	cases := []struct {
		name    string
		units   []domain.TowUnit
		pending []domain.PendingAsset
	}{
		{
			name: "duplicate unit id",
			units: []domain.TowUnit{
				{UnitID: 1, Location: equatorAsset(0)},
				{UnitID: 1, Location: equatorAsset(1)},
			},
		},
		{
			name:  "negative capacity",
			units: []domain.TowUnit{{UnitID: 1, Location: equatorAsset(0), Capacity: -1}},
		},
		{
			name:  "out of range unit location",
			units: []domain.TowUnit{{UnitID: 1, Location: domain.Coordinates{Lat: 95, Lon: 0}}},
		},
		{
			name:  "duplicate asset id",
			units: []domain.TowUnit{{UnitID: 1, Location: equatorAsset(0)}},
			pending: []domain.PendingAsset{
				{OwnerID: 101, AssetID: 201},
				{OwnerID: 102, AssetID: 201},
			},
		},
		{
			name:  "duplicate owner id",
			units: []domain.TowUnit{{UnitID: 1, Location: equatorAsset(0)}},
			pending: []domain.PendingAsset{
				{OwnerID: 101, AssetID: 201},
				{OwnerID: 101, AssetID: 202},
			},
		},
	}

	for _, tc := range cases {
		if _, err := planner.Plan(context.Background(), tc.units, tc.pending); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}

	// Contract violations fail fast: nothing may reach the gateways.
	if len(mock.CoupleCalls) != 0 || len(mock.OpenCaseCalls) != 0 {
		t.Fatal("no remote calls expected for malformed inputs")
	}
}
