package fleet

import (
	"context"
	"fmt"
	"sync"
	"tow-dispatch-service/internal/domain"
)

// MockClient is a scripted in-memory stand-in for the fleet API, used by
// planner tests. Zero-value failure sets mean every call succeeds.
// Safe for concurrent use: case-opening calls may arrive from multiple
// goroutines.
type MockClient struct {
	mu sync.Mutex

	Locations     map[int]domain.Coordinates
	FailResolve   map[int]bool // by owner id
	FailCouple    map[int]bool // by asset id
	FailOpenCase  map[int]bool // by owner id
	ResolveCalls  []int
	CoupleCalls   []CoupleCall
	OpenCaseCalls []int
}

type CoupleCall struct {
	AssetID int
	UnitID  int
}

func NewMockClient(locations map[int]domain.Coordinates) *MockClient {
	return &MockClient{Locations: locations}
}

func (m *MockClient) ResolveLocation(ctx context.Context, ownerID int) (domain.Coordinates, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ResolveCalls = append(m.ResolveCalls, ownerID)
	if m.FailResolve[ownerID] {
		return domain.Coordinates{}, fmt.Errorf("mock: no location for owner %d", ownerID)
	}

	coords, ok := m.Locations[ownerID]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("mock: unknown owner %d", ownerID)
	}
	return coords, nil
}

func (m *MockClient) Couple(ctx context.Context, assetID, unitID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CoupleCalls = append(m.CoupleCalls, CoupleCall{AssetID: assetID, UnitID: unitID})
	if m.FailCouple[assetID] {
		return fmt.Errorf("mock: couple rejected for asset %d", assetID)
	}
	return nil
}

func (m *MockClient) OpenCase(ctx context.Context, ownerID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.OpenCaseCalls = append(m.OpenCaseCalls, ownerID)
	if m.FailOpenCase[ownerID] {
		return fmt.Errorf("mock: open case failed for owner %d", ownerID)
	}
	return nil
}
