package fleet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
	"tow-dispatch-service/internal/domain"
	"tow-dispatch-service/internal/platform/obs"
	"tow-dispatch-service/internal/ports"
)

// Client implements the LocationResolver, CouplingGateway and CaseOpener
// ports against the fleet management API.
//
// It coordinates:
//   - Owner location lookups with an optional persistent cache
//   - Asset-to-unit coupling commands
//   - Two-step collection case creation
//
// The client is safe for concurrent use. Every remote call is a single
// attempt with a bounded timeout; a timeout is a failure like any other.
type Client struct {
	session       *http.Client
	baseURL       string
	apiKey        string
	locationCache ports.LocationCache
}

func NewClient(baseURL, apiKey string, locationCache ports.LocationCache) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("fleet base URL is empty")
	}

	return &Client{
		session:       &http.Client{Timeout: 10 * time.Second},
		baseURL:       baseURL,
		apiKey:        apiKey,
		locationCache: locationCache,
	}, nil
}

type locationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ResolveLocation returns the owner's last known coordinates, consulting
// the location cache before issuing the remote lookup.
func (c *Client) ResolveLocation(ctx context.Context, ownerID int) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "fleet.ResolveLocation")(&err)

	if c.locationCache != nil {
		coords, ok, err := c.locationCache.Get(ctx, ownerID)
		if err != nil {
			log.Printf("location cache read failed: owner_id=%d err=%v", ownerID, err)
		} else if ok {
			return coords, nil
		}
	}

	endpoint := fmt.Sprintf("%s/api/v1/locations/owners/%d", c.baseURL, ownerID)

	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("resolve location owner %d: %w", ownerID, err)
	}

	resp, err := c.do(req)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("resolve location owner %d: %w", ownerID, err)
	}
	defer resp.Body.Close()

	var decoded locationResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("resolve location owner %d: decode response: %w", ownerID, err)
	}

	coords := domain.Coordinates{Lat: decoded.Latitude, Lon: decoded.Longitude}
	if !coords.Valid() {
		return domain.Coordinates{}, fmt.Errorf(
			"resolve location owner %d: coordinates out of range lat=%v lon=%v",
			ownerID, coords.Lat, coords.Lon,
		)
	}

	if c.locationCache != nil {
		if err := c.locationCache.Put(ctx, ownerID, coords); err != nil {
			log.Printf("location cache write failed: owner_id=%d err=%v", ownerID, err)
		}
	}

	return coords, nil
}

// PrefetchLocations returns cached coordinates for the given owners in
// one cache round trip. Owners without a cached location are absent from
// the result and are expected to resolve individually.
func (c *Client) PrefetchLocations(ctx context.Context, ownerIDs []int) (_ map[int]domain.Coordinates, err error) {
	defer obs.Time(ctx, "fleet.PrefetchLocations")(&err)

	if c.locationCache == nil || len(ownerIDs) == 0 {
		return map[int]domain.Coordinates{}, nil
	}

	hits, err := c.locationCache.GetMany(ctx, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("prefetch locations: %w", err)
	}

	return hits, nil
}

type coupleRequest struct {
	AssetID int `json:"asset_id"`
	UnitID  int `json:"unit_id"`
}

// Couple requests that an asset be linked to a tow unit. Any non-success
// status is a failure; the response body is not consumed.
func (c *Client) Couple(ctx context.Context, assetID, unitID int) (err error) {
	defer obs.Time(ctx, "fleet.Couple")(&err)

	payload, err := json.Marshal(coupleRequest{AssetID: assetID, UnitID: unitID})
	if err != nil {
		return fmt.Errorf("couple asset %d to unit %d: marshal request: %w", assetID, unitID, err)
	}

	endpoint := c.baseURL + "/api/v1/fleet/couplings"

	req, err := c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("couple asset %d to unit %d: %w", assetID, unitID, err)
	}

	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("couple asset %d to unit %d: %w", assetID, unitID, err)
	}
	resp.Body.Close()

	return nil
}

// OpenCase opens the collection case for an owner: first the delinquency
// precondition record, then the case itself. Both remote steps must
// succeed for the call to report success.
func (c *Client) OpenCase(ctx context.Context, ownerID int) (err error) {
	defer obs.Time(ctx, "fleet.OpenCase")(&err)

	recordEndpoint := fmt.Sprintf("%s/api/v1/delinquency/records/%d", c.baseURL, ownerID)

	req, err := c.newRequest(ctx, http.MethodPost, recordEndpoint, nil)
	if err != nil {
		return fmt.Errorf("open case owner %d: precondition record: %w", ownerID, err)
	}

	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("open case owner %d: precondition record: %w", ownerID, err)
	}
	resp.Body.Close()

	caseEndpoint := c.baseURL + "/api/v1/collection/cases"

	req, err = c.newRequest(ctx, http.MethodPost, caseEndpoint, nil)
	if err != nil {
		return fmt.Errorf("open case owner %d: collection case: %w", ownerID, err)
	}

	resp, err = c.do(req)
	if err != nil {
		return fmt.Errorf("open case owner %d: collection case: %w", ownerID, err)
	}
	resp.Body.Close()

	return nil
}
