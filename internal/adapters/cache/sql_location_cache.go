package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"tow-dispatch-service/internal/domain"
	"tow-dispatch-service/internal/platform/obs"
)

// SQLLocationCache is a Postgres-backed cache of owner coordinates.
type SQLLocationCache struct {
	DB *sql.DB
}

func NewSQLLocationCache(db *sql.DB) *SQLLocationCache {
	return &SQLLocationCache{DB: db}
}

// Fetch the cached coordinates for a single owner.
func (s *SQLLocationCache) Get(ctx context.Context, ownerID int) (_ domain.Coordinates, _ bool, err error) {
	defer obs.Time(ctx, "location.cache.Get")(&err)

	if s.DB == nil {
		return domain.Coordinates{}, false, errors.New("location cache: db is nil")
	}

	q := `
	SELECT lat, lon
	FROM owner_location_cache
	WHERE owner_id = $1;
	`

	var coords domain.Coordinates
	err = s.DB.QueryRowContext(ctx, q, ownerID).Scan(&coords.Lat, &coords.Lon)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return domain.Coordinates{}, false, nil
	}
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("get location cache owner=%d: %w", ownerID, err)
	}

	return coords, true, nil
}

// Fetch cached coordinates for many owners at once.
func (s *SQLLocationCache) GetMany(ctx context.Context, ownerIDs []int) (_ map[int]domain.Coordinates, err error) {
	defer obs.Time(ctx, "location.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("location cache: db is nil")
	}

	if len(ownerIDs) == 0 {
		return map[int]domain.Coordinates{}, nil
	}

	seen := map[int]struct{}{}
	uniq := make([]int64, 0, len(ownerIDs))
	for _, id := range ownerIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, int64(id))
	}

	q := `
	SELECT owner_id, lat, lon
	FROM owner_location_cache
	WHERE owner_id = ANY($1::bigint[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, uniq)
	if err != nil {
		return nil, fmt.Errorf("get location cache: query owner_location_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[int]domain.Coordinates, len(uniq))
	for rows.Next() {
		var id int
		var coords domain.Coordinates
		if err := rows.Scan(&id, &coords.Lat, &coords.Lon); err != nil {
			return nil, fmt.Errorf("get location cache: scan row: %w", err)
		}
		out[id] = coords
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get location cache: row iteration: %w", err)
	}

	return out, nil
}

// Store the coordinates for one owner.
func (s *SQLLocationCache) Put(ctx context.Context, ownerID int, coords domain.Coordinates) error {
	if s.DB == nil {
		return errors.New("location cache: db is nil")
	}

	q := `
	INSERT INTO owner_location_cache (owner_id, lat, lon)
	VALUES ($1, $2, $3)
	ON CONFLICT (owner_id) DO UPDATE
	SET lat = EXCLUDED.lat,
		lon = EXCLUDED.lon;
	`

	if _, err := s.DB.ExecContext(ctx, q, ownerID, coords.Lat, coords.Lon); err != nil {
		return fmt.Errorf("insert location cache owner=%d: %w", ownerID, err)
	}

	return nil
}
