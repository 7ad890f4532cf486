package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"tow-dispatch-service/internal/domain"
)

// SQLite backed cache of owner coordinates.
type SqliteLocationCache struct {
	DB *sql.DB
}

func NewSqliteLocationCache(db *sql.DB) *SqliteLocationCache {
	return &SqliteLocationCache{DB: db}
}

// Fetch the cached coordinates for a single owner.
func (s *SqliteLocationCache) Get(ctx context.Context, ownerID int) (domain.Coordinates, bool, error) {
	if s.DB == nil {
		return domain.Coordinates{}, false, errors.New("location cache: db is nil")
	}

	q := `
	SELECT lat, lon
	FROM owner_location_cache
	WHERE owner_id = ?;
	`

	var coords domain.Coordinates
	err := s.DB.QueryRowContext(ctx, q, ownerID).Scan(&coords.Lat, &coords.Lon)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Coordinates{}, false, nil
	}
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("get location cache owner=%d: %w", ownerID, err)
	}

	return coords, true, nil
}

// Fetch cached coordinates for many owners at once.
func (s *SqliteLocationCache) GetMany(ctx context.Context, ownerIDs []int) (map[int]domain.Coordinates, error) {
	if s.DB == nil {
		return nil, errors.New("location cache: db is nil")
	}

	if len(ownerIDs) == 0 {
		return map[int]domain.Coordinates{}, nil
	}

	seen := map[int]struct{}{}
	ph := make([]string, 0, len(ownerIDs))
	args := make([]any, 0, len(ownerIDs))
	for _, id := range ownerIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ph = append(ph, "?")
		args = append(args, id)
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT owner_id, lat, lon
	FROM owner_location_cache
	WHERE owner_id IN (%s);
	`, strings.Join(ph, ","))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get location cache: query owner_location_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[int]domain.Coordinates, len(args))
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
func (s *SqliteLocationCache) Put(ctx context.Context, ownerID int, coords domain.Coordinates) error {
	if s.DB == nil {
		return errors.New("location cache: db is nil")
	}

	q := `
	INSERT OR REPLACE INTO owner_location_cache (owner_id, lat, lon)
	VALUES (?, ?, ?);
	`

	if _, err := s.DB.ExecContext(ctx, q, ownerID, coords.Lat, coords.Lon); err != nil {
		return fmt.Errorf("insert location cache owner=%d: %w", ownerID, err)
	}

	return nil
}
