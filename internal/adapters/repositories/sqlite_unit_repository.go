package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"tow-dispatch-service/internal/domain"
)

// SQLite-backed implementation of the UnitRepository port.
type SqliteUnitRepository struct{ DB *sql.DB }

func NewSqliteUnitRepository(db *sql.DB) *SqliteUnitRepository {
	return &SqliteUnitRepository{DB: db}
}

// Return all tow units in dispatch order (unit id).
func (s *SqliteUnitRepository) ListUnits(ctx context.Context) ([]domain.TowUnit, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite unit repository: DB is nil")
	}

	query := `
	SELECT
		unit_id,
		lat,
		lon,
		capacity
	FROM tow_units
	ORDER BY unit_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list units: query tow_units table: %w", err)
	}
	defer rows.Close()

	units := make([]domain.TowUnit, 0, 16)
	for rows.Next() {
		var u domain.TowUnit
		if err := rows.Scan(&u.UnitID, &u.Location.Lat, &u.Location.Lon, &u.Capacity); err != nil {
			return nil, fmt.Errorf("list units: scan row: %w", err)
		}
		units = append(units, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list units: row iteration: %w", err)
	}

	return units, nil
}
