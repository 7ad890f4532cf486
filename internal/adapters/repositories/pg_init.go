package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the Postgres schema (dbtool target).
func InitSchemaPg(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`
	CREATE TABLE IF NOT EXISTS tow_units (
		unit_id BIGINT PRIMARY KEY,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		capacity INTEGER NOT NULL DEFAULT 0
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS pending_assets (
		owner_id BIGINT PRIMARY KEY,
		asset_id BIGINT NOT NULL UNIQUE
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS owner_location_cache (
		owner_id BIGINT PRIMARY KEY,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL
	);
	`,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Populate Postgres with tow units and pending assets from a JSON file.
func SeedFromJSONPg(db *sql.DB, jsonPath string) error {
	data, err := loadSeed(jsonPath)
	if err != nil {
		return fmt.Errorf("seed dispatch data: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed dispatch data: begin tx: %w", err)
	}
	defer tx.Rollback()

	unitStmt, err := tx.Prepare(`
	INSERT INTO tow_units (unit_id, lat, lon, capacity)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (unit_id) DO UPDATE
	SET lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		capacity = EXCLUDED.capacity;
	`)
	if err != nil {
		return fmt.Errorf("seed dispatch data: prepare unit insert: %w", err)
	}
	defer unitStmt.Close()

	for _, u := range data.Units {
		if _, err := unitStmt.Exec(u.UnitID, u.Lat, u.Lon, u.Capacity); err != nil {
			return fmt.Errorf("seed dispatch data: insert unit_id=%d: %w", u.UnitID, err)
		}
	}

	assetStmt, err := tx.Prepare(`
	INSERT INTO pending_assets (owner_id, asset_id)
	VALUES ($1, $2)
	ON CONFLICT (owner_id) DO UPDATE
	SET asset_id = EXCLUDED.asset_id;
	`)
	if err != nil {
		return fmt.Errorf("seed dispatch data: prepare asset insert: %w", err)
	}
	defer assetStmt.Close()

	for _, a := range data.Assets {
		if _, err := assetStmt.Exec(a.OwnerID, a.AssetID); err != nil {
			return fmt.Errorf("seed dispatch data: insert owner_id=%d: %w", a.OwnerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed dispatch data: commit tx: %w", err)
	}

	return nil
}
