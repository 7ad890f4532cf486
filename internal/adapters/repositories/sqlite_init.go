package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createUnitsQuery := `
	CREATE TABLE IF NOT EXISTS tow_units (
		unit_id INTEGER PRIMARY KEY,
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		capacity INTEGER NOT NULL DEFAULT 0
	);
	`

	createAssetsQuery := `
	CREATE TABLE IF NOT EXISTS pending_assets (
		owner_id INTEGER PRIMARY KEY,
		asset_id INTEGER NOT NULL UNIQUE
	);
	`

	createLocationCacheQuery := `
	CREATE TABLE IF NOT EXISTS owner_location_cache (
		owner_id INTEGER PRIMARY KEY,
		lat REAL NOT NULL,
		lon REAL NOT NULL
	);
	`

	statements := []string{
		createUnitsQuery,
		createAssetsQuery,
		createLocationCacheQuery,
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

type UnitSeed struct {
	UnitID   int     `json:"unit_id"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Capacity int     `json:"capacity"`
}

type AssetSeed struct {
	OwnerID int `json:"owner_id"`
	AssetID int `json:"asset_id"`
}

type seedData struct {
	Units  []UnitSeed  `json:"units"`
	Assets []AssetSeed `json:"assets"`
}

func loadSeed(jsonPath string) (*seedData, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", jsonPath, err)
	}

	var data seedData
	if err := json.Unmarshal(bytes, &data); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	for i, u := range data.Units {
		if u.UnitID <= 0 {
			return nil, fmt.Errorf("invalid unit_id at index %d: %d", i+1, u.UnitID)
		}
		if u.Capacity < 0 {
			return nil, fmt.Errorf("unit %d has negative capacity %d", u.UnitID, u.Capacity)
		}
	}
	for i, a := range data.Assets {
		if a.OwnerID <= 0 || a.AssetID <= 0 {
			return nil, fmt.Errorf("invalid asset entry at index %d: owner_id=%d asset_id=%d", i+1, a.OwnerID, a.AssetID)
		}
	}

	return &data, nil
}

// Populate the database with tow units and pending assets from a JSON file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
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
	INSERT OR REPLACE INTO tow_units (
		unit_id,
		lat,
		lon,
		capacity
	)
	VALUES (?, ?, ?, ?);
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
	INSERT OR REPLACE INTO pending_assets (
		owner_id,
		asset_id
	)
	VALUES (?, ?);
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
