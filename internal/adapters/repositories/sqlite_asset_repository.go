package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"tow-dispatch-service/internal/domain"
)

// SQLite-backed implementation of the AssetRepository port.
type SqliteAssetRepository struct{ DB *sql.DB }

func NewSqliteAssetRepository(db *sql.DB) *SqliteAssetRepository {
	return &SqliteAssetRepository{DB: db}
}

// Return all assets awaiting collection, in owner order.
func (s *SqliteAssetRepository) ListPendingAssets(ctx context.Context) ([]domain.PendingAsset, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite asset repository: DB is nil")
	}

	query := `
	SELECT
		owner_id,
		asset_id
	FROM pending_assets
	ORDER BY owner_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pending assets: query pending_assets table: %w", err)
	}
	defer rows.Close()

	assets := make([]domain.PendingAsset, 0, 64)
	for rows.Next() {
		var a domain.PendingAsset
		if err := rows.Scan(&a.OwnerID, &a.AssetID); err != nil {
			return nil, fmt.Errorf("list pending assets: scan row: %w", err)
		}
		assets = append(assets, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pending assets: row iteration: %w", err)
	}

	return assets, nil
}
