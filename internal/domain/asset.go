package domain

// Represents a vehicle awaiting collection.
// Each owner has exactly one asset of interest per planning pass.
type PendingAsset struct {
	OwnerID int
	AssetID int
}

// A pending asset whose owner location has been resolved.
// Produced only when the location lookup succeeds; assets that fail
// resolution are excluded from the pass entirely.
type ResolvedAsset struct {
	PendingAsset
	Location Coordinates
}
