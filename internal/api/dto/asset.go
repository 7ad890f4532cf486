package dto

type AssetResponse struct {
	OwnerID int `json:"owner_id"`
	AssetID int `json:"asset_id"`
}

type ListAssetsResponse struct {
	Assets []AssetResponse `json:"assets"`
}

type UnitResponse struct {
	UnitID   int     `json:"unit_id"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Capacity int     `json:"capacity"`
}

type ListUnitsResponse struct {
	Units []UnitResponse `json:"units"`
}
