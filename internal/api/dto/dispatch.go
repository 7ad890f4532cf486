package dto

type DispatchRequest struct {
	DefaultCapacity int `json:"default_capacity"`
}

type UnitAssignmentResponse struct {
	UnitID   int   `json:"unit_id"`
	AssetIDs []int `json:"asset_ids"`
}

type DispatchStatsResponse struct {
	Resolved     int `json:"resolved"`
	Unresolved   int `json:"unresolved"`
	Coupled      int `json:"coupled"`
	Rejected     int `json:"rejected"`
	CaseFailures int `json:"case_failures"`
}

type DispatchResponse struct {
	Assignments   []UnitAssignmentResponse `json:"assignments"`
	Stats         DispatchStatsResponse    `json:"stats"`
	SkippedOwners []int                    `json:"skipped_owners"`
}
