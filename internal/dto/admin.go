package dto

// ResetRequest must carry an explicit confirmation before all data is wiped.
type ResetRequest struct {
	Confirm bool   `json:"confirm"`
	Pin     string `json:"pin"`
}

// ResetResult reports how many records were removed per collection.
type ResetResult struct {
	Removed map[string]int64 `json:"removed"`
	Total   int64            `json:"total"`
}
