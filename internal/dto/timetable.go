package dto

import "github.com/noah-isme/classsync-api/internal/catalog"

// CatalogResponse lists the closed identifier sets the clients render.
type CatalogResponse struct {
	Rooms    []catalog.Entry `json:"rooms"`
	Days     []catalog.Entry `json:"days"`
	Periods  []catalog.Entry `json:"periods"`
	Classes  []string        `json:"classes"`
	Teachers []string        `json:"teachers"`
}

// CellRequest sets a weekly cell. A blank value clears it.
type CellRequest struct {
	Value string `json:"value"`
}

// CellResponse echoes the cell after a write.
type CellResponse struct {
	Collection string `json:"collection"`
	Key        string `json:"key"`
	Value      string `json:"value,omitempty"`
	Cleared    bool   `json:"cleared"`
}
