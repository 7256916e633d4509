package models

type Sector struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Committee struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	SourceKey string   `json:"source_key,omitempty"` // e.g. "FINA" on ourcommons.ca
	Sectors   []string `json:"sectors,omitempty"`
}

// AssetSectorMapping is a persisted keyword that extends the built-in
// sector keyword table.
type AssetSectorMapping struct {
	ID       int64  `json:"id"`
	Keyword  string `json:"keyword"`
	SectorID int64  `json:"sector_id"`
	Sector   string `json:"sector"`
}
