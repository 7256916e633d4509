package models

import "time"

type Jurisdiction string

const (
	Federal    Jurisdiction = "FEDERAL"
	Provincial Jurisdiction = "PROVINCIAL"
)

// Member is a sitting legislator. It is the aggregate root for
// disclosures and trade events.
//
// IntegrityRank stays nil until the audit pass has scored the member;
// consumers must not read nil as "no conflicts".
type Member struct {
	ID            int64        `json:"id"`
	ExternalID    string       `json:"external_id,omitempty"` // official id from the roster source
	Name          string       `json:"name"`
	Riding        string       `json:"riding"`
	Party         string       `json:"party"`
	Jurisdiction  Jurisdiction `json:"jurisdiction"`
	Chamber       string       `json:"chamber"`
	PhotoURL      string       `json:"photo_url,omitempty"`
	Slug          string       `json:"slug,omitempty"`
	IntegrityRank *float64     `json:"integrity_rank"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
