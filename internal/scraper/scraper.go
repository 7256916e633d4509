// Package scraper holds the collaborators that fetch legislator, disclosure,
// bill, quote and committee data from external sources. Every source maps its
// own wire format into the plain records below; none of them touch the
// database.
package scraper

import (
	"context"
	"errors"
	"time"

	"integritywatch/pkg/models"
)

// ErrUpstream marks a failure of the remote side (network error, non-2xx,
// undecodable body). Callers treat it as "no data this run".
var ErrUpstream = errors.New("upstream unavailable")

type DisclosureRecord struct {
	AssetName        string
	NatureOfInterest string
	IsMaterialChange bool
	EventDate        *time.Time
}

type RosterRecord struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Riding     string `json:"riding"`
	Party      string `json:"party"`
	Chamber    string `json:"chamber"`
	PhotoURL   string `json:"photo_url,omitempty"`
}

type BillRecord struct {
	Number string
	Status string
	Title  string
}

type Quote struct {
	Symbol      string    `json:"symbol"`
	Price       float64   `json:"price"`
	DailyChange float64   `json:"daily_change"` // price minus previous close; 0 when unknown
	Currency    string    `json:"currency"`
	At          time.Time `json:"at"`
}

type CommitteeMemberRecord struct {
	Name string
	Role string // "Chair", "Vice-Chair", "Member"
}

type DisclosureSource interface {
	ScrapeDisclosures(ctx context.Context, name string) ([]DisclosureRecord, error)
}

type RosterSource interface {
	FetchRoster(ctx context.Context, j models.Jurisdiction) ([]RosterRecord, error)
}

type BillSource interface {
	FetchBills(ctx context.Context) ([]BillRecord, error)
}

type QuoteSource interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
}

type CommitteeSource interface {
	FetchCommitteeMembers(ctx context.Context, key string) ([]CommitteeMemberRecord, error)
}
