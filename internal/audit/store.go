// Package audit cross-references a member's holdings against the sectors
// overseen by legislatively active committees and scores the result.
package audit

import (
	"context"

	"integritywatch/pkg/models"
)

const (
	disclosureWindow = 50
	tradeWindow      = 50
	billWindow       = 100
)

// MemberStore is satisfied by *member.Repo.
type MemberStore interface {
	GetByID(ctx context.Context, id int64) (*models.Member, error)
	RecentDisclosures(ctx context.Context, memberID int64, limit int) ([]models.Disclosure, error)
	RecentTrades(ctx context.Context, memberID int64, limit int) ([]models.TradeEvent, error)
	Disclosures(ctx context.Context, memberID int64) ([]models.Disclosure, error)
}

// BillStore is satisfied by *bill.Repo.
type BillStore interface {
	Tracked(ctx context.Context, limit int) ([]models.Bill, error)
}

// SectorResolver is satisfied by *sector.Classifier.
type SectorResolver interface {
	Resolve(description, symbol string) (string, bool)
}
