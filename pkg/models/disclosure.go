package models

import "time"

const (
	MaxCategoryLen    = 50
	MaxDescriptionLen = 500
	DefaultCategory   = "Other"
)

// Disclosure is one row of a member's public declaration.
//
// DisclosureDate is when the underlying event happened, CreatedAt is when
// this system captured it. ConflictFlag and ConflictReason are owned by the
// audit pass and are always set together.
type Disclosure struct {
	ID             int64      `json:"id"`
	MemberID       int64      `json:"member_id"`
	Category       string     `json:"category"`
	Description    string     `json:"description"`
	DisclosureDate *time.Time `json:"disclosure_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	SectorID       *int64     `json:"sector_id,omitempty"`
	ConflictFlag   bool       `json:"conflict_flag"`
	ConflictReason *string    `json:"conflict_reason"`
}

type TradeDirection string

const (
	Buy  TradeDirection = "BUY"
	Sell TradeDirection = "SELL"
)

// TradeEvent is a dated buy or sell of a listed security.
type TradeEvent struct {
	ID        int64          `json:"id"`
	MemberID  int64          `json:"member_id"`
	Symbol    string         `json:"symbol"`
	Direction TradeDirection `json:"direction"`
	TradeDate time.Time      `json:"trade_date"`
	CreatedAt time.Time      `json:"created_at"`
}
