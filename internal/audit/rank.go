package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"integritywatch/pkg/models"
)

// NeutralRank is the score of a member with no adverse signal.
const NeutralRank = 100.0

var (
	hundred        = decimal.NewFromInt(100)
	delayWeight    = decimal.RequireFromString("0.5")
	conflictWeight = decimal.NewFromInt(10)
	fallbackWeight = decimal.NewFromInt(2)
)

// DelaySample pairs the date an interest arose with the date it was
// captured.
type DelaySample struct {
	EventDate time.Time
	CreatedAt time.Time
}

// Days is the fractional filing delay in days. Negative when the record
// predates the event.
func (s DelaySample) Days() float64 {
	return s.CreatedAt.Sub(s.EventDate).Hours() / 24
}

// DelaySamples keeps the disclosures that carry an event date.
func DelaySamples(ds []models.Disclosure) []DelaySample {
	out := make([]DelaySample, 0, len(ds))
	for _, d := range ds {
		if d.DisclosureDate == nil || d.CreatedAt.IsZero() {
			continue
		}
		out = append(out, DelaySample{EventDate: *d.DisclosureDate, CreatedAt: d.CreatedAt})
	}
	return out
}

// averagePositiveDelay is the mean over strictly positive delays, zero when
// there are none.
func averagePositiveDelay(delays []DelaySample) decimal.Decimal {
	sum := decimal.Zero
	n := 0
	for _, s := range delays {
		d := s.Days()
		if d <= 0 {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(d))
		n++
	}
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(n)))
}

// rawRank is the unclamped, unrounded score.
func rawRank(delays []DelaySample, conflicts int) decimal.Decimal {
	return hundred.
		Sub(averagePositiveDelay(delays).Mul(delayWeight)).
		Sub(decimal.NewFromInt(int64(conflicts)).Mul(conflictWeight))
}

// IntegrityRank is 100 - avgDelay*0.5 - conflicts*10, clamped to [0, 100]
// and rounded to one decimal.
func IntegrityRank(delays []DelaySample, conflicts int) float64 {
	return clampRound(rawRank(delays, conflicts))
}

// FilingDelayScore is the display-only fallback for contexts without
// conflict data: 100 - avgDelay*2, clamped, 100 when nothing is eligible.
// It must not be stored as an integrity rank.
func FilingDelayScore(delays []DelaySample) float64 {
	return clampRound(hundred.Sub(averagePositiveDelay(delays).Mul(fallbackWeight)))
}

func clampRound(v decimal.Decimal) float64 {
	v = decimal.Max(decimal.Zero, decimal.Min(hundred, v))
	return v.Round(1).InexactFloat64()
}

type Ranker struct {
	Members MemberStore
	Auditor *Auditor
}

func NewRanker(members MemberStore, auditor *Auditor) *Ranker {
	return &Ranker{Members: members, Auditor: auditor}
}

// CalculateIntegrityRank scores the member using a live conflict check.
func (r *Ranker) CalculateIntegrityRank(ctx context.Context, memberID int64) (float64, error) {
	res, err := r.Auditor.CheckConflict(ctx, memberID)
	if err != nil {
		return 0, err
	}
	return r.CalculateIntegrityRankWithConflicts(ctx, memberID, len(res.Conflicts))
}

// CalculateIntegrityRankWithConflicts scores the member with a conflict
// count the caller already has, as the batch audit does.
func (r *Ranker) CalculateIntegrityRankWithConflicts(ctx context.Context, memberID int64, conflicts int) (float64, error) {
	samples, ok, err := r.samples(ctx, memberID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return NeutralRank, nil
	}
	return IntegrityRank(samples, conflicts), nil
}

// FallbackScore is FilingDelayScore over the member's disclosures.
func (r *Ranker) FallbackScore(ctx context.Context, memberID int64) (float64, error) {
	samples, ok, err := r.samples(ctx, memberID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return NeutralRank, nil
	}
	return FilingDelayScore(samples), nil
}

func (r *Ranker) samples(ctx context.Context, memberID int64) ([]DelaySample, bool, error) {
	m, err := r.Members.GetByID(ctx, memberID)
	if err != nil {
		return nil, false, fmt.Errorf("rank member %d: %w", memberID, err)
	}
	if m == nil {
		return nil, false, nil
	}
	ds, err := r.Members.Disclosures(ctx, memberID)
	if err != nil {
		return nil, false, fmt.Errorf("rank member %d disclosures: %w", memberID, err)
	}
	return DelaySamples(ds), true, nil
}
