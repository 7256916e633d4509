package audit

import (
	"context"
	"fmt"

	"integritywatch/internal/committee"
)

type Source string

const (
	SourceDisclosure Source = "disclosure"
	SourceTrade      Source = "trade"
)

// Flag is one holding that falls in a sector overseen by an active
// committee.
type Flag struct {
	Committee      string `json:"committee"`
	Asset          string `json:"asset"`
	ConflictReason string `json:"conflict_reason"`
	Sector         string `json:"sector"`
	Source         Source `json:"source"`
	SourceRecordID int64  `json:"source_record_id"`
}

type Result struct {
	HasConflict bool   `json:"has_conflict"`
	Conflicts   []Flag `json:"conflicts"`
}

type Auditor struct {
	Members MemberStore
	Bills   BillStore
	Sectors SectorResolver
}

func NewAuditor(members MemberStore, bills BillStore, sectors SectorResolver) *Auditor {
	return &Auditor{Members: members, Bills: bills, Sectors: sectors}
}

type flagKey struct {
	committee string
	asset     string
	source    Source
	recordID  int64
}

// CheckConflict audits the member's latest disclosures and trades. A
// member that does not exist yields an empty result and no error.
func (a *Auditor) CheckConflict(ctx context.Context, memberID int64) (Result, error) {
	res := Result{Conflicts: []Flag{}}

	m, err := a.Members.GetByID(ctx, memberID)
	if err != nil {
		return res, fmt.Errorf("audit member %d: %w", memberID, err)
	}
	if m == nil {
		return res, nil
	}

	disclosures, err := a.Members.RecentDisclosures(ctx, memberID, disclosureWindow)
	if err != nil {
		return res, fmt.Errorf("audit member %d disclosures: %w", memberID, err)
	}
	trades, err := a.Members.RecentTrades(ctx, memberID, tradeWindow)
	if err != nil {
		return res, fmt.Errorf("audit member %d trades: %w", memberID, err)
	}
	bills, err := a.Bills.Tracked(ctx, billWindow)
	if err != nil {
		return res, fmt.Errorf("audit bills: %w", err)
	}

	active := committee.InferActiveCommitteesFromBillKeywords(bills)
	seen := make(map[flagKey]struct{})

	add := func(asset, description, symbol string, src Source, id int64) {
		sec, ok := a.Sectors.Resolve(description, symbol)
		if !ok {
			return
		}
		name, ok := overseeingCommittee(active, sec)
		if !ok {
			return
		}
		k := flagKey{committee: name, asset: asset, source: src, recordID: id}
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		res.Conflicts = append(res.Conflicts, Flag{
			Committee:      name,
			Asset:          asset,
			ConflictReason: Reason(name, asset),
			Sector:         sec,
			Source:         src,
			SourceRecordID: id,
		})
	}

	for _, d := range disclosures {
		add(d.Description, d.Description, "", SourceDisclosure, d.ID)
	}
	for _, t := range trades {
		add(t.Symbol, t.Symbol, t.Symbol, SourceTrade, t.ID)
	}

	res.HasConflict = len(res.Conflicts) > 0
	return res, nil
}

// Reason formats the human readable conflict reason stored on a
// disclosure.
func Reason(committeeName, asset string) string {
	return "Committee: " + committeeName + " | Asset: " + asset
}

// overseeingCommittee prefers an active committee; failing that it walks
// committee.AuditFallback against the static table.
func overseeingCommittee(active committee.ActiveSet, sec string) (string, bool) {
	for _, name := range active.Names() {
		if committee.Oversees(name, sec) {
			return name, true
		}
	}
	for _, name := range committee.AuditFallback {
		if committee.Oversees(name, sec) {
			return name, true
		}
	}
	return "", false
}
