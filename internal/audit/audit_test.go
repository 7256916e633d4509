package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"integritywatch/internal/bill"
	"integritywatch/internal/committee"
	"integritywatch/internal/member"
	"integritywatch/internal/sector"
	"integritywatch/pkg/database/dbtest"
	"integritywatch/pkg/models"
)

type fixture struct {
	members *member.Repo
	bills   *bill.Repo
	auditor *Auditor
	ranker  *Ranker
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := dbtest.Open(t)
	members := member.NewRepo(db)
	bills := bill.NewRepo(db)
	auditor := NewAuditor(members, bills, sector.NewClassifier(nil))
	return fixture{
		members: members,
		bills:   bills,
		auditor: auditor,
		ranker:  NewRanker(members, auditor),
	}
}

func (f fixture) newMember(t *testing.T) int64 {
	t.Helper()
	id, err := f.members.Create(context.Background(), models.Member{Name: "Jane Doe", Jurisdiction: models.Federal})
	require.NoError(t, err)
	return id
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFreshMemberIsNeutral(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.newMember(t)

	res, err := f.auditor.CheckConflict(ctx, id)
	require.NoError(t, err)
	assert.False(t, res.HasConflict)
	assert.Empty(t, res.Conflicts)
	assert.NotNil(t, res.Conflicts)

	rank, err := f.ranker.CalculateIntegrityRank(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 100.0, rank)
}

func TestMissingMemberIsNeutral(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.auditor.CheckConflict(ctx, 4242)
	require.NoError(t, err)
	assert.False(t, res.HasConflict)
	assert.Empty(t, res.Conflicts)

	rank, err := f.ranker.CalculateIntegrityRankWithConflicts(ctx, 4242, 3)
	require.NoError(t, err)
	assert.Equal(t, NeutralRank, rank)
}

func TestFilingDelayOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.newMember(t)

	event := day(2024, 1, 1)
	_, err := f.members.InsertDisclosure(ctx, models.Disclosure{
		MemberID:       id,
		Category:       "Gifts",
		Description:    "Gift: hockey tickets",
		DisclosureDate: &event,
		CreatedAt:      day(2024, 1, 21),
	})
	require.NoError(t, err)

	res, err := f.auditor.CheckConflict(ctx, id)
	require.NoError(t, err)
	assert.False(t, res.HasConflict)

	rank, err := f.ranker.CalculateIntegrityRank(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 90.0, rank)

	score, err := f.ranker.FallbackScore(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 60.0, score)
}

func TestSingleConflictWithEnergyBill(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.newMember(t)

	_, err := f.bills.Upsert(ctx, []bill.Record{{Number: "C-49", Status: "First reading", Title: "An Act respecting energy"}})
	require.NoError(t, err)
	_, err = f.members.InsertDisclosure(ctx, models.Disclosure{
		MemberID:    id,
		Category:    "Assets",
		Description: "Suncor Energy Inc. common shares",
	})
	require.NoError(t, err)

	res, err := f.auditor.CheckConflict(ctx, id)
	require.NoError(t, err)
	require.True(t, res.HasConflict)
	require.Len(t, res.Conflicts, 1)

	flag := res.Conflicts[0]
	assert.Equal(t, committee.NaturalResources, flag.Committee)
	assert.Equal(t, sector.OilGasMining, flag.Sector)
	assert.Equal(t, SourceDisclosure, flag.Source)
	assert.Equal(t, "Committee: Natural Resources | Asset: Suncor Energy Inc. common shares", flag.ConflictReason)

	rank, err := f.ranker.CalculateIntegrityRankWithConflicts(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, 90.0, rank)

	live, err := f.ranker.CalculateIntegrityRank(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, rank, live)
}

func TestTradesAreAudited(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.newMember(t)

	// no bills: default committees are active, Finance oversees banking
	_, err := f.members.InsertTrade(ctx, models.TradeEvent{MemberID: id, Symbol: "TD", Direction: models.Buy, TradeDate: day(2024, 2, 1)})
	require.NoError(t, err)
	// technology is overseen by Industry, which is active by default
	_, err = f.members.InsertTrade(ctx, models.TradeEvent{MemberID: id, Symbol: "SHOP.TO", Direction: models.Sell, TradeDate: day(2024, 2, 2)})
	require.NoError(t, err)

	res, err := f.auditor.CheckConflict(ctx, id)
	require.NoError(t, err)
	require.Len(t, res.Conflicts, 2)

	byAsset := map[string]Flag{}
	for _, fl := range res.Conflicts {
		assert.Equal(t, SourceTrade, fl.Source)
		byAsset[fl.Asset] = fl
	}
	assert.Equal(t, committee.Finance, byAsset["TD"].Committee)
	assert.Equal(t, committee.IndustryTechnology, byAsset["SHOP.TO"].Committee)
}

func TestFallbackCommitteeWhenNoActiveMatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.newMember(t)

	// only Health is active, banking falls back to Finance
	_, err := f.bills.Upsert(ctx, []bill.Record{{Number: "C-64", Title: "An Act respecting pharmacare"}})
	require.NoError(t, err)
	_, err = f.members.InsertDisclosure(ctx, models.Disclosure{MemberID: id, Category: "Assets", Description: "Royal Bank of Canada shares"})
	require.NoError(t, err)
	// technology has no fallback committee
	_, err = f.members.InsertDisclosure(ctx, models.Disclosure{MemberID: id, Category: "Assets", Description: "Shopify Inc."})
	require.NoError(t, err)

	res, err := f.auditor.CheckConflict(ctx, id)
	require.NoError(t, err)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, committee.Finance, res.Conflicts[0].Committee)
}

func TestCheckConflictIsStableAcrossCalls(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := f.newMember(t)

	_, err := f.bills.Upsert(ctx, []bill.Record{{Number: "C-50", Title: "An Act respecting accountability, transparency and engagement to support the creation of sustainable jobs for workers and economic growth in a net-zero economy"}})
	require.NoError(t, err)
	for _, desc := range []string{"Enbridge Inc.", "Enbridge Inc. preferred", "Fortis Inc."} {
		_, err := f.members.InsertDisclosure(ctx, models.Disclosure{MemberID: id, Category: "Assets", Description: desc})
		require.NoError(t, err)
	}

	first, err := f.auditor.CheckConflict(ctx, id)
	require.NoError(t, err)
	second, err := f.auditor.CheckConflict(ctx, id)
	require.NoError(t, err)

	pairs := func(r Result) [][2]string {
		var out [][2]string
		for _, fl := range r.Conflicts {
			out = append(out, [2]string{fl.Committee, fl.Asset})
		}
		return out
	}
	assert.Len(t, second.Conflicts, len(first.Conflicts))
	assert.ElementsMatch(t, pairs(first), pairs(second))
}

type failingMembers struct{ MemberStore }

func (failingMembers) GetByID(context.Context, int64) (*models.Member, error) {
	return nil, errors.New("database is locked")
}

func TestStoreErrorsAreReturned(t *testing.T) {
	a := NewAuditor(failingMembers{}, nil, sector.NewClassifier(nil))
	_, err := a.CheckConflict(context.Background(), 1)
	assert.Error(t, err)

	_, err = NewRanker(failingMembers{}, a).CalculateIntegrityRank(context.Background(), 1)
	assert.Error(t, err)
}
