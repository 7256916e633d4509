package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"integritywatch/internal/scraper"
	"integritywatch/pkg/database/dbtest"
	"integritywatch/pkg/metrics"
	"integritywatch/pkg/models"
	"integritywatch/pkg/utils"
)

type fakeDisclosures map[string][]scraper.DisclosureRecord

func (f fakeDisclosures) ScrapeDisclosures(_ context.Context, name string) ([]scraper.DisclosureRecord, error) {
	return f[name], nil
}

type fakeRoster []scraper.RosterRecord

func (f fakeRoster) FetchRoster(context.Context, models.Jurisdiction) ([]scraper.RosterRecord, error) {
	return f, nil
}

type fakeBills []scraper.BillRecord

func (f fakeBills) FetchBills(context.Context) ([]scraper.BillRecord, error) { return f, nil }

type panickingBills struct{}

func (panickingBills) FetchBills(context.Context) ([]scraper.BillRecord, error) {
	panic("feed layout changed")
}

type fakeQuotes struct{ fail bool }

func (f fakeQuotes) GetQuote(_ context.Context, symbol string) (*scraper.Quote, error) {
	if f.fail {
		return nil, scraper.ErrUpstream
	}
	return &scraper.Quote{Symbol: symbol, Price: 50, Currency: "CAD"}, nil
}

type fakeCommittees map[string][]string

func (f fakeCommittees) FetchCommitteeMembers(_ context.Context, key string) ([]scraper.CommitteeMemberRecord, error) {
	var out []scraper.CommitteeMemberRecord
	for _, n := range f[key] {
		out = append(out, scraper.CommitteeMemberRecord{Name: n, Role: "Member"})
	}
	return out, nil
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) BroadcastJSON(v any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, v.(Event))
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func testConfig() utils.SyncConfig {
	return utils.SyncConfig{
		TimeBudget:       50 * time.Second,
		DisclosureSample: 25,
		FederalBatch:     50,
		ProvincialBatch:  10,
		FederalTarget:    343,
		ProvincialTarget: 124,
		QuoteWorkers:     4,
	}
}

func testSources() Sources {
	return Sources{
		Disclosures: fakeDisclosures{
			"Jane Doe": {
				{
					AssetName:        "Suncor Energy Inc. (SU)",
					NatureOfInterest: "Material change - acquisition",
					IsMaterialChange: true,
					EventDate:        day(2024, 1, 1),
				},
				{AssetName: "Gift: hockey tickets", NatureOfInterest: ""},
				{AssetName: "   "},
			},
		},
		Federal: fakeRoster{
			{ExternalID: "hoc-1", Name: "Jane Doe", Riding: "Carleton", Party: "Liberal"},
			{ExternalID: "hoc-2", Name: "John Smith", Riding: "Halifax", Party: "NDP"},
		},
		Provincial: fakeRoster{
			{ExternalID: "ola-1", Name: "John Smith", Riding: "Ottawa Centre", Party: "NDP"},
		},
		Bills:      fakeBills{{Number: "C-49", Status: "First reading", Title: "An Act respecting energy"}},
		Quotes:     fakeQuotes{},
		Committees: fakeCommittees{"RNNR": {"Hon. Jane Doe", "Someone Else"}},
	}
}

func newTestOrchestrator(t *testing.T, src Sources) *Orchestrator {
	t.Helper()
	o := New(dbtest.Open(t), src, testConfig(), nil)
	o.Members.Now = func() time.Time { return time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC) }
	return o
}

func countRows(t *testing.T, o *Orchestrator) Stats {
	t.Helper()
	s, err := o.Stats(context.Background())
	require.NoError(t, err)
	return s
}

func TestFullRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	o := newTestOrchestrator(t, testSources())

	// members must exist before the disclosure step can sample them
	seed := o.Run(ctx, Options{Task: StepRoster})
	require.True(t, seed.OK, "%+v", seed)

	first := o.Run(ctx, Options{})
	require.True(t, first.OK, "%+v", first)
	require.Len(t, first.Steps, len(Steps))
	for i, s := range first.Steps {
		assert.Equal(t, Steps[i], s.Step)
		assert.True(t, s.OK, "%s: %s", s.Step, s.Detail)
	}
	after1 := countRows(t, o)
	assert.Equal(t, Stats{FederalMembers: 2, ProvincialMembers: 1, Disclosures: 2, Trades: 1, Bills: 1, CommitteeLinks: 1}, after1)

	second := o.Run(ctx, Options{})
	require.True(t, second.OK, "%+v", second)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, after1, countRows(t, o))

	jane, err := o.Members.GetBySlug(ctx, "jane-doe")
	require.NoError(t, err)
	require.NotNil(t, jane)
	require.NotNil(t, jane.IntegrityRank)
	// 10 day delay (-5) and two conflicts, the disclosure and the SU trade (-20)
	assert.Equal(t, 75.0, *jane.IntegrityRank)

	ds, err := o.Members.Disclosures(ctx, jane.ID)
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.True(t, ds[0].ConflictFlag)
	require.NotNil(t, ds[0].ConflictReason)
	assert.Equal(t, "Committee: Natural Resources | Asset: Suncor Energy Inc. (SU)", *ds[0].ConflictReason)
	assert.NotNil(t, ds[0].SectorID)
	assert.False(t, ds[1].ConflictFlag)
	assert.Equal(t, models.DefaultCategory, ds[1].Category)

	trades, err := o.Members.RecentTrades(ctx, jane.ID, 10)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "SU", trades[0].Symbol)
	assert.Equal(t, models.Buy, trades[0].Direction)

	q, err := o.QuoteCache.GetLatest(ctx, "SU")
	require.NoError(t, err)
	assert.NotNil(t, q)

	last, err := o.LastSuccessfulSync(ctx)
	require.NoError(t, err)
	assert.NotNil(t, last)
}

func TestAuditSurvivesCancelledContext(t *testing.T) {
	ctx := context.Background()
	o := newTestOrchestrator(t, testSources())
	require.True(t, o.Run(ctx, Options{Task: StepRoster}).OK)
	require.True(t, o.Run(ctx, Options{}).OK)

	gone, cancel := context.WithCancel(ctx)
	cancel()
	rep := o.Run(gone, Options{Task: StepAudit})
	require.Len(t, rep.Steps, 1)
	assert.True(t, rep.Steps[0].OK, rep.Steps[0].Detail)

	jane, err := o.Members.GetBySlug(ctx, "jane-doe")
	require.NoError(t, err)
	require.NotNil(t, jane.IntegrityRank)
	assert.Equal(t, 75.0, *jane.IntegrityRank)

	ds, err := o.Members.Disclosures(ctx, jane.ID)
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.True(t, ds[0].ConflictFlag, "flags and rank come from the same audit")
}

func TestUnknownTask(t *testing.T) {
	o := newTestOrchestrator(t, testSources())
	rep := o.Run(context.Background(), Options{Task: "reindex"})
	assert.False(t, rep.OK)
	require.Len(t, rep.Steps, 1)
	assert.Equal(t, "task", rep.Steps[0].Step)
	assert.False(t, rep.Steps[0].OK)
	assert.Contains(t, rep.Steps[0].Detail, "reindex")
}

func TestSingleTaskDoesNotRecordSuccess(t *testing.T) {
	ctx := context.Background()
	o := newTestOrchestrator(t, testSources())

	rep := o.Run(ctx, Options{Task: StepBills})
	require.True(t, rep.OK)
	require.Len(t, rep.Steps, 1)
	assert.Equal(t, "bills=1", rep.Steps[0].Detail)

	last, err := o.LastSuccessfulSync(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestRosterStopsAtTimeBudget(t *testing.T) {
	ctx := context.Background()
	src := testSources()
	src.Federal = nil
	src.Provincial = fakeRoster{
		{ExternalID: "ola-1", Name: "A"},
		{ExternalID: "ola-2", Name: "B"},
		{ExternalID: "ola-3", Name: "C"},
	}
	o := newTestOrchestrator(t, src)
	o.Config.ProvincialBatch = 1
	o.Config.ProvincialTarget = 3

	// every reading of the budget clock moves 30s: ok at +30s, spent at +60s
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	o.Now = func() time.Time {
		now := clock
		clock = clock.Add(30 * time.Second)
		return now
	}

	rep := o.Run(ctx, Options{Task: StepRoster})
	require.True(t, rep.OK, "partial progress is not a failure")
	assert.True(t, strings.HasPrefix(rep.Steps[0].Detail, "partial"), rep.Steps[0].Detail)
	assert.Contains(t, rep.Steps[0].Detail, "provincial=1/3")

	n, err := o.Members.CountByJurisdiction(ctx, models.Provincial)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rep = o.Run(ctx, Options{Task: StepRoster, NoTimeLimit: true})
	require.True(t, rep.OK)
	assert.Equal(t, "provincial=3/3", rep.Steps[0].Detail)
}

func TestFederalRosterSkippedAtTarget(t *testing.T) {
	ctx := context.Background()
	o := newTestOrchestrator(t, testSources())
	o.Config.FederalTarget = 2

	rep := o.Run(ctx, Options{Task: StepRoster, NoTimeLimit: true})
	require.True(t, rep.OK)
	// the provincial roster returned 1 of the 124 expected seats
	assert.Equal(t, "federal=2/2 provincial=1/1 provincial_short=123", rep.Steps[0].Detail)

	rep = o.Run(ctx, Options{Task: StepRoster, NoTimeLimit: true})
	assert.Equal(t, "federal=complete(2) provincial=1/1 provincial_short=123", rep.Steps[0].Detail)
}

func TestFailingStepDoesNotStopLaterSteps(t *testing.T) {
	ctx := context.Background()
	src := testSources()
	src.Bills = panickingBills{}
	src.Quotes = fakeQuotes{fail: true}

	o := newTestOrchestrator(t, src)
	require.True(t, o.Run(ctx, Options{Task: StepRoster}).OK)

	m := metrics.New()
	rec := &recorder{}
	o.Metrics = m
	o.Notifier = rec
	rep := o.Run(ctx, Options{})
	assert.False(t, rep.OK)

	byStep := map[string]StepResult{}
	for _, s := range rep.Steps {
		byStep[s.Step] = s
	}
	require.Len(t, byStep, len(Steps))
	assert.False(t, byStep[StepBills].OK)
	assert.Contains(t, byStep[StepBills].Detail, "panic: feed layout changed")
	assert.True(t, byStep[StepQuotes].OK, "quote misses are not failures")
	assert.Contains(t, byStep[StepQuotes].Detail, "misses=1")
	assert.True(t, byStep[StepAudit].OK)

	last, err := o.LastSuccessfulSync(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncRunsTotal.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SyncStepFailures.WithLabelValues(StepBills)))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.events, len(Steps)+2)
	assert.Equal(t, "sync.start", rec.events[0].Type)
	assert.Equal(t, "sync.done", rec.events[len(rec.events)-1].Type)
	assert.False(t, rec.events[len(rec.events)-1].OK)
}

func TestParseTicker(t *testing.T) {
	cases := map[string]string{
		"SU":                      "SU",
		"RCI.B":                   "RCI.B",
		" ENB.TO ":                "ENB.TO",
		"Suncor Energy Inc. (SU)": "SU",
		"Rogers (RCI.B)":          "RCI.B",
	}
	for in, want := range cases {
		got, ok := ParseTicker(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "Rental property", "suncor", "TOOLONG", "Fund (Series F) units"} {
		_, ok := ParseTicker(in)
		assert.False(t, ok, in)
	}
	assert.Equal(t, models.Sell, TradeDirectionFor("Material change - disposition"))
	assert.Equal(t, models.Sell, TradeDirectionFor("Sell order"))
	assert.Equal(t, models.Buy, TradeDirectionFor("Material change - acquisition"))
}

func TestBudget(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewBudget(time.Minute, func() time.Time { return now })
	assert.False(t, b.Exceeded())
	now = now.Add(time.Minute)
	assert.True(t, b.Exceeded())

	assert.False(t, NewBudget(0, nil).Exceeded())
	assert.False(t, Unlimited().Exceeded())
}

func TestStateRepo(t *testing.T) {
	ctx := context.Background()
	r := NewStateRepo(dbtest.Open(t))

	_, ok, err := r.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, r.MarkSuccessfulSync(ctx, at))
	got, err := r.LastSuccessfulSync(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, at.Equal(*got))

	require.NoError(t, r.Set(ctx, lastSuccessfulSyncKey, "garbage", at))
	_, err = r.LastSuccessfulSync(ctx)
	assert.Error(t, err)
}
