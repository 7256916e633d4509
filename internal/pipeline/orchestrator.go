// Package pipeline runs the sync: refresh source data, then audit and rank
// every member.
package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"integritywatch/internal/audit"
	"integritywatch/internal/bill"
	"integritywatch/internal/committee"
	"integritywatch/internal/member"
	"integritywatch/internal/quotes"
	"integritywatch/internal/scraper"
	"integritywatch/internal/sector"
	"integritywatch/pkg/metrics"
	"integritywatch/pkg/models"
	"integritywatch/pkg/utils"
)

const (
	StepDisclosures = "disclosures"
	StepQuotes      = "quotes"
	StepBills       = "bills"
	StepRoster      = "roster"
	StepSlugs       = "slugs"
	StepCommittees  = "committees"
	StepAudit       = "audit"

	// stepTask reports an unknown Options.Task.
	stepTask = "task"
)

// Steps lists every step in execution order.
var Steps = []string{StepDisclosures, StepQuotes, StepBills, StepRoster, StepSlugs, StepCommittees, StepAudit}

type Options struct {
	Task        string // run only this step; empty runs all
	NoTimeLimit bool   // disable the roster time budget
}

type StepResult struct {
	Step     string        `json:"step"`
	OK       bool          `json:"ok"`
	Detail   string        `json:"detail,omitempty"`
	Duration time.Duration `json:"duration"`
}

type Report struct {
	OK    bool         `json:"ok"`
	RunID string       `json:"run_id"`
	Steps []StepResult `json:"steps"`
}

// Event is broadcast to the notifier at run start, after each step and at
// run end.
type Event struct {
	Type   string    `json:"type"` // "sync.start", "sync.step", "sync.done"
	RunID  string    `json:"run_id"`
	Step   string    `json:"step,omitempty"`
	OK     bool      `json:"ok"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// Notifier is satisfied by *live.Hub.
type Notifier interface {
	BroadcastJSON(v any)
}

// Sources bundles the external collaborators. A nil source makes its step
// a no-op.
type Sources struct {
	Disclosures scraper.DisclosureSource
	Federal     scraper.RosterSource
	Provincial  scraper.RosterSource
	Bills       scraper.BillSource
	Quotes      scraper.QuoteSource
	Committees  scraper.CommitteeSource
}

type Orchestrator struct {
	Sources    Sources
	Config     utils.SyncConfig
	Members    *member.Repo
	Bills      *bill.Repo
	Committees *committee.Repo
	Sectors    *sector.Repo
	State      *StateRepo
	Classifier *sector.Classifier
	Auditor    *audit.Auditor
	Ranker     *audit.Ranker
	QuoteCache quotes.Cache
	Logger     *zap.Logger
	Metrics    *metrics.Metrics // optional
	Notifier   Notifier         // optional
	Now        func() time.Time // budget clock
}

// New wires an orchestrator over db. Metrics, Notifier and QuoteCache can
// be replaced on the returned value before the first Run.
func New(db *sql.DB, src Sources, cfg utils.SyncConfig, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	members := member.NewRepo(db)
	bills := bill.NewRepo(db)
	sectors := sector.NewRepo(db)
	classifier := sector.NewClassifier(sectors)
	auditor := audit.NewAuditor(members, bills, classifier)

	return &Orchestrator{
		Sources:    src,
		Config:     cfg,
		Members:    members,
		Bills:      bills,
		Committees: committee.NewRepo(db),
		Sectors:    sectors,
		State:      NewStateRepo(db),
		Classifier: classifier,
		Auditor:    auditor,
		Ranker:     audit.NewRanker(members, auditor),
		QuoteCache: quotes.NewMemoryCache(quotes.DefaultTTL),
		Logger:     logger.Named("pipeline"),
		Now:        time.Now,
	}
}

type stepFunc func(ctx context.Context, budget *Budget) (string, error)

func (o *Orchestrator) stepFuncs() map[string]stepFunc {
	return map[string]stepFunc{
		StepDisclosures: o.syncDisclosures,
		StepQuotes:      o.syncQuotes,
		StepBills:       o.syncBills,
		StepRoster:      o.syncRoster,
		StepSlugs:       o.syncSlugs,
		StepCommittees:  o.syncCommittees,
		StepAudit:       o.runAudit,
	}
}

// Run executes the selected steps in order. It never returns an error: each
// step's outcome is in the report, and a failing or panicking step does not
// stop later ones. last_successful_sync is recorded only when every step of
// a full run succeeded.
func (o *Orchestrator) Run(ctx context.Context, opts Options) Report {
	report := Report{RunID: uuid.NewString(), OK: true}
	log := o.Logger.With(zap.String("run_id", report.RunID))
	o.notify(Event{Type: "sync.start", RunID: report.RunID, OK: true})

	funcs := o.stepFuncs()
	selected := Steps
	if opts.Task != "" {
		if _, ok := funcs[opts.Task]; !ok {
			res := StepResult{Step: stepTask, OK: false, Detail: fmt.Sprintf("unknown task %q", opts.Task)}
			report.OK = false
			report.Steps = []StepResult{res}
			log.Warn("unknown sync task", zap.String("task", opts.Task))
			o.finish(report)
			return report
		}
		selected = []string{opts.Task}
	}

	budget := NewBudget(o.Config.TimeBudget, o.Now)
	if opts.NoTimeLimit {
		budget = Unlimited()
	}

	for _, name := range selected {
		res := o.runStep(ctx, name, funcs[name], budget)
		report.Steps = append(report.Steps, res)
		report.OK = report.OK && res.OK

		log.Info("sync step finished",
			zap.String("step", res.Step),
			zap.Bool("ok", res.OK),
			zap.String("detail", res.Detail),
			zap.Duration("duration", res.Duration),
		)
		o.notify(Event{Type: "sync.step", RunID: report.RunID, Step: res.Step, OK: res.OK, Detail: res.Detail})
	}

	if report.OK && opts.Task == "" {
		if err := o.State.MarkSuccessfulSync(ctx, time.Now()); err != nil {
			log.Error("record last successful sync", zap.Error(err))
		}
	}

	o.finish(report)
	return report
}

func (o *Orchestrator) runStep(ctx context.Context, name string, fn stepFunc, budget *Budget) (res StepResult) {
	start := time.Now()
	res.Step = name
	defer func() {
		if r := recover(); r != nil {
			res.OK = false
			res.Detail = fmt.Sprintf("panic: %v", r)
			o.Logger.Error("sync step panicked", zap.String("step", name), zap.Any("panic", r))
		}
		res.Duration = time.Since(start)
		if o.Metrics != nil {
			o.Metrics.ObserveStep(name, res.OK, res.Duration)
		}
	}()

	detail, err := fn(ctx, budget)
	res.Detail = detail
	res.OK = err == nil
	if err != nil {
		if detail == "" {
			res.Detail = err.Error()
		} else {
			res.Detail = detail + ": " + err.Error()
		}
	}
	return res
}

func (o *Orchestrator) finish(report Report) {
	if o.Metrics != nil {
		o.Metrics.ObserveRun(report.OK)
	}
	o.notify(Event{Type: "sync.done", RunID: report.RunID, OK: report.OK})
}

func (o *Orchestrator) notify(ev Event) {
	if o.Notifier == nil {
		return
	}
	ev.At = time.Now().UTC()
	o.Notifier.BroadcastJSON(ev)
}

// LastSuccessfulSync is nil until a full run succeeds.
func (o *Orchestrator) LastSuccessfulSync(ctx context.Context) (*time.Time, error) {
	return o.State.LastSuccessfulSync(ctx)
}

// Stats counts the rows the sync maintains.
type Stats struct {
	FederalMembers    int `json:"federal_members"`
	ProvincialMembers int `json:"provincial_members"`
	Disclosures       int `json:"disclosures"`
	Trades            int `json:"trades"`
	Bills             int `json:"bills"`
	CommitteeLinks    int `json:"committee_links"`
}

func (o *Orchestrator) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	var err error
	if s.FederalMembers, err = o.Members.CountByJurisdiction(ctx, models.Federal); err != nil {
		return s, err
	}
	if s.ProvincialMembers, err = o.Members.CountByJurisdiction(ctx, models.Provincial); err != nil {
		return s, err
	}
	if s.Disclosures, err = o.Members.CountDisclosures(ctx); err != nil {
		return s, err
	}
	if s.Trades, err = o.Members.CountTrades(ctx); err != nil {
		return s, err
	}
	if s.Bills, err = o.Bills.Count(ctx); err != nil {
		return s, err
	}
	if s.CommitteeLinks, err = o.Committees.CountLinks(ctx); err != nil {
		return s, err
	}
	return s, nil
}
