package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"integritywatch/internal/audit"
	"integritywatch/internal/bill"
	"integritywatch/internal/committee"
	"integritywatch/internal/member"
	"integritywatch/internal/scraper"
	"integritywatch/internal/sector"
	"integritywatch/pkg/models"
	"integritywatch/pkg/utils"
)

func (o *Orchestrator) syncDisclosures(ctx context.Context, _ *Budget) (string, error) {
	if o.Sources.Disclosures == nil {
		return "no disclosure source", nil
	}
	if err := o.Classifier.Refresh(ctx); err != nil {
		o.Logger.Warn("sector mappings not refreshed", zap.Error(err))
	}
	if err := o.Sectors.Seed(ctx, sector.All); err != nil {
		return "", err
	}
	sectorIDs, err := o.Sectors.IDs(ctx)
	if err != nil {
		return "", err
	}

	due, err := o.Members.DueForDisclosureSync(ctx, o.Config.DisclosureSample)
	if err != nil {
		return "", err
	}

	var inserted, skipped, trades, upstream int
	for _, m := range due {
		recs, err := o.Sources.Disclosures.ScrapeDisclosures(ctx, m.Name)
		if err != nil {
			// no data for this member this run
			upstream++
			o.Logger.Warn("disclosure scrape failed", zap.String("member", m.Name), zap.Error(err))
		}

		for _, r := range recs {
			d, ok := disclosureFromRecord(m.ID, r)
			if !ok {
				continue
			}
			if sec, ok := o.Classifier.Resolve(d.Description, ""); ok {
				if id, ok := sectorIDs[sec]; ok {
					d.SectorID = &id
				}
			}

			ok, err := o.Members.InsertDisclosure(ctx, d)
			if err != nil {
				return counts(inserted, skipped, trades, upstream), err
			}
			if ok {
				inserted++
			} else {
				skipped++
			}

			if !r.IsMaterialChange || r.EventDate == nil {
				continue
			}
			sym, ok := ParseTicker(d.Description)
			if !ok {
				continue
			}
			ok, err = o.Members.InsertTrade(ctx, models.TradeEvent{
				MemberID:  m.ID,
				Symbol:    sym,
				Direction: TradeDirectionFor(r.NatureOfInterest),
				TradeDate: *r.EventDate,
			})
			if err != nil {
				return counts(inserted, skipped, trades, upstream), err
			}
			if ok {
				trades++
			}
		}

		if err := o.Members.MarkDisclosuresSynced(ctx, m.ID); err != nil {
			return counts(inserted, skipped, trades, upstream), err
		}
	}

	return fmt.Sprintf("members=%d %s", len(due), counts(inserted, skipped, trades, upstream)), nil
}

func counts(inserted, skipped, trades, upstream int) string {
	return fmt.Sprintf("inserted=%d skipped=%d trades=%d upstream_failures=%d", inserted, skipped, trades, upstream)
}

// disclosureFromRecord normalizes a scraped row. Rows without an asset
// name are dropped.
func disclosureFromRecord(memberID int64, r scraper.DisclosureRecord) (models.Disclosure, bool) {
	desc := utils.Truncate(strings.TrimSpace(r.AssetName), models.MaxDescriptionLen)
	if desc == "" {
		return models.Disclosure{}, false
	}
	category := utils.Truncate(strings.TrimSpace(r.NatureOfInterest), models.MaxCategoryLen)
	if category == "" {
		category = models.DefaultCategory
	}
	return models.Disclosure{
		MemberID:       memberID,
		Category:       category,
		Description:    desc,
		DisclosureDate: r.EventDate,
	}, true
}

func (o *Orchestrator) syncQuotes(ctx context.Context, _ *Budget) (string, error) {
	if o.Sources.Quotes == nil {
		return "no quote source", nil
	}
	symbols, err := o.Members.DistinctSymbols(ctx)
	if err != nil {
		return "", err
	}

	workers := o.Config.QuoteWorkers
	if workers <= 0 {
		workers = 8
	}

	var cached, misses atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, sym := range symbols {
		g.Go(func() error {
			q, err := o.Sources.Quotes.GetQuote(gctx, sym)
			if err != nil || q == nil {
				misses.Add(1)
				return nil
			}
			if err := o.QuoteCache.Save(gctx, q); err != nil {
				o.Logger.Warn("quote cache write failed", zap.String("symbol", sym), zap.Error(err))
				misses.Add(1)
				return nil
			}
			cached.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return fmt.Sprintf("symbols=%d cached=%d misses=%d", len(symbols), cached.Load(), misses.Load()), nil
}

func (o *Orchestrator) syncBills(ctx context.Context, _ *Budget) (string, error) {
	if o.Sources.Bills == nil {
		return "no bill source", nil
	}
	recs, err := o.Sources.Bills.FetchBills(ctx)
	if err != nil {
		o.Logger.Warn("bill fetch failed", zap.Error(err))
		return "upstream unavailable, bills=0", nil
	}

	rows := make([]bill.Record, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, bill.Record{Number: r.Number, Status: r.Status, Title: r.Title})
	}
	n, err := o.Bills.Upsert(ctx, rows)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("bills=%d", n), nil
}

func (o *Orchestrator) syncRoster(ctx context.Context, budget *Budget) (string, error) {
	var parts []string
	partial := false

	if o.Sources.Federal != nil {
		have, err := o.Members.CountByJurisdiction(ctx, models.Federal)
		if err != nil {
			return "", err
		}
		if have < o.Config.FederalTarget {
			done, total, complete, err := o.refreshRoster(ctx, o.Sources.Federal, models.Federal, o.Config.FederalBatch, budget)
			if err != nil {
				return "", err
			}
			parts = append(parts, rosterPart("federal", done, total, o.Config.FederalTarget, complete))
			partial = partial || !complete
		} else {
			parts = append(parts, fmt.Sprintf("federal=complete(%d)", have))
		}
	}

	if o.Sources.Provincial != nil && !partial {
		done, total, complete, err := o.refreshRoster(ctx, o.Sources.Provincial, models.Provincial, o.Config.ProvincialBatch, budget)
		if err != nil {
			return "", err
		}
		parts = append(parts, rosterPart("provincial", done, total, o.Config.ProvincialTarget, complete))
		partial = partial || !complete
	}

	detail := strings.Join(parts, " ")
	if partial {
		o.Logger.Info("roster refresh stopped at time budget", zap.String("progress", detail))
		return "partial: time budget exceeded " + detail, nil
	}
	return detail, nil
}

// rosterPart formats one jurisdiction's progress. A complete refresh that
// returned fewer members than target is marked short so a truncated
// upstream roster shows up in the report.
func rosterPart(name string, done, total, target int, complete bool) string {
	s := fmt.Sprintf("%s=%d/%d", name, done, total)
	if complete && target > 0 && total < target {
		s += fmt.Sprintf(" %s_short=%d", name, target-total)
	}
	return s
}

// refreshRoster upserts src's roster in batches and stops before a batch
// once the budget is spent.
func (o *Orchestrator) refreshRoster(ctx context.Context, src scraper.RosterSource, j models.Jurisdiction, batch int, budget *Budget) (done, total int, complete bool, err error) {
	recs, ferr := src.FetchRoster(ctx, j)
	if ferr != nil {
		o.Logger.Warn("roster fetch failed", zap.String("jurisdiction", string(j)), zap.Error(ferr))
	}
	if batch <= 0 {
		batch = len(recs)
	}

	total = len(recs)
	for start := 0; start < total; start += batch {
		if budget.Exceeded() {
			return done, total, false, nil
		}
		end := min(start+batch, total)
		entries := make([]member.RosterEntry, 0, end-start)
		for _, r := range recs[start:end] {
			entries = append(entries, member.RosterEntry{
				ExternalID: r.ExternalID,
				Name:       r.Name,
				Riding:     r.Riding,
				Party:      r.Party,
				Chamber:    r.Chamber,
				PhotoURL:   r.PhotoURL,
			})
		}
		if _, err := o.Members.UpsertRoster(ctx, j, entries); err != nil {
			return done, total, false, err
		}
		done = end
	}
	return done, total, true, nil
}

func (o *Orchestrator) syncSlugs(ctx context.Context, _ *Budget) (string, error) {
	n, err := o.Members.BackfillSlugs(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("assigned=%d", n), nil
}

func (o *Orchestrator) syncCommittees(ctx context.Context, _ *Budget) (string, error) {
	if err := o.Sectors.Seed(ctx, sector.All); err != nil {
		return "", err
	}
	sectorIDs, err := o.Sectors.IDs(ctx)
	if err != nil {
		return "", err
	}
	ids, err := o.Committees.Ensure(ctx, committee.Table, sectorIDs)
	if err != nil {
		return "", err
	}
	if o.Sources.Committees == nil {
		return fmt.Sprintf("committees=%d no roster source", len(ids)), nil
	}

	all, err := o.Members.All(ctx)
	if err != nil {
		return "", err
	}
	candidates := make([]committee.Candidate, 0, len(all))
	for _, m := range all {
		candidates = append(candidates, committee.Candidate{ID: m.ID, Name: m.Name})
	}

	var linked, added, unmatched int
	for _, ov := range committee.Table {
		recs, err := o.Sources.Committees.FetchCommitteeMembers(ctx, ov.SourceKey)
		if err != nil {
			o.Logger.Warn("committee roster fetch failed", zap.String("committee", ov.SourceKey), zap.Error(err))
			continue
		}
		for _, r := range recs {
			c, ok := committee.Match(r.Name, candidates)
			if !ok {
				unmatched++
				continue
			}
			inserted, err := o.Committees.Link(ctx, ids[ov.Committee], c.ID)
			if err != nil {
				return "", err
			}
			linked++
			if inserted {
				added++
			}
		}
	}
	return fmt.Sprintf("committees=%d linked=%d new=%d unmatched=%d", len(ids), linked, added, unmatched), nil
}

// runAudit audits and ranks every member, then replaces all flags and
// ranks in one transaction. It ignores the time budget and the caller's
// cancellation: a half-applied audit would leave flags and ranks
// disagreeing.
func (o *Orchestrator) runAudit(ctx context.Context, _ *Budget) (string, error) {
	ctx = context.WithoutCancel(ctx)

	if err := o.Classifier.Refresh(ctx); err != nil {
		o.Logger.Warn("sector mappings not refreshed", zap.Error(err))
	}
	all, err := o.Members.All(ctx)
	if err != nil {
		return "", err
	}

	outcomes := make([]member.AuditOutcome, 0, len(all))
	var conflicts, flagged, failures int
	for _, m := range all {
		res, err := o.Auditor.CheckConflict(ctx, m.ID)
		if err != nil {
			failures++
			o.Logger.Error("audit member failed", zap.Int64("member_id", m.ID), zap.Error(err))
			continue
		}
		rank, err := o.Ranker.CalculateIntegrityRankWithConflicts(ctx, m.ID, len(res.Conflicts))
		if err != nil {
			failures++
			o.Logger.Error("rank member failed", zap.Int64("member_id", m.ID), zap.Error(err))
			continue
		}

		out := member.AuditOutcome{MemberID: m.ID, Rank: rank}
		for _, f := range res.Conflicts {
			if f.Source != audit.SourceDisclosure {
				continue
			}
			out.Flags = append(out.Flags, member.DisclosureFlag{DisclosureID: f.SourceRecordID, Reason: f.ConflictReason})
		}
		flagged += len(out.Flags)
		conflicts += len(res.Conflicts)
		outcomes = append(outcomes, out)
	}

	if err := o.Members.ApplyAudit(ctx, outcomes); err != nil {
		return "", err
	}

	if o.Metrics != nil {
		o.Metrics.ObserveAudit(len(outcomes), conflicts)
	}
	detail := fmt.Sprintf("members=%d conflicts=%d flagged=%d failures=%d", len(all), conflicts, flagged, failures)
	if failures > 0 {
		return detail, fmt.Errorf("%d members not audited", failures)
	}
	return detail, nil
}
