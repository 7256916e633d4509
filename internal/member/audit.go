package member

import (
	"context"
	"fmt"
)

// DisclosureFlag marks one disclosure as a conflict.
type DisclosureFlag struct {
	DisclosureID int64
	Reason       string
}

// AuditOutcome is the result of auditing one member: the disclosures to
// flag and the new integrity rank.
type AuditOutcome struct {
	MemberID int64
	Flags    []DisclosureFlag
	Rank     float64
}

// ApplyAudit replaces the conflict flags and integrity rank of every member
// in outcomes within one transaction. Members not listed keep their
// previous flags and rank, so flags and rank always come from the same
// audit.
func (r *Repo) ApplyAudit(ctx context.Context, outcomes []AuditOutcome) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	reset, err := tx.PrepareContext(ctx, `
		UPDATE disclosures SET conflict_flag = 0, conflict_reason = NULL
		WHERE member_id = ? AND (conflict_flag = 1 OR conflict_reason IS NOT NULL)
	`)
	if err != nil {
		return fmt.Errorf("prepare reset: %w", err)
	}
	defer reset.Close()

	flag, err := tx.PrepareContext(ctx, `
		UPDATE disclosures SET conflict_flag = 1, conflict_reason = ?
		WHERE id = ? AND member_id = ?
	`)
	if err != nil {
		return fmt.Errorf("prepare flag: %w", err)
	}
	defer flag.Close()

	rank, err := tx.PrepareContext(ctx, `UPDATE members SET integrity_rank = ?, updated_at = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare rank: %w", err)
	}
	defer rank.Close()

	now := r.Now()
	for _, o := range outcomes {
		if _, err := reset.ExecContext(ctx, o.MemberID); err != nil {
			return fmt.Errorf("reset flags for %d: %w", o.MemberID, err)
		}
		for _, f := range o.Flags {
			if f.Reason == "" {
				return fmt.Errorf("flag disclosure %d: empty reason", f.DisclosureID)
			}
			if _, err := flag.ExecContext(ctx, f.Reason, f.DisclosureID, o.MemberID); err != nil {
				return fmt.Errorf("flag disclosure %d: %w", f.DisclosureID, err)
			}
		}
		if _, err := rank.ExecContext(ctx, o.Rank, now, o.MemberID); err != nil {
			return fmt.Errorf("set integrity rank %d: %w", o.MemberID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
