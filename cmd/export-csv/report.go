package main

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"integritywatch/internal/audit"
	"integritywatch/pkg/models"
)

type memberLister interface {
	All(ctx context.Context) ([]models.Member, error)
}

type conflictChecker interface {
	CheckConflict(ctx context.Context, memberID int64) (audit.Result, error)
}

var reportHeader = []string{"slug", "name", "jurisdiction", "party", "riding", "integrity_rank", "conflicts"}

// writeReport writes one row per member with the stored rank (blank until
// the first audit) and the live conflict count.
func writeReport(ctx context.Context, out io.Writer, members memberLister, auditor conflictChecker) (int, error) {
	w := csv.NewWriter(out)
	if err := w.Write(reportHeader); err != nil {
		return 0, err
	}

	all, err := members.All(ctx)
	if err != nil {
		return 0, err
	}

	for _, m := range all {
		res, err := auditor.CheckConflict(ctx, m.ID)
		if err != nil {
			return 0, err
		}

		rank := ""
		if m.IntegrityRank != nil {
			rank = strconv.FormatFloat(*m.IntegrityRank, 'f', 1, 64)
		}

		if err := w.Write([]string{
			m.Slug,
			m.Name,
			string(m.Jurisdiction),
			m.Party,
			m.Riding,
			rank,
			strconv.Itoa(len(res.Conflicts)),
		}); err != nil {
			return 0, err
		}
	}

	w.Flush()
	return len(all), w.Error()
}
