package member

import (
	"context"
	"fmt"
	"strings"

	"integritywatch/pkg/models"
	"integritywatch/pkg/utils"
)

// Slugify turns a display name into a URL-safe slug: "Mélanie Joly" ->
// "melanie-joly". Only [a-z0-9-] survives; a name with no Latin letters or
// digits yields "".
func Slugify(s string) string {
	var b strings.Builder
	for _, word := range strings.Fields(utils.Fold(s)) {
		var w strings.Builder
		for _, r := range word {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				w.WriteRune(r)
			}
		}
		if w.Len() == 0 {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('-')
		}
		b.WriteString(w.String())
	}
	return b.String()
}

// slugFor picks the first free slug among name, name+riding, then
// name+riding with numeric suffixes starting at 2.
func slugFor(m models.Member, taken map[string]struct{}) string {
	free := func(s string) bool {
		if s == "" {
			return false
		}
		_, used := taken[s]
		return !used
	}

	base := Slugify(m.Name)
	if base == "" {
		base = fmt.Sprintf("member-%d", m.ID)
	}
	if free(base) {
		return base
	}

	withRiding := base
	if r := Slugify(m.Riding); r != "" {
		withRiding = base + "-" + r
		if free(withRiding) {
			return withRiding
		}
	}

	for i := 2; ; i++ {
		s := fmt.Sprintf("%s-%d", withRiding, i)
		if free(s) {
			return s
		}
	}
}

// BackfillSlugs assigns a unique slug to every member that lacks one and
// returns how many were written.
func (r *Repo) BackfillSlugs(ctx context.Context) (int, error) {
	all, err := r.All(ctx)
	if err != nil {
		return 0, err
	}

	taken := make(map[string]struct{}, len(all))
	var missing []models.Member
	for _, m := range all {
		if m.Slug != "" {
			taken[m.Slug] = struct{}{}
			continue
		}
		missing = append(missing, m)
	}

	n := 0
	for _, m := range missing {
		s := slugFor(m, taken)
		if _, err := r.DB.ExecContext(ctx, `UPDATE members SET slug = ? WHERE id = ?`, s, m.ID); err != nil {
			return n, fmt.Errorf("set slug for %d: %w", m.ID, err)
		}
		taken[s] = struct{}{}
		n++
	}
	return n, nil
}
