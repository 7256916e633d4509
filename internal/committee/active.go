package committee

import (
	"strings"

	"integritywatch/pkg/models"
)

// ActiveSet is a set of committee names that iterates in Table order.
type ActiveSet struct {
	names map[string]struct{}
	// Defaulted is true when no bill matched and DefaultActive was used.
	Defaulted bool
}

func newActiveSet(names ...string) ActiveSet {
	s := ActiveSet{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		s.names[n] = struct{}{}
	}
	return s
}

func (s ActiveSet) Has(name string) bool {
	_, ok := s.names[name]
	return ok
}

func (s ActiveSet) Len() int { return len(s.names) }

// Names returns the members in Table order.
func (s ActiveSet) Names() []string {
	out := make([]string, 0, len(s.names))
	for _, o := range Table {
		if s.Has(o.Committee) {
			out = append(out, o.Committee)
		}
	}
	return out
}

// InferActiveCommitteesFromBillKeywords is a stand-in for real
// committee-to-bill assignments, which no integrated source provides. Each
// bill title is tested against BillKeywords (case-insensitive substring,
// first hit wins) and the matched committees are unioned. When nothing
// matches, DefaultActive is returned so audits never run against an empty
// set.
func InferActiveCommitteesFromBillKeywords(bills []models.Bill) ActiveSet {
	set := newActiveSet()
	for _, b := range bills {
		if c, ok := CommitteeForBillTitle(b.Title); ok {
			set.names[c] = struct{}{}
		}
	}
	if set.Len() == 0 {
		set = newActiveSet(DefaultActive...)
		set.Defaulted = true
	}
	return set
}

// CommitteeForBillTitle returns the committee implicated by a bill title.
func CommitteeForBillTitle(title string) (string, bool) {
	t := strings.ToLower(title)
	if strings.TrimSpace(t) == "" {
		return "", false
	}
	for _, kw := range BillKeywords {
		if strings.Contains(t, kw.Keyword) {
			return kw.Committee, true
		}
	}
	return "", false
}
