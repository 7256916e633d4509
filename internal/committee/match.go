package committee

import (
	"strings"

	"integritywatch/pkg/utils"
)

// Candidate is a member that a roster name may resolve to.
type Candidate struct {
	ID   int64
	Name string
}

// Matcher tries to resolve a roster name against candidates.
type Matcher func(name string, candidates []Candidate) (Candidate, bool)

// MatchChain is tried in order; the first matcher that resolves wins.
var MatchChain = []Matcher{tryExactMatch, tryReversedMatch, tryLastNameMatch}

// Match resolves a committee-roster name to a member, tolerating
// "Last, First" ordering, honorifics and accents.
func Match(name string, candidates []Candidate) (Candidate, bool) {
	for _, m := range MatchChain {
		if c, ok := m(name, candidates); ok {
			return c, true
		}
	}
	return Candidate{}, false
}

var honorifics = map[string]struct{}{
	"hon": {}, "honourable": {}, "the": {}, "right": {}, "rt": {},
	"mp": {}, "mpp": {}, "mr": {}, "mrs": {}, "ms": {}, "dr": {}, "pc": {},
}

// normalizeName folds accents and case, drops honorifics and collapses
// "P.C." style abbreviations.
func normalizeName(s string) string {
	fields := strings.Fields(utils.Fold(strings.ReplaceAll(s, ".", "")))
	out := fields[:0]
	for _, f := range fields {
		if _, skip := honorifics[f]; skip {
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}

func tryExactMatch(name string, candidates []Candidate) (Candidate, bool) {
	want := normalizeName(name)
	if want == "" {
		return Candidate{}, false
	}
	for _, c := range candidates {
		if normalizeName(c.Name) == want {
			return c, true
		}
	}
	return Candidate{}, false
}

// tryReversedMatch handles "Last, First".
func tryReversedMatch(name string, candidates []Candidate) (Candidate, bool) {
	last, first, ok := strings.Cut(name, ",")
	if !ok {
		return Candidate{}, false
	}
	return tryExactMatch(strings.TrimSpace(first)+" "+strings.TrimSpace(last), candidates)
}

// tryLastNameMatch accepts the first candidate whose name contains the
// roster entry's last name.
func tryLastNameMatch(name string, candidates []Candidate) (Candidate, bool) {
	last := lastName(name)
	if len(last) < 2 {
		return Candidate{}, false
	}
	for _, c := range candidates {
		if strings.Contains(normalizeName(c.Name), last) {
			return c, true
		}
	}
	return Candidate{}, false
}

func lastName(name string) string {
	if before, _, ok := strings.Cut(name, ","); ok {
		return normalizeName(before)
	}
	fields := strings.Fields(normalizeName(name))
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
