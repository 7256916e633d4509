// Package committee holds the committee oversight tables and the
// heuristics that decide which committees are legislatively active.
package committee

import (
	"strings"

	"integritywatch/internal/sector"
)

const (
	Finance            = "Finance"
	NaturalResources   = "Natural Resources"
	Environment        = "Environment"
	IndustryTechnology = "Industry and Technology"
	Health             = "Health"
	Transport          = "Transport"
	Agriculture        = "Agriculture"
	NationalDefence    = "National Defence"
)

// Oversight ties a committee to the sectors it oversees. SourceKey is the
// committee acronym used by the House of Commons committee pages.
type Oversight struct {
	Committee string
	SourceKey string
	Sectors   []string
}

// Table is the static committee -> sectors map. Its order is the
// iteration order of every ActiveSet.
var Table = []Oversight{
	{Finance, "FINA", []string{sector.Banking, sector.RealEstate}},
	{NaturalResources, "RNNR", []string{sector.OilGasMining, sector.Utilities}},
	{Environment, "ENVI", []string{sector.Utilities, sector.OilGasMining, sector.Agriculture}},
	{IndustryTechnology, "INDU", []string{sector.Technology, sector.Telecom, sector.Retail}},
	{Health, "HESA", []string{sector.Healthcare}},
	{Transport, "TRAN", []string{sector.Transportation}},
	{Agriculture, "AGRI", []string{sector.Agriculture}},
	{NationalDefence, "NDDN", []string{sector.Defence}},
}

// DefaultActive is used when no tracked bill matches any keyword.
var DefaultActive = []string{Finance, NaturalResources, Environment, IndustryTechnology}

// AuditFallback is tried, in order, when none of the active committees
// oversees an asset's sector.
var AuditFallback = []string{NaturalResources, Finance, Environment}

// BillKeyword maps a lowercase bill-title substring to a committee.
type BillKeyword struct {
	Keyword   string
	Committee string
}

// BillKeywords is scanned in order; the first hit per bill wins.
var BillKeywords = []BillKeyword{
	{"energy", NaturalResources},
	{"natural resource", NaturalResources},
	{"mining", NaturalResources},
	{"pipeline", NaturalResources},
	{"oil", NaturalResources},
	{"nuclear", NaturalResources},

	{"environment", Environment},
	{"climate", Environment},
	{"emission", Environment},
	{"carbon", Environment},
	{"pollution", Environment},

	{"bank", Finance},
	{"financ", Finance},
	{"budget", Finance},
	{"income tax", Finance},
	{"excise", Finance},
	{"tax", Finance},
	{"housing", Finance},

	{"digital", IndustryTechnology},
	{"telecommunication", IndustryTechnology},
	{"broadcasting", IndustryTechnology},
	{"online", IndustryTechnology},
	{"competition", IndustryTechnology},
	{"artificial intelligence", IndustryTechnology},
	{"consumer", IndustryTechnology},

	{"health", Health},
	{"pharmac", Health},
	{"drug", Health},

	{"transport", Transport},
	{"railway", Transport},
	{"aviation", Transport},
	{"marine", Transport},

	{"agricultur", Agriculture},
	{"food", Agriculture},
	{"fisheries", Agriculture},

	{"defence", NationalDefence},
	{"armed forces", NationalDefence},
}

// Lookup returns the oversight entry for name.
func Lookup(name string) (Oversight, bool) {
	for _, o := range Table {
		if o.Committee == name {
			return o, true
		}
	}
	return Oversight{}, false
}

// Oversees reports whether the committee's sector list contains s, or a
// listed sector is contained by s, case-insensitively.
func Oversees(committeeName, s string) bool {
	o, ok := Lookup(committeeName)
	if !ok {
		return false
	}
	target := strings.ToLower(strings.TrimSpace(s))
	if target == "" {
		return false
	}
	for _, cs := range o.Sectors {
		c := strings.ToLower(cs)
		if strings.Contains(c, target) || strings.Contains(target, c) {
			return true
		}
	}
	return false
}
