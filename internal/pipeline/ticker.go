package pipeline

import (
	"regexp"
	"strings"

	"integritywatch/pkg/models"
)

var (
	// ABC, ABC.TO, RCI.B
	bareTicker = regexp.MustCompile(`^[A-Z]{1,5}(\.[A-Z]{1,3})?$`)
	// "Suncor Energy Inc. (SU)"
	namedTicker = regexp.MustCompile(`\(([A-Z]{1,5}(?:\.[A-Z]{1,3})?)\)\s*$`)
)

// ParseTicker extracts a ticker from a material-change asset name.
func ParseTicker(asset string) (string, bool) {
	s := strings.TrimSpace(asset)
	if bareTicker.MatchString(s) {
		return s, true
	}
	if m := namedTicker.FindStringSubmatch(s); m != nil {
		return m[1], true
	}
	return "", false
}

// TradeDirectionFor reads the direction off the nature of interest.
func TradeDirectionFor(nature string) models.TradeDirection {
	n := strings.ToLower(nature)
	if strings.Contains(n, "sell") || strings.Contains(n, "dispos") {
		return models.Sell
	}
	return models.Buy
}
