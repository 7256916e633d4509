// Package sector maps free-text asset descriptions and ticker symbols to
// canonical economic sectors.
package sector

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"integritywatch/pkg/models"
)

// MappingLoader supplies persisted keyword mappings. *Repo implements it.
type MappingLoader interface {
	ListMappings(ctx context.Context) ([]models.AssetSectorMapping, error)
}

// Classifier resolves sectors from the built-in tables plus whatever the
// loader returned on the last Refresh. The zero value is not usable; use
// NewClassifier.
type Classifier struct {
	symbols  []SymbolRule
	keywords []KeywordRule
	loader   MappingLoader

	mu    sync.RWMutex
	extra []KeywordRule
}

// NewClassifier returns a classifier over the built-in tables. loader may
// be nil, in which case Refresh is a no-op.
func NewClassifier(loader MappingLoader) *Classifier {
	return &Classifier{
		symbols:  Symbols,
		keywords: Keywords,
		loader:   loader,
	}
}

// Refresh reloads persisted mappings. On error the previous set is kept.
func (c *Classifier) Refresh(ctx context.Context) error {
	if c.loader == nil {
		return nil
	}
	mappings, err := c.loader.ListMappings(ctx)
	if err != nil {
		return fmt.Errorf("load sector mappings: %w", err)
	}

	extra := make([]KeywordRule, 0, len(mappings))
	for _, m := range mappings {
		kw := normalize(m.Keyword)
		if kw == "" || m.Sector == "" {
			continue
		}
		extra = append(extra, KeywordRule{Keyword: kw, Sector: m.Sector})
	}

	c.mu.Lock()
	c.extra = extra
	c.mu.Unlock()
	return nil
}

// Resolve returns the sector for an asset. An exact symbol hit wins over
// anything in the description; otherwise the first keyword (persisted
// mappings first, then the built-in table) found as a substring of the
// description is used. ok is false when nothing matched, which callers
// must treat as "no conflict possible" rather than an error.
func (c *Classifier) Resolve(description, symbol string) (sector string, ok bool) {
	if s, ok := c.resolveSymbol(symbol); ok {
		return s, true
	}

	desc := normalize(description)
	if desc == "" {
		return "", false
	}

	c.mu.RLock()
	extra := c.extra
	c.mu.RUnlock()

	for _, rule := range extra {
		if strings.Contains(desc, rule.Keyword) {
			return rule.Sector, true
		}
	}
	for _, rule := range c.keywords {
		if strings.Contains(desc, rule.Keyword) {
			return rule.Sector, true
		}
	}
	return "", false
}

var exchangeSuffixes = []string{".to", ".v", ".cn", ".ne"}

func (c *Classifier) resolveSymbol(symbol string) (string, bool) {
	sym := normalize(symbol)
	if sym == "" {
		return "", false
	}

	candidates := []string{sym}
	for _, suffix := range exchangeSuffixes {
		if strings.HasSuffix(sym, suffix) {
			candidates = append(candidates, strings.TrimSuffix(sym, suffix))
			break
		}
	}

	for _, cand := range candidates {
		for _, rule := range c.symbols {
			if rule.Symbol == cand {
				return rule.Sector, true
			}
		}
	}
	return "", false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
