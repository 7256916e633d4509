package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// registryDateLayouts are tried in order when parsing a row date.
var registryDateLayouts = []string{"2006-01-02", "January 2, 2006", "2006/01/02"}

// RegistrySource scrapes the public ethics registry search page. Each
// declaration is a table row:
//
//	<tr class="material-change">
//	  <td class="asset">Suncor Energy Inc. (SU)</td>
//	  <td class="nature">Material change - acquisition</td>
//	  <td class="date">2024-01-01</td>
//	</tr>
type RegistrySource struct {
	BaseURL string
	Client  *Client
}

func NewRegistrySource(baseURL string, client *Client) *RegistrySource {
	return &RegistrySource{BaseURL: strings.TrimRight(baseURL, "/"), Client: client}
}

func (s *RegistrySource) ScrapeDisclosures(ctx context.Context, name string) ([]DisclosureRecord, error) {
	u := s.BaseURL + "/Search?name=" + url.QueryEscape(strings.TrimSpace(name))
	body, err := s.Client.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: registry: parse html: %v", ErrUpstream, err)
	}

	var out []DisclosureRecord
	doc.Find("table.registry tbody tr").Each(func(_ int, row *goquery.Selection) {
		asset := cleanText(row.Find("td.asset").Text())
		if asset == "" {
			return
		}
		rec := DisclosureRecord{
			AssetName:        asset,
			NatureOfInterest: cleanText(row.Find("td.nature").Text()),
			IsMaterialChange: row.HasClass("material-change"),
		}
		if t, ok := parseRegistryDate(row.Find("td.date").Text()); ok {
			rec.EventDate = &t
		}
		out = append(out, rec)
	})
	return out, nil
}

func parseRegistryDate(s string) (time.Time, bool) {
	s = cleanText(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range registryDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// cleanText collapses runs of whitespace and trims.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
