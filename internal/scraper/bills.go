package scraper

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
)

// LegisInfoBills reads the LEGISinfo bill list export.
type LegisInfoBills struct {
	URL    string
	Client *Client
}

type legisExport struct {
	Bills []legisBill `xml:"Bill"`
}

type legisBill struct {
	Number     string `xml:"BillNumberFormatted"`
	ShortTitle string `xml:"ShortTitleEn"`
	LongTitle  string `xml:"LongTitleEn"`
	Status     string `xml:"CurrentStatusEn"`
}

func (s *LegisInfoBills) FetchBills(ctx context.Context) ([]BillRecord, error) {
	body, err := s.Client.Get(ctx, s.URL)
	if err != nil {
		return nil, fmt.Errorf("legisinfo: %w", err)
	}

	var export legisExport
	if err := xml.Unmarshal(body, &export); err != nil {
		return nil, fmt.Errorf("%w: legisinfo: decode xml: %v", ErrUpstream, err)
	}

	out := make([]BillRecord, 0, len(export.Bills))
	for _, b := range export.Bills {
		number := strings.TrimSpace(b.Number)
		if number == "" {
			continue
		}
		// the long title carries the subject keywords ("An Act respecting ...")
		title := cleanText(b.LongTitle)
		if title == "" {
			title = cleanText(b.ShortTitle)
		}
		out = append(out, BillRecord{
			Number: number,
			Status: cleanText(b.Status),
			Title:  title,
		})
	}
	return out, nil
}
