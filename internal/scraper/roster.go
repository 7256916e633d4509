package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"integritywatch/pkg/models"
	"integritywatch/pkg/utils"
)

// HouseOfCommonsRoster reads the federal members export (XML).
type HouseOfCommonsRoster struct {
	URL    string
	Client *Client
}

type hocExport struct {
	Members []hocMember `xml:"MemberOfParliament"`
}

type hocMember struct {
	PersonID      string `xml:"PersonId"`
	Honorific     string `xml:"PersonShortHonorific"`
	FirstName     string `xml:"PersonOfficialFirstName"`
	LastName      string `xml:"PersonOfficialLastName"`
	Constituency  string `xml:"ConstituencyName"`
	Province      string `xml:"ConstituencyProvinceTerritoryName"`
	Caucus        string `xml:"CaucusShortName"`
	PhotoFileName string `xml:"PhotoFileName"`
}

func (s *HouseOfCommonsRoster) FetchRoster(ctx context.Context, j models.Jurisdiction) ([]RosterRecord, error) {
	if j != models.Federal {
		return nil, nil
	}
	body, err := s.Client.Get(ctx, s.URL)
	if err != nil {
		return nil, fmt.Errorf("house of commons roster: %w", err)
	}

	var export hocExport
	if err := xml.Unmarshal(body, &export); err != nil {
		return nil, fmt.Errorf("%w: house of commons roster: decode xml: %v", ErrUpstream, err)
	}

	out := make([]RosterRecord, 0, len(export.Members))
	for _, m := range export.Members {
		name := cleanText(m.FirstName + " " + m.LastName)
		if name == "" {
			continue
		}
		id := strings.TrimSpace(m.PersonID)
		if id == "" {
			// the search export omits PersonId; name plus riding is stable per parliament
			id = strings.ReplaceAll(utils.Fold(name+" "+m.Constituency), " ", "-")
		}
		rec := RosterRecord{
			ExternalID: "hoc-" + id,
			Name:       name,
			Riding:     cleanText(m.Constituency),
			Party:      cleanText(m.Caucus),
			Chamber:    "House of Commons",
		}
		if f := strings.TrimSpace(m.PhotoFileName); f != "" {
			rec.PhotoURL = "https://www.ourcommons.ca/Content/Parliamentarians/Images/OfficialMPPhotos/" + f
		}
		out = append(out, rec)
	}
	return out, nil
}

// LegislatureRoster scrapes the provincial members listing (HTML). Each
// member is a card:
//
//	<div class="member-card">
//	  <a class="member-name" href="/en/members/all/jane-doe">Jane Doe</a>
//	  <span class="member-riding">Ottawa Centre</span>
//	  <span class="member-party">New Democratic Party</span>
//	  <img src="/photos/jane-doe.jpg">
//	</div>
type LegislatureRoster struct {
	URL    string
	Client *Client
}

func (s *LegislatureRoster) FetchRoster(ctx context.Context, j models.Jurisdiction) ([]RosterRecord, error) {
	if j != models.Provincial {
		return nil, nil
	}
	body, err := s.Client.Get(ctx, s.URL)
	if err != nil {
		return nil, fmt.Errorf("legislature roster: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: legislature roster: parse html: %v", ErrUpstream, err)
	}

	var out []RosterRecord
	doc.Find("div.member-card").Each(func(_ int, card *goquery.Selection) {
		link := card.Find("a.member-name")
		name := cleanText(link.Text())
		href, _ := link.Attr("href")
		id := path.Base(strings.TrimRight(href, "/"))
		if name == "" || id == "" || id == "." || id == "/" {
			return
		}
		rec := RosterRecord{
			ExternalID: "ola-" + id,
			Name:       name,
			Riding:     cleanText(card.Find(".member-riding").Text()),
			Party:      cleanText(card.Find(".member-party").Text()),
			Chamber:    "Legislative Assembly",
		}
		if src, ok := card.Find("img").Attr("src"); ok {
			rec.PhotoURL = src
		}
		out = append(out, rec)
	})
	return out, nil
}

// FallbackRoster serves a checked-in JSON roster, <Dir>/<jurisdiction>.json,
// e.g. data/rosters/federal.json.
type FallbackRoster struct {
	Dir string
}

func (s *FallbackRoster) FetchRoster(_ context.Context, j models.Jurisdiction) ([]RosterRecord, error) {
	file := filepath.Join(s.Dir, strings.ToLower(string(j))+".json")
	b, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("fallback roster: %w", err)
	}

	var out []RosterRecord
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("fallback roster %s: decode json: %w", file, err)
	}
	return out, nil
}

// FirstAvailable tries each source in order and returns the first
// non-empty result. Errors are logged and skipped; when every source fails
// or comes back empty the result is empty with the last error.
type FirstAvailable struct {
	Sources []RosterSource
	Logger  *zap.Logger
}

func NewFirstAvailable(logger *zap.Logger, sources ...RosterSource) *FirstAvailable {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FirstAvailable{Sources: sources, Logger: logger}
}

func (f *FirstAvailable) FetchRoster(ctx context.Context, j models.Jurisdiction) ([]RosterRecord, error) {
	var lastErr error
	for i, src := range f.Sources {
		recs, err := src.FetchRoster(ctx, j)
		if err != nil {
			f.Logger.Warn("roster source failed",
				zap.Int("source", i),
				zap.String("jurisdiction", string(j)),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		if len(recs) > 0 {
			return recs, nil
		}
	}
	return nil, lastErr
}
