package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ChartQuotes reads the last price from a chart JSON endpoint
// (<BaseURL>/<SYMBOL><Suffix>). Suffix is appended only to symbols without
// an exchange part, so "SU" becomes "SU.TO" and "SHOP.TO" stays as is.
type ChartQuotes struct {
	BaseURL string
	Suffix  string
	Client  *Client
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				Currency           string  `json:"currency"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (s *ChartQuotes) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return nil, fmt.Errorf("quote: empty symbol")
	}
	if !strings.Contains(sym, ".") {
		sym += s.Suffix
	}

	body, err := s.Client.Get(ctx, strings.TrimRight(s.BaseURL, "/")+"/"+url.PathEscape(sym))
	if err != nil {
		return nil, fmt.Errorf("quote %s: %w", sym, err)
	}

	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: quote %s: decode json: %v", ErrUpstream, sym, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("%w: quote %s: %s", ErrUpstream, sym, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, nil
	}

	meta := resp.Chart.Result[0].Meta
	q := &Quote{
		Symbol:   strings.ToUpper(strings.TrimSpace(symbol)),
		Price:    meta.RegularMarketPrice,
		Currency: meta.Currency,
	}
	if meta.ChartPreviousClose > 0 {
		q.DailyChange = decimal.NewFromFloat(meta.RegularMarketPrice).
			Sub(decimal.NewFromFloat(meta.ChartPreviousClose)).
			Round(4).
			InexactFloat64()
	}
	if meta.RegularMarketTime > 0 {
		q.At = time.Unix(meta.RegularMarketTime, 0).UTC()
	}
	return q, nil
}
