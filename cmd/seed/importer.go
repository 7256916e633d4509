package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"integritywatch/pkg/models"
)

type mappingStore interface {
	UpsertMapping(ctx context.Context, keyword, sectorName string) error
}

type tradeStore interface {
	GetBySlug(ctx context.Context, slug string) (*models.Member, error)
	InsertTrade(ctx context.Context, t models.TradeEvent) (bool, error)
}

type tradeResult struct {
	inserted, duplicates, unknownMembers int
}

func importMappings(ctx context.Context, store mappingStore, in io.Reader) (int, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return 0, err
	}

	n := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}

		kw := valueAt(header, row, "keyword")
		sec := valueAt(header, row, "sector")
		if kw == "" || sec == "" {
			continue
		}
		if err := store.UpsertMapping(ctx, kw, sec); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func importTrades(ctx context.Context, store tradeStore, in io.Reader) (tradeResult, error) {
	var res tradeResult

	r := csv.NewReader(in)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return res, err
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, err
		}

		slug := valueAt(header, row, "member_slug")
		symbol := valueAt(header, row, "symbol")
		if slug == "" || symbol == "" {
			continue
		}

		dir := models.TradeDirection(strings.ToUpper(valueAt(header, row, "direction")))
		date, err := time.Parse(time.DateOnly, valueAt(header, row, "trade_date"))
		if err != nil {
			return res, fmt.Errorf("parse trade_date for %s/%s: %w", slug, symbol, err)
		}

		m, err := store.GetBySlug(ctx, slug)
		if err != nil {
			return res, err
		}
		if m == nil {
			res.unknownMembers++
			continue
		}

		ok, err := store.InsertTrade(ctx, models.TradeEvent{
			MemberID:  m.ID,
			Symbol:    symbol,
			Direction: dir,
			TradeDate: date,
		})
		if err != nil {
			return res, err
		}
		if ok {
			res.inserted++
		} else {
			res.duplicates++
		}
	}
	return res, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
