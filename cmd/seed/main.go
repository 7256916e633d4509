package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"integritywatch/internal/app"
	"integritywatch/internal/member"
	"integritywatch/internal/sector"
)

func main() {
	var (
		tradesIn   = flag.String("trades", "data/trades.csv", "input CSV of seed trade events (member_slug,symbol,direction,trade_date)")
		mappingsIn = flag.String("mappings", "data/sector_mappings.csv", "input CSV of keyword mappings (keyword,sector)")
	)
	flag.Parse()

	cfg, log := app.Bootstrap("seed")
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := app.OpenDB(ctx, cfg.DBPath)
	if err != nil {
		log.Fatal("open database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer db.Close()

	sectors := sector.NewRepo(db)
	if err := sectors.Seed(ctx, sector.All); err != nil {
		log.Fatal("seed sectors", zap.Error(err))
	}

	if f, err := os.Open(*mappingsIn); err == nil {
		n, err := importMappings(ctx, sectors, f)
		f.Close()
		if err != nil {
			log.Fatal("import mappings", zap.String("file", *mappingsIn), zap.Error(err))
		}
		log.Info("imported keyword mappings", zap.String("file", *mappingsIn), zap.Int("rows", n))
	} else {
		log.Warn("mappings file skipped", zap.Error(err))
	}

	if f, err := os.Open(*tradesIn); err == nil {
		res, err := importTrades(ctx, member.NewRepo(db), f)
		f.Close()
		if err != nil {
			log.Fatal("import trades", zap.String("file", *tradesIn), zap.Error(err))
		}
		log.Info("imported trades",
			zap.String("file", *tradesIn),
			zap.Int("inserted", res.inserted),
			zap.Int("duplicates", res.duplicates),
			zap.Int("unknown_members", res.unknownMembers),
		)
	} else {
		log.Warn("trades file skipped", zap.Error(err))
	}
}
