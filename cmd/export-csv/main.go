package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"integritywatch/internal/app"
	"integritywatch/internal/pipeline"
	"integritywatch/pkg/utils"
)

func main() {
	out := flag.String("out", "data/integrity_report.csv", "output CSV path")
	flag.Parse()

	cfg, log := app.Bootstrap("export")
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := app.OpenDB(ctx, cfg.DBPath)
	if err != nil {
		log.Fatal("open database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer db.Close()

	// only the repos and auditor are used; no sources are contacted
	orch := pipeline.New(db, pipeline.Sources{}, utils.SyncConfig{}, log)
	if err := orch.Classifier.Refresh(ctx); err != nil {
		log.Warn("sector mappings not refreshed", zap.Error(err))
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		log.Fatal("create output dir", zap.Error(err))
	}
	f, err := os.Create(*out)
	if err != nil {
		log.Fatal("create output", zap.String("file", *out), zap.Error(err))
	}
	defer f.Close()

	n, err := writeReport(ctx, f, orch.Members, orch.Auditor)
	if err != nil {
		log.Fatal("export report", zap.Error(err))
	}
	log.Info("exported integrity report", zap.String("file", *out), zap.Int("members", n))
}
