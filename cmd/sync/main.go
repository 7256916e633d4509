package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"integritywatch/internal/app"
	"integritywatch/internal/pipeline"
)

func main() {
	var (
		task        = flag.String("task", "", "run a single step (disclosures, quotes, bills, roster, slugs, committees, audit)")
		noTimeLimit = flag.Bool("no-time-limit", false, "ignore the roster time budget")
	)
	flag.Parse()

	cfg, log := app.Bootstrap("sync")
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := app.OpenDB(ctx, cfg.DBPath)
	if err != nil {
		log.Fatal("open database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer db.Close()

	orch, closeCache := app.NewOrchestrator(ctx, db, cfg, log)
	defer closeCache()

	report := orch.Run(ctx, pipeline.Options{
		Task:        strings.ToLower(strings.TrimSpace(*task)),
		NoTimeLimit: *noTimeLimit,
	})

	b, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(b))

	if !report.OK {
		// deferred cleanup is skipped by os.Exit
		closeCache()
		db.Close()
		os.Exit(1)
	}
}
