package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"integritywatch/internal/app"
	"integritywatch/internal/live"
	"integritywatch/internal/pipeline"
)

func main() {
	runNow := flag.Bool("now", false, "run one sync immediately at startup")
	flag.Parse()

	cfg, log := app.Bootstrap("scheduler")
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

	hub := live.NewHub()
	orch.Notifier = hub
	if cfg.LiveAddr != "" {
		srv := live.NewServer(cfg.LiveAddr, hub, log)
		go func() {
			if err := srv.Run(); err != nil {
				log.Error("live feed stopped", zap.Error(err))
			}
		}()
		defer srv.Close()
	}

	run := func() {
		rep := orch.Run(ctx, pipeline.Options{})
		log.Info("scheduled sync finished", zap.String("run_id", rep.RunID), zap.Bool("ok", rep.OK))
	}

	// SkipIfStillRunning: a run that overlaps the next tick is skipped, not queued
	c := cron.New(cron.WithChain(cron.Recover(cronLogger{log}), cron.SkipIfStillRunning(cronLogger{log})))
	if _, err := c.AddFunc(cfg.Sync.Schedule, run); err != nil {
		log.Fatal("bad sync.schedule", zap.String("schedule", cfg.Sync.Schedule), zap.Error(err))
	}

	if *runNow {
		run()
	}

	c.Start()
	log.Info("scheduler started", zap.String("schedule", cfg.Sync.Schedule))

	<-ctx.Done()
	log.Info("stopping scheduler")
	<-c.Stop().Done()
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct{ l *zap.Logger }

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Sugar().Infow(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
