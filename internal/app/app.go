// Package app wires the shared pieces every binary needs: config, logger,
// database and the sync orchestrator over the live sources.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"integritywatch/internal/pipeline"
	"integritywatch/internal/quotes"
	"integritywatch/internal/scraper"
	"integritywatch/pkg/database"
	"integritywatch/pkg/logger"
	"integritywatch/pkg/utils"
)

// Bootstrap loads config and builds the logger. It exits the process on
// failure.
func Bootstrap(name string) (utils.Config, *zap.Logger) {
	cfg, err := utils.Load()
	if err != nil {
		// no logger yet
		l := logger.Must(utils.LogConfig{Level: "info"})
		l.Fatal("load config", zap.Error(err))
	}
	return cfg, logger.Must(cfg.Log).Named(name)
}

// OpenDB opens the sqlite file and applies the schema.
func OpenDB(ctx context.Context, path string) (*sql.DB, error) {
	db, err := database.Open(database.Config{Path: path})
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Sources builds the scraper collaborators. Every collaborator shares one
// rate limited HTTP client.
func Sources(cfg utils.SourcesConfig, log *zap.Logger) pipeline.Sources {
	client := scraper.NewClient(cfg.Timeout, cfg.RequestsPerSec)
	fallback := &scraper.FallbackRoster{Dir: cfg.RosterFallback}
	log = log.Named("scraper")

	return pipeline.Sources{
		Disclosures: scraper.NewRegistrySource(cfg.RegistryURL, client),
		Federal: scraper.NewFirstAvailable(log,
			&scraper.HouseOfCommonsRoster{URL: cfg.FederalRosterURL, Client: client},
			fallback,
		),
		Provincial: scraper.NewFirstAvailable(log,
			&scraper.LegislatureRoster{URL: cfg.ProvincialURL, Client: client},
			fallback,
		),
		Bills:  &scraper.LegisInfoBills{URL: cfg.BillsURL, Client: client},
		Quotes: &scraper.ChartQuotes{BaseURL: cfg.QuotesURL, Suffix: cfg.QuoteSuffix, Client: client},
		Committees: &scraper.CommitteeFallback{
			Live:   &scraper.CommitteePages{BaseURL: cfg.CommitteesURL, Client: client},
			Static: scraper.DefaultStaticCommittees,
			Logger: log,
		},
	}
}

// QuoteCache returns a redis backed cache when an address is configured
// and an in-process one otherwise. The close func is never nil.
func QuoteCache(ctx context.Context, addr string, log *zap.Logger) (quotes.Cache, func() error) {
	if addr == "" {
		return quotes.NewMemoryCache(quotes.DefaultTTL), func() error { return nil }
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis unreachable, using in-process quote cache", zap.String("addr", addr), zap.Error(err))
		_ = rdb.Close()
		return quotes.NewMemoryCache(quotes.DefaultTTL), func() error { return nil }
	}
	return quotes.NewRedisCache(rdb, quotes.DefaultTTL), rdb.Close
}

// NewOrchestrator wires a pipeline over db with the configured sources and
// quote cache. The returned func releases the cache connection.
func NewOrchestrator(ctx context.Context, db *sql.DB, cfg utils.Config, log *zap.Logger) (*pipeline.Orchestrator, func() error) {
	o := pipeline.New(db, Sources(cfg.Sources, log), cfg.Sync, log)
	cache, closeCache := QuoteCache(ctx, cfg.RedisAddr, log)
	o.QuoteCache = cache
	return o, closeCache
}
