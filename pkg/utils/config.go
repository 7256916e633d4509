package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AuthConfig struct {
	JWTSecret         string
	JWTIssuer         string
	JWTDuration       time.Duration
	AdminPasswordHash string // bcrypt hash; empty disables POST /auth/token
}

type SyncConfig struct {
	TimeBudget       time.Duration
	DisclosureSample int
	FederalBatch     int
	ProvincialBatch  int
	FederalTarget    int
	ProvincialTarget int
	QuoteWorkers     int
	Schedule         string // cron expression for cmd/scheduler
}

type SourcesConfig struct {
	RegistryURL      string
	FederalRosterURL string
	ProvincialURL    string
	BillsURL         string
	QuotesURL        string
	QuoteSuffix      string
	CommitteesURL    string
	RosterFallback   string // directory holding <jurisdiction>.json
	RequestsPerSec   float64
	Timeout          time.Duration
}

type LogConfig struct {
	Level string
	File  string
	Dev   bool
}

type Config struct {
	DBPath    string
	HTTPAddr  string
	LiveAddr  string // TCP event feed; empty disables it
	RedisAddr string
	Auth      AuthConfig
	Sync      SyncConfig
	Sources   SourcesConfig
	Log       LogConfig
}

func setDefaults(v *viper.Viper) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}

	v.SetDefault("db.path", filepath.Join(home, ".integritywatch", "data.db"))
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("live.tcp_addr", ":7070")
	v.SetDefault("redis.addr", "")

	// dev default (change for production)
	v.SetDefault("auth.jwt_secret", "dev-secret-change-me")
	v.SetDefault("auth.jwt_issuer", "integritywatch")
	v.SetDefault("auth.jwt_ttl", "12h")
	v.SetDefault("auth.admin_password_hash", "")

	v.SetDefault("sync.time_budget", "50s")
	v.SetDefault("sync.disclosure_sample", 25)
	v.SetDefault("sync.federal_batch", 50)
	v.SetDefault("sync.provincial_batch", 10)
	v.SetDefault("sync.federal_target", 343)
	v.SetDefault("sync.provincial_target", 124)
	v.SetDefault("sync.quote_workers", 8)
	v.SetDefault("sync.schedule", "0 */6 * * *")

	v.SetDefault("sources.registry_url", "https://prciec-rpccie.parl.gc.ca/EN/PublicRegistries")
	v.SetDefault("sources.federal_roster_url", "https://www.ourcommons.ca/Members/en/search/XML")
	v.SetDefault("sources.provincial_url", "https://www.ola.org/en/members/current")
	v.SetDefault("sources.bills_url", "https://www.parl.ca/legisinfo/en/bills/xml")
	v.SetDefault("sources.quotes_url", "https://query1.finance.yahoo.com/v8/finance/chart")
	v.SetDefault("sources.quote_suffix", ".TO")
	v.SetDefault("sources.committees_url", "https://www.ourcommons.ca/Committees/en")
	v.SetDefault("sources.roster_fallback", "data/rosters")
	v.SetDefault("sources.requests_per_sec", 4.0)
	v.SetDefault("sources.timeout", "8s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.dev", false)
}

// Load reads integritywatch.yaml (optional) from the working directory or
// ~/.integritywatch, then applies INTEGRITYWATCH_* environment overrides,
// e.g. INTEGRITYWATCH_SYNC_TIME_BUDGET=2m.
func Load() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("integritywatch")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.integritywatch")

	v.SetEnvPrefix("INTEGRITYWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) Config {
	return Config{
		DBPath:    v.GetString("db.path"),
		HTTPAddr:  v.GetString("http.addr"),
		LiveAddr:  v.GetString("live.tcp_addr"),
		RedisAddr: v.GetString("redis.addr"),
		Auth: AuthConfig{
			JWTSecret:         v.GetString("auth.jwt_secret"),
			JWTIssuer:         v.GetString("auth.jwt_issuer"),
			JWTDuration:       v.GetDuration("auth.jwt_ttl"),
			AdminPasswordHash: v.GetString("auth.admin_password_hash"),
		},
		Sync: SyncConfig{
			TimeBudget:       v.GetDuration("sync.time_budget"),
			DisclosureSample: v.GetInt("sync.disclosure_sample"),
			FederalBatch:     v.GetInt("sync.federal_batch"),
			ProvincialBatch:  v.GetInt("sync.provincial_batch"),
			FederalTarget:    v.GetInt("sync.federal_target"),
			ProvincialTarget: v.GetInt("sync.provincial_target"),
			QuoteWorkers:     v.GetInt("sync.quote_workers"),
			Schedule:         v.GetString("sync.schedule"),
		},
		Sources: SourcesConfig{
			RegistryURL:      v.GetString("sources.registry_url"),
			FederalRosterURL: v.GetString("sources.federal_roster_url"),
			ProvincialURL:    v.GetString("sources.provincial_url"),
			BillsURL:         v.GetString("sources.bills_url"),
			QuotesURL:        v.GetString("sources.quotes_url"),
			QuoteSuffix:      v.GetString("sources.quote_suffix"),
			CommitteesURL:    v.GetString("sources.committees_url"),
			RosterFallback:   v.GetString("sources.roster_fallback"),
			RequestsPerSec:   v.GetFloat64("sources.requests_per_sec"),
			Timeout:          v.GetDuration("sources.timeout"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
			File:  v.GetString("log.file"),
			Dev:   v.GetBool("log.dev"),
		},
	}
}
