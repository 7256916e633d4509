package app

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"integritywatch/internal/quotes"
	"integritywatch/internal/scraper"
	"integritywatch/pkg/utils"
)

func TestQuoteCacheSelection(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()

	c, closeFn := QuoteCache(ctx, "", log)
	assert.IsType(t, &quotes.MemoryCache{}, c)
	assert.NoError(t, closeFn())

	// nothing listens on this port
	c, closeFn = QuoteCache(ctx, "127.0.0.1:1", log)
	assert.IsType(t, &quotes.MemoryCache{}, c)
	assert.NoError(t, closeFn())

	mr := miniredis.RunT(t)
	c, closeFn = QuoteCache(ctx, mr.Addr(), log)
	defer closeFn()
	require.IsType(t, &quotes.RedisCache{}, c)
	require.NoError(t, c.Save(ctx, &scraper.Quote{Symbol: "su", Price: 1, At: time.Now()}))
	q, err := c.GetLatest(ctx, "SU")
	require.NoError(t, err)
	assert.NotNil(t, q)
}

func TestOpenDBAndOrchestrator(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/iw.db"

	db, err := OpenDB(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	cfg := utils.Config{Sync: utils.SyncConfig{TimeBudget: time.Second}}
	o, closeFn := NewOrchestrator(ctx, db, cfg, zap.NewNop())
	defer closeFn()

	assert.NotNil(t, o.Sources.Disclosures)
	assert.NotNil(t, o.Sources.Federal)
	assert.NotNil(t, o.Sources.Provincial)
	assert.NotNil(t, o.Sources.Committees)
	assert.IsType(t, &quotes.MemoryCache{}, o.QuoteCache)

	last, err := o.LastSuccessfulSync(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)
}
