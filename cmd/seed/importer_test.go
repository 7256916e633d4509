package main

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"integritywatch/internal/member"
	"integritywatch/internal/sector"
	"integritywatch/pkg/database/dbtest"
	"integritywatch/pkg/models"
)

func TestImportTrades(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	repo := member.NewRepo(db)

	_, err := repo.UpsertRoster(ctx, models.Federal, []member.RosterEntry{{ExternalID: "hoc-1", Name: "Jane Doe"}})
	require.NoError(t, err)
	_, err = repo.BackfillSlugs(ctx)
	require.NoError(t, err)

	csvIn := "Member_Slug,Symbol,Direction,Trade_Date\n" +
		"jane-doe,su,buy,2024-01-05\n" +
		"jane-doe,SU,BUY,2024-01-05\n" +
		"nobody,RY,SELL,2024-01-06\n" +
		",TD,BUY,2024-01-06\n"

	res, err := importTrades(ctx, repo, strings.NewReader(csvIn))
	require.NoError(t, err)
	assert.Equal(t, tradeResult{inserted: 1, duplicates: 1, unknownMembers: 1}, res)

	_, err = importTrades(ctx, repo, strings.NewReader("member_slug,symbol,direction,trade_date\njane-doe,SU,BUY,Jan 5\n"))
	assert.Error(t, err)
}

func TestImportMappings(t *testing.T) {
	ctx := context.Background()
	repo := sector.NewRepo(dbtest.Open(t))

	in := "keyword,sector\n" +
		"Acme Pipelines,Oil/Gas/Mining\n" +
		"cameco,Utilities/Renewables\n" +
		",Finance/Banking\n"
	n, err := importMappings(ctx, repo, strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ms, err := repo.ListMappings(ctx)
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, "acme pipelines", ms[0].Keyword)
	assert.Equal(t, "Oil/Gas/Mining", ms[0].Sector)
}
