package sector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"integritywatch/pkg/database/dbtest"
)

func TestRepoMappingsFeedClassifier(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(dbtest.Open(t))

	require.NoError(t, repo.Seed(ctx, All))
	require.NoError(t, repo.Seed(ctx, All), "seed is idempotent")

	ids, err := repo.IDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, len(All))

	require.NoError(t, repo.UpsertMapping(ctx, "Acme Widgets", Retail))
	require.NoError(t, repo.UpsertMapping(ctx, "acme widgets", Technology))
	require.NoError(t, repo.UpsertMapping(ctx, "northern lights cannabis", "Cannabis"))

	mappings, err := repo.ListMappings(ctx)
	require.NoError(t, err)
	require.Len(t, mappings, 2)
	assert.Equal(t, "acme widgets", mappings[0].Keyword)
	assert.Equal(t, Technology, mappings[0].Sector)
	assert.Equal(t, "Cannabis", mappings[1].Sector)

	c := NewClassifier(repo)
	require.NoError(t, c.Refresh(ctx))
	got, ok := c.Resolve("Northern Lights Cannabis Corp", "")
	require.True(t, ok)
	assert.Equal(t, "Cannabis", got)
}

func TestRepoUpsertMappingValidates(t *testing.T) {
	repo := NewRepo(dbtest.Open(t))
	assert.Error(t, repo.UpsertMapping(context.Background(), " ", Retail))
}
