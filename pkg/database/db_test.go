package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"integritywatch/pkg/database"
	"integritywatch/pkg/database/dbtest"
)

func TestMigrateIsRepeatable(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, database.Migrate(context.Background(), db))
}

func TestIsUniqueViolation(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	now := time.Now().UTC()

	insert := `INSERT INTO bills (number, status, updated_at) VALUES (?, ?, ?)`
	_, err := db.ExecContext(ctx, insert, "C-11", "Royal assent", now)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, insert, "C-11", "Royal assent", now)
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))

	assert.False(t, database.IsUniqueViolation(errors.New("boom")))
	assert.False(t, database.IsUniqueViolation(nil))
}

func TestConflictColumnsMustAgree(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	now := time.Now().UTC()

	res, err := db.ExecContext(ctx, `
		INSERT INTO members (name, jurisdiction, created_at, updated_at)
		VALUES ('Jane Doe', 'FEDERAL', ?, ?)`, now, now)
	require.NoError(t, err)
	memberID, err := res.LastInsertId()
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `
		INSERT INTO disclosures (member_id, category, description, created_at, conflict_flag)
		VALUES (?, 'Assets', 'Suncor shares', ?, 1)`, memberID, now)
	assert.Error(t, err, "flag without reason must be rejected")
}
