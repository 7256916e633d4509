package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"integritywatch/internal/audit"
	"integritywatch/pkg/models"
)

type fakeMembers []models.Member

func (f fakeMembers) All(context.Context) ([]models.Member, error) { return f, nil }

type fakeAuditor map[int64]int

func (f fakeAuditor) CheckConflict(_ context.Context, id int64) (audit.Result, error) {
	if id < 0 {
		return audit.Result{}, errors.New("boom")
	}
	res := audit.Result{Conflicts: make([]audit.Flag, f[id])}
	res.HasConflict = f[id] > 0
	return res, nil
}

func TestWriteReport(t *testing.T) {
	rank := 75.0
	members := fakeMembers{
		{ID: 1, Slug: "jane-doe", Name: "Jane Doe", Jurisdiction: models.Federal, Party: "Liberal", Riding: "Carleton", IntegrityRank: &rank},
		{ID: 2, Slug: "john-smith", Name: "John Smith, Jr.", Jurisdiction: models.Provincial},
	}

	var buf bytes.Buffer
	n, err := writeReport(context.Background(), &buf, members, fakeAuditor{1: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t,
		"slug,name,jurisdiction,party,riding,integrity_rank,conflicts\n"+
			"jane-doe,Jane Doe,"+string(models.Federal)+",Liberal,Carleton,75.0,2\n"+
			"john-smith,\"John Smith, Jr.\","+string(models.Provincial)+",,,,0\n",
		buf.String())
}

func TestWriteReportPropagatesAuditError(t *testing.T) {
	var buf bytes.Buffer
	_, err := writeReport(context.Background(), &buf, fakeMembers{{ID: -1}}, fakeAuditor{})
	assert.Error(t, err)
}
