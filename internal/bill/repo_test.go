package bill

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"integritywatch/pkg/database/dbtest"
)

func TestIsKeyVote(t *testing.T) {
	assert.True(t, IsKeyVote("C-11"))
	assert.True(t, IsKeyVote(" c-69 "))
	assert.False(t, IsKeyVote("C-12"))
	assert.False(t, IsKeyVote(""))
}

func TestUpsertByNumber(t *testing.T) {
	ctx := context.Background()
	repo := NewRepo(dbtest.Open(t))

	n, err := repo.Upsert(ctx, []Record{
		{Number: "C-11", Status: "Royal assent", Title: "An Act to amend the Broadcasting Act"},
		{Number: "c-234", Status: "Second reading", Title: "An Act to amend the Greenhouse Gas Pollution Pricing Act"},
		{Number: " ", Status: "ignored"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// status changes, an empty title keeps the stored one
	_, err = repo.Upsert(ctx, []Record{{Number: "C-234", Status: "Senate"}})
	require.NoError(t, err)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	b, err := repo.GetByNumber(ctx, "C-234")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, "Senate", b.Status)
	assert.Equal(t, "An Act to amend the Greenhouse Gas Pollution Pricing Act", b.Title)
	assert.False(t, b.KeyVote)

	b, err = repo.GetByNumber(ctx, "C-11")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.True(t, b.KeyVote)

	missing, err := repo.GetByNumber(ctx, "S-1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	tracked, err := repo.Tracked(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, tracked, 2)
}

func TestTrackedPropagatesQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, number, status").WithArgs(100).WillReturnError(errors.New("disk I/O error"))

	repo := &Repo{DB: db, Now: time.Now}
	_, err = repo.Tracked(context.Background(), 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bills query")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertRollsBackOnExecError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectPrepare("INSERT INTO bills").
		ExpectExec().WillReturnError(errors.New("constraint failed"))
	mock.ExpectRollback()

	repo := &Repo{DB: db, Now: time.Now}
	_, err = repo.Upsert(context.Background(), []Record{{Number: "C-27", Status: "Committee"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "C-27")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlerNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewRepo(dbtest.Open(t))).RegisterRoutes(r.Group("/bills"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bills/C-99", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/bills", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":null}`, w.Body.String())
}
