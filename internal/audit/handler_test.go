package audit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"integritywatch/internal/member"
	"integritywatch/pkg/models"
)

func TestMemberRoutes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.members.Now = func() time.Time { return day(2024, 1, 21) }
	id := f.newMember(t)
	_, err := f.members.BackfillSlugs(ctx)
	require.NoError(t, err)

	event := day(2024, 1, 1)
	_, err = f.members.InsertDisclosure(ctx, models.Disclosure{
		MemberID:       id,
		Category:       "Gift",
		Description:    "Gift: hockey tickets",
		DisclosureDate: &event,
	})
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/members")
	member.NewHandler(f.members, nil).RegisterRoutes(g)
	NewHandler(f.members, f.auditor, f.ranker).RegisterRoutes(g)

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	w := get("/members/jane-doe/integrity")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var integ struct {
		IntegrityRank *float64 `json:"integrity_rank"`
		LiveRank      float64  `json:"live_rank"`
		FilingScore   float64  `json:"filing_score"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &integ))
	assert.Nil(t, integ.IntegrityRank)
	assert.Equal(t, 90.0, integ.LiveRank)
	assert.Equal(t, 60.0, integ.FilingScore)

	w = get("/members/jane-doe/conflicts")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"has_conflict":false,"conflicts":[]}`, w.Body.String())

	w = get("/members/jane-doe")
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Member       models.Member       `json:"member"`
		Disclosures  []models.Disclosure `json:"disclosures"`
		RankComputed bool                `json:"rank_computed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "Jane Doe", detail.Member.Name)
	assert.Len(t, detail.Disclosures, 1)
	assert.False(t, detail.RankComputed)

	w = get("/members")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	for _, p := range []string{"/members/nobody", "/members/nobody/conflicts", "/members/nobody/integrity"} {
		assert.Equal(t, http.StatusNotFound, get(p).Code, p)
	}
}
