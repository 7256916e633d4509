package member

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CommitteeLister is satisfied by *committee.Repo.
type CommitteeLister interface {
	ForMember(ctx context.Context, memberID int64) ([]string, error)
}

type Handler struct {
	Repo       *Repo
	Committees CommitteeLister
}

func NewHandler(repo *Repo, committees CommitteeLister) *Handler {
	return &Handler{Repo: repo, Committees: committees}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)         // GET /members
	rg.GET("/:slug", h.getOne) // GET /members/:slug
}

func (h *Handler) list(c *gin.Context) {
	q := ListQuery{
		Q:            c.Query("q"),
		Jurisdiction: c.Query("jurisdiction"),
		Party:        c.Query("party"),
		Limit:        parseInt(c.Query("limit"), 20),
		Offset:       parseInt(c.Query("offset"), 0),
	}

	total, err := h.Repo.Count(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}

	items, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
		"items":  items,
	})
}

func (h *Handler) getOne(c *gin.Context) {
	ctx := c.Request.Context()

	m, err := h.Repo.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if m == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	disclosures, err := h.Repo.RecentDisclosures(ctx, m.ID, 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "disclosures failed"})
		return
	}
	trades, err := h.Repo.RecentTrades(ctx, m.ID, 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "trades failed"})
		return
	}

	var committees []string
	if h.Committees != nil {
		committees, err = h.Committees.ForMember(ctx, m.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "committees failed"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"member":      m,
		"disclosures": disclosures,
		"trades":      trades,
		"committees":  committees,
		// nil rank means the audit pass has not scored this member yet
		"rank_computed": m.IntegrityRank != nil,
	})
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
