package audit

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"integritywatch/pkg/models"
)

// MemberFinder is satisfied by *member.Repo.
type MemberFinder interface {
	GetBySlug(ctx context.Context, slug string) (*models.Member, error)
}

type Handler struct {
	Members MemberFinder
	Auditor *Auditor
	Ranker  *Ranker
}

func NewHandler(members MemberFinder, auditor *Auditor, ranker *Ranker) *Handler {
	return &Handler{Members: members, Auditor: auditor, Ranker: ranker}
}

// RegisterRoutes mounts under the members group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:slug/conflicts", h.conflicts) // GET /members/:slug/conflicts
	rg.GET("/:slug/integrity", h.integrity) // GET /members/:slug/integrity
}

func (h *Handler) member(c *gin.Context) *models.Member {
	m, err := h.Members.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return nil
	}
	if m == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return nil
	}
	return m
}

func (h *Handler) conflicts(c *gin.Context) {
	m := h.member(c)
	if m == nil {
		return
	}
	res, err := h.Auditor.CheckConflict(c.Request.Context(), m.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "audit failed"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) integrity(c *gin.Context) {
	m := h.member(c)
	if m == nil {
		return
	}
	ctx := c.Request.Context()

	live, err := h.Ranker.CalculateIntegrityRank(ctx, m.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rank failed"})
		return
	}
	fallback, err := h.Ranker.FallbackScore(ctx, m.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rank failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"slug":           m.Slug,
		"integrity_rank": m.IntegrityRank, // null until the audit pass has run
		"live_rank":      live,
		"filing_score":   fallback,
	})
}
