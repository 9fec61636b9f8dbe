package pokemon

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pokehub/internal/scoring"
	"pokehub/pkg/apperr"
	"pokehub/pkg/models"
)

// Remote fetches and normalizes a single named entity live.
type Remote interface {
	Fetch(ctx context.Context, name string) (models.Pokemon, error)
}

// BatchFetcher runs an orchestration pass.
type BatchFetcher interface {
	FetchAll(ctx context.Context, count int) []models.Pokemon
}

type Handler struct {
	Repo         *Repo
	Remote       Remote
	Fetcher      BatchFetcher
	Scorer       *scoring.Engine
	DefaultLimit int
	Log          logrus.FieldLogger
}

func NewHandler(repo *Repo, remote Remote, fetcher BatchFetcher, scorer *scoring.Engine, defaultLimit int, log logrus.FieldLogger) *Handler {
	if defaultLimit <= 0 {
		defaultLimit = 25
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		Repo:         repo,
		Remote:       remote,
		Fetcher:      fetcher,
		Scorer:       scorer,
		DefaultLimit: defaultLimit,
		Log:          log.WithField("component", "pokemon-handler"),
	}
}

// RegisterRoutes mounts every route on rg; rg is expected to carry the
// auth middleware already.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/api/pokemon", h.fetchLive)  // GET /api/pokemon?name=
	rg.POST("/api/pokemon", h.fetchMany) // POST /api/pokemon?limit=

	rg.GET("/pokemon", h.list) // GET /pokemon, GET /pokemon?name=
	rg.POST("/pokemon", h.create)
	rg.GET("/pokemon/:id", h.getByID)
	rg.PATCH("/pokemon/:id", h.update)
	rg.DELETE("/pokemon/:id", h.delete)

	rg.GET("/pokemon/score/:id", h.scoreStored)
	rg.POST("/pokemon/score", h.scoreAdHoc)
}

// fail writes the JSON error body for err. Server-side failures are logged
// and reported with a generic message.
func (h *Handler) fail(c *gin.Context, err error, msg string) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.Log.WithError(err).WithField("path", c.FullPath()).Error(msg)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// formatted is the live-fetch view of a record: no local id or timestamps.
type formatted struct {
	Name      string           `json:"name"`
	PokemonID int              `json:"pokemon_id"`
	Types     []string         `json:"types"`
	Abilities []string         `json:"abilities"`
	BaseStats models.BaseStats `json:"base_stats"`
	Height    int              `json:"height"`
	Weight    int              `json:"weight"`
	SpriteURL string           `json:"sprite_url"`
}

func (h *Handler) fetchLive(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name query parameter required"})
		return
	}

	p, err := h.Remote.Fetch(c.Request.Context(), name)
	if err != nil {
		h.fail(c, err, "an error occurred while fetching pokemon data")
		return
	}

	c.JSON(http.StatusOK, formatted{
		Name:      p.Name,
		PokemonID: p.PokemonID,
		Types:     p.Types,
		Abilities: p.Abilities,
		BaseStats: p.BaseStats,
		Height:    p.Height,
		Weight:    p.Weight,
		SpriteURL: p.SpriteURL,
	})
}

func (h *Handler) fetchMany(c *gin.Context) {
	limit := h.DefaultLimit
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "the 'limit' parameter must be a non-negative integer"})
			return
		}
		limit = n
	}

	records := h.Fetcher.FetchAll(c.Request.Context(), limit)
	if len(records) == 0 {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch pokemon from the source"})
		return
	}

	res := h.Repo.UpsertMany(c.Request.Context(), records)
	body := gin.H{
		"message":         "pokemon saved",
		"created":         res.Created,
		"updated":         res.Updated,
		"total_processed": res.Processed(),
	}
	if len(res.Errors) > 0 {
		body["errors"] = res.Errors
	}
	c.JSON(http.StatusCreated, body)
}

func (h *Handler) list(c *gin.Context) {
	if name := strings.TrimSpace(c.Query("name")); name != "" {
		p, err := h.Repo.GetByName(c.Request.Context(), name)
		if err != nil {
			h.fail(c, err, "get failed")
			return
		}
		c.JSON(http.StatusOK, p)
		return
	}

	q := ListQuery{
		Q:      c.Query("q"),
		Type:   c.Query("type"),
		Limit:  parseInt(c.Query("limit"), 20),
		Offset: parseInt(c.Query("offset"), 0),
	}

	total, err := h.Repo.Count(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err, "count failed")
		return
	}
	items, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err, "list failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
		"items":  items,
	})
}

func (h *Handler) getByID(c *gin.Context) {
	p, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "get failed")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) create(c *gin.Context) {
	var req models.Pokemon
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}

	p, err := h.Repo.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "create failed")
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) update(c *gin.Context) {
	var patch Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	p, err := h.Repo.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.fail(c, err, "update failed")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.Repo.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err, "delete failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "pokemon with id '" + id + "' deleted"})
}

func (h *Handler) scoreStored(c *gin.Context) {
	p, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "get failed")
		return
	}

	in, err := scoring.FromPokemon(*p)
	if err != nil {
		h.fail(c, err, "an error occurred while calculating the score")
		return
	}
	b, err := h.Scorer.Breakdown(in)
	if err != nil {
		h.fail(c, err, "an error occurred while calculating the score")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":      p.Name,
		"score":     b.Total,
		"breakdown": b,
	})
}

func (h *Handler) scoreAdHoc(c *gin.Context) {
	var in scoring.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		// a body of the wrong shape is the same failure as bad stats
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "base_stats must be a list of integers"})
		return
	}

	b, err := h.Scorer.Breakdown(in)
	if err != nil {
		h.fail(c, err, "an error occurred while calculating the score")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"score":     b.Total,
		"breakdown": b,
	})
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
