package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"contentpipe/internal/config"
	"contentpipe/internal/domain"
	"contentpipe/internal/ports"
	"contentpipe/internal/registry"
	"contentpipe/internal/retrieval"
)

// collectClock is the slice of the scheduler the status endpoint reads.
type collectClock interface {
	NextCollectAt() time.Time
}

// Server exposes the read-only query contract consumers use: weighted
// content retrieval, the source list, and store counts. It never writes.
type Server struct {
	registry  *registry.Registry
	retriever *retrieval.Retriever
	store     ports.ContentStore
	clock     collectClock
	defaults  config.RetrievalConfig
}

// NewServer wires the query surface. clock may be nil when no scheduler
// runs; status then omits the next collection time.
func NewServer(reg *registry.Registry, retriever *retrieval.Retriever, store ports.ContentStore, clock collectClock, defaults config.RetrievalConfig) *Server {
	return &Server{registry: reg, retriever: retriever, store: store, clock: clock, defaults: defaults}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router(mode string) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/contents", s.GetContents)
		api.GET("/sources", s.GetSources)
		api.GET("/status", s.GetStatus)
	}
	return r
}

// GetContents serves the weighted blend. Query params:
//
//	limit        — max items, defaults from config
//	distribution — "primary:0.7,rss_feed:0.3", defaults from config
func (s *Server) GetContents(c *gin.Context) {
	limit := s.defaults.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	distribution := s.defaults.DefaultDistribution
	if raw := c.Query("distribution"); raw != "" {
		parsed, err := parseDistribution(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		distribution = parsed
	}

	items, err := s.retriever.GetWeighted(c.Request.Context(), limit, distribution)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items, "count": len(items)})
}

// GetSources lists active sources with their policy fields.
func (s *Server) GetSources(c *gin.Context) {
	type sourceView struct {
		ID              string  `json:"source_id"`
		Name            string  `json:"name"`
		Type            string  `json:"source_type"`
		Priority        string  `json:"priority"`
		BaseWeight      float64 `json:"base_weight"`
		RateLimitPerDay int     `json:"rate_limit_per_day"`
		TotalFetched    int     `json:"total_items_fetched"`
	}

	sources := s.registry.ListActive("")
	views := make([]sourceView, 0, len(sources))
	for _, src := range sources {
		views = append(views, sourceView{
			ID:              src.ID,
			Name:            src.Name,
			Type:            string(src.Type),
			Priority:        string(src.Priority),
			BaseWeight:      src.BaseWeight,
			RateLimitPerDay: src.RateLimitPerDay,
			TotalFetched:    src.TotalItemsFetched,
		})
	}

	c.JSON(http.StatusOK, gin.H{"data": views})
}

// GetStatus reports stored item counts per source type and, when a
// scheduler is attached, the next scheduled collection run.
func (s *Server) GetStatus(c *gin.Context) {
	counts, err := s.store.CountByType(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	body := gin.H{"counts": counts}
	if s.clock != nil {
		if next := s.clock.NextCollectAt(); !next.IsZero() {
			body["next_collect_at"] = next.UTC().Format(time.RFC3339)
		}
	}
	c.JSON(http.StatusOK, body)
}

func parseDistribution(raw string) (map[domain.SourceType]float64, error) {
	distribution := map[domain.SourceType]float64{}
	for _, part := range strings.Split(raw, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(kv) != 2 {
			return nil, errMalformedDistribution
		}
		proportion, err := strconv.ParseFloat(kv[1], 64)
		if err != nil {
			return nil, errMalformedDistribution
		}
		distribution[domain.SourceType(kv[0])] = proportion
	}
	return distribution, nil
}

var errMalformedDistribution = errors.New(`distribution must look like "primary:0.7,rss_feed:0.3"`)
