package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gitgraph/year-in-code/internal/adapters"
	"github.com/gitgraph/year-in-code/internal/analysis"
	"github.com/gitgraph/year-in-code/internal/apperrors"
	"github.com/gitgraph/year-in-code/internal/cache"
	"github.com/gitgraph/year-in-code/internal/config"
	"github.com/gitgraph/year-in-code/internal/frontend"
	"github.com/gitgraph/year-in-code/internal/monitoring"
	"github.com/gitgraph/year-in-code/internal/orchestrator"
	"github.com/gitgraph/year-in-code/internal/ratelimit"
	"github.com/gitgraph/year-in-code/internal/security"
	"github.com/gitgraph/year-in-code/internal/types"
)

// The proxy double-checks the client's slicing before building a prompt; a
// smaller prompt yields a faster response.
const analyzePayloadCap = 30

type server struct {
	cfg      *config.Config
	github   *adapters.GitHubClient
	direct   *analysis.LLMAnalyzer // nil when no credential is configured
	analyzer analysis.Analyzer
	cache    *cache.Cache
	metrics  *monitoring.Metrics
	router   *gin.Engine
}

func newServer(cfg *config.Config) (*server, error) {
	s := &server{
		cfg:     cfg,
		github:  adapters.NewGitHubClient(cfg.GitHubBaseURL, cfg.GitHubToken),
		cache:   cache.New(cfg.CacheTTL),
		metrics: monitoring.NewMetrics(),
	}

	proxyURL := cfg.AnalyzeProxyURL
	if proxyURL == "" {
		proxyURL = "http://127.0.0.1:" + cfg.Port
	}
	s.analyzer = analysis.Select(cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.GeminiModel, proxyURL, cfg.TargetYear)
	if direct, ok := s.analyzer.(*analysis.LLMAnalyzer); ok {
		s.direct = direct
	}

	router, err := s.routes()
	if err != nil {
		return nil, err
	}
	s.router = router
	return s, nil
}

func (s *server) routes() (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(monitoring.Middleware(s.metrics))
	r.Use(security.Headers())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	r.GET("/health", s.handleHealth)

	limiter := ratelimit.NewLimiter(60, 10)
	api := r.Group("/api")
	api.Use(limiter.Middleware())
	api.GET("/github", s.handleGitHubProxy)
	api.POST("/analyze", s.handleAnalyze)
	api.GET("/recap", s.handleRecap)

	dist, err := frontend.DistFS()
	if err != nil {
		return nil, err
	}
	r.NoRoute(frontend.NewSPAHandler(dist))

	return r, nil
}

func (s *server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"metrics":   s.metrics.Snapshot(),
	})
}

// handleGitHubProxy forwards user/repo reads to GitHub with the server-side
// token and caches bodies for a short window. Caching is a performance hint
// only; the Cache-Control header mirrors that for intermediaries.
func (s *server) handleGitHubProxy(c *gin.Context) {
	username := c.Query("username")
	endpoint := c.Query("endpoint")
	if username == "" || endpoint == "" {
		apperrors.Respond(c, apperrors.NewValidation("missing username or endpoint"))
		return
	}

	key := cache.Key("github", endpoint, username)
	if body, ok := s.cache.Get(key); ok {
		s.metrics.CacheHits.Add(1)
		c.Header("X-Cache", "HIT")
		c.Header("Cache-Control", "s-maxage=300, stale-while-revalidate=600")
		c.Data(http.StatusOK, "application/json", body)
		return
	}
	s.metrics.CacheMisses.Add(1)

	var payload any
	var err error
	switch endpoint {
	case "user":
		payload, err = s.github.FetchUser(c.Request.Context(), username)
	case "repos":
		payload, err = s.github.FetchRepositories(c.Request.Context(), username)
	default:
		apperrors.Respond(c, apperrors.NewValidation("invalid endpoint"))
		return
	}
	s.metrics.GitHubCalls.Add(1)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	s.cache.Set(key, body)
	c.Header("Cache-Control", "s-maxage=300, stale-while-revalidate=600")
	c.Data(http.StatusOK, "application/json", body)
}

// handleAnalyze is the same-origin analysis endpoint: it performs the LLM
// call server-side so the credential never reaches the browser.
func (s *server) handleAnalyze(c *gin.Context) {
	if s.direct == nil {
		apperrors.Respond(c, errors.New("analysis credential not configured on server"))
		return
	}

	var req types.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.NewValidation("missing required data"))
		return
	}
	if len(req.RepoSummary) == 0 {
		apperrors.Respond(c, apperrors.NewValidation("missing required data"))
		return
	}
	if len(req.RepoSummary) > analyzePayloadCap {
		req.RepoSummary = req.RepoSummary[:analyzePayloadCap]
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.AnalyzeTimeout)
	defer cancel()

	s.metrics.AnalysisCalls.Add(1)
	profile, err := s.direct.Analyze(ctx, req.Username, req.RepoSummary)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// handleRecap runs the whole pipeline server-side and returns the combined
// snapshot. Each request gets its own orchestrator, so runs never share
// mutable state.
func (s *server) handleRecap(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		apperrors.Respond(c, apperrors.NewValidation("missing username"))
		return
	}

	year := s.cfg.TargetYear
	if y := c.Query("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			apperrors.Respond(c, apperrors.NewValidation("year must be a number"))
			return
		}
		year = parsed
	}

	orc := orchestrator.New(s.github, s.analyzer, year, s.cfg.AnalyzeTimeout)
	res, err := orc.Run(c.Request.Context(), username)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, types.RecapResponse{
		User:    res.User,
		Profile: res.Profile,
	})
}
