package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/portfolio-dashboard/internal/cache"
	"github.com/example/portfolio-dashboard/internal/models"
	"github.com/example/portfolio-dashboard/internal/portfolio"
	"github.com/example/portfolio-dashboard/internal/quote"
	"github.com/example/portfolio-dashboard/internal/refresh"
)

type Server struct {
	R          *gin.Engine
	Portfolios portfolio.Store
	Quotes     quote.Source
	History    quote.HistorySource
	Sched      *refresh.Scheduler
	Cache      *cache.Cache
	Logger     *zap.Logger
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type historyResponse struct {
	Symbol string              `json:"symbol"`
	Points []models.PricePoint `json:"points"`
}

// NewServer wires the router, store, providers, scheduler, cache, and
// middleware.
func NewServer(store portfolio.Store, quotes quote.Source, history quote.HistorySource,
	sched *refresh.Scheduler, respCache *cache.Cache, logger *zap.Logger, corsOrigin string) *Server {
	g := gin.New()

	// Request logging
	g.Use(func(cn *gin.Context) {
		start := time.Now()
		cn.Next()
		logger.Info("http_request",
			zap.String("method", cn.Request.Method),
			zap.String("path", cn.Request.URL.Path),
			zap.Int("status", cn.Writer.Status()),
			zap.String("ip", cn.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		)
	})

	g.Use(gin.Recovery())

	// CORS
	g.Use(func(cn *gin.Context) {
		origin := cn.GetHeader("Origin")
		cn.Writer.Header().Set("Vary", "Origin")
		cn.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		cn.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		cn.Writer.Header().Set("Access-Control-Max-Age", "86400")
		if corsOrigin == "*" {
			cn.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else if origin != "" && origin == corsOrigin {
			cn.Writer.Header().Set("Access-Control-Allow-Origin", corsOrigin)
		}
		if cn.Request.Method == http.MethodOptions {
			cn.AbortWithStatus(http.StatusNoContent)
			return
		}
		cn.Next()
	})

	s := &Server{
		R:          g,
		Portfolios: store,
		Quotes:     quotes,
		History:    history,
		Sched:      sched,
		Cache:      respCache,
		Logger:     logger,
	}

	g.GET("/health", func(cn *gin.Context) { cn.JSON(http.StatusOK, gin.H{"ok": true}) })
	g.GET("/api/portfolios", s.getPortfolios)
	g.GET("/api/portfolio/:userid", s.getPortfolio)
	g.GET("/api/transactions/:userid", s.getTransactions)
	g.GET("/api/quote/:symbol", s.getQuote)
	g.GET("/api/history/:symbol", s.getHistory)
	g.POST("/api/session/:userid", s.selectUser)
	g.DELETE("/api/session", s.endSession)
	g.GET("/api/snapshot", s.getSnapshot)

	return s
}

// --- Helpers ---

func (s *Server) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, apiError{Code: "bad_request", Message: msg})
}

func (s *Server) internalError(c *gin.Context, where string, err error) {
	s.Logger.Error("internal_error", zap.String("where", where), zap.Error(err))
	c.JSON(http.StatusInternalServerError, apiError{Code: "internal_server_error", Message: "internal server error"})
}

func parseLimit(v string, def, min, max int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min || n > max {
		return def
	}
	return n
}

func parseSymbol(raw string) (string, bool) {
	sym := strings.ToUpper(strings.TrimSpace(raw))
	if sym == "" || len(sym) > 12 {
		return "", false
	}
	for _, r := range sym {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '.' && r != '-' {
			return "", false
		}
	}
	return sym, true
}

// --- Handlers ---

func (s *Server) getPortfolios(c *gin.Context) {
	rows, err := s.Portfolios.ListPortfolios(c.Request.Context())
	if err != nil {
		s.internalError(c, "ListPortfolios", err)
		return
	}
	if rows == nil {
		rows = []models.Portfolio{}
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) getPortfolio(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userid"))
	if userID == "" {
		s.badRequest(c, "missing userid")
		return
	}

	p, err := s.Portfolios.GetPortfolio(c.Request.Context(), userID)
	if err != nil {
		if portfolio.IsNotFound(err) {
			c.JSON(http.StatusNotFound, apiError{Code: "not_found", Message: "user not found"})
			return
		}
		s.internalError(c, "GetPortfolio", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) getTransactions(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userid"))
	if userID == "" {
		s.badRequest(c, "missing userid")
		return
	}
	limit := parseLimit(c.Query("limit"), 100, 1, 1000)

	key := cache.TransactionsKey(userID, limit)
	if v, ok := s.Cache.Get(key); ok {
		if rows, ok2 := v.([]models.Transaction); ok2 {
			c.JSON(http.StatusOK, rows)
			return
		}
	}

	rows, err := s.Portfolios.GetTransactions(c.Request.Context(), userID, limit)
	if err != nil {
		s.internalError(c, "GetTransactions", err)
		return
	}
	if rows == nil {
		rows = []models.Transaction{}
	}

	s.Cache.Set(key, rows)
	c.JSON(http.StatusOK, rows)
}

func (s *Server) getQuote(c *gin.Context) {
	sym, ok := parseSymbol(c.Param("symbol"))
	if !ok {
		s.badRequest(c, "invalid symbol")
		return
	}

	// Quote fetches are deliberately uncached: the refresh cycle and this
	// proxy must see the same freshness.
	q, ok := s.Quotes.Quote(c.Request.Context(), sym)
	if !ok {
		c.JSON(http.StatusBadGateway, apiError{Code: "quote_unavailable", Message: "no quote for " + sym})
		return
	}
	c.JSON(http.StatusOK, q)
}

func (s *Server) getHistory(c *gin.Context) {
	sym, ok := parseSymbol(c.Param("symbol"))
	if !ok {
		s.badRequest(c, "invalid symbol")
		return
	}

	key := cache.HistoryKey(sym)
	if v, ok := s.Cache.Get(key); ok {
		if points, ok2 := v.([]models.PricePoint); ok2 {
			c.JSON(http.StatusOK, historyResponse{Symbol: sym, Points: points})
			return
		}
	}

	points, err := s.History.History(c.Request.Context(), sym)
	if err != nil {
		s.Logger.Warn("history fetch failed", zap.String("symbol", sym), zap.Error(err))
		c.JSON(http.StatusBadGateway, apiError{Code: "upstream_error", Message: "history unavailable for " + sym})
		return
	}
	if points == nil {
		points = []models.PricePoint{}
	}

	// An empty series usually means the provider rate-limited or errored;
	// caching it would pin an empty chart for the whole TTL.
	if len(points) > 0 {
		s.Cache.Set(key, points)
	}
	c.JSON(http.StatusOK, historyResponse{Symbol: sym, Points: points})
}

func (s *Server) selectUser(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userid"))
	if userID == "" {
		s.badRequest(c, "missing userid")
		return
	}
	s.Sched.Select(userID)
	c.JSON(http.StatusAccepted, gin.H{"userid": userID, "state": "polling"})
}

func (s *Server) endSession(c *gin.Context) {
	s.Sched.Stop()
	c.Status(http.StatusNoContent)
}

func (s *Server) getSnapshot(c *gin.Context) {
	snap, ok := s.Sched.Snapshot()
	if !ok {
		// Idle, or the first cycle has not published yet.
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, snap)
}
