// Package ops serves the daemon's health, report, and debug endpoints.
package ops

import (
	"context"
	"errors"
	"expvar"
	"net"
	"net/http"
	"net/http/pprof"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/betbot/govenue/pkg/report"
)

var log = logrus.WithField("component", "ops")

const (
	defaultLimit = 50
	maxLimit     = 500
)

// ReportSource is the journal surface the API reads from.
type ReportSource interface {
	RecentOrderStatus(ctx context.Context, limit int) ([]report.OrderStatusReport, error)
	RecentFills(ctx context.Context, limit int) ([]report.FillReport, error)
	CountByStatus(ctx context.Context) (map[report.OrderStatus]int64, error)
}

// RegistrySummary reports cache occupancy. Cache keys embed credentials
// and are never exposed.
type RegistrySummary struct {
	ConnectionClients   int            `json:"connection_clients"`
	InstrumentProviders map[string]int `json:"instrument_providers"`
}

// Config wires the server's collaborators. A nil Journal serves 503 on
// the report routes; a nil Registries serves an empty summary.
type Config struct {
	Addr       string
	Journal    ReportSource
	Registries func() RegistrySummary
}

type Server struct {
	cfg  Config
	http *http.Server
}

func New(cfg Config) *Server {
	return &Server{cfg: cfg}
}

// Router builds the gin handler.
func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	api := r.Group("/api")
	api.GET("/reports/orders", s.handleRecentOrders)
	api.GET("/reports/fills", s.handleRecentFills)
	api.GET("/reports/stats", s.handleReportStats)
	api.GET("/registry", s.handleRegistry)

	r.GET("/debug/vars", gin.WrapH(expvar.Handler()))
	debug := r.Group("/debug/pprof")
	debug.GET("/", gin.WrapF(pprof.Index))
	debug.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	debug.GET("/profile", gin.WrapF(pprof.Profile))
	debug.GET("/symbol", gin.WrapF(pprof.Symbol))
	debug.GET("/trace", gin.WrapF(pprof.Trace))

	return r
}

// StartAsync binds the listener, serves in the background, and shuts the
// server down when ctx is canceled. The bind error is returned
// synchronously so a bad address fails startup.
func (s *Server) StartAsync(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.http = &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Router(),
	}

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("ops server stopped")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.http.Shutdown(shutdownCtx)
	}()

	log.WithField("addr", s.cfg.Addr).Info("ops server listening")
	return nil
}

func limitFrom(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func (s *Server) handleRecentOrders(c *gin.Context) {
	if s.cfg.Journal == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "journal disabled"})
		return
	}
	reports, err := s.cfg.Journal.RecentOrderStatus(c.Request.Context(), limitFrom(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

func (s *Server) handleRecentFills(c *gin.Context) {
	if s.cfg.Journal == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "journal disabled"})
		return
	}
	fills, err := s.cfg.Journal.RecentFills(c.Request.Context(), limitFrom(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"fills": fills})
}

func (s *Server) handleReportStats(c *gin.Context) {
	if s.cfg.Journal == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "journal disabled"})
		return
	}
	counts, err := s.cfg.Journal.CountByStatus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"by_status": counts})
}

func (s *Server) handleRegistry(c *gin.Context) {
	if s.cfg.Registries == nil {
		c.JSON(http.StatusOK, RegistrySummary{InstrumentProviders: map[string]int{}})
		return
	}
	c.JSON(http.StatusOK, s.cfg.Registries())
}
