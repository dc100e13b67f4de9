// Package admin exposes the mixer's control surface over HTTP: layout
// editing, statistics and Prometheus metrics.
package admin

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Raikerian/go-media-mixer/internal/mixer"
	"github.com/Raikerian/go-media-mixer/internal/sink"
)

const shutdownTimeout = 5 * time.Second

// Server wraps the HTTP router and its dependencies.
type Server struct {
	logger   *zap.Logger
	mixer    *mixer.Mixer
	output   *sink.Counter
	gatherer prometheus.Gatherer
	router   *gin.Engine
	srv      *http.Server
}

// New creates a server. output may be nil, in which case /stats omits the
// output summary.
func New(logger *zap.Logger, m *mixer.Mixer, output *sink.Counter, gatherer prometheus.Gatherer) *Server {
	s := &Server{
		logger:   logger,
		mixer:    m,
		output:   output,
		gatherer: gatherer,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	router := gin.New()
	router.Use(gin.Recovery(), s.logRequests)

	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")
	{
		api.GET("/stats", s.handleStats)
		api.GET("/regions", s.handleListRegions)
		api.PUT("/regions/:sourceID", s.handleSetRegion)
		api.DELETE("/regions/:sourceID", s.handleDeleteRegion)
		api.POST("/regions/clear", s.handleClearRegions)
		api.POST("/regions/apply", s.handleApplyRegions)
		api.DELETE("/sources/:sourceID", s.handleRemoveSource)
	}

	s.router = router
}

// Handler returns the router for embedding or testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on addr and serves in the background.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.srv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("Admin server listening", zap.String("addr", ln.Addr().String()))

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Admin server failed", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Debug("HTTP request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("latency", time.Since(start)))
}

// Handler implementations

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"state":  s.mixer.State().String(),
	})
}

func (s *Server) handleStats(c *gin.Context) {
	resp := gin.H{"mixer": s.mixer.Stats()}
	if s.output != nil {
		resp["output"] = s.output.Summary()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListRegions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"layout_state": s.mixer.LayoutState().String(),
		"active":       s.mixer.ActiveRegions(),
		"pending":      s.mixer.PendingRegions(),
	})
}

func (s *Server) handleSetRegion(c *gin.Context) {
	var r mixer.Region
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := mixer.SourceID(c.Param("sourceID"))
	if err := s.mixer.SetRegion(id, &r); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"source_id":    id,
		"layout_state": s.mixer.LayoutState().String(),
	})
}

func (s *Server) handleDeleteRegion(c *gin.Context) {
	id := mixer.SourceID(c.Param("sourceID"))
	if err := s.mixer.SetRegion(id, nil); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"source_id":    id,
		"layout_state": s.mixer.LayoutState().String(),
	})
}

func (s *Server) handleClearRegions(c *gin.Context) {
	s.mixer.ClearRegions()
	c.JSON(http.StatusOK, gin.H{"layout_state": s.mixer.LayoutState().String()})
}

func (s *Server) handleApplyRegions(c *gin.Context) {
	if err := s.mixer.ApplyRegions(); err != nil {
		s.writeError(c, err)
		return
	}
	s.logger.Info("Layout applied via admin API", zap.Int("regions", len(s.mixer.ActiveRegions())))
	c.JSON(http.StatusOK, gin.H{"active": s.mixer.ActiveRegions()})
}

func (s *Server) handleRemoveSource(c *gin.Context) {
	id := mixer.SourceID(c.Param("sourceID"))
	if !s.mixer.RemoveSource(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "source not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"source_id": id, "removed": true})
}

func (s *Server) writeError(c *gin.Context, err error) {
	code := mixer.CodeOf(err)
	c.JSON(statusFor(code), gin.H{
		"error": err.Error(),
		"code":  code.String(),
	})
}

// statusFor maps a mixer error code to an HTTP status.
func statusFor(code mixer.Code) int {
	switch code {
	case mixer.CodeInvalidParam:
		return http.StatusBadRequest
	case mixer.CodeWrongState:
		return http.StatusConflict
	case mixer.CodeMemoryFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
