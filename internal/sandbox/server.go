package sandbox

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/danmuck/megaverse/internal/observability"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultAddr       = ":8080"
	DefaultBasePath   = "/api"
	defaultShutdown   = 5 * time.Second
	sandboxNodeName   = "sandbox"
	sandboxVersion    = "0.1.0"
	tooManyRequestMsg = "Too Many Requests"
)

// Config controls the sandbox HTTP surface.
type Config struct {
	Addr        string
	BasePath    string
	CORSOrigins []string
	// RequestsPerSecond > 0 answers requests above the rate with 429.
	RequestsPerSecond float64
	Burst             int
}

func (c Config) WithDefaults() Config {
	c.Addr = strings.TrimSpace(c.Addr)
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	c.BasePath = "/" + strings.Trim(strings.TrimSpace(c.BasePath), "/")
	if c.BasePath == "/" {
		c.BasePath = DefaultBasePath
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	return c
}

// Server emulates the megaverse API in memory.
type Server struct {
	cfg      Config
	store    *Store
	router   *gin.Engine
	limiter  *rate.Limiter
	logger   zerolog.Logger
	appeared time.Time
}

func New(store *Store, cfg Config, logger zerolog.Logger) *Server {
	cfg = cfg.WithDefaults()
	observability.RegisterMetrics()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(logger, "/health", "/metrics"))
	r.Use(observability.RequestMetricsMiddleware(sandboxNodeName))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.CORSOrigins),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		cfg:      cfg,
		store:    store,
		router:   r,
		logger:   logger,
		appeared: time.Now(),
	}
	if cfg.RequestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Store() *Store {
	return s.store
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"uptime":     time.Since(s.appeared).String(),
			"component":  "megaverse-sandbox",
			"version":    sandboxVersion,
			"candidates": s.store.Candidates(),
		})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group(s.cfg.BasePath)
	api.Use(s.throttle())
	api.GET("/map/:candidateId/goal", s.handleGoal)
	api.GET("/map/:candidateId", s.handleMap)
	api.DELETE("/map/:candidateId", s.handleReset)
	for _, route := range entityRoutes {
		api.POST(route.path, s.handleCreate(route))
		api.DELETE(route.path, s.handleDelete(route))
	}
}

// throttle answers 429 once the configured request rate is exceeded.
func (s *Server) throttle() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter != nil && !s.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": tooManyRequestMsg})
			return
		}
		c.Next()
	}
}

// Serve blocks serving on ln until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()
	s.logger.Info().Str("addr", ln.Addr().String()).Str("base_path", s.cfg.BasePath).Msg("sandbox listening")

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdown)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.logger.Info().Msg("sandbox stopped")
		return nil
	}
}

// ListenAndServe listens on the configured address.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
