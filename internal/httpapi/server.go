// Package httpapi hosts the send endpoint on a gin engine.
package httpapi

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SendPath is the route the send handler is mounted on.
const SendPath = "/api/send"

const defaultTimeout = 5 * time.Second

// Config captures all inputs required to construct the HTTP server.
type Config struct {
	ListenAddr     string
	SendHandler    http.Handler
	AllowedOrigins []string
	// TLSConfig enables HTTPS when set.
	TLSConfig            *tls.Config
	Logger               *slog.Logger
	ReadHeaderTimeout    time.Duration
	ShutdownGraceTimeout time.Duration
}

// Server serves the send endpoint and a health check.
type Server struct {
	config     Config
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer wires gin, middleware, and handlers for the HTTP API.
func NewServer(cfg Config) (*Server, error) {
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return nil, errors.New("httpapi: listen address is required")
	}
	if cfg.SendHandler == nil {
		return nil, errors.New("httpapi: send handler is required")
	}
	if cfg.Logger == nil {
		return nil, errors.New("httpapi: logger is required")
	}

	policy, err := newCORSPolicy(cfg.AllowedOrigins)
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(cfg.Logger))

	engine.GET("/healthz", func(contextGin *gin.Context) {
		contextGin.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// The send handler answers every method itself so that non-POST
	// requests get its JSON 405 body. Only allowed-origin preflights stop
	// at the CORS layer.
	sendGroup := engine.Group(SendPath)
	sendGroup.Use(policy.middleware())
	sendGroup.Any("", gin.WrapH(cfg.SendHandler))

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           engine,
		TLSConfig:         cfg.TLSConfig,
		ReadHeaderTimeout: pickDuration(cfg.ReadHeaderTimeout, defaultTimeout),
	}

	return &Server{
		config:     cfg,
		httpServer: httpServer,
		logger:     cfg.Logger,
	}, nil
}

// Handler exposes the root HTTP handler.
func (server *Server) Handler() http.Handler {
	return server.httpServer.Handler
}

// Start begins serving HTTP or HTTPS traffic and blocks until shutdown.
func (server *Server) Start() error {
	var err error
	if server.config.TLSConfig != nil {
		// Certificates come from TLSConfig, so no files are passed.
		err = server.httpServer.ListenAndServeTLS("", "")
	} else {
		err = server.httpServer.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully terminates the HTTP server.
func (server *Server) Shutdown(ctx context.Context) error {
	timeout := pickDuration(server.config.ShutdownGraceTimeout, defaultTimeout)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return server.httpServer.Shutdown(ctx)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(contextGin *gin.Context) {
		started := time.Now()
		contextGin.Next()
		logger.Info(
			"http_request_completed",
			"method", contextGin.Request.Method,
			"path", contextGin.Request.URL.Path,
			"status", contextGin.Writer.Status(),
			"duration_ms", time.Since(started).Milliseconds(),
		)
	}
}

// corsPolicy answers preflights and decorates responses for allowed origins.
// Every other request, including cross-origin requests from origins outside
// the list, reaches the send handler unchanged.
type corsPolicy struct {
	allowAll bool
	origins  map[string]struct{}
	apply    gin.HandlerFunc
}

func newCORSPolicy(allowedOrigins []string) (*corsPolicy, error) {
	policy := &corsPolicy{origins: make(map[string]struct{})}
	cfg := cors.Config{
		AllowHeaders: []string{"Content-Type"},
		AllowMethods: []string{http.MethodPost, http.MethodOptions},
	}
	for _, origin := range allowedOrigins {
		if origin == "*" {
			policy.allowAll = true
			continue
		}
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return nil, fmt.Errorf("httpapi: allowed origin %q must start with http:// or https://", origin)
		}
		policy.origins[strings.ToLower(origin)] = struct{}{}
	}
	if len(policy.origins) == 0 {
		policy.allowAll = true
	}
	if policy.allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = make([]string, 0, len(policy.origins))
		for origin := range policy.origins {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}
	policy.apply = cors.New(cfg)
	return policy, nil
}

func (policy *corsPolicy) allows(origin string) bool {
	if policy.allowAll {
		return true
	}
	_, ok := policy.origins[origin]
	return ok
}

func (policy *corsPolicy) middleware() gin.HandlerFunc {
	return func(contextGin *gin.Context) {
		origin := contextGin.GetHeader("Origin")
		if origin == "" || !policy.allows(origin) {
			contextGin.Next()
			return
		}
		// cors treats any OPTIONS as a preflight, so a bare OPTIONS skips it
		// and gets the handler's 405.
		if contextGin.Request.Method == http.MethodOptions &&
			contextGin.GetHeader("Access-Control-Request-Method") == "" {
			contextGin.Next()
			return
		}
		policy.apply(contextGin)
	}
}

func pickDuration(candidate time.Duration, fallback time.Duration) time.Duration {
	if candidate <= 0 {
		return fallback
	}
	return candidate
}
