// Package httpserver exposes the auth and file operations over HTTP using gin.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/filevault/internal/logging"
	"github.com/dmitrijs2005/filevault/internal/server/metrics"
	"github.com/dmitrijs2005/filevault/internal/server/models"
	"github.com/dmitrijs2005/filevault/internal/server/ratelimiter"
	"github.com/dmitrijs2005/filevault/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
	Login(ctx context.Context, in services.LoginInput) (*services.AuthResult, error)
}

type FileService interface {
	Upload(ctx context.Context, ownerID string, in services.IncomingFile) (*models.File, error)
	List(ctx context.Context, ownerID string) ([]*models.File, error)
	Stream(ctx context.Context, ownerID, fileID string) (*services.Download, error)
	Delete(ctx context.Context, ownerID, fileID string) (*services.DeleteResult, error)
}

// Authenticator resolves the Authorization header to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*models.User, error)
}

// Options carries transport settings. Zero values disable the optional parts.
type Options struct {
	Address        string
	MaxUploadSize  int64
	AuthLimiter    *ratelimiter.Keyed
	Metrics        metrics.Recorder
	MetricsHandler http.Handler
}

type HTTPServer struct {
	address       string
	maxUploadSize int64
	users         UserService
	files         FileService
	gate          Authenticator
	authLimiter   *ratelimiter.Keyed
	metrics       metrics.Recorder
	logger        logging.Logger
	engine        *gin.Engine
}

func NewHTTPServer(opts Options, l logging.Logger, us UserService, fs FileService, gate Authenticator) *HTTPServer {
	s := &HTTPServer{
		address:       opts.Address,
		maxUploadSize: opts.MaxUploadSize,
		users:         us,
		files:         fs,
		gate:          gate,
		authLimiter:   opts.AuthLimiter,
		metrics:       opts.Metrics,
		logger:        l.With("module", "http_server"),
	}
	if s.metrics == nil {
		s.metrics = metrics.Noop()
	}
	if s.authLimiter == nil {
		s.authLimiter = ratelimiter.New(0, 0)
	}

	s.engine = s.routes(opts.MetricsHandler)
	return s
}

func (s *HTTPServer) routes(metricsHandler http.Handler) *gin.Engine {
	r := gin.New()
	r.Use(s.requestLogger(), s.recovery(), cors.New(corsConfig()))

	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	api := r.Group("/api")
	{
		api.GET("/ping", s.ping)

		authRoutes := api.Group("/auth")
		authRoutes.Use(s.rateLimit())
		{
			authRoutes.POST("/register", s.register)
			authRoutes.POST("/login", s.login)
		}

		fileRoutes := api.Group("/files")
		fileRoutes.Use(s.authRequired())
		{
			fileRoutes.POST("/upload", s.uploadFile)
			fileRoutes.GET("", s.listFiles)
			fileRoutes.GET("/:id", s.downloadFile)
			fileRoutes.DELETE("/:id", s.deleteFile)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})

	return r
}

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	cfg.ExposeHeaders = []string{"Content-Disposition", "Content-Length", requestIDHeader}
	return cfg
}

// Handler returns the router, for tests and embedding.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *HTTPServer) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	<-done
	return nil
}
