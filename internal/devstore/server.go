package devstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// Server is the reference post store
type Server struct {
	cfg     Config
	repo    *Repository
	tokens  *Tokens
	hub     *Hub
	metrics *Metrics
	log     *zap.Logger
}

// NewServer wires a server over an already migrated db
func NewServer(cfg Config, db *gorm.DB, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 50
	}
	metrics := NewMetrics()
	return &Server{
		cfg:     cfg,
		repo:    NewRepository(db),
		tokens:  NewTokens(cfg.JWTSecret, cfg.TokenTTL),
		hub:     NewHub(log, metrics),
		metrics: metrics,
		log:     log,
	}
}

// Repository exposes the store for seeding
func (s *Server) Repository() *Repository {
	return s.repo
}

// Hub exposes the event hub
func (s *Server) Hub() *Hub {
	return s.hub
}

// Router builds the gin engine with every REST route
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.log))
	r.Use(s.metrics.Middleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "websocket_clients": s.hub.ClientCount()})
	})
	r.GET("/metrics", s.metrics.Handler())
	r.Static("/uploads", s.cfg.UploadDir)

	api := r.Group("/api")
	api.Use(gzip.Gzip(gzip.DefaultCompression))
	{
		auth := api.Group("/auth")
		auth.POST("/login", s.login)
		auth.GET("/me", s.requireUser(), s.me)

		api.GET("/posts/recent", s.recentPosts)
		api.GET("/communities/:communityId/posts", s.communityPosts)

		posts := api.Group("/posts", s.requireUser())
		posts.POST("", s.createPost)
		posts.DELETE("/:postId", s.deletePost)
		posts.POST("/:postId/like", s.togglePostLike)
		posts.POST("/:postId/comments", s.createComment)
		posts.POST("/:postId/comments/:commentId/like", s.toggleCommentLike)
		posts.POST("/:postId/comments/:commentId/replies", s.createReply)
		posts.POST("/:postId/comments/:commentId/replies/:replyId/like", s.toggleCommentLike)
	}

	return r
}

// Handler routes /api/ws to the websocket upgrade and everything else to
// the gin engine. The upgrade hijacks a plain http.ResponseWriter since
// gin's writer refuses hijacking once the 101 header is flushed.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/ws", s.serveWS)
	mux.Handle("/", s.Router())
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return fmt.Errorf("failed to create upload dir: %w", err)
	}

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Devstore listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down devstore")
	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
