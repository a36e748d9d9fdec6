package web

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/totelink/totelink/internal/blobstore"
	"github.com/totelink/totelink/internal/service"
	"github.com/totelink/totelink/internal/store"
)

type Server struct {
	service *service.ToteService
	engine  *gin.Engine
	logger  *slog.Logger
}

func NewServer(svc *service.ToteService, logger *slog.Logger) *Server {
	s := &Server{
		service: svc,
		logger:  logger,
	}
	s.engine = s.buildEngine()
	return s
}

func (s *Server) buildEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/totes", s.handleListTotes)
		api.POST("/totes", s.handleCreateTote)
		api.GET("/totes/:id", s.handleGetTote)
		api.PATCH("/totes/:id", s.handleUpdateTote)
		api.DELETE("/totes/:id", s.handleDeleteTote)

		api.GET("/totes/:id/images", s.handleListToteImages)
		api.POST("/totes/:id/images", s.handleUploadToteImage)
		api.DELETE("/images/:id", s.handleDeleteToteImage)
		api.GET("/images/file/*path", s.handleFetchImageFile)

		api.GET("/totes/:id/items", s.handleListItems)
		api.POST("/totes/:id/items", s.handleCreateItem)
		api.PATCH("/items/:id", s.handleUpdateItem)
		api.DELETE("/items/:id", s.handleDeleteItem)

		api.GET("/items/:id/images", s.handleListItemImages)
		api.POST("/items/:id/images", s.handleUploadItemImage)
		api.DELETE("/item-images/:id", s.handleDeleteItemImage)
	}

	return r
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

// writeError maps service and store failures onto HTTP statuses. Anything
// unrecognized surfaces as a 500 with the underlying message.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, blobstore.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoFields),
		errors.Is(err, service.ErrMissingName),
		errors.Is(err, service.ErrMissingUpload):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
