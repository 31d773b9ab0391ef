package server

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/yaakydd/DriveGreen/internal/chat"
	"github.com/yaakydd/DriveGreen/internal/models"
	"github.com/yaakydd/DriveGreen/internal/services"
)

// Server wires the prediction service, chat client and usage counters into
// the HTTP routing layer
type Server struct {
	predictions *services.PredictionService
	chat        *chat.Client
	stats       *services.UsageStats
	staticDir   string
	allowOrigin string

	// Optional analytics channel for chat events, wired at startup
	ChatEvents chan *models.ChatEvent
}

// Config holds HTTP layer configuration
type Config struct {
	StaticDir   string
	AllowOrigin string
}

// NewServer creates the HTTP layer over its collaborating services
func NewServer(predictions *services.PredictionService, chatClient *chat.Client, stats *services.UsageStats, config Config) *Server {
	allowOrigin := config.AllowOrigin
	if allowOrigin == "" {
		allowOrigin = "*"
	}

	return &Server{
		predictions: predictions,
		chat:        chatClient,
		stats:       stats,
		staticDir:   config.StaticDir,
		allowOrigin: allowOrigin,
	}
}

// apiPaths are routes that must answer JSON 404s instead of the SPA fallback
var apiPaths = map[string]bool{
	"/predict":     true,
	"/health":      true,
	"/fuel-types":  true,
	"/model-info":  true,
	"/stats":       true,
	"/chat":        true,
	"/chat/health": true,
}

// Router builds the gin engine with all routes registered
func (s *Server) Router() *gin.Engine {
	router := gin.Default()
	router.Use(CORSMiddleware(s.allowOrigin))

	router.POST("/predict", s.handlePredict)
	router.GET("/health", s.handleHealth)
	router.GET("/fuel-types", s.handleFuelTypes)
	router.GET("/model-info", s.handleModelInfo)
	router.GET("/stats", s.handleStats)
	router.POST("/chat", s.handleChat)
	router.GET("/chat/health", s.handleChatHealth)

	s.mountFrontend(router)

	return router
}

// mountFrontend serves the frontend build when one is configured, falling
// back to index.html for client-side routes. Without a build the root serves
// the API banner and unknown routes get JSON 404s.
func (s *Server) mountFrontend(router *gin.Engine) {
	index := filepath.Join(s.staticDir, "index.html")

	if s.staticDir == "" {
		router.GET("/", s.handleIndex)
		router.NoRoute(notFound)
		return
	}
	if _, err := os.Stat(index); err != nil {
		log.Printf("Server: Warning - no index.html under %s, serving API banner instead", s.staticDir)
		router.GET("/", s.handleIndex)
		router.NoRoute(notFound)
		return
	}

	router.GET("/", func(c *gin.Context) {
		c.File(index)
	})
	router.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || apiPaths[c.Request.URL.Path] {
			notFound(c)
			return
		}

		// Serve the asset when it exists, otherwise hand the path to the
		// client-side router.
		asset := filepath.Join(s.staticDir, filepath.Clean("/"+c.Request.URL.Path))
		if info, err := os.Stat(asset); err == nil && !info.IsDir() {
			c.File(asset)
			return
		}
		c.File(index)
	})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
}
