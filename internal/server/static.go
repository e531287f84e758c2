package server

import (
	"net/http"
	"os"

	"github.com/finking/chat-relay/internal/embed"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// setupStaticFiles serves the chat front-end at the root path.
// Prefers the embedded page, falls back to an external public directory.
func (s *Server) setupStaticFiles() {
	if embed.HasEmbeddedFiles() {
		s.logger.Info("Using embedded public files")
		s.router.GET("/", func(c *gin.Context) {
			page, err := embed.Index()
			if err != nil {
				s.logger.Warn("Failed to read embedded index", zap.Error(err))
				c.JSON(500, gin.H{"error": "Internal server error. Please try again later."})
				return
			}
			c.Data(http.StatusOK, "text/html; charset=utf-8", page)
		})
		return
	}

	if _, err := os.Stat("./public/index.html"); err == nil {
		s.logger.Info("Using external public directory")
		s.router.GET("/", func(c *gin.Context) {
			c.File("./public/index.html")
		})
		return
	}

	s.logger.Warn("No public files found (embedded or external)")
	s.router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "FinKing AI API - POST /api/chat")
	})
}
