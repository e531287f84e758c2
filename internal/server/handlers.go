package server

import (
	"strings"
	"time"

	"github.com/finking/chat-relay/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// chatRequest distinguishes a missing message field from an empty one;
// validation treats them as different failures.
type chatRequest struct {
	Message *string `json:"message"`
}

// handleChat validates the request, relays the message upstream, and maps
// the tagged result onto the client response.
func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == nil {
		s.logger.Warn("Invalid request: missing message field")
		c.JSON(400, models.ErrorResponse{Error: "Invalid request. Please provide a message."})
		return
	}

	message := strings.TrimSpace(*req.Message)
	if message == "" {
		s.logger.Warn("Empty message received")
		c.JSON(400, models.ErrorResponse{Error: "Message cannot be empty."})
		return
	}

	s.logger.Info("Processing chat request",
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.String("message_preview", truncate(message, 50)))

	reply, relayErr := s.relay.Complete(c.Request.Context(), message)
	if relayErr != nil {
		c.JSON(relayErr.Kind.Status(), models.ErrorResponse{Error: relayErr.Kind.Message()})
		return
	}

	c.JSON(200, models.ChatResponse{
		Reply:     reply,
		Timestamp: utcTimestamp(),
		Model:     s.relay.Model(),
	})
}

// healthCheck reports liveness; it never probes the upstream
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(200, models.HealthResponse{
		Status:    "healthy",
		Service:   serviceName,
		Version:   s.version,
		Timestamp: utcTimestamp(),
	})
}

func (s *Server) notFound(c *gin.Context) {
	c.JSON(404, models.ErrorResponse{Error: "Endpoint not found"})
}

// recoveryHandler is the 500 catch-all: the panic is logged, the client gets
// the generic body.
func (s *Server) recoveryHandler(c *gin.Context, recovered interface{}) {
	s.logger.Error("Internal server error",
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.Any("panic", recovered))
	c.AbortWithStatusJSON(500, models.ErrorResponse{Error: "Internal server error. Please try again later."})
}

// utcTimestamp formats the current time as ISO-8601 UTC with a Z suffix
func utcTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
