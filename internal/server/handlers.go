package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yaakydd/DriveGreen/internal/chat"
	"github.com/yaakydd/DriveGreen/internal/ml"
	"github.com/yaakydd/DriveGreen/internal/models"
	"github.com/yaakydd/DriveGreen/internal/services"
)

// handleIndex is the API banner served when no frontend build is mounted
func (s *Server) handleIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the DriveGreen CO2 Emission Predictor API",
	})
}

func (s *Server) handlePredict(c *gin.Context) {
	var spec models.VehicleSpecification
	if err := c.ShouldBindJSON(&spec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	prediction, err := s.predictions.Predict(spec)
	if err != nil {
		s.writePredictionError(c, err)
		return
	}

	c.JSON(http.StatusOK, prediction)
}

// writePredictionError maps service errors onto response statuses: validation
// failures are the client's fault, missing artifacts are ours.
func (s *Server) writePredictionError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
		return
	}

	var artifactErr *services.ArtifactError
	if errors.As(err, &artifactErr) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": artifactErr.Error()})
		return
	}

	if errors.Is(err, ml.ErrInvalidCategory) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log.Printf("Server: Prediction error: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Prediction failed"})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, s.predictions.Health())
}

func (s *Server) handleFuelTypes(c *gin.Context) {
	codes, descriptions := s.predictions.FuelTypes()
	c.JSON(http.StatusOK, gin.H{
		"fuel_types":   codes,
		"descriptions": descriptions,
	})
}

func (s *Server) handleModelInfo(c *gin.Context) {
	c.JSON(http.StatusOK, s.predictions.ModelInfo())
}

func (s *Server) handleStats(c *gin.Context) {
	if s.stats == nil {
		c.JSON(http.StatusOK, services.StatsSnapshot{ByFuelType: map[string]int64{}})
		return
	}
	c.JSON(http.StatusOK, s.stats.Snapshot())
}

func (s *Server) handleChat(c *gin.Context) {
	start := time.Now()

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if !s.chat.Configured() {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Chatbot service not configured. Please add HUGGINGFACE_API_KEY to your .env file",
		})
		return
	}

	prompt := chat.BuildPrompt(req.Message, req.PredictionData)

	answer, err := s.chat.Generate(c.Request.Context(), prompt)
	if err != nil {
		status, message := chatErrorResponse(err)
		log.Printf("Server: Chat error (%d): %v", status, err)
		c.JSON(status, gin.H{"error": message})
		s.emitChatEvent(req, "", start, status)
		return
	}

	if s.stats != nil {
		s.stats.RecordChat()
	}
	s.emitChatEvent(req, answer, start, http.StatusOK)

	c.JSON(http.StatusOK, models.ChatResponse{Response: answer})
}

// chatErrorResponse maps a chat client error onto the response status and
// user-facing message
func chatErrorResponse(err error) (int, string) {
	if errors.Is(err, chat.ErrNotConfigured) {
		return http.StatusInternalServerError,
			"Chatbot service not configured. Please add HUGGINGFACE_API_KEY to your .env file"
	}
	if errors.Is(err, chat.ErrTimeout) {
		return http.StatusGatewayTimeout,
			"Request timed out. The AI model may be busy. Please try again."
	}
	if errors.Is(err, chat.ErrConnection) {
		return http.StatusServiceUnavailable,
			"Unable to connect to Hugging Face API. Please check your internet connection."
	}

	var providerErr *chat.ProviderError
	if errors.As(err, &providerErr) {
		switch providerErr.StatusCode {
		case http.StatusServiceUnavailable:
			return http.StatusServiceUnavailable,
				"AI model is loading. Please wait 30-60 seconds and try again."
		case http.StatusUnauthorized:
			return http.StatusInternalServerError,
				"Invalid API credentials. Check your Hugging Face API key in .env file"
		case http.StatusNotFound:
			return http.StatusNotFound,
				"Model not found. The model may have been moved or is unavailable."
		case http.StatusTooManyRequests:
			return http.StatusTooManyRequests,
				"Rate limit exceeded. Please wait a moment and try again."
		default:
			return providerErr.StatusCode,
				fmt.Sprintf("Hugging Face API error (%d): %s", providerErr.StatusCode, providerErr.Detail)
		}
	}

	return http.StatusInternalServerError, fmt.Sprintf("Unexpected error: %v", err)
}

func (s *Server) handleChatHealth(c *gin.Context) {
	configured := s.chat.Configured()
	status := "healthy"
	if !configured {
		status = "misconfigured"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         status,
		"api_configured": configured,
		"model":          s.chat.Model(),
		"provider":       "Hugging Face Inference API",
		"endpoint":       s.chat.Endpoint(),
	})
}

// emitChatEvent sends the analytics record without ever blocking the request
func (s *Server) emitChatEvent(req models.ChatRequest, answer string, start time.Time, status int) {
	if s.ChatEvents == nil {
		return
	}

	eventStatus := "ok"
	if status != http.StatusOK {
		eventStatus = fmt.Sprintf("error_%d", status)
	}

	event := &models.ChatEvent{
		Timestamp:            time.Now().UTC(),
		MessageChars:         len(req.Message),
		ResponseChars:        len(answer),
		HadPredictionContext: req.PredictionData != nil,
		DurationMs:           float64(time.Since(start).Microseconds()) / 1000.0,
		Status:               eventStatus,
	}

	select {
	case s.ChatEvents <- event:
	default:
		log.Printf("Server: Warning - chat event channel full, dropping event")
	}
}
