package services

import (
	"context"
	"log"

	"github.com/yaakydd/DriveGreen/internal/database"
	"github.com/yaakydd/DriveGreen/internal/models"
)

// EventRouter fans prediction and chat events out to the configured sinks.
// Handlers write to the channels; a single consumer goroutine forwards each
// event to ClickHouse and, when wired, to the MQTT publisher. Sink failures
// are logged and never reach the request path.
type EventRouter struct {
	db *database.ClickHouseDB // nil when analytics storage is disabled

	// Input channels (written by handlers and the prediction service)
	PredictionChan chan *models.PredictionEvent
	ChatChan       chan *models.ChatEvent

	// Optional downstream publisher input, wired at startup
	PublishChan chan<- *models.PredictionEvent
}

// NewEventRouter creates an event router. db may be nil.
func NewEventRouter(db *database.ClickHouseDB, channelSize int) *EventRouter {
	return &EventRouter{
		db:             db,
		PredictionChan: make(chan *models.PredictionEvent, channelSize),
		ChatChan:       make(chan *models.ChatEvent, channelSize),
	}
}

// Start consumes events until the context is cancelled
func (r *EventRouter) Start(ctx context.Context) {
	log.Println("EventRouter: Starting...")

	for {
		select {
		case <-ctx.Done():
			log.Println("EventRouter: Context cancelled, shutting down...")
			return

		case event, ok := <-r.PredictionChan:
			if !ok {
				log.Println("EventRouter: Prediction channel closed, shutting down...")
				return
			}
			r.handlePrediction(event)

		case event, ok := <-r.ChatChan:
			if !ok {
				log.Println("EventRouter: Chat channel closed, shutting down...")
				return
			}
			r.handleChat(event)
		}
	}
}

func (r *EventRouter) handlePrediction(event *models.PredictionEvent) {
	if r.db != nil {
		if err := r.db.SavePredictionEvent(event); err != nil {
			log.Printf("EventRouter: Error saving prediction event: %v", err)
		}
	}

	if r.PublishChan != nil {
		select {
		case r.PublishChan <- event:
		default:
			log.Printf("EventRouter: Warning - publish channel full, dropping prediction event")
		}
	}
}

func (r *EventRouter) handleChat(event *models.ChatEvent) {
	if r.db != nil {
		if err := r.db.SaveChatEvent(event); err != nil {
			log.Printf("EventRouter: Error saving chat event: %v", err)
		}
	}
}
