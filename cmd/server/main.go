package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yaakydd/DriveGreen/internal/chat"
	"github.com/yaakydd/DriveGreen/internal/database"
	"github.com/yaakydd/DriveGreen/internal/ml"
	"github.com/yaakydd/DriveGreen/internal/mqtt"
	"github.com/yaakydd/DriveGreen/internal/server"
	"github.com/yaakydd/DriveGreen/internal/services"
	"github.com/yaakydd/DriveGreen/pkg/config"
)

func main() {
	log.Println("Starting DriveGreen CO2 Emission Predictor API...")

	// Load configuration
	cfg := config.Load()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === Load model artifacts ===
	log.Printf("Loading model artifacts from %s...", cfg.ModelDir)
	artifacts := ml.LoadArtifacts(cfg.ModelDir)
	if missing := artifacts.Missing(); len(missing) > 0 {
		log.Printf("Warning: missing artifacts: %v. Predictions return 503 until resolved. Continuing...", missing)
	}

	// === Usage counters ===
	stats, err := services.NewUsageStats(cfg.StatsFile)
	if err != nil {
		log.Printf("Warning: usage stats unavailable: %v. Continuing without counters...", err)
	}

	// === Optional ClickHouse analytics sink ===
	var db *database.ClickHouseDB
	if cfg.ClickHouseEnabled {
		db, err = database.NewClickHouseDB(
			cfg.ClickHouseAddr,
			cfg.ClickHouseDB,
			cfg.ClickHouseUser,
			cfg.ClickHousePass,
		)
		if err != nil {
			log.Printf("Warning: ClickHouse unavailable, analytics disabled: %v", err)
			db = nil
		} else {
			defer db.Close()
		}
	}

	// === Event fan-out ===
	events := services.NewEventRouter(db, 100)

	// === Optional MQTT publisher ===
	if cfg.MQTTEnabled {
		publisher, err := mqtt.NewPredictionPublisher(mqtt.PublisherConfig{
			Broker:      cfg.MQTTBroker,
			ClientID:    cfg.MQTTClientID,
			Username:    cfg.MQTTUsername,
			Password:    cfg.MQTTPassword,
			Topic:       cfg.MQTTTopicPredictions,
			ChannelSize: 100,
		})
		if err != nil {
			log.Printf("Warning: MQTT publisher unavailable, event publishing disabled: %v", err)
		} else {
			defer publisher.Close()

			// Connect event router output to publisher input
			events.PublishChan = publisher.EventChan
			go publisher.Start(ctx)
		}
	}

	go events.Start(ctx)

	// === Initialize prediction service ===
	predictions := services.NewPredictionService(artifacts)
	predictions.Stats = stats
	predictions.Events = events.PredictionChan

	// === Initialize chat client ===
	chatClient := chat.NewClient(chat.ClientConfig{
		APIKey:  cfg.HuggingFaceAPIKey,
		Model:   cfg.ChatModel,
		BaseURL: cfg.ChatAPIBase,
		Timeout: time.Duration(cfg.ChatTimeoutSeconds) * time.Second,
	})
	if !chatClient.Configured() {
		log.Println("Warning: HUGGINGFACE_API_KEY not set, chat endpoint reports misconfigured")
	}

	// === HTTP server ===
	srv := server.NewServer(predictions, chatClient, stats, server.Config{
		StaticDir:   cfg.StaticDir,
		AllowOrigin: cfg.CORSAllowOrigin,
	})
	srv.ChatEvents = events.ChatChan

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: srv.Router(),
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// === Log startup info ===
	log.Println("=== DriveGreen CO2 Emission Predictor API is running ===")
	log.Printf("Listening on:    :%d", cfg.Port)
	log.Printf("Model artifacts: %s", cfg.ModelDir)
	log.Printf("Chat model:      %s", cfg.ChatModel)
	log.Printf("ClickHouse sink: enabled=%t", cfg.ClickHouseEnabled)
	log.Printf("MQTT publisher:  enabled=%t", cfg.MQTTEnabled)
	log.Println("Press Ctrl+C to exit...")

	// === Wait for interrupt signal ===
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// === Graceful shutdown ===
	log.Println("Shutdown signal received, stopping services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete. Goodbye!")
}
