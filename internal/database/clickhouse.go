package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/yaakydd/DriveGreen/internal/models"
)

type ClickHouseDB struct {
	conn driver.Conn
}

// NewClickHouseDB creates a new ClickHouse database connection
func NewClickHouseDB(addr, database, username, password string) (*ClickHouseDB, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	log.Printf("Connected to ClickHouse at %s", addr)

	db := &ClickHouseDB{conn: conn}

	// Initialize schema
	if err := db.InitSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// InitSchema creates the necessary tables if they don't exist
func (db *ClickHouseDB) InitSchema() error {
	ctx := context.Background()

	tables := AllTables()
	for _, tableSQL := range tables {
		if err := db.conn.Exec(ctx, tableSQL); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	log.Println("Database schema initialized successfully")
	return nil
}

// SavePredictionEvent saves a completed prediction to the database
func (db *ClickHouseDB) SavePredictionEvent(event *models.PredictionEvent) error {
	ctx := context.Background()

	query := `
		INSERT INTO prediction_events (timestamp, fuel_type, engine_size, cylinder_count, co2_grams_per_km, category, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	err := db.conn.Exec(ctx, query,
		event.Timestamp,
		event.FuelType,
		event.EngineSize,
		uint8(event.CylinderCount),
		event.CO2GramsPerKm,
		event.Category,
		event.DurationMs,
	)

	if err != nil {
		return fmt.Errorf("failed to insert prediction event: %w", err)
	}

	return nil
}

// SaveChatEvent saves chat usage metadata to the database (not the message text)
func (db *ClickHouseDB) SaveChatEvent(event *models.ChatEvent) error {
	ctx := context.Background()

	query := `
		INSERT INTO chat_events (timestamp, message_chars, response_chars, had_prediction_context, duration_ms, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	err := db.conn.Exec(ctx, query,
		event.Timestamp,
		uint32(event.MessageChars),
		uint32(event.ResponseChars),
		event.HadPredictionContext,
		event.DurationMs,
		event.Status,
	)

	if err != nil {
		return fmt.Errorf("failed to insert chat event: %w", err)
	}

	return nil
}

// Close closes the ClickHouse connection
func (db *ClickHouseDB) Close() error {
	if db.conn != nil {
		if err := db.conn.Close(); err != nil {
			return fmt.Errorf("failed to close ClickHouse connection: %w", err)
		}
		log.Println("ClickHouse connection closed")
	}
	return nil
}
