package database

// SQL schemas for all ClickHouse tables

const (
	// PredictionEventsTableSQL creates the prediction_events table
	PredictionEventsTableSQL = `
		CREATE TABLE IF NOT EXISTS prediction_events (
			timestamp DateTime64(3),
			fuel_type String,
			engine_size Float64,
			cylinder_count UInt8,
			co2_grams_per_km Float64,
			category String,
			duration_ms Float64
		) ENGINE = MergeTree()
		ORDER BY (fuel_type, timestamp)
		PARTITION BY toYYYYMM(timestamp)
	`

	// ChatEventsTableSQL creates the chat_events table
	ChatEventsTableSQL = `
		CREATE TABLE IF NOT EXISTS chat_events (
			timestamp DateTime64(3),
			message_chars UInt32,
			response_chars UInt32,
			had_prediction_context Bool,
			duration_ms Float64,
			status String
		) ENGINE = MergeTree()
		ORDER BY timestamp
		PARTITION BY toYYYYMM(timestamp)
	`
)

// AllTables returns all table creation SQL statements
func AllTables() []string {
	return []string{
		PredictionEventsTableSQL,
		ChatEventsTableSQL,
	}
}
