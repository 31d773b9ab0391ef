package models

import "time"

// PredictionEvent is the analytics record emitted for each served prediction
type PredictionEvent struct {
	Timestamp     time.Time `json:"timestamp"`
	FuelType      string    `json:"fuel_type"`
	EngineSize    float64   `json:"engine_size"` // liters
	CylinderCount int       `json:"cylinder_count"`
	CO2GramsPerKm float64   `json:"co2_grams_per_km"`
	Category      string    `json:"category"`
	DurationMs    float64   `json:"duration_ms"`
}

// ChatEvent is the analytics record emitted for each chat exchange.
// Message content is never recorded, only sizes and outcome.
type ChatEvent struct {
	Timestamp            time.Time `json:"timestamp"`
	MessageChars         int       `json:"message_chars"`
	ResponseChars        int       `json:"response_chars"`
	HadPredictionContext bool      `json:"had_prediction_context"`
	DurationMs           float64   `json:"duration_ms"`
	Status               string    `json:"status"` // "ok" or "error_<http status>"
}
