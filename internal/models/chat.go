package models

// ChatRequest is the chat endpoint payload
type ChatRequest struct {
	Message        string             `json:"message" binding:"required"`
	PredictionData *PredictionContext `json:"prediction_data,omitempty"`
}

// ChatResponse carries the assistant's answer
type ChatResponse struct {
	Response string `json:"response"`
}

// PredictionContext is an earlier prediction the user wants to discuss.
// The frontend sends it back verbatim so the assistant can answer
// "my result" style questions.
type PredictionContext struct {
	CO2GramsPerKm float64               `json:"co2_grams_per_km"`
	Category      string                `json:"category"`
	Description   string                `json:"description,omitempty"`
	Vehicle       *VehicleSpecification `json:"vehicle,omitempty"`
}
