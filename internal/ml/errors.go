package ml

import "errors"

// Pipeline error kinds. Callers wrap these with detail and the service layer
// maps them to response categories with errors.Is.
var (
	// ErrArtifactMissing means a required model artifact is not loaded
	ErrArtifactMissing = errors.New("model artifact not loaded")

	// ErrInvalidCategory means a fuel code outside the trained category set
	// reached the encoder
	ErrInvalidCategory = errors.New("fuel type outside trained category set")

	// ErrTransformMismatch means the assembled feature vector does not match
	// the model's expected schema, which indicates artifact version skew
	ErrTransformMismatch = errors.New("feature vector does not match model schema")
)
