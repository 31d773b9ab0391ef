package services

import (
	"strings"

	"github.com/yaakydd/DriveGreen/internal/ml"
)

// ValidationError reports a request field outside the trained domain.
// Client-caused: the request never reaches the model.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ArtifactError reports that required model artifacts are not loaded, so
// inference cannot be attempted. Infrastructure-caused.
type ArtifactError struct {
	MissingComponents []string
}

func (e *ArtifactError) Error() string {
	return "Prediction service not fully initialized. Missing: " +
		strings.Join(e.MissingComponents, ", ")
}

func (e *ArtifactError) Unwrap() error {
	return ml.ErrArtifactMissing
}
