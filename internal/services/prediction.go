package services

import (
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/yaakydd/DriveGreen/internal/ml"
	"github.com/yaakydd/DriveGreen/internal/models"
)

// PredictionService orchestrates validation, preprocessing, inference and
// interpretation for emission predictions. Artifacts are loaded before the
// service accepts traffic and are never mutated afterwards, so concurrent
// requests share them without locking.
type PredictionService struct {
	artifacts   *ml.Artifacts
	transformer *ml.Transformer

	// Optional collaborators wired at startup
	Stats  *UsageStats
	Events chan *models.PredictionEvent
}

// HealthStatus reports which model artifacts are loaded
type HealthStatus struct {
	Status             string `json:"status"`
	ModelLoaded        bool   `json:"model_loaded"`
	EncoderLoaded      bool   `json:"encoder_loaded"`
	FeatureNamesLoaded bool   `json:"feature_names_loaded"`
	ScalerLoaded       bool   `json:"scaler_loaded"`
}

// NewPredictionService creates a prediction service over a loaded artifact set
func NewPredictionService(artifacts *ml.Artifacts) *PredictionService {
	return &PredictionService{
		artifacts:   artifacts,
		transformer: ml.NewTransformer(artifacts),
	}
}

// Validate checks a specification against the ranges observed in training.
// Out-of-range values are rejected rather than extrapolated; the error names
// the offending field and the violated bound.
func (s *PredictionService) Validate(spec models.VehicleSpecification) error {
	if !models.ValidFuelType(spec.FuelType) {
		return &ValidationError{
			Field: "fuel_type",
			Message: fmt.Sprintf("fuel_type must be one of %s",
				strings.Join(models.FuelTypeCodes, ", ")),
		}
	}
	if spec.EngineSize < models.MinEngineSize || spec.EngineSize > models.MaxEngineSize {
		return &ValidationError{
			Field: "engine_size",
			Message: fmt.Sprintf("engine_size must be between %.1f and %.1f liters",
				models.MinEngineSize, models.MaxEngineSize),
		}
	}
	if spec.CylinderCount < models.MinCylinders || spec.CylinderCount > models.MaxCylinders {
		return &ValidationError{
			Field: "cylinder_count",
			Message: fmt.Sprintf("cylinder_count must be between %d and %d",
				models.MinCylinders, models.MaxCylinders),
		}
	}
	return nil
}

// Predict runs the full pipeline for one request: validate, build the
// feature vector, evaluate the regressor, invert the target transform and
// classify the physical value into its severity band.
func (s *PredictionService) Predict(spec models.VehicleSpecification) (*models.EmissionPrediction, error) {
	start := time.Now()

	if err := s.Validate(spec); err != nil {
		return nil, err
	}

	// Refuse to attempt a partial computation when artifacts are missing.
	if missing := s.artifacts.Missing(); len(missing) > 0 {
		return nil, &ArtifactError{MissingComponents: missing}
	}

	vec, err := s.transformer.Transform(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to build feature vector: %w", err)
	}

	y, err := s.artifacts.Regressor.Predict(vec)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate model: %w", err)
	}

	raw, err := s.artifacts.Regressor.InverseTarget(y)
	if err != nil {
		return nil, fmt.Errorf("failed to invert target transform: %w", err)
	}

	co2 := roundTo2(raw)
	band := models.CategorizeEmissions(co2)

	prediction := &models.EmissionPrediction{
		CO2GramsPerKm: co2,
		Unit:          models.EmissionUnit,
		Category:      band.Category,
		Description:   band.Description,
		DisplayColor:  band.Color,
	}

	log.Printf("PredictionService: %s %.1fL %dcyl -> %.2f g/km (%s)",
		spec.FuelType, spec.EngineSize, spec.CylinderCount, co2, band.Category)

	if s.Stats != nil {
		s.Stats.RecordPrediction(spec.FuelType)
	}
	s.emitEvent(spec, prediction, time.Since(start))

	return prediction, nil
}

// Health reports per-artifact load state for the health endpoint
func (s *PredictionService) Health() HealthStatus {
	status := "healthy"
	if !s.artifacts.Complete() {
		status = "unhealthy"
	}
	return HealthStatus{
		Status:             status,
		ModelLoaded:        s.artifacts.Regressor != nil,
		EncoderLoaded:      s.artifacts.Encoder != nil,
		FeatureNamesLoaded: s.artifacts.FeatureNames != nil,
		ScalerLoaded:       s.artifacts.Scaler != nil,
	}
}

// FuelTypes returns the valid fuel codes with their descriptions
func (s *PredictionService) FuelTypes() ([]string, map[string]string) {
	return models.FuelTypeCodes, models.FuelTypeDescriptions
}

// ModelInfo describes the live pipeline for the diagnostics endpoint
func (s *PredictionService) ModelInfo() models.ModelInfo {
	numeric := "unknown"
	target := "unknown"
	modelType := "not loaded"
	scaling := ml.ScalingNone
	if r := s.artifacts.Regressor; r != nil {
		numeric = r.NumericTransform
		target = r.TargetTransform
		modelType = r.ModelType
		scaling = r.Scaling
	}

	info := models.ModelInfo{
		InputFeatures: []string{"fuel_type", "engine_size", "cylinder_count"},
		PreprocessingPipeline: []string{
			fmt.Sprintf("1. %s transform: engine_size", numeric),
			fmt.Sprintf("2. %s transform: cylinder_count", numeric),
			"3. One-hot encode: fuel_type -> binary columns",
			"4. Combine: [numeric columns, encoded fuel columns]",
			"5. Reindex to match training column order",
		},
		ModelBehavior: []string{
			fmt.Sprintf("6. Model predicts: %s(CO2) emissions", target),
			fmt.Sprintf("7. Reverse transform recovers CO2 in %s", models.EmissionUnit),
		},
		EncodedFeatures: []string{ml.ColumnEngineSize, ml.ColumnCylinders},
		Output:          "CO2 emissions in " + models.EmissionUnit,
		ModelType:       modelType,
		ValidRanges: map[string]string{
			"engine_size":    fmt.Sprintf("%.1f to %.1f liters", models.MinEngineSize, models.MaxEngineSize),
			"cylinder_count": fmt.Sprintf("%d to %d", models.MinCylinders, models.MaxCylinders),
			"fuel_type":      strings.Join(models.FuelTypeCodes, ", "),
		},
		EncodingDetails: map[string]string{
			"method": "One-Hot Encoding",
		},
		ComponentsLoaded: map[string]bool{
			"model":         s.artifacts.Regressor != nil,
			"encoder":       s.artifacts.Encoder != nil,
			"feature_names": s.artifacts.FeatureNames != nil,
			"scaler":        s.artifacts.Scaler != nil,
		},
	}

	if scaling == ml.ScalingStandard {
		info.PreprocessingPipeline = append(info.PreprocessingPipeline,
			"6. Standardize with training-time per-column mean/scale")
		info.ModelBehavior = []string{
			fmt.Sprintf("7. Model predicts: %s(CO2) emissions", target),
			fmt.Sprintf("8. Reverse transform recovers CO2 in %s", models.EmissionUnit),
		}
	}

	if s.artifacts.FeatureNames != nil {
		info.ExpectedFeatureOrder = s.artifacts.FeatureNames.Columns
	}
	if enc := s.artifacts.Encoder; enc != nil {
		for _, cat := range enc.Categories {
			info.EncodedFeatures = append(info.EncodedFeatures, enc.ColumnName(cat))
		}
		info.EncodingDetails["category_order"] = strings.Join(enc.Categories, ", ")
	}

	return info
}

// emitEvent sends the analytics record without ever blocking the request path
func (s *PredictionService) emitEvent(spec models.VehicleSpecification, prediction *models.EmissionPrediction, took time.Duration) {
	if s.Events == nil {
		return
	}

	event := &models.PredictionEvent{
		Timestamp:     time.Now().UTC(),
		FuelType:      spec.FuelType,
		EngineSize:    spec.EngineSize,
		CylinderCount: spec.CylinderCount,
		CO2GramsPerKm: prediction.CO2GramsPerKm,
		Category:      prediction.Category,
		DurationMs:    float64(took.Microseconds()) / 1000.0,
	}

	select {
	case s.Events <- event:
	default:
		log.Printf("PredictionService: Warning - event channel full, dropping prediction event")
	}
}

// roundTo2 rounds to two decimal places for presentation
func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
