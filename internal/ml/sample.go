package ml

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// CreateSampleArtifacts writes the bundled reference artifact set to dir.
// Call this to bootstrap a fresh deployment when no model directory exists.
// The values match the model shipped under model/ and reproduce the recorded
// reference prediction (fuel X, 2.0 L, 4 cylinders -> 139.86 g/km, Good).
func CreateSampleArtifacts(dir string) error {
	regressor := Regressor{
		ModelType:        "linear_regression",
		Target:           "co2_emissions_g_per_km",
		TargetTransform:  TransformLog1p,
		NumericTransform: TransformLog1p,
		Scaling:          ScalingNone,
		Intercept:        3.8035650003294443,
		Coefficients: map[string]float64{
			ColumnEngineSize: 0.5212437806512418,
			ColumnCylinders:  0.3417890224861305,
			"fuel_type_D":    0.0662148023914387,
			"fuel_type_E":    -0.1511627741728189,
			"fuel_type_N":    -0.0973012842256318,
			"fuel_type_X":    0.0214684553295719,
			"fuel_type_Z":    0.0607807006774401,
		},
		Metrics:      RegressorMetrics{R2: 0.9148, RMSELog: 0.0834},
		TrainedAt:    "2025-11-14T09:32:51Z",
		TrainingRows: 7385,
	}

	encoder := Encoder{
		Feature:       "fuel_type",
		Prefix:        "fuel_type",
		Categories:    []string{"D", "E", "N", "X", "Z"},
		HandleUnknown: "error",
	}

	features := FeatureNames{
		Columns: []string{
			ColumnEngineSize,
			ColumnCylinders,
			"fuel_type_D",
			"fuel_type_E",
			"fuel_type_N",
			"fuel_type_X",
			"fuel_type_Z",
		},
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}
	if err := writeArtifact(filepath.Join(dir, RegressorFile), regressor); err != nil {
		return err
	}
	if err := writeArtifact(filepath.Join(dir, EncoderFile), encoder); err != nil {
		return err
	}
	if err := writeArtifact(filepath.Join(dir, FeatureNamesFile), features); err != nil {
		return err
	}

	log.Printf("Created sample model artifacts in %s", dir)
	return nil
}

func writeArtifact(path string, artifact interface{}) error {
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
