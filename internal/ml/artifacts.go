package ml

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Artifact file names inside the model directory
const (
	RegressorFile    = "regression_model.json"
	EncoderFile      = "fuel_encoder.json"
	FeatureNamesFile = "feature_names.json"
	ScalerFile       = "scaler.json"
)

// Transforms a regressor artifact may declare
const (
	TransformLog1p = "log1p"
	TransformLog   = "log"
)

// Scaling modes a regressor artifact may declare
const (
	ScalingNone     = "none"
	ScalingStandard = "standard"
)

// RegressorMetrics holds evaluation metadata captured at training time
type RegressorMetrics struct {
	R2      float64 `json:"r2"`
	RMSELog float64 `json:"rmse_log"`
}

// Regressor is the trained model artifact: a linear model over named feature
// columns, predicting in a log-transformed target space. The artifact itself
// declares which numeric and target transforms it was fit with, so the
// pipeline never has to guess.
type Regressor struct {
	ModelType        string             `json:"model_type"`
	Target           string             `json:"target"`
	TargetTransform  string             `json:"target_transform"`
	NumericTransform string             `json:"numeric_transform"`
	Scaling          string             `json:"scaling"`
	Intercept        float64            `json:"intercept"`
	Coefficients     map[string]float64 `json:"coefficients"`
	Metrics          RegressorMetrics   `json:"metrics"`
	TrainedAt        string             `json:"trained_at"`
	TrainingRows     int                `json:"training_rows"`
}

// Encoder is the categorical encoder artifact. Categories carry the
// training-declared one-hot column order; it must never be reordered.
type Encoder struct {
	Feature       string   `json:"feature"`
	Prefix        string   `json:"prefix"`
	Categories    []string `json:"categories"`
	HandleUnknown string   `json:"handle_unknown"`
}

// ColumnName returns the one-hot column label for a category
func (e *Encoder) ColumnName(category string) string {
	return e.Prefix + "_" + category
}

// Encode produces the one-hot indicator row for value in the trained category
// order: exactly one 1, the rest 0
func (e *Encoder) Encode(value string) ([]string, []float64, error) {
	idx := -1
	for i, cat := range e.Categories {
		if cat == value {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil, fmt.Errorf("%w: %q not in %v", ErrInvalidCategory, value, e.Categories)
	}

	columns := make([]string, len(e.Categories))
	values := make([]float64, len(e.Categories))
	for i, cat := range e.Categories {
		columns[i] = e.ColumnName(cat)
		if i == idx {
			values[i] = 1
		}
	}
	return columns, values, nil
}

// FeatureNames is the persisted training column order the feature vector is
// reindexed against before prediction
type FeatureNames struct {
	Columns []string `json:"columns"`
}

// Scaler holds per-column standardization statistics captured at training
// time. Statistics are never recomputed from live requests.
type Scaler struct {
	Type    string    `json:"type"`
	Columns []string  `json:"columns"`
	Mean    []float64 `json:"mean"`
	Scale   []float64 `json:"scale"`
}

// Apply standardizes vec in place using the training statistics
func (s *Scaler) Apply(vec *FeatureVector) error {
	index := make(map[string]int, len(s.Columns))
	for i, col := range s.Columns {
		index[col] = i
	}

	for i, col := range vec.Columns {
		j, ok := index[col]
		if !ok {
			return fmt.Errorf("%w: no scaler statistics for column %q", ErrTransformMismatch, col)
		}
		if s.Scale[j] == 0 {
			return fmt.Errorf("%w: zero scale for column %q", ErrTransformMismatch, col)
		}
		vec.Values[i] = (vec.Values[i] - s.Mean[j]) / s.Scale[j]
	}
	return nil
}

// Artifacts bundles the model components loaded once at startup and shared
// read-only across requests. Fields are nil when the corresponding file could
// not be loaded; the service reports them through its health endpoint.
type Artifacts struct {
	Regressor    *Regressor
	Encoder      *Encoder
	FeatureNames *FeatureNames
	Scaler       *Scaler
}

// Missing names the required components that are not loaded. The scaler only
// counts when the regressor declares it was trained on scaled features.
func (a *Artifacts) Missing() []string {
	var missing []string
	if a.Regressor == nil {
		missing = append(missing, "model")
	}
	if a.Encoder == nil {
		missing = append(missing, "encoder")
	}
	if a.FeatureNames == nil {
		missing = append(missing, "feature_names")
	}
	if a.Regressor != nil && a.Regressor.Scaling == ScalingStandard && a.Scaler == nil {
		missing = append(missing, "scaler")
	}
	return missing
}

// Complete reports whether every required component is loaded
func (a *Artifacts) Complete() bool {
	return len(a.Missing()) == 0
}

// LoadArtifacts reads the artifact set from dir. Each component loads
// independently; failures are logged and leave the field nil so the service
// can start degraded and report itself unhealthy instead of crashing.
func LoadArtifacts(dir string) *Artifacts {
	a := &Artifacts{}

	regressor, err := loadRegressor(filepath.Join(dir, RegressorFile))
	if err != nil {
		log.Printf("Artifacts: could not load regressor: %v", err)
	} else {
		a.Regressor = regressor
		log.Printf("Artifacts: loaded %s model (%d features, trained on %d rows)",
			regressor.ModelType, len(regressor.Coefficients), regressor.TrainingRows)
	}

	encoder, err := loadEncoder(filepath.Join(dir, EncoderFile))
	if err != nil {
		log.Printf("Artifacts: could not load encoder: %v", err)
	} else {
		a.Encoder = encoder
		log.Printf("Artifacts: loaded encoder for %q with categories %v", encoder.Feature, encoder.Categories)
	}

	features, err := loadFeatureNames(filepath.Join(dir, FeatureNamesFile))
	if err != nil {
		log.Printf("Artifacts: could not load feature names: %v", err)
	} else {
		a.FeatureNames = features
		log.Printf("Artifacts: expected column order: %v", features.Columns)
	}

	// The scaler is optional; only warn when the model declares it needs one.
	scaler, err := loadScaler(filepath.Join(dir, ScalerFile))
	switch {
	case err == nil:
		a.Scaler = scaler
		log.Printf("Artifacts: loaded standard scaler for %d columns", len(scaler.Columns))
	case os.IsNotExist(err):
		if a.Regressor != nil && a.Regressor.Scaling == ScalingStandard {
			log.Printf("Artifacts: model declares scaled features but %s is missing", ScalerFile)
		}
	default:
		log.Printf("Artifacts: could not load scaler: %v", err)
	}

	return a
}

func loadRegressor(path string) (*Regressor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}

	var regressor Regressor
	if err := json.Unmarshal(data, &regressor); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model: %w", err)
	}

	if len(regressor.Coefficients) == 0 {
		return nil, fmt.Errorf("model file %s has no coefficients", path)
	}
	switch regressor.TargetTransform {
	case TransformLog1p, TransformLog:
	default:
		return nil, fmt.Errorf("model declares unsupported target transform %q", regressor.TargetTransform)
	}
	switch regressor.NumericTransform {
	case TransformLog1p, TransformLog:
	default:
		return nil, fmt.Errorf("model declares unsupported numeric transform %q", regressor.NumericTransform)
	}
	switch regressor.Scaling {
	case ScalingNone, ScalingStandard:
	default:
		return nil, fmt.Errorf("model declares unsupported scaling mode %q", regressor.Scaling)
	}

	return &regressor, nil
}

func loadEncoder(path string) (*Encoder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read encoder file: %w", err)
	}

	var encoder Encoder
	if err := json.Unmarshal(data, &encoder); err != nil {
		return nil, fmt.Errorf("failed to unmarshal encoder: %w", err)
	}

	if len(encoder.Categories) == 0 {
		return nil, fmt.Errorf("encoder file %s has no categories", path)
	}
	return &encoder, nil
}

func loadFeatureNames(path string) (*FeatureNames, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feature names file: %w", err)
	}

	var features FeatureNames
	if err := json.Unmarshal(data, &features); err != nil {
		return nil, fmt.Errorf("failed to unmarshal feature names: %w", err)
	}

	if len(features.Columns) == 0 {
		return nil, fmt.Errorf("feature names file %s has no columns", path)
	}
	return &features, nil
}

func loadScaler(path string) (*Scaler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scaler Scaler
	if err := json.Unmarshal(data, &scaler); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scaler: %w", err)
	}

	if scaler.Type != ScalingStandard {
		return nil, fmt.Errorf("scaler file %s has unsupported type %q", path, scaler.Type)
	}
	if len(scaler.Columns) == 0 ||
		len(scaler.Mean) != len(scaler.Columns) ||
		len(scaler.Scale) != len(scaler.Columns) {
		return nil, fmt.Errorf("scaler file %s has mismatched column/mean/scale lengths", path)
	}
	return &scaler, nil
}
