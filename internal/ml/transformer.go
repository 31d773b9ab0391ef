package ml

import (
	"fmt"
	"math"

	"github.com/yaakydd/DriveGreen/internal/models"
)

// Numeric feature column labels fixed at training time
const (
	ColumnEngineSize = "engine_size(l)"
	ColumnCylinders  = "cylinders"
)

// FeatureVector is an ordered, column-labeled numeric vector matching the
// regressor's training schema
type FeatureVector struct {
	Columns []string
	Values  []float64
}

// Value returns the value at the named column
func (v FeatureVector) Value(column string) (float64, bool) {
	for i, col := range v.Columns {
		if col == column {
			return v.Values[i], true
		}
	}
	return 0, false
}

// Transformer reproduces the training-time preprocessing for live requests
type Transformer struct {
	artifacts *Artifacts
}

// NewTransformer creates a transformer over a loaded artifact set
func NewTransformer(artifacts *Artifacts) *Transformer {
	return &Transformer{artifacts: artifacts}
}

// Transform maps a range-validated vehicle specification to the feature
// vector the regressor expects. The steps must match training exactly:
// log transform of the numeric features, one-hot encoding of the fuel type in
// the encoder's category order, concatenation, reindex to the persisted
// column order, then standardization when the model was fit on scaled
// features.
func (t *Transformer) Transform(spec models.VehicleSpecification) (FeatureVector, error) {
	a := t.artifacts
	if a == nil || a.Regressor == nil {
		return FeatureVector{}, fmt.Errorf("%w: model", ErrArtifactMissing)
	}
	if a.Encoder == nil {
		return FeatureVector{}, fmt.Errorf("%w: encoder", ErrArtifactMissing)
	}
	if a.FeatureNames == nil {
		return FeatureVector{}, fmt.Errorf("%w: feature_names", ErrArtifactMissing)
	}

	// Step 1: numeric transform declared by the model artifact
	engineSize, err := ForwardTransform(a.Regressor.NumericTransform, spec.EngineSize)
	if err != nil {
		return FeatureVector{}, err
	}
	cylinders, err := ForwardTransform(a.Regressor.NumericTransform, float64(spec.CylinderCount))
	if err != nil {
		return FeatureVector{}, err
	}

	// Step 2: one-hot encode the fuel type in the trained category order
	oneHotColumns, oneHotValues, err := a.Encoder.Encode(spec.FuelType)
	if err != nil {
		return FeatureVector{}, err
	}

	// Step 3: concatenate [numeric, categorical] as training did
	assembled := FeatureVector{
		Columns: append([]string{ColumnEngineSize, ColumnCylinders}, oneHotColumns...),
		Values:  append([]float64{engineSize, cylinders}, oneHotValues...),
	}

	// Step 4: reindex to the persisted training column order
	vec, err := reindex(assembled, a.FeatureNames.Columns)
	if err != nil {
		return FeatureVector{}, err
	}

	// Step 5: standardize when the model was trained on scaled features
	if a.Regressor.Scaling == ScalingStandard {
		if a.Scaler == nil {
			return FeatureVector{}, fmt.Errorf("%w: scaler", ErrArtifactMissing)
		}
		if err := a.Scaler.Apply(&vec); err != nil {
			return FeatureVector{}, err
		}
	}

	return vec, nil
}

// ForwardTransform applies the numeric transform the artifact declares.
// Both variants are strictly positive over the validated input range.
func ForwardTransform(name string, v float64) (float64, error) {
	switch name {
	case TransformLog1p:
		return math.Log1p(v), nil
	case TransformLog:
		return math.Log(v), nil
	default:
		return 0, fmt.Errorf("%w: unknown numeric transform %q", ErrTransformMismatch, name)
	}
}

// InverseTransform inverts ForwardTransform for the same transform name
func InverseTransform(name string, v float64) (float64, error) {
	switch name {
	case TransformLog1p:
		return math.Expm1(v), nil
	case TransformLog:
		return math.Exp(v), nil
	default:
		return 0, fmt.Errorf("%w: unknown numeric transform %q", ErrTransformMismatch, name)
	}
}

// reindex rebuilds vec in the given column order. Columns the training schema
// expects but the assembly did not produce fill with zero; an assembled
// column the schema does not know indicates artifact version skew and fails
// loudly instead of mispredicting.
func reindex(vec FeatureVector, order []string) (FeatureVector, error) {
	byName := make(map[string]float64, len(vec.Columns))
	for i, col := range vec.Columns {
		byName[col] = vec.Values[i]
	}

	known := make(map[string]bool, len(order))
	for _, col := range order {
		known[col] = true
	}
	for _, col := range vec.Columns {
		if !known[col] {
			return FeatureVector{}, fmt.Errorf("%w: assembled column %q not in training schema", ErrTransformMismatch, col)
		}
	}

	out := FeatureVector{
		Columns: order,
		Values:  make([]float64, len(order)),
	}
	for i, col := range order {
		out.Values[i] = byName[col]
	}
	return out, nil
}
