package ml

import "fmt"

// Predict evaluates the linear model on a feature vector, returning a scalar
// in the trained target space. Every vector column must have a coefficient
// and the dimensionality must match, otherwise the artifacts have drifted
// apart and the prediction would be silently wrong.
func (r *Regressor) Predict(vec FeatureVector) (float64, error) {
	if len(vec.Columns) != len(r.Coefficients) {
		return 0, fmt.Errorf("%w: vector has %d columns, model has %d coefficients",
			ErrTransformMismatch, len(vec.Columns), len(r.Coefficients))
	}

	y := r.Intercept
	for i, col := range vec.Columns {
		coef, ok := r.Coefficients[col]
		if !ok {
			return 0, fmt.Errorf("%w: no coefficient for column %q", ErrTransformMismatch, col)
		}
		y += coef * vec.Values[i]
	}
	return y, nil
}

// InverseTarget recovers the physical CO2 value in g/km from the model's
// target space, inverting the transform the artifact was trained with
func (r *Regressor) InverseTarget(y float64) (float64, error) {
	co2, err := InverseTransform(r.TargetTransform, y)
	if err != nil {
		return 0, fmt.Errorf("%w: unknown target transform %q", ErrTransformMismatch, r.TargetTransform)
	}
	return co2, nil
}
