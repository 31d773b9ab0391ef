package models

// EmissionUnit is the unit for all predicted values
const EmissionUnit = "g/km"

// Severity categories, ordered from lowest to highest emissions
const (
	CategoryExcellent = "Excellent"
	CategoryGood      = "Good"
	CategoryAverage   = "Average"
	CategoryHigh      = "High"
	CategoryVeryHigh  = "Very High"
)

// EmissionPrediction is the prediction response payload
type EmissionPrediction struct {
	CO2GramsPerKm float64 `json:"co2_grams_per_km"`
	Unit          string  `json:"unit"`
	Category      string  `json:"category"`
	Description   string  `json:"description"`
	DisplayColor  string  `json:"display_color"`
}

// CategoryBand describes one emission severity band
type CategoryBand struct {
	UpperBound  float64 // g/km, exclusive; zero on the open-ended last band
	Category    string
	Description string
	Color       string
}

// categoryBands is the fixed interpretation table, ordered by upper bound
var categoryBands = []CategoryBand{
	{120, CategoryExcellent,
		"Excellent! This vehicle has very low emissions and is highly " +
			"environmentally friendly. You'll save money on fuel and " +
			"contribute less to climate change.", "#09422f"},
	{160, CategoryGood,
		"Good! This vehicle has moderate emissions and is reasonably " +
			"eco-friendly. A solid choice for balancing performance and " +
			"environmental impact.", "#22c55e"},
	{200, CategoryAverage,
		"Average. This vehicle has typical emissions for its class. " +
			"Consider more fuel-efficient options if environmental impact " +
			"is a priority.", "#f59e0b"},
	{250, CategoryHigh,
		"High. This vehicle produces above-average emissions. " +
			"Expect higher fuel costs and greater environmental impact.", "#f74f4f"},
}

// veryHighBand covers everything at or above the last threshold
var veryHighBand = CategoryBand{0, CategoryVeryHigh,
	"Very High. This vehicle produces significant emissions. " +
		"Fuel costs will be substantial and environmental impact is " +
		"considerable.", "#dc2626"}

// CategorizeEmissions maps a CO2 value in g/km to its severity band.
// Bands are half-open: a value equal to an upper bound falls in the next band,
// so 120.00 is Good and 250.00 is Very High.
func CategorizeEmissions(co2 float64) CategoryBand {
	for _, band := range categoryBands {
		if co2 < band.UpperBound {
			return band
		}
	}
	return veryHighBand
}

// ModelInfo describes the preprocessing pipeline and model for diagnostics
type ModelInfo struct {
	InputFeatures         []string          `json:"input_features"`
	PreprocessingPipeline []string          `json:"preprocessing_pipeline"`
	ModelBehavior         []string          `json:"model_behavior"`
	ExpectedFeatureOrder  []string          `json:"expected_feature_order"`
	EncodedFeatures       []string          `json:"encoded_features"`
	Output                string            `json:"output"`
	ModelType             string            `json:"model_type"`
	ValidRanges           map[string]string `json:"valid_ranges"`
	EncodingDetails       map[string]string `json:"encoding_details"`
	ComponentsLoaded      map[string]bool   `json:"components_loaded"`
}
