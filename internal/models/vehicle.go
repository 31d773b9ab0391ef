package models

// Fuel type codes used by the trained model (Canadian fuel consumption ratings)
const (
	FuelTypeRegular = "X"
	FuelTypePremium = "Z"
	FuelTypeEthanol = "E"
	FuelTypeDiesel  = "D"
	FuelTypeNatural = "N"
)

// Validation bounds observed in the training data
const (
	MinEngineSize = 0.9 // liters
	MaxEngineSize = 8.4 // liters
	MinCylinders  = 3
	MaxCylinders  = 16
)

// FuelTypeCodes lists the valid fuel codes in display order
var FuelTypeCodes = []string{
	FuelTypeRegular,
	FuelTypePremium,
	FuelTypeEthanol,
	FuelTypeDiesel,
	FuelTypeNatural,
}

// FuelTypeDescriptions maps each fuel code to its human-readable description
var FuelTypeDescriptions = map[string]string{
	FuelTypeRegular: "Regular gasoline",
	FuelTypePremium: "Premium gasoline",
	FuelTypeEthanol: "Ethanol (E85)",
	FuelTypeDiesel:  "Diesel",
	FuelTypeNatural: "Natural gas",
}

// VehicleSpecification is the prediction request payload. Field validation
// happens in the prediction service so error messages can name the field
// and its valid range; binding only checks JSON shape.
type VehicleSpecification struct {
	FuelType      string  `json:"fuel_type"`
	EngineSize    float64 `json:"engine_size"` // liters
	CylinderCount int     `json:"cylinder_count"`
}

// ValidFuelType reports whether code is one of the trained fuel categories
func ValidFuelType(code string) bool {
	_, ok := FuelTypeDescriptions[code]
	return ok
}
