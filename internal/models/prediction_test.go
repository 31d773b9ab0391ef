package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaakydd/DriveGreen/internal/models"
)

func TestCategorizeEmissions_Bands(t *testing.T) {
	tests := []struct {
		co2      float64
		category string
	}{
		{0, models.CategoryExcellent},
		{101.86, models.CategoryExcellent},
		{119.99, models.CategoryExcellent},
		{120.00, models.CategoryGood},
		{139.86, models.CategoryGood},
		{159.99, models.CategoryGood},
		{160.00, models.CategoryAverage},
		{190.99, models.CategoryAverage},
		{199.99, models.CategoryAverage},
		{200.00, models.CategoryHigh},
		{249.99, models.CategoryHigh},
		{250.00, models.CategoryVeryHigh},
		{402.70, models.CategoryVeryHigh},
	}

	for _, tt := range tests {
		band := models.CategorizeEmissions(tt.co2)
		assert.Equal(t, tt.category, band.Category, "co2=%v", tt.co2)
	}
}

func TestCategorizeEmissions_Colors(t *testing.T) {
	expected := map[string]string{
		models.CategoryExcellent: "#09422f",
		models.CategoryGood:      "#22c55e",
		models.CategoryAverage:   "#f59e0b",
		models.CategoryHigh:      "#f74f4f",
		models.CategoryVeryHigh:  "#dc2626",
	}

	for _, co2 := range []float64{100, 140, 180, 220, 300} {
		band := models.CategorizeEmissions(co2)
		assert.Equal(t, expected[band.Category], band.Color, "co2=%v", co2)
		assert.NotEmpty(t, band.Description)
	}
}

func TestValidFuelType(t *testing.T) {
	for _, code := range models.FuelTypeCodes {
		assert.True(t, models.ValidFuelType(code), "code %s", code)
	}

	assert.False(t, models.ValidFuelType("Q"))
	assert.False(t, models.ValidFuelType("x"), "codes are case sensitive")
	assert.False(t, models.ValidFuelType(""))
}

func TestFuelTypeCodes_DisplayOrder(t *testing.T) {
	assert.Equal(t, []string{"X", "Z", "E", "D", "N"}, models.FuelTypeCodes)
	assert.Len(t, models.FuelTypeDescriptions, len(models.FuelTypeCodes))
}
