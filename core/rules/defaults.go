package rules

import (
	"github.com/shopspring/decimal"
)

// DefaultEnabledProviders returns a fresh copy of the provider names enabled
// when calculation_rules does not list any
func DefaultEnabledProviders() []string {
	return []string{"material", "connection"}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// DefaultMaterialPrices is used when material_prices is unavailable
func DefaultMaterialPrices() map[string]MaterialPrice {
	return map[string]MaterialPrice{
		"STEEL/S355":   {Unit: "kg", PricePerUnit: dec("4.50"), DensityKgM3: decPtr("7850")},
		"STEEL/S235":   {Unit: "kg", PricePerUnit: dec("4.20"), DensityKgM3: decPtr("7850")},
		"CONCRETE/C30": {Unit: "m³", PricePerUnit: dec("450.00"), DensityKgM3: decPtr("2400")},
	}
}

// DefaultLaborRates is used when labor_rates is unavailable
func DefaultLaborRates() map[string]LaborRate {
	return map[string]LaborRate{
		"welding": {RatePerHour: dec("80.00"), RatePerMeter: decPtr("25.00")},
		"cutting": {RatePerHour: dec("60.00")},
	}
}

// DefaultConnectionCosts is used when connection_costs is unavailable
func DefaultConnectionCosts() ConnectionCosts {
	return ConnectionCosts{
		Welding: WeldingCosts{
			PricePerMeter:     dec("25.00"),
			PricePerOperation: dec("50.00"),
		},
		Bolts: map[string]BoltPrice{
			"M12":          {PricePerUnit: dec("2.50")},
			"M16":          {PricePerUnit: dec("3.50")},
			"M20":          {PricePerUnit: dec("5.00")},
			DefaultBoltKey: {PricePerUnit: dec("2.50")},
		},
		ConnectionTypes: map[string]ConnectionTypePrice{
			"rigid_frame": {Price: dec("150.00")},
			"hinged":      {Price: dec("80.00")},
		},
	}
}

// DefaultWasteFactors is used when waste_factors is unavailable
func DefaultWasteFactors() WasteFactors {
	return WasteFactors{
		"STEEL/S355":    dec("0.05"),
		"STEEL/S235":    dec("0.05"),
		"CONCRETE/C30":  dec("0.10"),
		DefaultWasteKey: dec("0.05"),
	}
}

// DefaultCalculationRules is used when calculation_rules is unavailable
func DefaultCalculationRules() CalculationRules {
	return CalculationRules{EnabledProviders: DefaultEnabledProviders()}
}

// DefaultSurfaceTreatments is used when surface_treatments is unavailable
func DefaultSurfaceTreatments() map[string]SurfaceTreatmentPrice {
	return map[string]SurfaceTreatmentPrice{
		"painting":    {PricePerM2: dec("18.00")},
		"galvanizing": {PricePerM2: dec("35.00")},
	}
}

// Defaults returns the complete built-in rule set
func Defaults() *RuleSet {
	return &RuleSet{
		MaterialPrices:    DefaultMaterialPrices(),
		LaborRates:        DefaultLaborRates(),
		ConnectionCosts:   DefaultConnectionCosts(),
		WasteFactors:      DefaultWasteFactors(),
		CalculationRules:  DefaultCalculationRules(),
		SurfaceTreatments: DefaultSurfaceTreatments(),
	}
}
