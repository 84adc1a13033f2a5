package provider

import (
	"fmt"

	"ifc-cost/core/rules"
	"ifc-cost/core/types"
)

// SurfaceTreatmentProvider prices coatings by outer surface area
type SurfaceTreatmentProvider struct{}

// NewSurfaceTreatmentProvider creates a surface treatment provider
func NewSurfaceTreatmentProvider() *SurfaceTreatmentProvider {
	return &SurfaceTreatmentProvider{}
}

// Name returns "surface_treatment"
func (p *SurfaceTreatmentProvider) Name() string {
	return ProviderSurfaceTreatment
}

// CanCalculate reports whether the element declares a coating
func (p *SurfaceTreatmentProvider) CanCalculate(el types.Element) bool {
	return el.Properties.Has(surfaceKeys...)
}

// Calculate emits one item per element
func (p *SurfaceTreatmentProvider) Calculate(el types.Element, rs *rules.RuleSet) ([]types.CostItem, error) {
	treatment, ok := el.Properties.First(surfaceKeys...)
	if !ok {
		return nil, nil
	}
	price, ok := rs.SurfaceTreatments[treatment]
	if !ok || !price.PricePerM2.IsPositive() {
		return nil, nil
	}
	area, ok := el.Properties.Positive(surfaceAreaKeys...)
	if !ok {
		return nil, nil
	}

	item := types.NewCostItem(types.CategorySurfaceTreatment, treatment, area, types.UnitSquareMeter, price.PricePerM2).
		WithDescription(fmt.Sprintf("%s %s m²", treatment, area)).
		ForElement(el.ID())
	return []types.CostItem{item}, nil
}
