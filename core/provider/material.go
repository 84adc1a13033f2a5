package provider

import (
	"fmt"

	"github.com/shopspring/decimal"

	"ifc-cost/core/rules"
	"ifc-cost/core/types"
)

// MaterialProvider prices raw material by mass or volume
type MaterialProvider struct{}

// NewMaterialProvider creates a material provider
func NewMaterialProvider() *MaterialProvider {
	return &MaterialProvider{}
}

// Name returns "material"
func (p *MaterialProvider) Name() string {
	return ProviderMaterial
}

// CanCalculate reports whether the element declares a material
func (p *MaterialProvider) CanCalculate(el types.Element) bool {
	return el.Properties.Has(materialKeys...)
}

// Calculate emits at most one item. Unknown materials and
// non-positive quantities produce nothing.
func (p *MaterialProvider) Calculate(el types.Element, rs *rules.RuleSet) ([]types.CostItem, error) {
	material, ok := MaterialOf(el)
	if !ok {
		return nil, nil
	}
	price, ok := rs.Material(material)
	if !ok {
		return nil, nil
	}

	var quantity decimal.Decimal
	var unit string
	switch price.Unit {
	case types.UnitKilogram:
		quantity, ok = massOf(el.Properties, price.DensityKgM3)
		unit = types.UnitKilogram
	case types.UnitCubicMeter, "m3":
		quantity, ok = volumeOf(el.Properties)
		unit = types.UnitCubicMeter
	default:
		return nil, nil
	}
	if !ok || !quantity.IsPositive() {
		return nil, nil
	}

	item := types.NewCostItem(types.CategoryMaterial, material, quantity, unit, price.PricePerUnit).
		WithDescription(fmt.Sprintf("%s material", material)).
		ForElement(el.ID())
	return []types.CostItem{item}, nil
}

// massOf resolves kg from a declared weight, else volume × density
func massOf(props types.Properties, density *decimal.Decimal) (decimal.Decimal, bool) {
	if w, ok := props.Positive(weightKeys...); ok {
		return w, true
	}
	if density == nil || !density.IsPositive() {
		return decimal.Zero, false
	}
	v, ok := volumeOf(props)
	if !ok {
		return decimal.Zero, false
	}
	return v.Mul(*density), true
}
