package provider

import (
	"fmt"

	"ifc-cost/core/rules"
	"ifc-cost/core/types"
)

// LaborProvider prices declared work hours and cutting length
type LaborProvider struct{}

// NewLaborProvider creates a labor provider
func NewLaborProvider() *LaborProvider {
	return &LaborProvider{}
}

// Name returns "labor"
func (p *LaborProvider) Name() string {
	return ProviderLabor
}

// CanCalculate reports whether the element declares hours or cutting length
func (p *LaborProvider) CanCalculate(el types.Element) bool {
	return el.Properties.Has(laborKeys...)
}

// Calculate emits an hourly item and a cutting item when rates exist
func (p *LaborProvider) Calculate(el types.Element, rs *rules.RuleSet) ([]types.CostItem, error) {
	var items []types.CostItem

	if hours, ok := el.Properties.Positive(keyLaborHours); ok {
		kind := el.Properties[keyLaborType]
		if kind == "" {
			kind = defaultLaborType
		}
		if rate, ok := rs.LaborRates[kind]; ok && rate.RatePerHour.IsPositive() {
			items = append(items, types.NewCostItem(types.CategoryLabor, kind, hours, types.UnitHour, rate.RatePerHour).
				WithDescription(fmt.Sprintf("%s h of %s", hours, kind)).
				ForElement(el.ID()))
		}
	}

	if length, ok := el.Properties.Positive(keyCuttingLength); ok {
		rate, ok := rs.LaborRates[cuttingLaborType]
		if ok && rate.RatePerMeter != nil && rate.RatePerMeter.IsPositive() {
			meters := toMeters(length)
			items = append(items, types.NewCostItem(types.CategoryLabor, cuttingLaborType, meters, types.UnitMeter, *rate.RatePerMeter).
				WithDescription(fmt.Sprintf("Cutting %s m", meters)).
				ForElement(el.ID()))
		}
	}

	return items, nil
}
