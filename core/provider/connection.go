package provider

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"ifc-cost/core/rules"
	"ifc-cost/core/types"
)

// ConnectionProvider prices welds, bolts and joints.
// Its sub-rules are independent and additive.
type ConnectionProvider struct{}

// NewConnectionProvider creates a connection provider
func NewConnectionProvider() *ConnectionProvider {
	return &ConnectionProvider{}
}

// Name returns "connection"
func (p *ConnectionProvider) Name() string {
	return ProviderConnection
}

// CanCalculate reports whether the element has connection attributes or is a fastener
func (p *ConnectionProvider) CanCalculate(el types.Element) bool {
	return el.Properties.Has(connectionKeys...) || el.IsType(fastenerTypes...)
}

// Calculate emits welding, bolt and joint-type items
func (p *ConnectionProvider) Calculate(el types.Element, rs *rules.RuleSet) ([]types.CostItem, error) {
	costs := rs.ConnectionCosts
	var items []types.CostItem

	if item, ok := weldByLength(el, costs.Welding); ok {
		items = append(items, item)
	}
	if item, ok := weldByOperation(el, costs.Welding); ok {
		items = append(items, item)
	}
	if item, ok := bolts(el, costs); ok {
		items = append(items, item)
	}
	if item, ok := jointType(el, costs); ok {
		items = append(items, item)
	}
	return items, nil
}

func weldByLength(el types.Element, welding rules.WeldingCosts) (types.CostItem, bool) {
	length, ok := el.Properties.Positive(weldLengthKeys...)
	if !ok || !welding.PricePerMeter.IsPositive() {
		return types.CostItem{}, false
	}

	var raw string
	for _, k := range weldLengthKeys {
		if _, ok := el.Properties.Decimal(k); ok {
			raw = strings.TrimSpace(el.Properties[k])
			break
		}
	}
	return types.NewCostItem(types.CategoryConnection, "welding", toMeters(length), types.UnitMeter, welding.PricePerMeter).
		WithDescription("Welding cost").
		ForElement(el.ID()).
		WithMetadata("weld_length_mm", raw), true
}

func weldByOperation(el types.Element, welding rules.WeldingCosts) (types.CostItem, bool) {
	code := el.Properties[keyConnectionCode]
	if !strings.Contains(strings.ToLower(code), "welding") || !welding.PricePerOperation.IsPositive() {
		return types.CostItem{}, false
	}

	return types.NewCostItem(types.CategoryConnection, "welding_operation", decimal.NewFromInt(1), types.UnitPiece, welding.PricePerOperation).
		WithDescription(fmt.Sprintf("Welding operation: %s", code)).
		ForElement(el.ID()), true
}

func bolts(el types.Element, costs rules.ConnectionCosts) (types.CostItem, bool) {
	count, ok := el.Properties.Positive(boltCountKeys...)
	if !ok {
		return types.CostItem{}, false
	}

	size := el.Properties[keyBoltSize]
	if size == "" {
		size = defaultBoltSize
	}
	price, ok := costs.BoltPrice(size)
	if !ok || !price.IsPositive() {
		return types.CostItem{}, false
	}

	return types.NewCostItem(types.CategoryConnection, "bolt_"+size, count, types.UnitPiece, price).
		WithDescription(fmt.Sprintf("%s x %s bolts", count, size)).
		ForElement(el.ID()), true
}

func jointType(el types.Element, costs rules.ConnectionCosts) (types.CostItem, bool) {
	joint := el.Properties[keyJointType]
	if joint == "" {
		return types.CostItem{}, false
	}
	ct, ok := costs.ConnectionTypes[joint]
	if !ok || !ct.Price.IsPositive() {
		return types.CostItem{}, false
	}

	return types.NewCostItem(types.CategoryConnection, "connection_"+joint, decimal.NewFromInt(1), types.UnitPiece, ct.Price).
		WithDescription(fmt.Sprintf("Connection: %s", joint)).
		ForElement(el.ID()), true
}
