// Package types - Cost breakdown types
package types

import (
	"github.com/shopspring/decimal"
)

// Category is the top-level cost classification
type Category string

const (
	CategoryMaterial         Category = "material"
	CategoryLabor            Category = "labor"
	CategoryConnection       Category = "connection"
	CategorySurfaceTreatment Category = "surface_treatment"
	CategoryOther            Category = "other"
)

// String returns the string representation
func (c Category) String() string {
	return string(c)
}

// IsWellKnown reports whether the category has its own named total
func (c Category) IsWellKnown() bool {
	switch c {
	case CategoryMaterial, CategoryLabor, CategoryConnection, CategorySurfaceTreatment:
		return true
	}
	return false
}

// Common units
const (
	UnitKilogram    = "kg"
	UnitMeter       = "m"
	UnitSquareMeter = "m²"
	UnitCubicMeter  = "m³"
	UnitPiece       = "piece"
	UnitHour        = "h"
)

// CostItem is a single priced line
type CostItem struct {
	// Category is the cost classification
	Category Category `json:"category"`

	// ItemType is a free-form subtype (e.g. "STEEL/S355", "welding", "bolt_M12")
	ItemType string `json:"item_type"`

	// Quantity in Unit
	Quantity decimal.Decimal `json:"quantity"`

	// Unit of measure
	Unit string `json:"unit"`

	// UnitPrice per Unit
	UnitPrice decimal.Decimal `json:"unit_price"`

	// TotalPrice is Quantity * UnitPrice
	TotalPrice decimal.Decimal `json:"total_price"`

	// Description provides additional context
	Description string `json:"description,omitempty"`

	// ElementID links back to the priced element
	ElementID string `json:"element_id,omitempty"`

	// Metadata carries provider-specific details
	Metadata map[string]string `json:"metadata,omitempty"`
}

// NewCostItem creates a cost item with TotalPrice derived from quantity and unit price
func NewCostItem(category Category, itemType string, quantity decimal.Decimal, unit string, unitPrice decimal.Decimal) CostItem {
	return CostItem{
		Category:   category,
		ItemType:   itemType,
		Quantity:   quantity,
		Unit:       unit,
		UnitPrice:  unitPrice,
		TotalPrice: quantity.Mul(unitPrice),
	}
}

// WithDescription sets the description
func (c CostItem) WithDescription(description string) CostItem {
	c.Description = description
	return c
}

// ForElement sets the element back-reference
func (c CostItem) ForElement(elementID string) CostItem {
	c.ElementID = elementID
	return c
}

// WithMetadata adds a metadata entry
func (c CostItem) WithMetadata(key, value string) CostItem {
	meta := make(map[string]string, len(c.Metadata)+1)
	for k, v := range c.Metadata {
		meta[k] = v
	}
	meta[key] = value
	c.Metadata = meta
	return c
}

// ElementCostBreakdown holds the costs of one element
type ElementCostBreakdown struct {
	ElementID   string     `json:"element_id"`
	ElementType string     `json:"element_type"`
	ElementName string     `json:"element_name"`
	CostItems   []CostItem `json:"cost_items"`

	// WasteFactor is a fraction, e.g. 0.05 for 5%
	WasteFactor decimal.Decimal `json:"waste_factor"`

	// Derived by Recompute
	Subtotal  decimal.Decimal `json:"subtotal"`
	WasteCost decimal.Decimal `json:"waste_cost"`
	Total     decimal.Decimal `json:"total"`
}

// NewElementCostBreakdown creates an empty breakdown for an element
func NewElementCostBreakdown(el Element, wasteFactor decimal.Decimal) *ElementCostBreakdown {
	return &ElementCostBreakdown{
		ElementID:   el.ID(),
		ElementType: el.Type(),
		ElementName: el.DisplayName(),
		CostItems:   []CostItem{},
		WasteFactor: wasteFactor,
	}
}

// AddItems appends items and recomputes the totals
func (b *ElementCostBreakdown) AddItems(items ...CostItem) {
	b.CostItems = append(b.CostItems, items...)
	b.Recompute()
}

// Recompute derives subtotal, waste and total from the item list
func (b *ElementCostBreakdown) Recompute() {
	subtotal := decimal.Zero
	for _, item := range b.CostItems {
		subtotal = subtotal.Add(item.TotalPrice)
	}
	b.Subtotal = subtotal
	b.WasteCost = subtotal.Mul(b.WasteFactor)
	b.Total = subtotal.Add(b.WasteCost)
}

// ProviderFailure records a provider that failed on one element
type ProviderFailure struct {
	ElementID string `json:"element_id"`
	Provider  string `json:"provider"`
	Error     string `json:"error"`
}

// ProjectCostBreakdown is the complete cost breakdown for a project
type ProjectCostBreakdown struct {
	ProjectName  string                  `json:"project_name"`
	ElementCosts []*ElementCostBreakdown `json:"element_costs"`

	// Summary by category, derived by Recompute
	CategoryTotals map[Category]decimal.Decimal `json:"category_totals"`

	TotalMaterialCost         decimal.Decimal `json:"total_material_cost"`
	TotalLaborCost            decimal.Decimal `json:"total_labor_cost"`
	TotalConnectionCost       decimal.Decimal `json:"total_connection_cost"`
	TotalSurfaceTreatmentCost decimal.Decimal `json:"total_surface_treatment_cost"`
	TotalOtherCost            decimal.Decimal `json:"total_other_cost"`
	GrandTotal                decimal.Decimal `json:"grand_total"`

	// Failures are provider errors isolated during calculation
	Failures []ProviderFailure `json:"-"`
}

// NewProjectCostBreakdown creates an empty project breakdown
func NewProjectCostBreakdown(projectName string) *ProjectCostBreakdown {
	return &ProjectCostBreakdown{
		ProjectName:    projectName,
		ElementCosts:   []*ElementCostBreakdown{},
		CategoryTotals: map[Category]decimal.Decimal{},
	}
}

// Recompute recalculates every element and all project totals.
// Totals are never updated incrementally.
func (p *ProjectCostBreakdown) Recompute() {
	totals := make(map[Category]decimal.Decimal)
	for _, ec := range p.ElementCosts {
		ec.Recompute()
		for _, item := range ec.CostItems {
			totals[item.Category] = totals[item.Category].Add(item.TotalPrice)
		}
	}
	p.CategoryTotals = totals

	p.TotalMaterialCost = totals[CategoryMaterial]
	p.TotalLaborCost = totals[CategoryLabor]
	p.TotalConnectionCost = totals[CategoryConnection]
	p.TotalSurfaceTreatmentCost = totals[CategorySurfaceTreatment]

	other := decimal.Zero
	for category, total := range totals {
		if !category.IsWellKnown() {
			other = other.Add(total)
		}
	}
	p.TotalOtherCost = other

	p.GrandTotal = p.TotalMaterialCost.
		Add(p.TotalLaborCost).
		Add(p.TotalConnectionCost).
		Add(p.TotalSurfaceTreatmentCost).
		Add(p.TotalOtherCost)
}

// ItemCount returns the number of cost items across all elements
func (p *ProjectCostBreakdown) ItemCount() int {
	n := 0
	for _, ec := range p.ElementCosts {
		n += len(ec.CostItems)
	}
	return n
}
