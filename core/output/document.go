package output

import (
	"github.com/shopspring/decimal"

	"ifc-cost/core/types"
)

// Number is a decimal serialized as a bare JSON number
// using its exact decimal string
type Number decimal.Decimal

// MarshalJSON writes the exact decimal string without quotes
func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(n).String()), nil
}

// UnmarshalJSON accepts a bare or quoted number
func (n *Number) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*n = Number(d)
	return nil
}

// Decimal returns the underlying value
func (n Number) Decimal() decimal.Decimal {
	return decimal.Decimal(n)
}

// String returns the exact decimal string
func (n Number) String() string {
	return decimal.Decimal(n).String()
}

// Document is the serialized form of a project breakdown
type Document struct {
	ProjectName  string        `json:"project_name"`
	Summary      Summary       `json:"summary"`
	ElementCosts []ElementCost `json:"element_costs"`
}

// Summary holds the project totals
type Summary struct {
	TotalMaterialCost         Number            `json:"total_material_cost"`
	TotalLaborCost            Number            `json:"total_labor_cost"`
	TotalConnectionCost       Number            `json:"total_connection_cost"`
	TotalSurfaceTreatmentCost Number            `json:"total_surface_treatment_cost"`
	TotalOtherCost            Number            `json:"total_other_cost"`
	GrandTotal                Number            `json:"grand_total"`
	CategoryTotals            map[string]Number `json:"category_totals"`
}

// ElementCost is the serialized form of an element breakdown
type ElementCost struct {
	ElementID   string     `json:"element_id"`
	ElementType string     `json:"element_type"`
	ElementName string     `json:"element_name"`
	CostItems   []CostItem `json:"cost_items"`
	Subtotal    Number     `json:"subtotal"`
	WasteFactor Number     `json:"waste_factor"`
	WasteCost   Number     `json:"waste_cost"`
	Total       Number     `json:"total"`
}

// CostItem is the serialized form of a cost line
type CostItem struct {
	Category    string            `json:"category"`
	ItemType    string            `json:"item_type"`
	Quantity    Number            `json:"quantity"`
	Unit        string            `json:"unit"`
	UnitPrice   Number            `json:"unit_price"`
	TotalPrice  Number            `json:"total_price"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata"`
}

// NewDocument converts a breakdown into its output contract.
// Empty collections are emitted as [] and {} rather than null.
func NewDocument(p *types.ProjectCostBreakdown) *Document {
	doc := &Document{
		ProjectName: p.ProjectName,
		Summary: Summary{
			TotalMaterialCost:         Number(p.TotalMaterialCost),
			TotalLaborCost:            Number(p.TotalLaborCost),
			TotalConnectionCost:       Number(p.TotalConnectionCost),
			TotalSurfaceTreatmentCost: Number(p.TotalSurfaceTreatmentCost),
			TotalOtherCost:            Number(p.TotalOtherCost),
			GrandTotal:                Number(p.GrandTotal),
			CategoryTotals:            make(map[string]Number, len(p.CategoryTotals)),
		},
		ElementCosts: make([]ElementCost, 0, len(p.ElementCosts)),
	}

	for category, total := range p.CategoryTotals {
		doc.Summary.CategoryTotals[string(category)] = Number(total)
	}

	for _, ec := range p.ElementCosts {
		out := ElementCost{
			ElementID:   ec.ElementID,
			ElementType: ec.ElementType,
			ElementName: ec.ElementName,
			CostItems:   make([]CostItem, 0, len(ec.CostItems)),
			Subtotal:    Number(ec.Subtotal),
			WasteFactor: Number(ec.WasteFactor),
			WasteCost:   Number(ec.WasteCost),
			Total:       Number(ec.Total),
		}
		for _, item := range ec.CostItems {
			meta := make(map[string]string, len(item.Metadata))
			for k, v := range item.Metadata {
				meta[k] = v
			}
			out.CostItems = append(out.CostItems, CostItem{
				Category:    string(item.Category),
				ItemType:    item.ItemType,
				Quantity:    Number(item.Quantity),
				Unit:        item.Unit,
				UnitPrice:   Number(item.UnitPrice),
				TotalPrice:  Number(item.TotalPrice),
				Description: item.Description,
				Metadata:    meta,
			})
		}
		doc.ElementCosts = append(doc.ElementCosts, out)
	}

	return doc
}
