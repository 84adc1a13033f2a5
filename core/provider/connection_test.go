package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ifc-cost/core/rules"
	"ifc-cost/core/types"
)

func itemsByType(items []types.CostItem) map[string]types.CostItem {
	out := make(map[string]types.CostItem, len(items))
	for _, item := range items {
		out[item.ItemType] = item
	}
	return out
}

func TestConnectionCanCalculate(t *testing.T) {
	p := NewConnectionProvider()

	for _, key := range []string{"CONNECTION_CODE", "Welding", "Bolts", "WeldLength", "BoltCount", "JointType"} {
		assert.True(t, p.CanCalculate(element("E", map[string]string{key: "x"})), key)
	}
	assert.True(t, p.CanCalculate(types.Element{TypeName: "IfcMechanicalFastener"}))
	assert.True(t, p.CanCalculate(types.Element{TypeName: "IfcFastener"}))
	assert.False(t, p.CanCalculate(element("E", map[string]string{"MATERIAL": "STEEL/S355"})))
}

func TestConnectionScenarioB(t *testing.T) {
	el := element("E2", map[string]string{
		"WeldLength": "2500",
		"BoltCount":  "4",
		"BoltSize":   "M16",
	})

	items, err := NewConnectionProvider().Calculate(el, rules.Defaults())
	require.NoError(t, err)
	require.Len(t, items, 2)

	weld := items[0]
	assert.Equal(t, "welding", weld.ItemType)
	assert.Equal(t, types.UnitMeter, weld.Unit)
	assert.True(t, weld.Quantity.Equal(d("2.5")))
	assert.True(t, weld.TotalPrice.Equal(d("62.50")))
	assert.Equal(t, "2500", weld.Metadata["weld_length_mm"])

	bolt := items[1]
	assert.Equal(t, "bolt_M16", bolt.ItemType)
	assert.Equal(t, types.UnitPiece, bolt.Unit)
	assert.True(t, bolt.Quantity.Equal(d("4")))
	assert.True(t, bolt.TotalPrice.Equal(d("14.00")))
	assert.Equal(t, "4 x M16 bolts", bolt.Description)

	subtotal := weld.TotalPrice.Add(bolt.TotalPrice)
	assert.True(t, subtotal.Equal(d("76.50")))
}

func TestConnectionWeldLengthUnits(t *testing.T) {
	tests := []struct {
		name   string
		props  map[string]string
		meters string
	}{
		{"meters kept", map[string]string{"WeldLength": "2.5"}, "2.5"},
		{"boundary is meters", map[string]string{"WeldLength": "100"}, "100"},
		{"above boundary is mm", map[string]string{"WeldLength": "100.5"}, "0.1005"},
		{"fallback key", map[string]string{"BaseQuantities.Length": "750"}, "0.75"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := NewConnectionProvider().Calculate(element("E", tt.props), rules.Defaults())
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.True(t, items[0].Quantity.Equal(d(tt.meters)), "got %s", items[0].Quantity)
		})
	}
}

func TestConnectionAllSubRulesAdditive(t *testing.T) {
	el := types.Element{
		GlobalID: "J1",
		TypeName: "IfcMechanicalFastener",
		Properties: map[string]string{
			"CONNECTION_CODE": "Fillet-WELDING-01",
			"WeldingLength":   "50",
			"Bolts":           "6",
			"BoltSize":        "M42",
			"JointType":       "rigid_frame",
		},
	}

	items, err := NewConnectionProvider().Calculate(el, rules.Defaults())
	require.NoError(t, err)
	require.Len(t, items, 4)

	byType := itemsByType(items)
	assert.True(t, byType["welding"].TotalPrice.Equal(d("1250")))
	assert.True(t, byType["welding_operation"].TotalPrice.Equal(d("50")))
	assert.Equal(t, "Welding operation: Fillet-WELDING-01", byType["welding_operation"].Description)
	// unknown size falls back to the default bolt price
	assert.True(t, byType["bolt_M42"].UnitPrice.Equal(d("2.50")))
	assert.True(t, byType["bolt_M42"].TotalPrice.Equal(d("15")))
	assert.True(t, byType["connection_rigid_frame"].TotalPrice.Equal(d("150")))

	for _, item := range items {
		assert.Equal(t, types.CategoryConnection, item.Category)
		assert.Equal(t, "J1", item.ElementID)
	}
}

func TestConnectionDefaultBoltSize(t *testing.T) {
	items, err := NewConnectionProvider().Calculate(element("E", map[string]string{"FastenerCount": "10"}), rules.Defaults())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "bolt_M12", items[0].ItemType)
	assert.True(t, items[0].TotalPrice.Equal(d("25")))
}

func TestConnectionGatedByPrices(t *testing.T) {
	rs := rules.Defaults()
	rs.ConnectionCosts = rules.ConnectionCosts{
		Welding: rules.WeldingCosts{PricePerMeter: d("0"), PricePerOperation: d("0")},
	}

	el := element("E", map[string]string{
		"WeldLength":      "3",
		"CONNECTION_CODE": "welding",
		"BoltCount":       "2",
		"JointType":       "hinged",
	})

	items, err := NewConnectionProvider().Calculate(el, rs)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestConnectionIgnoresUnknownJointAndCode(t *testing.T) {
	el := element("E", map[string]string{
		"CONNECTION_CODE": "BOLTED-01",
		"JointType":       "pinned",
		"BoltCount":       "0",
	})

	items, err := NewConnectionProvider().Calculate(el, rules.Defaults())
	require.NoError(t, err)
	assert.Empty(t, items)
}
