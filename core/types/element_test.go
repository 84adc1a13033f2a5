package types

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertiesDecimal(t *testing.T) {
	props := Properties{
		"Empty":   "",
		"Garbage": "n/a",
		"Weight":  " 12.5 ",
		"Neg":     "-3",
		"Sci":     "1e3",
		"Huge":    "1e50000000",
		"Tiny":    "1e-40",
		"Long":    "1" + strings.Repeat("0", 80),
		"Edge":    "1e28",
		"Float":   "1.2345678901234567e-05",
	}

	tests := []struct {
		name     string
		keys     []string
		expected string
		found    bool
	}{
		{"missing", []string{"Nope"}, "0", false},
		{"empty skipped", []string{"Empty", "Weight"}, "12.5", true},
		{"unparseable skipped", []string{"Garbage", "Weight"}, "12.5", true},
		{"negative is present", []string{"Neg"}, "-3", true},
		{"scientific notation", []string{"Sci"}, "1000", true},
		{"huge exponent is absent", []string{"Huge"}, "0", false},
		{"tiny exponent is absent", []string{"Tiny"}, "0", false},
		{"overlong value is absent", []string{"Long"}, "0", false},
		{"out of range falls through", []string{"Huge", "Weight"}, "12.5", true},
		{"exponent at bound", []string{"Edge"}, "10000000000000000000000000000", true},
		{"float64 rendering", []string{"Float"}, "0.000012345678901234567", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := props.Decimal(tt.keys...)
			assert.Equal(t, tt.found, ok)
			assert.True(t, v.Equal(d(tt.expected)), "got %s", v)
		})
	}
}

func TestPropertiesPositive(t *testing.T) {
	props := Properties{"A": "0", "B": "-1", "C": "4"}

	_, ok := props.Positive("A")
	assert.False(t, ok)
	_, ok = props.Positive("B")
	assert.False(t, ok)

	// first parseable key wins even when it is not positive
	_, ok = props.Positive("A", "C")
	assert.False(t, ok)

	v, ok := props.Positive("C")
	assert.True(t, ok)
	assert.True(t, v.Equal(d("4")))
}

func TestPropertiesHasAndFirst(t *testing.T) {
	props := Properties{"MATERIAL": "", "Type.MATERIAL": "STEEL/S235"}

	assert.True(t, props.Has("MATERIAL"))
	assert.False(t, props.Has("JointType"))

	v, ok := props.First("MATERIAL", "Type.MATERIAL")
	assert.True(t, ok)
	assert.Equal(t, "STEEL/S235", v)
}

func TestElementJSON(t *testing.T) {
	raw := `{"global_id":"2O2Fr$t4X7Zf8NOew3FLOH","type_name":"IfcMechanicalFastener","properties":{"BoltCount":"8"}}`

	var el Element
	require.NoError(t, json.Unmarshal([]byte(raw), &el))

	assert.Equal(t, "2O2Fr$t4X7Zf8NOew3FLOH", el.ID())
	assert.Equal(t, "2O2Fr$t4X7Zf8NOew3FLOH", el.DisplayName())
	assert.True(t, el.IsType("IfcFastener", "IfcMechanicalFastener"))
	assert.False(t, el.IsType("IfcBeam"))
	assert.Equal(t, "8", el.Properties["BoltCount"])
}
