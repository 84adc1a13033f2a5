package errors

import (
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	err := RuleDataMalformed("material_prices", fmt.Errorf("unexpected token"))

	assert.Equal(t, "[RULE_DATA_MALFORMED] rule table material_prices is malformed: unexpected token", err.Error())
	assert.Equal(t, "material_prices", err.Context["table"])
}

func TestIsTypeFollowsWrappedChain(t *testing.T) {
	load := RuleDataMalformed("waste_factors", fmt.Errorf("bad number"))
	calc := Calculation("rule load failed", load)
	wrapped := fmt.Errorf("request 42: %w", calc)

	assert.True(t, IsType(wrapped, TypeCalculation))
	assert.True(t, IsType(wrapped, TypeRuleDataMalformed))
	assert.False(t, IsType(wrapped, TypeProviderFailure))
	assert.False(t, IsType(fmt.Errorf("plain"), TypeCalculation))
	assert.False(t, IsType(nil, TypeCalculation))
}

func TestUnwrapReachesCause(t *testing.T) {
	err := RuleSourceUnavailable("labor_rates", fs.ErrNotExist)

	require.ErrorIs(t, err, fs.ErrNotExist)

	typ, ok := TypeOf(err)
	require.True(t, ok)
	assert.Equal(t, TypeRuleSourceUnavailable, typ)
}

func TestProviderFailureContext(t *testing.T) {
	err := ProviderFailure("connection", "E7", fmt.Errorf("boom"))

	assert.True(t, err.Is(TypeProviderFailure))
	assert.Equal(t, "connection", err.Context["provider"])
	assert.Equal(t, "E7", err.Context["element_id"])
}
