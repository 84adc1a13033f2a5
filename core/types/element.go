// Package types - Building model element types
package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// UnknownElementID is used when an element carries no global_id
	UnknownElementID = "unknown"

	// UnknownElementType is used when an element carries no type_name
	UnknownElementType = "Unknown"
)

// Element is one building component as delivered by the model parser.
// Properties are opaque string attributes; numeric ones are parsed on demand.
type Element struct {
	// GlobalID is the IFC GlobalId
	GlobalID string `json:"global_id"`

	// TypeName is the IFC entity name (e.g. "IfcBeam")
	TypeName string `json:"type_name"`

	// Name is the optional display name
	Name string `json:"name,omitempty"`

	// Properties are flattened property-set values
	Properties Properties `json:"properties"`
}

// ID returns the element id or a placeholder
func (e Element) ID() string {
	if e.GlobalID == "" {
		return UnknownElementID
	}
	return e.GlobalID
}

// Type returns the element type or a placeholder
func (e Element) Type() string {
	if e.TypeName == "" {
		return UnknownElementType
	}
	return e.TypeName
}

// DisplayName returns the name, falling back to the element id
func (e Element) DisplayName() string {
	if e.Name == "" {
		return e.ID()
	}
	return e.Name
}

// IsType reports whether the type name contains any of the given IFC entity names
func (e Element) IsType(names ...string) bool {
	for _, n := range names {
		if strings.Contains(e.TypeName, n) {
			return true
		}
	}
	return false
}

// Properties maps attribute names to raw string values
type Properties map[string]string

// Has reports whether any of the keys is present
func (p Properties) Has(keys ...string) bool {
	for _, k := range keys {
		if _, ok := p[k]; ok {
			return true
		}
	}
	return false
}

// First returns the first non-empty value among keys
func (p Properties) First(keys ...string) (string, bool) {
	for _, k := range keys {
		if v := p[k]; v != "" {
			return v, true
		}
	}
	return "", false
}

const (
	// MaxPropertyExponent bounds the decimal exponent of a numeric property.
	// "1e50000000" would otherwise expand to millions of digits when printed.
	MaxPropertyExponent = 28

	// MaxPropertyLength bounds the length of a numeric property value
	MaxPropertyLength = 64
)

// Decimal returns the first value among keys that parses as a number.
// Empty, unparseable and out-of-range values are treated as absent.
func (p Properties) Decimal(keys ...string) (decimal.Decimal, bool) {
	for _, k := range keys {
		if d, ok := parseNumber(p[k]); ok {
			return d, true
		}
	}
	return decimal.Zero, false
}

func parseNumber(raw string) (decimal.Decimal, bool) {
	v := strings.TrimSpace(raw)
	if v == "" || len(v) > MaxPropertyLength {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, false
	}
	if exp := d.Exponent(); exp > MaxPropertyExponent || exp < -MaxPropertyExponent {
		return decimal.Zero, false
	}
	return d, true
}

// Positive returns the first parseable value among keys if it is strictly positive
func (p Properties) Positive(keys ...string) (decimal.Decimal, bool) {
	d, ok := p.Decimal(keys...)
	if !ok || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}
