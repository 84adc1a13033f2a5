package rules

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"ifc-cost/internal/errors"
)

// Numeric attributes stay cty values so prices keep the exact literal
// written in the file; they are rendered as JSON numbers in table().

type hclMaterial struct {
	Key          string    `hcl:"key,label"`
	Unit         string    `hcl:"unit"`
	PricePerUnit cty.Value `hcl:"price_per_unit"`
	DensityKgM3  cty.Value `hcl:"density_kg_m3,optional"`
}

type hclLabor struct {
	Key          string    `hcl:"key,label"`
	RatePerHour  cty.Value `hcl:"rate_per_hour"`
	RatePerMeter cty.Value `hcl:"rate_per_meter,optional"`
}

type hclWelding struct {
	PricePerMeter     cty.Value `hcl:"price_per_meter,optional"`
	PricePerOperation cty.Value `hcl:"price_per_operation,optional"`
}

type hclBolt struct {
	Size         string    `hcl:"size,label"`
	PricePerUnit cty.Value `hcl:"price_per_unit"`
}

type hclConnectionType struct {
	Key   string    `hcl:"key,label"`
	Price cty.Value `hcl:"price"`
}

type hclSurfaceTreatment struct {
	Key        string    `hcl:"key,label"`
	PricePerM2 cty.Value `hcl:"price_per_m2"`
}

// hclBundle is the top-level schema of a rules.hcl file
type hclBundle struct {
	Materials         []hclMaterial         `hcl:"material,block"`
	Labor             []hclLabor            `hcl:"labor,block"`
	Welding           *hclWelding           `hcl:"welding,block"`
	Bolts             []hclBolt             `hcl:"bolt,block"`
	ConnectionTypes   []hclConnectionType   `hcl:"connection_type,block"`
	SurfaceTreatments []hclSurfaceTreatment `hcl:"surface_treatment,block"`
	WasteFactors      cty.Value             `hcl:"waste_factors,optional"`
	EnabledProviders  []string              `hcl:"enabled_providers,optional"`
}

// optionalNumber is number with absent attributes rendered as 0
func optionalNumber(attr string, v cty.Value) (json.Number, error) {
	if v.IsNull() {
		return "0", nil
	}
	return number(attr, v)
}

// number renders an HCL number as an exact JSON number
func number(attr string, v cty.Value) (json.Number, error) {
	if v.IsNull() {
		return "", fmt.Errorf("%s: a number is required", attr)
	}
	n, err := convert.Convert(v, cty.Number)
	if err != nil {
		return "", fmt.Errorf("%s: %w", attr, err)
	}
	if n.IsNull() || !n.IsKnown() {
		return "", fmt.Errorf("%s: a number is required", attr)
	}
	return json.Number(n.AsBigFloat().Text('f', -1)), nil
}

// HCLSource serves every table from a single HCL bundle.
// Tables the bundle does not declare are unavailable.
type HCLSource struct {
	path string
}

// NewHCLSource creates a source for an HCL rules file
func NewHCLSource(path string) *HCLSource {
	return &HCLSource{path: path}
}

// Name returns the source name
func (s *HCLSource) Name() string {
	return "hcl:" + s.path
}

// Table decodes the bundle and extracts one table.
// The file is re-read on every call so an invalidated loader sees edits.
func (s *HCLSource) Table(ctx context.Context, table string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bundle, err := s.decode()
	if err != nil {
		if stderrors.Is(err, ErrSourceUnavailable) {
			return nil, err
		}
		return nil, errors.RuleDataMalformed(table, err)
	}

	doc, ok, err := bundle.table(table)
	if err != nil {
		return nil, errors.RuleDataMalformed(table, fmt.Errorf("%s: %w", s.path, err))
	}
	if !ok {
		return nil, ErrSourceUnavailable
	}
	return json.Marshal(doc)
}

func (s *HCLSource) decode() (*hclBundle, error) {
	src, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, s.path, err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, s.path)
	if diags.HasErrors() {
		return nil, diags
	}

	var bundle hclBundle
	if diags := gohcl.DecodeBody(file.Body, nil, &bundle); diags.HasErrors() {
		return nil, diags
	}
	return &bundle, nil
}

// table converts the declared blocks of one table into its JSON shape
func (b *hclBundle) table(name string) (interface{}, bool, error) {
	switch name {
	case TableMaterialPrices:
		if len(b.Materials) == 0 {
			return nil, false, nil
		}
		out := make(map[string]interface{}, len(b.Materials))
		for _, m := range b.Materials {
			price, err := number("material "+m.Key+": price_per_unit", m.PricePerUnit)
			if err != nil {
				return nil, false, err
			}
			entry := map[string]interface{}{
				"unit":           m.Unit,
				"price_per_unit": price,
			}
			if !m.DensityKgM3.IsNull() {
				density, err := number("material "+m.Key+": density_kg_m3", m.DensityKgM3)
				if err != nil {
					return nil, false, err
				}
				entry["density_kg_m3"] = density
			}
			out[m.Key] = entry
		}
		return out, true, nil

	case TableLaborRates:
		if len(b.Labor) == 0 {
			return nil, false, nil
		}
		out := make(map[string]interface{}, len(b.Labor))
		for _, l := range b.Labor {
			hour, err := number("labor "+l.Key+": rate_per_hour", l.RatePerHour)
			if err != nil {
				return nil, false, err
			}
			entry := map[string]interface{}{"rate_per_hour": hour}
			if !l.RatePerMeter.IsNull() {
				meter, err := number("labor "+l.Key+": rate_per_meter", l.RatePerMeter)
				if err != nil {
					return nil, false, err
				}
				entry["rate_per_meter"] = meter
			}
			out[l.Key] = entry
		}
		return out, true, nil

	case TableConnectionCosts:
		if b.Welding == nil && len(b.Bolts) == 0 && len(b.ConnectionTypes) == 0 {
			return nil, false, nil
		}
		out := map[string]interface{}{}
		if b.Welding != nil {
			perMeter, err := optionalNumber("welding: price_per_meter", b.Welding.PricePerMeter)
			if err != nil {
				return nil, false, err
			}
			perOperation, err := optionalNumber("welding: price_per_operation", b.Welding.PricePerOperation)
			if err != nil {
				return nil, false, err
			}
			out["welding"] = map[string]interface{}{
				"price_per_meter":     perMeter,
				"price_per_operation": perOperation,
			}
		}
		bolts := make(map[string]interface{}, len(b.Bolts))
		for _, bolt := range b.Bolts {
			price, err := number("bolt "+bolt.Size+": price_per_unit", bolt.PricePerUnit)
			if err != nil {
				return nil, false, err
			}
			bolts[bolt.Size] = map[string]interface{}{"price_per_unit": price}
		}
		out["bolts"] = bolts
		types := make(map[string]interface{}, len(b.ConnectionTypes))
		for _, ct := range b.ConnectionTypes {
			price, err := number("connection_type "+ct.Key+": price", ct.Price)
			if err != nil {
				return nil, false, err
			}
			types[ct.Key] = map[string]interface{}{"price": price}
		}
		out["connection_types"] = types
		return out, true, nil

	case TableWasteFactors:
		if b.WasteFactors.IsNull() {
			return nil, false, nil
		}
		ty := b.WasteFactors.Type()
		if !ty.IsObjectType() && !ty.IsMapType() {
			return nil, false, fmt.Errorf("waste_factors: an object is required")
		}
		out := make(map[string]json.Number, b.WasteFactors.LengthInt())
		for it := b.WasteFactors.ElementIterator(); it.Next(); {
			k, v := it.Element()
			factor, err := number("waste_factors: "+k.AsString(), v)
			if err != nil {
				return nil, false, err
			}
			out[k.AsString()] = factor
		}
		return out, true, nil

	case TableCalculationRules:
		if b.EnabledProviders == nil {
			return nil, false, nil
		}
		return map[string]interface{}{"enabled_providers": b.EnabledProviders}, true, nil

	case TableSurfaceTreatments:
		if len(b.SurfaceTreatments) == 0 {
			return nil, false, nil
		}
		out := make(map[string]interface{}, len(b.SurfaceTreatments))
		for _, st := range b.SurfaceTreatments {
			price, err := number("surface_treatment "+st.Key+": price_per_m2", st.PricePerM2)
			if err != nil {
				return nil, false, err
			}
			out[st.Key] = map[string]interface{}{"price_per_m2": price}
		}
		return out, true, nil
	}
	return nil, false, nil
}
