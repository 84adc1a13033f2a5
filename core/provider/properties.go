package provider

import (
	"github.com/shopspring/decimal"

	"ifc-cost/core/types"
)

// Property keys, in lookup priority order
var (
	materialKeys = []string{"MATERIAL", "Type.MATERIAL"}

	weightKeys = []string{"BaseQuantities.NetWeight", "NetWeight", "Weight"}
	volumeKeys = []string{"BaseQuantities.NetVolume", "NetVolume", "Volume"}
	widthKeys  = []string{"BaseQuantities.Width", "Width", "w"}
	heightKeys = []string{"BaseQuantities.Height", "Height", "h"}
	lengthKeys = []string{"BaseQuantities.Length", "Length", "l"}

	connectionKeys  = []string{"CONNECTION_CODE", "Welding", "Bolts", "WeldLength", "BoltCount", "JointType"}
	fastenerTypes   = []string{"IfcFastener", "IfcMechanicalFastener"}
	weldLengthKeys  = []string{"WeldLength", "WeldingLength", "BaseQuantities.Length"}
	boltCountKeys   = []string{"BoltCount", "Bolts", "FastenerCount"}
	laborKeys       = []string{"LaborHours", "CuttingLength"}
	surfaceKeys     = []string{"SurfaceTreatment", "Coating"}
	surfaceAreaKeys = []string{"BaseQuantities.OuterSurfaceArea", "OuterSurfaceArea", "SurfaceArea"}
)

const (
	keyConnectionCode = "CONNECTION_CODE"
	keyBoltSize       = "BoltSize"
	keyJointType      = "JointType"
	keyLaborHours     = "LaborHours"
	keyLaborType      = "LaborType"
	keyCuttingLength  = "CuttingLength"

	defaultBoltSize  = "M12"
	defaultLaborType = "welding"
	cuttingLaborType = "cutting"
)

// millimeterThreshold separates lengths given in mm from lengths given in m
var millimeterThreshold = decimal.NewFromInt(100)

// MaterialOf returns the declared material of an element
func MaterialOf(el types.Element) (string, bool) {
	return el.Properties.First(materialKeys...)
}

// volumeOf resolves a volume in m³ from a declared volume or W×H×L in mm
func volumeOf(props types.Properties) (decimal.Decimal, bool) {
	if v, ok := props.Positive(volumeKeys...); ok {
		return v, true
	}
	return volumeFromDimensions(props)
}

func volumeFromDimensions(props types.Properties) (decimal.Decimal, bool) {
	w, okW := props.Positive(widthKeys...)
	h, okH := props.Positive(heightKeys...)
	l, okL := props.Positive(lengthKeys...)
	if !okW || !okH || !okL {
		return decimal.Zero, false
	}
	// mm³ to m³
	return w.Mul(h).Mul(l).Shift(-9), true
}

// toMeters treats lengths above 100 as millimeters
func toMeters(length decimal.Decimal) decimal.Decimal {
	if length.GreaterThan(millimeterThreshold) {
		return length.Shift(-3)
	}
	return length
}
