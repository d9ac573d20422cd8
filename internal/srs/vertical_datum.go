package srs

import (
	"strings"
	"sync"
)

// VerticalDatum is the reference surface used to interpret height values.
// A datum with a geoid expresses heights relative to mean sea level; a datum
// without one expresses heights above the reference ellipsoid. Transforming
// between datums always requires the geodetic lat/lon of the height sample,
// since geoid undulation varies by position.
type VerticalDatum struct {
	name       string
	initString string
	geoid      *Geoid
}

var (
	vdatumCacheMutex sync.Mutex
	vdatumCache      = make(map[string]*VerticalDatum)
)

// NewVerticalDatum creates a geoid based datum.
func NewVerticalDatum(name, initString string, geoid *Geoid) *VerticalDatum {
	return &VerticalDatum{name: name, initString: initString, geoid: geoid}
}

// RegisterVerticalDatum publishes a datum under its init string so that
// GetVerticalDatum can resolve it. There is only ever one instance per
// unique init string.
func RegisterVerticalDatum(vd *VerticalDatum) {
	vdatumCacheMutex.Lock()
	defer vdatumCacheMutex.Unlock()
	vdatumCache[strings.ToLower(vd.initString)] = vd
}

// GetVerticalDatum resolves a datum by init string. The empty string resolves
// to nil, which stands for the ellipsoidal datum.
func GetVerticalDatum(init string) *VerticalDatum {
	if init == "" {
		return nil
	}
	vdatumCacheMutex.Lock()
	defer vdatumCacheMutex.Unlock()
	return vdatumCache[strings.ToLower(init)]
}

func (vd *VerticalDatum) Name() string {
	if vd == nil {
		return "ellipsoid"
	}
	return vd.name
}

func (vd *VerticalDatum) InitString() string {
	if vd == nil {
		return ""
	}
	return vd.initString
}

func (vd *VerticalDatum) Geoid() *Geoid {
	if vd == nil {
		return nil
	}
	return vd.geoid
}

// MslToHae converts a height relative to this datum's sea level surface into
// a height above the ellipsoid. For an ellipsoidal (nil) datum this is the
// identity.
func (vd *VerticalDatum) MslToHae(latDeg, lonDeg, msl float64) float64 {
	if vd == nil || vd.geoid == nil {
		return msl
	}
	return msl + float64(vd.geoid.Offset(latDeg, lonDeg))
}

// HaeToMsl converts an ellipsoid height into a height relative to this
// datum's sea level surface.
func (vd *VerticalDatum) HaeToMsl(latDeg, lonDeg, hae float64) float64 {
	if vd == nil || vd.geoid == nil {
		return hae
	}
	return hae - float64(vd.geoid.Offset(latDeg, lonDeg))
}

// IsEquivalentTo reports whether two datums describe the same surface. Both
// nil and a datum without a geoid mean the plain ellipsoid.
func (vd *VerticalDatum) IsEquivalentTo(other *VerticalDatum) bool {
	if vd.Geoid() == nil && other.Geoid() == nil {
		return true
	}
	if vd == nil || other == nil {
		return false
	}
	return strings.EqualFold(vd.initString, other.initString)
}

// TransformVerticalDatum converts a Z value from one datum to another at the
// given geodetic position. Returns false only on a nil-to-nil degenerate
// request that needs no conversion but carries no position; all representable
// conversions succeed because datum lookups clamp at grid borders.
func TransformVerticalDatum(from, to *VerticalDatum, latDeg, lonDeg float64, z float64) (float64, bool) {
	if from.IsEquivalentTo(to) {
		return z, true
	}
	hae := from.MslToHae(latDeg, lonDeg, z)
	return to.HaeToMsl(latDeg, lonDeg, hae), true
}
