package srs

import (
	"fmt"
	"sync"
)

// SpatialReference identifies a horizontal coordinate reference system by
// EPSG code, optionally paired with a vertical datum for the interpretation
// of Z values. Instances are immutable and shared; use FromEpsg or one of the
// well known constructors.
type SpatialReference struct {
	code       int
	name       string
	proj4      string
	geographic bool
	vdatum     *VerticalDatum
}

var (
	srsCacheMutex sync.Mutex
	srsCache      = make(map[int]*SpatialReference)
)

// FromEpsg returns the shared SpatialReference for an EPSG code carried in
// the built-in definition table. The returned instance has an ellipsoidal
// (nil-geoid) vertical datum.
func FromEpsg(code int) (*SpatialReference, error) {
	srsCacheMutex.Lock()
	defer srsCacheMutex.Unlock()

	if cached, ok := srsCache[code]; ok {
		return cached, nil
	}

	def := LookupEpsg(code)
	if def == nil {
		return nil, fmt.Errorf("epsg code %d not present in the internal database", code)
	}

	out := &SpatialReference{
		code:       def.Code,
		name:       def.Description,
		proj4:      def.Proj4,
		geographic: def.Geographic,
	}
	srsCache[code] = out
	return out, nil
}

// WGS84 returns the geographic WGS 84 reference. It panics only if the
// built-in database is broken, which is a programming error.
func WGS84() *SpatialReference {
	s, err := FromEpsg(4326)
	if err != nil {
		panic(err)
	}
	return s
}

// SphericalMercator returns the EPSG:3857 web mercator reference.
func SphericalMercator() *SpatialReference {
	s, err := FromEpsg(3857)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *SpatialReference) Code() int              { return s.code }
func (s *SpatialReference) Name() string           { return s.name }
func (s *SpatialReference) Proj4() string          { return s.proj4 }
func (s *SpatialReference) IsGeographic() bool     { return s.geographic }
func (s *SpatialReference) Datum() *VerticalDatum  { return s.vdatum }
func (s *SpatialReference) Ellipsoid() Ellipsoid   { return WGS84Ellipsoid }

// WithVerticalDatum returns a copy of this reference bound to the given
// vertical datum. The receiver is not modified.
func (s *SpatialReference) WithVerticalDatum(vd *VerticalDatum) *SpatialReference {
	out := *s
	out.vdatum = vd
	return &out
}

// IsHorizontallyEquivalentTo reports whether two references share the same
// horizontal system regardless of vertical datum.
func (s *SpatialReference) IsHorizontallyEquivalentTo(other *SpatialReference) bool {
	if s == nil || other == nil {
		return false
	}
	return s.code == other.code || s.proj4 == other.proj4
}

// IsEquivalentTo reports full equivalence, vertical datum included.
func (s *SpatialReference) IsEquivalentTo(other *SpatialReference) bool {
	if !s.IsHorizontallyEquivalentTo(other) {
		return false
	}
	return s.vdatum.IsEquivalentTo(other.vdatum)
}

func (s *SpatialReference) String() string {
	if s == nil {
		return "srs(nil)"
	}
	if s.vdatum != nil && s.vdatum.Geoid() != nil {
		return fmt.Sprintf("EPSG:%d (%s, vdatum %s)", s.code, s.name, s.vdatum.Name())
	}
	return fmt.Sprintf("EPSG:%d (%s)", s.code, s.name)
}
