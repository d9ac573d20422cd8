package srs

// Definition of an EPSG coordinate reference system as needed by this
// library: a proj4 init string plus whether the axes are geographic degrees.
type EpsgDefinition struct {
	Code        int
	Description string
	Proj4       string
	Geographic  bool
}

// The subset of the EPSG database this library ships with. Reprojection is
// delegated to proj4, so adding a code here is all that is needed to support
// a new horizontal reference system.
var epsgDatabase = map[int]*EpsgDefinition{
	4326: {
		Code:        4326,
		Description: "WGS 84",
		Proj4:       "+proj=longlat +datum=WGS84 +no_defs",
		Geographic:  true,
	},
	4979: {
		Code:        4979,
		Description: "WGS 84 (geographic 3D)",
		Proj4:       "+proj=longlat +datum=WGS84 +no_defs",
		Geographic:  true,
	},
	3857: {
		Code:        3857,
		Description: "WGS 84 / Pseudo-Mercator",
		Proj4:       "+proj=merc +a=6378137 +b=6378137 +lat_ts=0 +lon_0=0 +x_0=0 +y_0=0 +k=1 +units=m +nadgrids=@null +no_defs",
		Geographic:  false,
	},
	3395: {
		Code:        3395,
		Description: "WGS 84 / World Mercator",
		Proj4:       "+proj=merc +lon_0=0 +k=1 +x_0=0 +y_0=0 +datum=WGS84 +units=m +no_defs",
		Geographic:  false,
	},
	25832: {
		Code:        25832,
		Description: "ETRS89 / UTM zone 32N",
		Proj4:       "+proj=utm +zone=32 +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs",
		Geographic:  false,
	},
	32632: {
		Code:        32632,
		Description: "WGS 84 / UTM zone 32N",
		Proj4:       "+proj=utm +zone=32 +datum=WGS84 +units=m +no_defs",
		Geographic:  false,
	},
	32633: {
		Code:        32633,
		Description: "WGS 84 / UTM zone 33N",
		Proj4:       "+proj=utm +zone=33 +datum=WGS84 +units=m +no_defs",
		Geographic:  false,
	},
}

// LookupEpsg returns the shipped definition for the given code, or nil if
// the code is unknown.
func LookupEpsg(code int) *EpsgDefinition {
	return epsgDatabase[code]
}
