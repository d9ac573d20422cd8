package quadtree

import (
	"log"
)

// DefaultMorphStartRatio is the fraction of a LOD's visibility range at
// which geomorphing towards the parent representation begins. Tunable per
// pager; this default matches common terrain engine behavior.
const DefaultMorphStartRatio = 0.66

// LOD holds the distance switching information for one quadtree level:
// how far away tiles of this level are still shown, and over which distance
// band their vertices morph into the coarser parent mesh to hide the switch.
type LOD struct {
	VisibilityRange float64
	MorphStart      float64
	MorphEnd        float64
}

// SelectionInfo is the per-terrain LOD distance table, computed once when
// the terrain is created and immutable afterwards. Concurrent readers need
// no locking once Initialize has returned.
type SelectionInfo struct {
	lods            []LOD
	firstLOD        uint32
	morphStartRatio float64
}

// NewSelectionInfo creates an empty table. A morphStartRatio of zero selects
// the default ratio.
func NewSelectionInfo(morphStartRatio float64) *SelectionInfo {
	if morphStartRatio <= 0 || morphStartRatio >= 1 {
		morphStartRatio = DefaultMorphStartRatio
	}
	return &SelectionInfo{morphStartRatio: morphStartRatio}
}

// Initialize computes the LOD table for the quadtree spanned by firstLod and
// maxLod over the given profile. The tile radius halves at every level, so
// visibilityRange(lod) = rootRadius / 2^(lod-firstLod) * mtrf, where mtrf
// scales how many tile radii away a tile stays selected. Degenerate input
// (nil profile, maxLod < firstLod) leaves the table empty rather than
// failing; callers must check GetNumLODs before use.
func (si *SelectionInfo) Initialize(firstLod, maxLod uint32, profile *Profile, mtrf float64) {
	if len(si.lods) > 0 {
		log.Println("selection info already initialized, ignoring")
		return
	}
	if profile == nil || maxLod < firstLod || mtrf <= 0 {
		si.lods = nil
		return
	}

	si.firstLOD = firstLod
	si.lods = make([]LOD, maxLod-firstLod+1)

	rootRadius := profile.RootTileRadius()
	for lod := maxLod; ; lod-- {
		i := lod - firstLod
		tileRadius := rootRadius / float64(uint64(1)<<i)
		visibilityRange := tileRadius * mtrf
		si.lods[i] = LOD{
			VisibilityRange: visibilityRange,
			MorphStart:      visibilityRange * si.morphStartRatio,
			MorphEnd:        visibilityRange,
		}
		if lod == firstLod {
			break
		}
	}
}

// GetNumLODs returns the table size; zero means Initialize failed or was
// never called.
func (si *SelectionInfo) GetNumLODs() int {
	return len(si.lods)
}

func (si *SelectionInfo) GetFirstLOD() uint32 {
	return si.firstLOD
}

// GetMaxLOD returns the finest level in the table.
func (si *SelectionInfo) GetMaxLOD() uint32 {
	if len(si.lods) == 0 {
		return 0
	}
	return si.firstLOD + uint32(len(si.lods)) - 1
}

// GetLOD returns the entry for the given level, or a zero-valued entry when
// the level is outside [firstLOD, maxLOD]. Callers guard with GetNumLODs.
func (si *SelectionInfo) GetLOD(lod uint32) LOD {
	if lod < si.firstLOD || lod >= si.firstLOD+uint32(len(si.lods)) {
		return LOD{}
	}
	return si.lods[lod-si.firstLOD]
}

// MorphFactor returns the geomorphing blend weight for a tile of the given
// level at the given camera distance: 0 fully refined, 1 fully morphed into
// the parent shape.
func (si *SelectionInfo) MorphFactor(lod uint32, distance float64) float64 {
	entry := si.GetLOD(lod)
	if entry.MorphEnd <= entry.MorphStart {
		return 0
	}
	f := (distance - entry.MorphStart) / (entry.MorphEnd - entry.MorphStart)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
