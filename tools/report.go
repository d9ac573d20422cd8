package tools

import (
	"fmt"
	"strings"

	"github.com/golang/glog"
	"github.com/shopspring/decimal"

	"github.com/alpine-maps/terrain_pager/internal/quadtree"
)

// FormatSelectionReport renders the LOD distance table as a fixed width
// text report. Ranges are in meters, rounded to the centimeter so the rows
// stay comparable across runs regardless of float formatting.
func FormatSelectionReport(selectionInfo *quadtree.SelectionInfo) string {
	if selectionInfo == nil || selectionInfo.GetNumLODs() == 0 {
		glog.Warning("selection report requested for an uninitialized selection info")
		return "no levels of detail available"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-5s %18s %18s %18s\n", "lod", "visibility_range", "morph_start", "morph_end"))

	for lod := selectionInfo.GetFirstLOD(); lod <= selectionInfo.GetMaxLOD(); lod++ {
		entry := selectionInfo.GetLOD(lod)
		sb.WriteString(fmt.Sprintf("%-5d %18s %18s %18s\n",
			lod,
			formatMeters(entry.VisibilityRange),
			formatMeters(entry.MorphStart),
			formatMeters(entry.MorphEnd),
		))
	}
	return sb.String()
}

func formatMeters(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}
