package converter

import (
	"fmt"
	"sort"
	"strconv"
)

// PlanRenditions decides the final rendition ladder for a source of the
// given dimensions. The source quality is always representable: if no user
// spec carries the source's "{height}p" label and none targets the exact
// source pixel size, a synthetic original spec is appended; if a spec under
// a different label already targets the exact pixel size, that spec is
// marked original instead, so the same resolution is never encoded twice.
func PlanRenditions(width, height int, sourceBitrate string, specs []RenditionSpec) []RenditionSpec {
	origLabel := fmt.Sprintf("%dp", height)
	origSize := fmt.Sprintf("%dx%d", width, height)

	out := make([]RenditionSpec, len(specs))
	copy(out, specs)

	// The planner owns the original flag; caller-set values are discarded so
	// exactly one entry ends up tagged.
	labelIdx, sizeIdx := -1, -1
	for i := range out {
		out[i].IsOriginal = false
		if out[i].Name == origLabel && labelIdx < 0 {
			labelIdx = i
		}
		if out[i].Size == origSize && sizeIdx < 0 {
			sizeIdx = i
		}
	}

	switch {
	case labelIdx >= 0:
		out[labelIdx].IsOriginal = true
	case sizeIdx >= 0:
		out[sizeIdx].IsOriginal = true
	default:
		out = append(out, RenditionSpec{
			Name:       origLabel,
			Size:       origSize,
			Bitrate:    sourceBitrate,
			IsOriginal: true,
		})
		sort.SliceStable(out, func(i, j int) bool {
			return numericPrefix(out[i].Name) < numericPrefix(out[j].Name)
		})
	}

	return out
}

// numericPrefix parses the leading integer of a rendition label ("720p" ->
// 720). Labels with no leading digits parse as 0, so they sort first and
// stay in their relative order; they are display-only.
func numericPrefix(name string) int {
	end := 0
	for end < len(name) && name[end] >= '0' && name[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(name[:end])
	if err != nil {
		return 0
	}
	return n
}
