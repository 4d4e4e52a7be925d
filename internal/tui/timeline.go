package tui

import (
	"fmt"
	"math"

	"github.com/moviola/moviola/internal/timeline"
)

// barCell maps a timeline offset to a cell on a bar of the given width.
// An offset at or past the duration lands on the last cell so the playhead
// never renders outside the bar.
func barCell(offsetMs, durationMs int64, cells int) int {
	if cells <= 0 || durationMs <= 0 || offsetMs <= 0 {
		return 0
	}
	cell := int(offsetMs * int64(cells) / durationMs)
	if cell >= cells {
		cell = cells - 1
	}
	return cell
}

// markerCells groups marker indexes by bar cell so collisions render as one
// cluster glyph.
func markerCells(markers []timeline.Marker, durationMs int64, cells int) map[int][]int {
	grouped := make(map[int][]int, len(markers))
	for i, m := range markers {
		cell := barCell(m.TimestampMs, durationMs, cells)
		grouped[cell] = append(grouped[cell], i)
	}
	return grouped
}

// markerSymbol returns the timeline glyph for a marker type.
func markerSymbol(t timeline.MarkerType) string {
	switch t {
	case timeline.MarkerError:
		return "✗"
	case timeline.MarkerNetworkError:
		return "◆"
	case timeline.MarkerRageClick:
		return "▲"
	case timeline.MarkerDeadClick:
		return "△"
	default:
		return "•"
	}
}

// markerPriority ranks marker types for cluster glyph coloring.
// Errors outrank behavioral signals.
func markerPriority(t timeline.MarkerType) int {
	switch t {
	case timeline.MarkerError:
		return 4
	case timeline.MarkerNetworkError:
		return 3
	case timeline.MarkerRageClick:
		return 2
	case timeline.MarkerDeadClick:
		return 1
	default:
		return 0
	}
}

// formatClock renders a millisecond offset as mm:ss.mmm, adding an hour
// field past 59:59.999.
func formatClock(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	millis := ms % 1000
	seconds := ms / 1000
	minutes := seconds / 60
	hours := minutes / 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%03d", hours, minutes%60, seconds%60, millis)
	}
	return fmt.Sprintf("%02d:%02d.%03d", minutes, seconds%60, millis)
}

// nextSpeed returns the ladder entry adjacent to current, clamped at the
// ends. A multiplier off the ladder snaps to the nearest entry first.
func nextSpeed(ladder []float64, current float64, up bool) float64 {
	if len(ladder) == 0 {
		return current
	}
	idx := 0
	for i, v := range ladder {
		if math.Abs(v-current) < math.Abs(ladder[idx]-current) {
			idx = i
		}
	}
	if up && idx < len(ladder)-1 {
		idx++
	} else if !up && idx > 0 {
		idx--
	}
	return ladder[idx]
}
