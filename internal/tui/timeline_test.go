package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moviola/moviola/internal/timeline"
)

func TestBarCell(t *testing.T) {
	tests := []struct {
		name       string
		offsetMs   int64
		durationMs int64
		cells      int
		want       int
	}{
		{name: "start", offsetMs: 0, durationMs: 1000, cells: 10, want: 0},
		{name: "midpoint", offsetMs: 500, durationMs: 1000, cells: 10, want: 5},
		{name: "just_before_end", offsetMs: 999, durationMs: 1000, cells: 10, want: 9},
		{name: "at_duration_clamps_to_last_cell", offsetMs: 1000, durationMs: 1000, cells: 10, want: 9},
		{name: "past_duration_clamps_to_last_cell", offsetMs: 1500, durationMs: 1000, cells: 10, want: 9},
		{name: "zero_duration", offsetMs: 500, durationMs: 0, cells: 10, want: 0},
		{name: "negative_offset", offsetMs: -100, durationMs: 1000, cells: 10, want: 0},
		{name: "zero_cells", offsetMs: 500, durationMs: 1000, cells: 0, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, barCell(tt.offsetMs, tt.durationMs, tt.cells))
		})
	}
}

func TestMarkerCells_GroupsCollisions(t *testing.T) {
	markers := []timeline.Marker{
		{TimestampMs: 0, Type: timeline.MarkerError},
		{TimestampMs: 500, Type: timeline.MarkerNetworkError},
		{TimestampMs: 510, Type: timeline.MarkerRageClick},
		{TimestampMs: 999, Type: timeline.MarkerDeadClick},
	}

	grouped := markerCells(markers, 1000, 10)

	assert.Equal(t, map[int][]int{
		0: {0},
		5: {1, 2},
		9: {3},
	}, grouped)
}

func TestMarkerCells_Empty(t *testing.T) {
	assert.Empty(t, markerCells(nil, 1000, 10))
}

func TestMarkerSymbol(t *testing.T) {
	assert.Equal(t, "✗", markerSymbol(timeline.MarkerError))
	assert.Equal(t, "◆", markerSymbol(timeline.MarkerNetworkError))
	assert.Equal(t, "▲", markerSymbol(timeline.MarkerRageClick))
	assert.Equal(t, "△", markerSymbol(timeline.MarkerDeadClick))
	assert.Equal(t, "•", markerSymbol(timeline.MarkerType("mystery")))
}

func TestMarkerPriority_ErrorsOutrankSignals(t *testing.T) {
	assert.Greater(t, markerPriority(timeline.MarkerError), markerPriority(timeline.MarkerNetworkError))
	assert.Greater(t, markerPriority(timeline.MarkerNetworkError), markerPriority(timeline.MarkerRageClick))
	assert.Greater(t, markerPriority(timeline.MarkerRageClick), markerPriority(timeline.MarkerDeadClick))
	assert.Greater(t, markerPriority(timeline.MarkerDeadClick), markerPriority(timeline.MarkerType("mystery")))
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{ms: 0, want: "00:00.000"},
		{ms: 1234, want: "00:01.234"},
		{ms: 65_250, want: "01:05.250"},
		{ms: 599_999, want: "09:59.999"},
		{ms: 3_599_999, want: "59:59.999"},
		{ms: 3_600_000, want: "1:00:00.000"},
		{ms: 3_661_001, want: "1:01:01.001"},
		{ms: -5, want: "00:00.000"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatClock(tt.ms))
		})
	}
}

func TestNextSpeed(t *testing.T) {
	ladder := []float64{0.25, 0.5, 1, 2, 4, 8, 16}

	tests := []struct {
		name    string
		current float64
		up      bool
		want    float64
	}{
		{name: "up_from_normal", current: 1, up: true, want: 2},
		{name: "down_from_normal", current: 1, up: false, want: 0.5},
		{name: "up_clamps_at_top", current: 16, up: true, want: 16},
		{name: "down_clamps_at_bottom", current: 0.25, up: false, want: 0.25},
		{name: "off_ladder_snaps_then_steps_up", current: 3, up: true, want: 4},
		{name: "off_ladder_snaps_then_steps_down", current: 3, up: false, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nextSpeed(ladder, tt.current, tt.up))
		})
	}
}

func TestNextSpeed_DegenerateLadders(t *testing.T) {
	assert.Equal(t, 1.5, nextSpeed(nil, 1.5, true))
	assert.Equal(t, 1.0, nextSpeed([]float64{1}, 8, true))
	assert.Equal(t, 1.0, nextSpeed([]float64{1}, 8, false))
}
