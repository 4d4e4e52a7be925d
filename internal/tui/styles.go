package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/moviola/moviola/internal/player"
	"github.com/moviola/moviola/internal/timeline"
)

// styles groups the lipgloss styles the player renders with.
type styles struct {
	title       lipgloss.Style
	token       lipgloss.Style
	bracket     lipgloss.Style
	elapsed     lipgloss.Style
	remaining   lipgloss.Style
	playhead    lipgloss.Style
	scrubber    lipgloss.Style
	detailKey   lipgloss.Style
	detailValue lipgloss.Style
	notice      lipgloss.Style
	errorLine   lipgloss.Style
	selected    lipgloss.Style
	highlighted lipgloss.Style
	cluster     lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		token:       lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		bracket:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		elapsed:     lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		remaining:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		playhead:    lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
		scrubber:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		detailKey:   lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		detailValue: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		notice:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		errorLine:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		selected:    lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("237")),
		highlighted: lipgloss.NewStyle().Bold(true).Reverse(true),
		cluster:     lipgloss.NewStyle().Bold(true),
	}
}

// phaseStyle colors the header badge for a playback phase.
func (s styles) phaseStyle(phase player.Phase) lipgloss.Style {
	badge := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	switch phase {
	case player.PhasePlaying:
		return badge.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("46"))
	case player.PhasePaused:
		return badge.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("226"))
	case player.PhaseSeeking:
		return badge.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("39"))
	case player.PhaseFaulted:
		return badge.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("196"))
	case player.PhaseReady:
		return badge.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("51"))
	case player.PhaseInitializing:
		return badge.Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214"))
	default:
		return badge.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("240"))
	}
}

// markerStyle colors a timeline marker glyph by its type.
func (s styles) markerStyle(t timeline.MarkerType) lipgloss.Style {
	switch t {
	case timeline.MarkerError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	case timeline.MarkerNetworkError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	case timeline.MarkerRageClick:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	case timeline.MarkerDeadClick:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	}
}
