package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/moviola/moviola/internal/player"
)

// Run drives the interactive player until the user quits or the update feed
// closes. The player must already have a session loaded.
func Run(p *player.Player, cfg player.Config) error {
	prog := tea.NewProgram(New(p, cfg), tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("failed to run player UI: %w", err)
	}
	return nil
}
