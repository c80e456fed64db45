// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program for the DAC player UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// VolumeChangeMsg carries a volume or mute change made in the TUI
type VolumeChangeMsg struct {
	Volume int
	Muted  bool
}

// QuitMsg signals that the user asked to quit
type QuitMsg struct{}

// Controls holds channels for TUI to application communication
type Controls struct {
	Changes chan VolumeChangeMsg
	Quit    chan QuitMsg
}

// NewControls creates a new control handler
func NewControls() *Controls {
	return &Controls{
		Changes: make(chan VolumeChangeMsg, 10),
		Quit:    make(chan QuitMsg, 1),
	}
}

// NewModel creates a new TUI model
func NewModel(controls *Controls) Model {
	return Model{
		volume:   100,
		controls: controls,
	}
}

// Run creates the TUI program; the caller runs it
func Run(controls *Controls) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(controls), tea.WithAltScreen())
	return p, nil
}
