// ABOUTME: Bubbletea model for the DAC player TUI
// ABOUTME: Defines display state and update logic
package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model represents the TUI state
type Model struct {
	// Signal path
	boardID string
	source  string
	output  string

	// Timing
	frequency uint32
	rate      float64

	// Ring buffer
	capacity int
	free     int

	// Controller
	active   bool
	finished bool
	level    int

	// Driver stats
	accepted    uint64
	rejected    uint64
	chunks      uint64
	completions uint64
	drained     uint64

	// Feed loop
	pushes  uint64
	retries uint64

	// Playback
	volume int
	muted  bool

	// Debug
	showDebug  bool
	goroutines int
	memAlloc   uint64
	memSys     uint64

	controls *Controls

	// Dimensions
	width  int
	height int
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	armedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	idleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	helpStyle   = lipgloss.NewStyle().Faint(true)
)

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Sendspin DAC"))
	b.WriteString("\n\n")
	b.WriteString(m.renderHeader())
	b.WriteString(m.renderBuffer())
	b.WriteString(m.renderStats())

	if m.showDebug {
		b.WriteString(m.renderDebug())
	}

	b.WriteString(m.renderHelp())
	return b.String()
}

func field(name, value string) string {
	return headerStyle.Render(fmt.Sprintf("%-10s", name)) + valueStyle.Render(value) + "\n"
}

// renderHeader renders the board and signal path
func (m Model) renderHeader() string {
	s := field("Board:", m.boardID)
	s += field("Source:", truncate(m.source, 48))
	s += field("Output:", m.output)
	s += field("Rate:", fmt.Sprintf("%d Hz (timer %.1f Hz)", m.frequency, m.rate))
	return s + "\n"
}

// renderBuffer renders ring fill, controller state and output level
func (m Model) renderBuffer() string {
	occupied := m.capacity - m.free

	state := idleStyle.Render("Idle")
	switch {
	case m.active:
		state = armedStyle.Render("Armed")
	case m.finished:
		state = idleStyle.Render("Finished")
	}

	muteIcon := ""
	if m.muted {
		muteIcon = " (muted)"
	}

	s := headerStyle.Render(fmt.Sprintf("%-10s", "State:")) + state + "\n"
	s += field("Buffer:", fmt.Sprintf("[%s] %d/%d", renderBar(occupied, m.capacity, 20), occupied, m.capacity))
	s += field("Level:", fmt.Sprintf("[%s] 0x%03x", renderBar(m.level, 0xFFF, 20), m.level))
	s += field("Volume:", fmt.Sprintf("[%s] %d%%%s", renderBar(m.volume, 100, 10), m.volume, muteIcon))
	return s + "\n"
}

// renderStats renders driver and feed counters
func (m Model) renderStats() string {
	s := field("Driver:", fmt.Sprintf("accepted %d  rejected %d  chunks %d  irqs %d  drained %d",
		m.accepted, m.rejected, m.chunks, m.completions, m.drained))
	s += field("Feed:", fmt.Sprintf("pushes %d  retries %d", m.pushes, m.retries))
	return s + "\n"
}

// renderDebug renders runtime information
func (m Model) renderDebug() string {
	return field("Runtime:", fmt.Sprintf("goroutines %d  alloc %s  sys %s",
		m.goroutines, formatBytes(m.memAlloc), formatBytes(m.memSys))) + "\n"
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return helpStyle.Render("↑/↓:Volume  m:Mute  d:Debug  q:Quit") + "\n"
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.controls != nil {
			select {
			case m.controls.Quit <- QuitMsg{}:
			default:
			}
		}
		return m, tea.Quit
	case "up":
		m.volume = min(100, m.volume+5)
		m.sendVolume()
	case "down":
		m.volume = max(0, m.volume-5)
		m.sendVolume()
	case "m":
		m.muted = !m.muted
		m.sendVolume()
	case "d":
		m.showDebug = !m.showDebug
	}

	return m, nil
}

func (m Model) sendVolume() {
	if m.controls == nil {
		return
	}
	select {
	case m.controls.Changes <- VolumeChangeMsg{Volume: m.volume, Muted: m.muted}:
	default:
	}
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.BoardID != "" {
		m.boardID = msg.BoardID
	}
	if msg.Source != "" {
		m.source = msg.Source
		m.output = msg.Output
	}
	if msg.Frequency != 0 {
		m.frequency = msg.Frequency
		m.rate = msg.Rate
	}
	if msg.Capacity != 0 {
		m.capacity = msg.Capacity
		m.free = msg.Free
	}
	if msg.Active != nil {
		m.active = *msg.Active
		m.finished = msg.Finished
		m.level = msg.Level
	}
	if msg.Accepted != 0 || msg.Rejected != 0 {
		m.accepted = msg.Accepted
		m.rejected = msg.Rejected
		m.chunks = msg.Chunks
		m.completions = msg.Completions
		m.drained = msg.Drained
		m.pushes = msg.Pushes
		m.retries = msg.Retries
	}
	if msg.Goroutines != 0 {
		m.goroutines = msg.Goroutines
		m.memAlloc = msg.MemAlloc
		m.memSys = msg.MemSys
	}
}

// StatusMsg updates TUI state. Zero fields leave the display unchanged.
type StatusMsg struct {
	BoardID     string
	Source      string
	Output      string
	Frequency   uint32
	Rate        float64
	Capacity    int
	Free        int
	Active      *bool
	Finished    bool
	Level       int
	Accepted    uint64
	Rejected    uint64
	Chunks      uint64
	Completions uint64
	Drained     uint64
	Pushes      uint64
	Retries     uint64
	Goroutines  int
	MemAlloc    uint64
	MemSys      uint64
}

// Utility functions
func renderBar(value, max, width int) string {
	if max <= 0 {
		return strings.Repeat("░", width)
	}
	filled := (value * width) / max
	filled = min(width, filled)
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func formatBytes(n uint64) string {
	const mb = 1 << 20
	return fmt.Sprintf("%.1fMB", float64(n)/mb)
}
