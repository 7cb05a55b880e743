// Package tui provides a terminal monitor for control surface presets
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/james-see/midisurface/pkg/listener"
	"github.com/james-see/midisurface/pkg/surface"
	"github.com/james-see/midisurface/pkg/surface/devices"
)

// Novation-inspired color scheme
var (
	padAmber   = lipgloss.Color("#FFB000")
	padGreen   = lipgloss.Color("#3DDC84")
	silverGray = lipgloss.Color("#C0C0C0")
	darkGray   = lipgloss.Color("#333333")

	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(padAmber).
			Background(darkGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(silverGray).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(padAmber).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(padGreen).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(silverGray)

	cursorStyle = lipgloss.NewStyle().
			Foreground(padAmber).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(padAmber).
			Padding(1, 2)
)

// RefreshInterval is how often the monitor recomputes the parameter set
const RefreshInterval = 50 * time.Millisecond

// step sizes for nudging a control, in 7-bit units
const (
	fineStep   = 1.0 / listener.MaxValue
	coarseStep = 8.0 / listener.MaxValue
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StateFilePicker
	StateMonitor
)

// Options configures the TUI
type Options struct {
	Registry *devices.Registry
	Store    *surface.Store
	Listener *listener.Listener // optional; listens on Port when a preset is opened
	Port     string
}

// Model represents the TUI model
type Model struct {
	opts       Options
	state      State
	menuIndex  int
	menu       []string
	filePicker filepicker.Model
	spinner    spinner.Model
	bar        progress.Model
	preset     *surface.Preset
	cursorRow  int
	cursorCol  int
	listening  bool
	status     string
	err        error
	width      int
	height     int
}

// tickMsg triggers a monitor refresh
type tickMsg time.Time

const (
	menuLoadFile = "Load preset file..."
	menuExit     = "Exit"
)

// New creates a new TUI model
func New(opts Options) Model {
	if opts.Registry == nil {
		opts.Registry = devices.Default()
	}
	if opts.Store == nil {
		opts.Store = surface.NewStore()
	}

	// Initialize file picker
	fp := filepicker.New()
	fp.AllowedTypes = []string{".yaml", ".yml"}
	fp.CurrentDirectory, _ = os.Getwd()

	// Initialize spinner
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(padGreen)

	m := Model{
		opts:       opts,
		state:      StateMenu,
		filePicker: fp,
		spinner:    s,
		bar:        progress.New(progress.WithDefaultGradient(), progress.WithWidth(8), progress.WithoutPercentage()),
	}
	m.menu = m.buildMenu()
	return m
}

func (m Model) buildMenu() []string {
	items := append([]string{}, m.opts.Registry.Names()...)
	return append(items, menuLoadFile, menuExit)
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tick())
}

func tick() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Refresh loops keep running in every state
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		// View reads a fresh snapshot; the tick only schedules a redraw.
		return m, tick()
	}

	// The file picker needs to receive all other messages
	if m.state == StateFilePicker {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			m.loadPresets(path)
			m.state = StateMenu
			return m, nil
		}
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateMonitor:
			return m.updateMonitor(msg)
		}
	}

	return m, nil
}

func (m *Model) loadPresets(path string) {
	presets, err := devices.LoadInto(m.opts.Registry, path)
	if err != nil {
		m.err = err
		m.status = ""
		return
	}
	m.err = nil
	m.status = fmt.Sprintf("Loaded %d preset(s) from %s", len(presets), filepath.Base(path))
	m.menu = m.buildMenu()
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(m.menu)-1 {
			m.menuIndex++
		}
	case "enter":
		switch m.menu[m.menuIndex] {
		case menuExit:
			return m, tea.Quit
		case menuLoadFile:
			m.state = StateFilePicker
			return m, m.filePicker.Init()
		}
		return m.openPreset(m.menu[m.menuIndex])
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) openPreset(name string) (tea.Model, tea.Cmd) {
	preset, err := m.opts.Registry.Get(name)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.preset = preset
	m.state = StateMonitor
	m.cursorRow = 0
	m.cursorCol = 1
	m.err = nil
	m.status = ""

	if m.opts.Listener != nil {
		if err := m.opts.Listener.ListenPort(preset.Name(), m.opts.Port); err != nil {
			m.err = err
			m.listening = false
		} else {
			m.listening = true
		}
	}
	return m, nil
}

func (m Model) columns() int {
	if m.preset.Columns <= 0 || m.preset.Columns > surface.MaxColumns {
		return surface.MaxColumns
	}
	return m.preset.Columns
}

func (m Model) updateMonitor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.preset.Layout.Rows()
	switch msg.String() {
	case "up", "k":
		if m.cursorRow < rows-1 && m.cursorRow < 9 {
			m.cursorRow++
		}
	case "down", "j":
		if m.cursorRow > 0 {
			m.cursorRow--
		}
	case "left", "h":
		if m.cursorCol > 1 {
			m.cursorCol--
		}
	case "right", "l":
		if m.cursorCol < m.columns() {
			m.cursorCol++
		}
	case "+", "=":
		m.nudge(fineStep)
	case "-", "_":
		m.nudge(-fineStep)
	case "]":
		m.nudge(coarseStep)
	case "[":
		m.nudge(-coarseStep)
	case "esc":
		if m.opts.Listener != nil {
			m.opts.Listener.Close()
		}
		m.listening = false
		m.state = StateMenu
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

// Selected returns the identifier under the cursor
func (m Model) Selected() surface.ControlID {
	return surface.Control(m.cursorCol*10 + m.cursorRow)
}

// nudge moves the selected control by delta, simulating hardware input
func (m *Model) nudge(delta float64) {
	number, err := surface.ResolveControlNumber(m.Selected(), m.preset.Layout)
	if err != nil {
		m.err = err
		return
	}
	v, ok := m.opts.Store.Value(m.preset.Name(), number)
	if !ok {
		v = surface.DefaultValue
	}
	v += delta
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	m.opts.Store.Set(m.preset.Name(), number, v)
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateMonitor:
		s.WriteString(m.viewMonitor())
	}

	if m.err != nil {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s", m.err.Error())))
	} else if m.status != "" {
		s.WriteString("\n")
		s.WriteString(statusStyle.Render(m.status))
	}

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT DEVICE "))
	s.WriteString("\n\n")

	for i, item := range m.menu {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item)))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item)))
		}
		s.WriteString("\n")
	}
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT PRESET FILE "))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewMonitor() string {
	var s strings.Builder
	snap := m.opts.Store.Snapshot()
	mapper := surface.NewMapper(m.preset.Layout, snap)

	s.WriteString(titleStyle.Render(fmt.Sprintf(" %s ", strings.ToUpper(m.preset.Name()))))
	s.WriteString("\n")
	if m.listening {
		s.WriteString(fmt.Sprintf("%s listening\n", m.spinner.View()))
	}
	s.WriteString("\n")

	// Top row first, like the hardware
	for row := m.preset.Layout.Rows() - 1; row >= 0; row-- {
		if row > 9 {
			continue
		}
		for col := 1; col <= m.columns(); col++ {
			id := surface.Control(col*10 + row)
			v, err := mapper.Value(id)
			if err != nil {
				continue
			}
			label := labelStyle.Render(string(id))
			if row == m.cursorRow && col == m.cursorCol {
				label = cursorStyle.Render(string(id))
			}
			s.WriteString(fmt.Sprintf("%s %s  ", label, m.bar.ViewAs(v)))
		}
		s.WriteString("\n")
	}

	if number, err := surface.ResolveControlNumber(m.Selected(), m.preset.Layout); err == nil {
		v, _ := mapper.Value(m.Selected())
		s.WriteString(statusStyle.Render(fmt.Sprintf("control %s → CC %d = %.3f", m.Selected(), number, v)))
		s.WriteString("\n")
	}

	_, params, err := m.preset.Apply(snap)
	if err == nil && len(params) > 0 {
		s.WriteString("\n")
		s.WriteString(titleStyle.Render(" PARAMETERS "))
		s.WriteString("\n")
		for _, name := range params.Names() {
			s.WriteString(fmt.Sprintf("  %-10s %10.3f  (%s)\n", name, params[name], m.preset.Formulas[name].Control))
		}
	}

	s.WriteString(helpStyle.Render("arrows: select • +/-: nudge • [/]: coarse • esc: back • q: quit"))

	return boxStyle.Render(s.String())
}

// Run starts the TUI application
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
