// Package tui provides a Bubble Tea terminal user interface for notecorpus.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/notecorpus/internal/artifact"
	"github.com/handiism/notecorpus/internal/config"
	"github.com/handiism/notecorpus/internal/corpus"
	"github.com/handiism/notecorpus/internal/model"
	"github.com/handiism/notecorpus/internal/pipeline"
	"github.com/handiism/notecorpus/internal/score"
	"github.com/handiism/notecorpus/internal/score/midi"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateScanning
	StateProcessing
	StateComplete
	StateError
)

// maxLogs is how many log lines stay on screen.
const maxLogs = 10

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   pipeline.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	parser    score.Parser
	logs      []LogEntry
	err       error

	// Build context
	ctx    context.Context
	cancel context.CancelFunc

	// Pipeline manager reference
	manager *pipeline.Manager
	events  chan pipeline.ProgressEvent

	// Build progress
	items     int
	completed int
	total     int
	summary   *pipeline.Summary
	header    *artifact.Header

	// Options
	playlist bool
	compress bool
	verbose  bool

	width  int
	height int
}

// NewModel creates a new TUI model. A nil settings uses the defaults.
func NewModel(settings *config.Settings) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	ti := textinput.New()
	ti.Placeholder = "data/**/*.mid"
	ti.SetValue(strings.Join(settings.Patterns, ", "))
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		parser:    midi.NewParser(),
		logs:      make([]LogEntry, 0),
		ctx:       ctx,
		cancel:    cancel,
		playlist:  settings.CreatePlaylist,
		compress:  settings.Compress,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg is sent when the pipeline reports progress.
	ProgressMsg struct {
		Event pipeline.ProgressEvent
	}

	// ScanDoneMsg is sent when the corpus has been enumerated.
	ScanDoneMsg struct {
		Items   []model.CorpusItem
		Manager *pipeline.Manager
		Events  chan pipeline.ProgressEvent
		Err     error
	}

	// BuildDoneMsg is sent when the corpus has been built and saved.
	BuildDoneMsg struct {
		Summary   *pipeline.Summary
		Header    *artifact.Header
		Completed int
		Total     int
		Err       error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateProcessing || m.state == StateScanning {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				m.state = StateScanning
				return m, tea.Batch(m.scanCorpus(), m.spinner.Tick)
			}

		case "ctrl+p":
			if m.state == StateInput {
				m.playlist = !m.playlist
			}

		case "ctrl+x":
			if m.state == StateInput {
				m.compress = !m.compress
			}

		case "ctrl+o":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				// Reset for a new build
				m.state = StateInput
				m.logs = nil
				m.err = nil
				m.items = 0
				m.completed = 0
				m.total = 0
				m.summary = nil
				m.header = nil
				m.manager = nil
				m.events = nil
				m.ctx, m.cancel = context.WithCancel(context.Background())
				m.textInput.Focus()
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		if m.events != nil {
			cmds = append(cmds, waitForEvent(m.events))
		}
		// Filter verbose messages if not in verbose mode
		if msg.Event.Level == pipeline.LevelVerbose && !m.verbose {
			break
		}
		m.addLog(msg.Event)

	case ScanDoneMsg:
		if m.state != StateScanning {
			break
		}
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			break
		}
		m.items = len(msg.Items)
		m.manager = msg.Manager
		m.events = msg.Events
		m.state = StateProcessing
		// Start the build, listen for events and tick for progress updates
		cmds = append(cmds, m.startBuild(msg.Items, msg.Events), waitForEvent(m.events), m.tickProgress())

	case BuildDoneMsg:
		if m.state != StateProcessing {
			break
		}
		m.completed = msg.Completed
		m.total = msg.Total
		switch {
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.summary = msg.Summary
			m.header = msg.Header
			m.state = StateComplete
		}

	case TickMsg:
		// Update progress from manager
		if m.manager != nil && m.state == StateProcessing {
			m.completed, m.total = m.manager.Progress()

			// Calculate percentage and animate progress bar
			var percent float64
			if m.total > 0 {
				percent = float64(m.completed) / float64(m.total)
			}
			progressCmd := m.progress.SetPercent(percent)
			cmds = append(cmds, progressCmd, m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) addLog(event pipeline.ProgressEvent) {
	m.logs = append(m.logs, LogEntry{
		Message: event.Message,
		Level:   event.Level,
	})
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent delivers the next pipeline event as a ProgressMsg.
func waitForEvent(events chan pipeline.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: ev}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("♫ Note Corpus"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Turn MIDI files into note and chord tokens"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateScanning:
		b.WriteString(m.viewScanning())
	case StateProcessing:
		b.WriteString(m.viewProcessing())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter glob patterns (comma separated):"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Create playlist (ctrl+p)\n", check(m.playlist)))
	b.WriteString(fmt.Sprintf("  %s Compress artifact (ctrl+x)\n", check(m.compress)))
	b.WriteString(fmt.Sprintf("  %s Verbose output (ctrl+o)\n", check(m.verbose)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Output: %s | Workers: %d", m.settings.Output, m.settings.WorkerCount())))
	b.WriteString("\n")

	return b.String()
}

func check(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func (m Model) viewScanning() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Scanning for MIDI files..."))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewProcessing() string {
	var b strings.Builder

	b.WriteString(successStyle.Render(fmt.Sprintf("Found %d file(s)", m.items)))
	b.WriteString("\n")
	b.WriteString(pathStyle.Render(fmt.Sprintf("  → %s", m.settings.Output)))
	b.WriteString("\n\n")

	// Progress bar
	var percent float64
	if m.total > 0 {
		percent = float64(m.completed) / float64(m.total)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf("Files: %d/%d", m.completed, m.total)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	s := m.summary
	if s == nil {
		s = &pipeline.Summary{}
	}
	runID := ""
	if m.header != nil {
		runID = m.header.RunID
	}

	box := boxStyle.Render(fmt.Sprintf(
		"✨ Corpus Complete!\n\n"+
			"Files: %d\n"+
			"Tokenized: %d\n"+
			"Failed: %d\n"+
			"Tokens: %d\n"+
			"Elapsed: %s\n"+
			"Run: %s",
		s.Items,
		s.Succeeded,
		s.Failed,
		s.Tokens,
		s.Elapsed.Round(time.Millisecond),
		runID,
	))
	b.WriteString(box)
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case pipeline.LevelError:
			style = errorStyle
			prefix = "✗"
		case pipeline.LevelWarning:
			style = warningStyle
			prefix = "!"
		case pipeline.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case pipeline.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • ctrl+p: playlist • ctrl+x: compress • ctrl+o: verbose • esc: quit"
	case StateScanning, StateProcessing:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new build • q: quit"
	}
	return ""
}

// scanCorpus enumerates the patterns and creates the manager.
func (m *Model) scanCorpus() tea.Cmd {
	patterns := splitPatterns(m.textInput.Value())

	// Apply options
	settings := *m.settings
	settings.Patterns = patterns
	settings.CreatePlaylist = m.playlist
	settings.Compress = m.compress

	parser := m.parser

	return func() tea.Msg {
		items, err := corpus.EnumeratePatterns(patterns)
		if err != nil {
			return ScanDoneMsg{Err: err}
		}

		events := make(chan pipeline.ProgressEvent, 64)
		manager := pipeline.NewManager(&settings, parser, func(event pipeline.ProgressEvent) {
			// Drop events rather than stall workers when the UI falls behind.
			select {
			case events <- event:
			default:
			}
		}, pipeline.WithLogger(slog.New(slog.DiscardHandler)))

		return ScanDoneMsg{
			Items:   items,
			Manager: manager,
			Events:  events,
		}
	}
}

// startBuild runs the pipeline and persists the result in background.
// events is closed once the manager can no longer report progress.
func (m *Model) startBuild(items []model.CorpusItem, events chan pipeline.ProgressEvent) tea.Cmd {
	ctx := m.ctx
	manager := m.manager

	return func() tea.Msg {
		defer close(events)

		if manager == nil {
			return BuildDoneMsg{Err: fmt.Errorf("no manager")}
		}

		result, err := manager.Run(ctx, items)
		completed, total := manager.Progress()
		if err != nil {
			return BuildDoneMsg{Completed: completed, Total: total, Err: err}
		}

		hdr, err := manager.Persist(ctx, result)
		return BuildDoneMsg{
			Summary:   manager.Summary(),
			Header:    hdr,
			Completed: completed,
			Total:     total,
			Err:       err,
		}
	}
}

func splitPatterns(input string) []string {
	var patterns []string
	for _, p := range strings.Split(input, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
