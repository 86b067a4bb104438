// Package tui provides a terminal practice screen for pianosteps
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/james-see/pianosteps/pkg/input"
	"github.com/james-see/pianosteps/pkg/midifile"
	"github.com/james-see/pianosteps/pkg/model"
	"github.com/james-see/pianosteps/pkg/session"
	"github.com/james-see/pianosteps/pkg/song"
)

// Ivory and ebony color scheme
var (
	ivory     = lipgloss.Color("#FFFFF0")
	gold      = lipgloss.Color("#E8C547")
	green     = lipgloss.Color("#4CD964")
	red       = lipgloss.Color("#FF3B30")
	silver    = lipgloss.Color("#C0C0C0")
	ebony     = lipgloss.Color("#2B2B2B")
	dimGray   = lipgloss.Color("#666666")
	leftBlue  = lipgloss.Color("#5AC8FA")
	rightPink = lipgloss.Color("#FF9ECF")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ivory).
			Background(ebony).
			Padding(0, 2).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(silver)

	valueStyle = lipgloss.NewStyle().
			Foreground(gold).
			Bold(true)

	noteStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder())

	correctStyle = noteStyle.
			BorderForeground(green).
			Foreground(green).
			Bold(true)

	wrongStyle = lipgloss.NewStyle().
			Foreground(red).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(gold).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(red).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(green).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(dimGray).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(gold).
			Padding(1, 2)
)

// State represents the current TUI screen
type State int

const (
	StateFilePicker State = iota
	StateLoading
	StatePractice
)

// Config sets up a practice screen
type Config struct {
	// Song to practice. When nil the screen opens a file picker in Dir.
	Song        *song.Song
	Dir         string
	SongOptions []song.Option
	Session     []session.Option
}

// Model represents the TUI model
type Model struct {
	state      State
	session    *session.Session
	events     chan session.Event
	keyboard   *input.Keyboard
	songOpts   []song.Option
	filePicker filepicker.Model
	spinner    spinner.Model
	progress   progress.Model
	help       help.Model
	keys       keyMap
	loading    string
	status     string
	err        error
	width      int
}

type eventMsg session.Event

type songLoadedMsg struct {
	song *song.Song
	err  error
}

// New creates a practice screen and the session behind it
func New(cfg Config) Model {
	events := make(chan session.Event, 64)
	opts := append([]session.Option{}, cfg.Session...)
	opts = append(opts, session.WithListener(func(ev session.Event) {
		select {
		case events <- ev:
		default:
		}
	}))

	fp := filepicker.New()
	fp.AllowedTypes = midifile.Extensions()
	fp.CurrentDirectory = cfg.Dir
	if fp.CurrentDirectory == "" {
		fp.CurrentDirectory, _ = os.Getwd()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(gold)

	m := Model{
		state:      StateFilePicker,
		session:    session.New(opts...),
		events:     events,
		keyboard:   input.NewKeyboard(),
		songOpts:   cfg.SongOptions,
		filePicker: fp,
		spinner:    s,
		progress:   progress.New(progress.WithGradient(string(leftBlue), string(rightPink))),
		help:       help.New(),
		keys:       keys,
	}
	if cfg.Song != nil {
		m.session.LoadSong(cfg.Song)
		m.state = StatePractice
	}
	return m
}

// Session returns the session driven by the screen, so device input can be
// attached to it
func (m Model) Session() *session.Session {
	return m.session
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForEvent(m.events)}
	if m.state == StateFilePicker {
		cmds = append(cmds, m.filePicker.Init())
	}
	return tea.Batch(cmds...)
}

func waitForEvent(events <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

func loadSong(path string, opts []song.Option) tea.Cmd {
	return func() tea.Msg {
		s, err := song.Load(path, opts...)
		return songLoadedMsg{song: s, err: err}
	}
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.progress.Width = max(10, min(60, msg.Width-20))
		m.filePicker.Height = msg.Height - 10
		return m, nil

	case eventMsg:
		m.status = describe(session.Event(msg))
		return m, waitForEvent(m.events)

	case songLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = StateFilePicker
			return m, m.filePicker.Init()
		}
		m.err = nil
		m.session.LoadSong(msg.song)
		m.state = StatePractice
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	switch m.state {
	case StateFilePicker:
		return m.updateFilePicker(msg)
	case StatePractice:
		if msg, ok := msg.(tea.KeyMsg); ok {
			return m.updatePractice(msg)
		}
	}
	return m, nil
}

func (m Model) updateFilePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			if m.session.Snapshot().SongName != "" {
				m.state = StatePractice
			}
			return m, nil
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.loading = path
		m.state = StateLoading
		return m, tea.Batch(m.spinner.Tick, loadSong(path, m.songOpts))
	}
	return m, cmd
}

func (m Model) updatePractice(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.session
	switch {
	case key.Matches(msg, m.keys.Quit):
		s.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Open):
		s.Pause()
		m.state = StateFilePicker
		return m, m.filePicker.Init()
	case key.Matches(msg, m.keys.Prev):
		m.report(s.PrevStep())
	case key.Matches(msg, m.keys.Next):
		m.report(s.NextStep())
	case key.Matches(msg, m.keys.Reset):
		s.Reset()
	case key.Matches(msg, m.keys.Play):
		if s.Snapshot().Playing {
			s.Pause()
		} else {
			m.report(s.Play())
		}
	case key.Matches(msg, m.keys.Mode):
		if s.Snapshot().LearnMode == session.Practice {
			s.SetLearnMode(session.Watch)
		} else {
			s.SetLearnMode(session.Practice)
		}
	case key.Matches(msg, m.keys.Hands):
		s.SetHandMode(nextHandMode(s.Snapshot().HandMode))
	case key.Matches(msg, m.keys.Fingering):
		s.ToggleFingeringDisplay()
	case key.Matches(msg, m.keys.Audio):
		s.ToggleAudio()
	case key.Matches(msg, m.keys.Faster):
		m.report(s.SetTempoPercent(s.Snapshot().TempoPercent + 10))
	case key.Matches(msg, m.keys.Slower):
		m.report(s.SetTempoPercent(s.Snapshot().TempoPercent - 10))
	case key.Matches(msg, m.keys.OctaveDown):
		m.keyboard.Shift(-1)
	case key.Matches(msg, m.keys.OctaveUp):
		m.keyboard.Shift(1)
	default:
		_, err := m.keyboard.Press(msg.String(), s)
		m.report(err)
	}
	return m, nil
}

func (m *Model) report(err error) {
	if err != nil {
		m.status = err.Error()
	}
}

func nextHandMode(mode model.HandMode) model.HandMode {
	switch mode {
	case model.Both:
		return model.LeftOnly
	case model.LeftOnly:
		return model.RightOnly
	default:
		return model.Both
	}
}

func describe(ev session.Event) string {
	switch ev.Kind {
	case session.EventNoteCorrect:
		return fmt.Sprintf("✓ %s", model.NoteName(ev.Pitch))
	case session.EventNoteWrong:
		return fmt.Sprintf("✗ %s is not in this step", model.NoteName(ev.Pitch))
	case session.EventStepMatched:
		return "Nice!"
	case session.EventCompleted:
		return "Song complete! Press r to play again"
	case session.EventSongLoaded:
		return "Song loaded"
	default:
		return ""
	}
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateFilePicker:
		s.WriteString(m.viewFilePicker())
	case StateLoading:
		s.WriteString(m.viewLoading())
	case StatePractice:
		s.WriteString(m.viewPractice())
	}
	return s.String()
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT MIDI FILE "))
	s.WriteString("\n\n")
	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s", m.err.Error())))
		s.WriteString("\n\n")
	}
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back • q: quit"))

	return s.String()
}

func (m Model) viewLoading() string {
	return boxStyle.Render(fmt.Sprintf("%s Loading %s...", m.spinner.View(), filepath.Base(m.loading)))
}

func (m Model) viewPractice() string {
	snap := m.session.Snapshot()
	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf(" %s ", strings.ToUpper(snap.SongName))))
	s.WriteString("\n")
	s.WriteString(field("Mode", snap.LearnMode.String()))
	s.WriteString(field("Hands", snap.HandMode.String()))
	s.WriteString(field("Tempo", fmt.Sprintf("%d%%", snap.TempoPercent)))
	s.WriteString(field("Keys", fmt.Sprintf("a=%s", model.NoteName(uint8(12*(m.keyboard.Octave+1))))))
	s.WriteString("\n\n")

	s.WriteString(m.progress.ViewAs(snap.Progress))
	s.WriteString(fmt.Sprintf("  step %d/%d", min(snap.Index+1, snap.Total), snap.Total))
	s.WriteString("\n\n")

	switch {
	case snap.State == session.Completed:
		s.WriteString(successStyle.Render("✓ Completed"))
	case snap.Step != nil:
		s.WriteString(renderStep(snap))
	}

	if len(snap.Wrong) > 0 {
		names := make([]string, len(snap.Wrong))
		for i, p := range snap.Wrong {
			names[i] = model.NoteName(p)
		}
		s.WriteString("\n")
		s.WriteString(wrongStyle.Render("✗ " + strings.Join(names, " ")))
	}
	if m.status != "" {
		s.WriteString("\n")
		s.WriteString(statusStyle.Render(m.status))
	}

	out := boxStyle.Render(s.String())
	return out + "\n" + helpStyle.Render(m.help.View(m.keys))
}

func field(label, value string) string {
	return labelStyle.Render(label+": ") + valueStyle.Render(value) + "  "
}

func renderStep(snap session.Snapshot) string {
	cells := make([]string, 0, len(snap.Step.Notes))
	for _, n := range snap.Step.Notes {
		text := model.NoteName(n.Pitch)
		if snap.ShowFingering && n.Finger != model.NoFinger {
			text = fmt.Sprintf("%s\n%d", text, n.Finger)
		}
		style := noteStyle.BorderForeground(leftBlue)
		if n.Hand == model.Right {
			style = noteStyle.BorderForeground(rightPink)
		}
		if snap.IsCorrect(n.Pitch) {
			style = correctStyle
		}
		cells = append(cells, style.Render(text))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// Run starts the TUI application and blocks until it exits
func Run(m Model) error {
	defer m.session.Close()
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
