package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/james-see/pianosteps/pkg/midifile"
	"github.com/james-see/pianosteps/pkg/model"
	"github.com/james-see/pianosteps/pkg/session"
	"github.com/james-see/pianosteps/pkg/song"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSong() *song.Song {
	return song.Build("etude", &midifile.Result{
		Notes: []model.RawNote{
			{Pitch: 60, Start: 0, Duration: 0.5, Velocity: 0.8},
			{Pitch: 64, Start: 0, Duration: 0.5, Velocity: 0.8},
			{Pitch: 67, Start: 1, Duration: 0.5, Velocity: 0.8},
		},
		Tempo:         120,
		TimeSignature: model.CommonTime,
	})
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func newModel(t *testing.T) Model {
	t.Helper()
	m := New(Config{
		Song:    testSong(),
		Session: []session.Option{session.WithDelays(time.Millisecond, time.Millisecond)},
	})
	t.Cleanup(m.Session().Close)
	return m
}

func TestNewWithSongStartsPracticing(t *testing.T) {
	m := newModel(t)
	assert.Equal(t, StatePractice, m.state)

	view := m.View()
	assert.Contains(t, view, "ETUDE")
	assert.Contains(t, view, "C4")
	assert.Contains(t, view, "E4")
	assert.Contains(t, view, "step 1/2")
}

func TestNewWithoutSongOpensPicker(t *testing.T) {
	m := New(Config{Dir: t.TempDir()})
	assert.Equal(t, StateFilePicker, m.state)
	assert.Contains(t, m.View(), "SELECT MIDI FILE")
}

func TestVirtualKeyboardPlaysStep(t *testing.T) {
	m := newModel(t)
	s := m.Session()

	// "a" is C4 and "d" is E4 at the default octave
	m = press(t, m, runes("a"))
	assert.True(t, s.Snapshot().IsCorrect(60))
	m = press(t, m, runes("d"))

	assert.Eventually(t, func() bool { return s.Index() == 1 }, time.Second, time.Millisecond)
	assert.Contains(t, m.View(), "G4")
}

func TestWrongKeyShowsFeedback(t *testing.T) {
	m := newModel(t)
	s := m.Session()
	m = press(t, m, runes("s"))

	assert.True(t, s.Snapshot().IsWrong(62))
	assert.Equal(t, 0, s.Index())
}

func TestNavigationKeys(t *testing.T) {
	m := newModel(t)
	s := m.Session()

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, s.Index())
	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 0, s.Index())
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight}, runes("r"))
	assert.Equal(t, 0, s.Index())
}

func TestModeAndToggleKeys(t *testing.T) {
	m := newModel(t)
	s := m.Session()

	m = press(t, m, runes("b"))
	assert.Equal(t, model.LeftOnly, s.Snapshot().HandMode)
	m = press(t, m, runes("b"), runes("b"))
	assert.Equal(t, model.Both, s.Snapshot().HandMode)

	m = press(t, m, runes("n"), runes("v"))
	snap := s.Snapshot()
	assert.False(t, snap.ShowFingering)
	assert.False(t, snap.AudioEnabled)

	m = press(t, m, runes("-"), runes("-"))
	assert.Equal(t, 80, s.Snapshot().TempoPercent)

	m = press(t, m, runes("m"))
	assert.Equal(t, session.Watch, s.Snapshot().LearnMode)
	m = press(t, m, runes(" "))
	assert.True(t, s.Snapshot().Playing)
	m = press(t, m, runes(" "))
	assert.False(t, s.Snapshot().Playing)
}

func TestOctaveKeys(t *testing.T) {
	m := newModel(t)
	m = press(t, m, runes("z"))
	assert.Equal(t, 3, m.keyboard.Octave)
	m = press(t, m, runes("x"), runes("x"))
	assert.Equal(t, 5, m.keyboard.Octave)
}

func TestSessionEventsUpdateStatus(t *testing.T) {
	m := newModel(t)
	m = press(t, m, runes("s"))

	var ev session.Event
	select {
	case ev = <-m.events:
	case <-time.After(time.Second):
		require.Fail(t, "no session event")
	}
	// The song-loaded event comes first
	assert.Equal(t, session.EventSongLoaded, ev.Kind)

	ev = <-m.events
	m = press(t, m, eventMsg(ev))
	assert.Contains(t, m.View(), "D4 is not in this step")
}

func TestLoadFailureReturnsToPicker(t *testing.T) {
	m := New(Config{Dir: t.TempDir()})
	m = press(t, m, songLoadedMsg{err: assert.AnError})
	assert.Equal(t, StateFilePicker, m.state)
	assert.Contains(t, m.View(), assert.AnError.Error())

	m = press(t, m, songLoadedMsg{song: testSong()})
	assert.Equal(t, StatePractice, m.state)
	assert.Equal(t, "etude", m.Session().Snapshot().SongName)
}

func TestQuit(t *testing.T) {
	m := newModel(t)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Equal(t, session.Idle, m.Session().State())
}
