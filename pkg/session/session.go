// Package session drives a learner through a song step by step. A Session
// compares live note input against the current step in practice mode and
// auto-advances on a tempo-scaled timer in watch mode.
//
// All state changes are serialized: public methods and timer callbacks take
// the same lock, so input, UI commands and timers behave as if they ran on a
// single thread in arrival order. Every pending timer is canceled
// synchronously by the transition that invalidates it.
package session

import (
	"sort"
	"sync"
	"time"

	"github.com/james-see/pianosteps/pkg/audio"
	"github.com/james-see/pianosteps/pkg/model"
	"github.com/james-see/pianosteps/pkg/song"
	"go.uber.org/zap"
)

const (
	// DefaultAckDelay is the pause after a fully matched step before advancing
	DefaultAckDelay = 300 * time.Millisecond
	// DefaultWrongDelay is how long a wrong-note flag stays visible
	DefaultWrongDelay = 500 * time.Millisecond
	// WrongNoteDuration is the length of the audio cue for a wrong note
	WrongNoteDuration = 300 * time.Millisecond
	// WrongNoteVelocity scales the incoming velocity of a wrong note's cue
	WrongNoteVelocity = 0.5

	DefaultTempoPercent = 100
	MinTempoPercent     = 25
	MaxTempoPercent     = 200
)

// Session owns the learning state for one loaded song
type Session struct {
	mu sync.Mutex

	clock       Clock
	sink        audio.Sink
	log         *zap.Logger
	listeners   []Listener
	outbox      []Event
	dispatching bool

	ackDelay   time.Duration
	wrongDelay time.Duration

	song      *song.Song
	handMode  model.HandMode
	learnMode LearnMode
	steps     []model.Step
	index     int
	state     State
	correct   map[uint8]bool
	wrong     map[uint8]bool
	playing   bool

	tempoPercent  int
	showFingering bool
	audioEnabled  bool

	ack      task
	feedback task
	ticker   task
}

// Option configures a Session
type Option func(*Session)

// WithClock replaces the wall clock, mainly for tests
func WithClock(c Clock) Option {
	return func(s *Session) {
		s.clock = c
	}
}

// WithAudio sets the sink audio cues are sent to
func WithAudio(sink audio.Sink) Option {
	return func(s *Session) {
		s.sink = sink
	}
}

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log.Named("session")
		}
	}
}

// WithListener registers an event listener
func WithListener(l Listener) Option {
	return func(s *Session) {
		s.listeners = append(s.listeners, l)
	}
}

// WithDelays overrides the acknowledgment and wrong-note delays
func WithDelays(ack, wrong time.Duration) Option {
	return func(s *Session) {
		s.ackDelay = ack
		s.wrongDelay = wrong
	}
}

// WithHandMode sets the initial hand mode
func WithHandMode(mode model.HandMode) Option {
	return func(s *Session) {
		s.handMode = mode
	}
}

// WithLearnMode sets the initial learn mode
func WithLearnMode(mode LearnMode) Option {
	return func(s *Session) {
		s.learnMode = mode
	}
}

// WithTempoPercent sets the initial playback tempo; out of range values are clamped
func WithTempoPercent(percent int) Option {
	return func(s *Session) {
		s.tempoPercent = clampTempo(percent)
	}
}

// WithFingering sets whether finger numbers are shown initially
func WithFingering(show bool) Option {
	return func(s *Session) {
		s.showFingering = show
	}
}

// WithAudioEnabled sets whether audio cues are played initially
func WithAudioEnabled(enabled bool) Option {
	return func(s *Session) {
		s.audioEnabled = enabled
	}
}

// New creates an idle session
func New(opts ...Option) *Session {
	s := &Session{
		clock:         SystemClock,
		sink:          audio.Nop{},
		log:           zap.NewNop(),
		ackDelay:      DefaultAckDelay,
		wrongDelay:    DefaultWrongDelay,
		handMode:      model.Both,
		learnMode:     Practice,
		state:         Idle,
		correct:       make(map[uint8]bool),
		wrong:         make(map[uint8]bool),
		tempoPercent:  DefaultTempoPercent,
		showFingering: true,
		audioEnabled:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// update runs fn under the session lock and then delivers the events it
// emitted. Events are delivered in emission order by one goroutine at a
// time; a caller that finds delivery in progress leaves its events to it.
func (s *Session) update(fn func()) {
	s.mu.Lock()
	fn()
	if s.dispatching || len(s.outbox) == 0 {
		s.mu.Unlock()
		return
	}
	s.dispatching = true
	for {
		events := s.outbox
		s.outbox = nil
		s.mu.Unlock()

		for _, ev := range events {
			for _, l := range s.listeners {
				l(ev)
			}
		}

		s.mu.Lock()
		if len(s.outbox) == 0 {
			s.dispatching = false
			s.mu.Unlock()
			return
		}
	}
}

func (s *Session) emit(kind EventKind, pitch uint8) {
	s.outbox = append(s.outbox, Event{
		Kind:     kind,
		State:    s.state,
		Index:    s.index,
		Progress: s.progress(),
		Pitch:    pitch,
	})
}

func (s *Session) setState(state State) {
	if s.state == state {
		return
	}
	s.log.Debug("state change",
		zap.Stringer("from", s.state),
		zap.Stringer("to", state),
		zap.Int("step", s.index))
	s.state = state
}

// restState is the state a session settles in after its pending work was
// discarded.
func (s *Session) restState() State {
	switch {
	case s.song == nil:
		return Idle
	case len(s.steps) == 0:
		return Completed
	case s.playing:
		return Watching
	case s.learnMode == Practice && s.index > 0:
		return AwaitingInput
	default:
		return Ready
	}
}

// stopAll cancels every pending timer and stops playback
func (s *Session) stopAll() {
	s.cancel(&s.ack)
	s.cancel(&s.feedback)
	s.cancel(&s.ticker)
	s.playing = false
}

func (s *Session) clearFeedback() {
	clear(s.correct)
	clear(s.wrong)
}

// rebuild recomputes the step list and rewinds to the first step
func (s *Session) rebuild() {
	s.stopAll()
	s.clearFeedback()
	s.index = 0
	s.steps = nil
	if s.song != nil {
		s.steps = s.song.Steps(s.handMode)
	}
	s.setState(s.restState())
}

// LoadSong replaces the current song and starts it from the first step. A
// nil song unloads the session.
func (s *Session) LoadSong(sg *song.Song) {
	s.update(func() {
		s.song = sg
		s.rebuild()
		if sg == nil {
			return
		}
		s.log.Info("song loaded",
			zap.String("song", sg.Name),
			zap.Int("steps", len(s.steps)),
			zap.Stringer("hands", s.handMode))
		s.emit(EventSongLoaded, 0)
		if s.state == Completed {
			s.emit(EventCompleted, 0)
		}
	})
}

// SetHandMode switches hands. The step list is rebuilt and progress restarts
// at the first step.
func (s *Session) SetHandMode(mode model.HandMode) {
	s.update(func() {
		if mode == s.handMode {
			return
		}
		s.handMode = mode
		s.rebuild()
		s.emit(EventModeChanged, 0)
		if s.song != nil {
			s.emit(EventStepChanged, 0)
		}
	})
}

// SetLearnMode switches between practice and watch. Playback and pending
// feedback are canceled; the current step is kept.
func (s *Session) SetLearnMode(mode LearnMode) {
	s.update(func() {
		if mode == s.learnMode {
			return
		}
		completed := s.state == Completed
		s.stopAll()
		s.clearFeedback()
		s.learnMode = mode
		if !completed {
			s.setState(s.restState())
		}
		s.emit(EventModeChanged, 0)
	})
}

// NextStep moves to the following step. It does nothing on the last step.
func (s *Session) NextStep() error {
	return s.navigate(func() int { return s.index + 1 }, false)
}

// PrevStep moves to the previous step. It does nothing on the first step.
func (s *Session) PrevStep() error {
	return s.navigate(func() int { return s.index - 1 }, false)
}

// GoToStep jumps to step i
func (s *Session) GoToStep(i int) error {
	return s.navigate(func() int { return i }, true)
}

func (s *Session) navigate(target func() int, strict bool) error {
	var err error
	s.update(func() {
		if s.song == nil {
			err = ErrNoSong
			return
		}
		if s.state == StepAdvancing {
			err = ErrAdvancing
			return
		}
		i := target()
		if i < 0 || i >= len(s.steps) {
			if strict {
				err = ErrStepOutOfRange
			}
			return
		}
		s.cancel(&s.feedback)
		s.clearFeedback()
		s.index = i
		s.setState(s.restState())
		s.emit(EventStepChanged, 0)
	})
	return err
}

// Reset rewinds to the first step and cancels all pending work
func (s *Session) Reset() {
	s.update(func() {
		s.stopAll()
		s.clearFeedback()
		s.index = 0
		s.setState(s.restState())
		if s.song != nil {
			s.emit(EventStepChanged, 0)
		}
	})
}

// SetTempoPercent scales watch-mode playback speed
func (s *Session) SetTempoPercent(percent int) error {
	if percent < MinTempoPercent || percent > MaxTempoPercent {
		return ErrInvalidTempo
	}
	s.update(func() {
		s.tempoPercent = percent
		if s.playing {
			s.startTicker()
		}
	})
	return nil
}

// ToggleFingeringDisplay flips finger number display and returns the new value
func (s *Session) ToggleFingeringDisplay() bool {
	var show bool
	s.update(func() {
		s.showFingering = !s.showFingering
		show = s.showFingering
	})
	return show
}

// ToggleAudio flips audio cues and returns the new value
func (s *Session) ToggleAudio() bool {
	var enabled bool
	s.update(func() {
		s.audioEnabled = !s.audioEnabled
		enabled = s.audioEnabled
	})
	return enabled
}

// Close cancels every pending timer and unloads the song
func (s *Session) Close() {
	s.update(func() {
		s.song = nil
		s.rebuild()
	})
}

// CurrentStep returns a copy of the focused step
func (s *Session) CurrentStep() (model.Step, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index >= len(s.steps) {
		return model.Step{}, false
	}
	return copyStep(s.steps[s.index]), true
}

// Progress returns the fraction of the song completed, in [0,1]
func (s *Session) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress()
}

func (s *Session) progress() float64 {
	switch {
	case s.song == nil:
		return 0
	case s.state == Completed || len(s.steps) == 0:
		return 1
	default:
		return float64(s.index) / float64(len(s.steps))
	}
}

// IsComplete reports whether the song has been finished
func (s *Session) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == Completed
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Index returns the current step index
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Snapshot returns a copy of the session's observable state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:         s.state,
		LearnMode:     s.learnMode,
		HandMode:      s.handMode,
		Index:         s.index,
		Total:         len(s.steps),
		Correct:       sortedPitches(s.correct),
		Wrong:         sortedPitches(s.wrong),
		Progress:      s.progress(),
		Playing:       s.playing,
		TempoPercent:  s.tempoPercent,
		ShowFingering: s.showFingering,
		AudioEnabled:  s.audioEnabled,
	}
	if s.song != nil {
		snap.SongName = s.song.Name
	}
	if s.index < len(s.steps) {
		step := copyStep(s.steps[s.index])
		snap.Step = &step
	}
	return snap
}

func copyStep(step model.Step) model.Step {
	notes := make([]model.Note, len(step.Notes))
	copy(notes, step.Notes)
	return model.Step{Time: step.Time, Notes: notes}
}

func sortedPitches(set map[uint8]bool) []uint8 {
	out := make([]uint8, 0, len(set))
	for p, ok := range set {
		if ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func clampTempo(percent int) int {
	if percent < MinTempoPercent {
		return MinTempoPercent
	}
	if percent > MaxTempoPercent {
		return MaxTempoPercent
	}
	return percent
}
