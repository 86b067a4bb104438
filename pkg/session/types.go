package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/james-see/pianosteps/pkg/model"
)

var (
	// ErrNoSong is returned by operations that need a loaded song
	ErrNoSong = errors.New("no song loaded")
	// ErrAdvancing is returned when manual navigation races the automatic step advance
	ErrAdvancing = errors.New("step is advancing")
	// ErrStepOutOfRange is returned by GoToStep for an index outside the step list
	ErrStepOutOfRange = errors.New("step index out of range")
	// ErrInvalidTempo is returned for tempo percentages outside [MinTempoPercent, MaxTempoPercent]
	ErrInvalidTempo = errors.New("invalid tempo percent")
	// ErrNotWatching is returned by Play outside watch mode
	ErrNotWatching = errors.New("not in watch mode")
)

// State is the position of a session in its lifecycle
type State int

const (
	Idle State = iota
	Ready
	AwaitingInput
	StepAdvancing
	Watching
	Completed
)

var stateNames = map[State]string{
	Idle:          "idle",
	Ready:         "ready",
	AwaitingInput: "awaiting-input",
	StepAdvancing: "step-advancing",
	Watching:      "watching",
	Completed:     "completed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// LearnMode selects between active practice and passive playback
type LearnMode int

const (
	Practice LearnMode = iota
	Watch
)

func (m LearnMode) String() string {
	if m == Watch {
		return "watch"
	}
	return "practice"
}

// ParseLearnMode parses "practice" or "watch"
func ParseLearnMode(s string) (LearnMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "practice", "":
		return Practice, nil
	case "watch":
		return Watch, nil
	default:
		return Practice, fmt.Errorf("unknown learn mode %q", s)
	}
}

// EventKind identifies what happened in a session
type EventKind int

const (
	EventSongLoaded EventKind = iota
	EventStepChanged
	EventNoteCorrect
	EventNoteWrong
	EventStepMatched
	EventFeedbackCleared
	EventCompleted
	EventModeChanged
	EventPlaybackChanged
)

var eventNames = map[EventKind]string{
	EventSongLoaded:      "song-loaded",
	EventStepChanged:     "step-changed",
	EventNoteCorrect:     "note-correct",
	EventNoteWrong:       "note-wrong",
	EventStepMatched:     "step-matched",
	EventFeedbackCleared: "feedback-cleared",
	EventCompleted:       "completed",
	EventModeChanged:     "mode-changed",
	EventPlaybackChanged: "playback-changed",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is delivered to listeners after the change it describes
type Event struct {
	Kind     EventKind
	State    State
	Index    int
	Progress float64
	Pitch    uint8 // Set for note events
}

// Listener receives session events. It runs without the session lock held,
// so it may call back into the Session; events raised by such calls are
// delivered after the current one.
type Listener func(Event)

// Snapshot is a read-only copy of a session's state
type Snapshot struct {
	State         State
	LearnMode     LearnMode
	HandMode      model.HandMode
	SongName      string
	Index         int
	Total         int
	Step          *model.Step
	Correct       []uint8
	Wrong         []uint8
	Progress      float64
	Playing       bool
	TempoPercent  int
	ShowFingering bool
	AudioEnabled  bool
}

// IsCorrect reports whether pitch has been matched in the current step
func (s Snapshot) IsCorrect(pitch uint8) bool {
	return containsPitch(s.Correct, pitch)
}

// IsWrong reports whether pitch is flagged as a wrong note
func (s Snapshot) IsWrong(pitch uint8) bool {
	return containsPitch(s.Wrong, pitch)
}

func containsPitch(set []uint8, pitch uint8) bool {
	for _, p := range set {
		if p == pitch {
			return true
		}
	}
	return false
}
