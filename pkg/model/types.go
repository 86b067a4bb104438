// Package model defines the note, step and hand types shared by the
// decoding, fingering and practice packages.
package model

import (
	"fmt"
	"strings"
)

// Epsilon is the simultaneity window in seconds. Notes whose start times
// fall within it of a cluster's first note belong to the same step, and the
// fingering assigner clusters with the same value.
const Epsilon = 0.05

// Finger numbers, thumb to pinky
const (
	NoFinger uint8 = 0
	Thumb    uint8 = 1
	Pinky    uint8 = 5
)

// Hand identifies the hand a note is assigned to
type Hand int

const (
	Right Hand = iota
	Left
)

func (h Hand) String() string {
	if h == Left {
		return "left"
	}
	return "right"
}

// HandMode selects which note stream generates the active step sequence
type HandMode int

const (
	Both HandMode = iota
	LeftOnly
	RightOnly
)

func (m HandMode) String() string {
	switch m {
	case LeftOnly:
		return "left"
	case RightOnly:
		return "right"
	default:
		return "both"
	}
}

// ParseHandMode parses "left", "right" or "both" (case-insensitive)
func ParseHandMode(s string) (HandMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l":
		return LeftOnly, nil
	case "right", "r":
		return RightOnly, nil
	case "both", "b", "":
		return Both, nil
	default:
		return Both, fmt.Errorf("unknown hand mode %q", s)
	}
}

// RawNote is a single decoded note event
type RawNote struct {
	Pitch    uint8   // MIDI note number (0-127)
	Start    float64 // Start time in seconds
	Duration float64 // Duration in seconds, always > 0
	Velocity float64 // Normalized velocity (0-1)
	Track    int     // Source track index
	Channel  uint8   // Source MIDI channel
}

// End returns the time the note is released
func (n RawNote) End() float64 {
	return n.Start + n.Duration
}

// Note is a RawNote annotated with hand, finger and measure
type Note struct {
	RawNote
	Hand    Hand
	Finger  uint8 // 1-5, NoFinger until fingering runs
	Measure int
}

// Step is one or more notes that must be played together.
// Notes are ordered by ascending pitch.
type Step struct {
	Time  float64
	Notes []Note
}

// Pitches returns the distinct pitches expected by the step
func (s Step) Pitches() []uint8 {
	out := make([]uint8, 0, len(s.Notes))
	for _, n := range s.Notes {
		if len(out) > 0 && out[len(out)-1] == n.Pitch {
			continue
		}
		out = append(out, n.Pitch)
	}
	return out
}

// Expects reports whether pitch is part of the step
func (s Step) Expects(pitch uint8) bool {
	for _, n := range s.Notes {
		if n.Pitch == pitch {
			return true
		}
	}
	return false
}

// Note returns the first note in the step with the given pitch
func (s Step) Note(pitch uint8) (Note, bool) {
	for _, n := range s.Notes {
		if n.Pitch == pitch {
			return n, true
		}
	}
	return Note{}, false
}

// TimeSignature is a (beats per measure, beat unit) pair
type TimeSignature struct {
	BeatsPerMeasure int
	BeatUnit        int
}

// Common time (4/4)
var CommonTime = TimeSignature{BeatsPerMeasure: 4, BeatUnit: 4}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.BeatsPerMeasure, ts.BeatUnit)
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName returns the scientific pitch name of a MIDI note, C4 = 60
func NoteName(pitch uint8) string {
	return fmt.Sprintf("%s%d", noteNames[pitch%12], int(pitch)/12-1)
}
