// Package hands splits a decoded note list into left and right hand streams.
package hands

import (
	"github.com/james-see/pianosteps/pkg/model"
)

// MiddleC is the default split point: notes below it go to the left hand
const MiddleC uint8 = 60

// Classifier decides which hand plays a note
type Classifier interface {
	Classify(note model.RawNote) model.Hand
}

// ClassifierFunc adapts a function to the Classifier interface
type ClassifierFunc func(note model.RawNote) model.Hand

// Classify calls f(note)
func (f ClassifierFunc) Classify(note model.RawNote) model.Hand {
	return f(note)
}

// PitchSplit assigns notes below Threshold to the left hand
type PitchSplit struct {
	Threshold uint8
}

// NewPitchSplit creates a pitch classifier splitting at middle C
func NewPitchSplit() PitchSplit {
	return PitchSplit{Threshold: MiddleC}
}

// Classify implements Classifier
func (p PitchSplit) Classify(note model.RawNote) model.Hand {
	if note.Pitch < p.Threshold {
		return model.Left
	}
	return model.Right
}

// TrackSplit assigns the right hand to one source track and the left hand to
// every other track.
type TrackSplit struct {
	RightTrack int
}

// Classify implements Classifier
func (t TrackSplit) Classify(note model.RawNote) model.Hand {
	if note.Track == t.RightTrack {
		return model.Right
	}
	return model.Left
}

// ByTrack returns a TrackSplit keyed on the first note-bearing track when the
// notes come from at least two tracks, and fallback otherwise.
func ByTrack(notes []model.RawNote, fallback Classifier) Classifier {
	first := -1
	for _, n := range notes {
		if first == -1 || n.Track < first {
			first = n.Track
		}
	}
	for _, n := range notes {
		if n.Track != first {
			return TrackSplit{RightTrack: first}
		}
	}
	return fallback
}

// Tracks holds the partitioned streams. All is the chronological union of
// Left and Right.
type Tracks struct {
	Left  []model.Note
	Right []model.Note
	All   []model.Note
}

// For returns the stream selected by a hand mode
func (t Tracks) For(mode model.HandMode) []model.Note {
	switch mode {
	case model.LeftOnly:
		return t.Left
	case model.RightOnly:
		return t.Right
	default:
		return t.All
	}
}

// Partition classifies every note. The input order is preserved in every
// output stream.
func Partition(notes []model.RawNote, c Classifier) Tracks {
	var t Tracks
	for _, raw := range notes {
		n := model.Note{RawNote: raw, Hand: c.Classify(raw)}
		if n.Hand == model.Left {
			t.Left = append(t.Left, n)
		} else {
			t.Right = append(t.Right, n)
		}
	}
	t.All = Merge(t.Left, t.Right)
	return t
}

// Merge interleaves two chronologically sorted streams. On equal start
// times the left note comes first when its pitch is lower.
func Merge(left, right []model.Note) []model.Note {
	out := make([]model.Note, 0, len(left)+len(right))
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		l, r := left[i], right[j]
		if l.Start < r.Start || (l.Start == r.Start && less(l, r)) {
			out = append(out, l)
			i++
		} else {
			out = append(out, r)
			j++
		}
	}
	out = append(out, left[i:]...)
	return append(out, right[j:]...)
}

func less(a, b model.Note) bool {
	if a.Track != b.Track {
		return a.Track < b.Track
	}
	return a.Pitch < b.Pitch
}
