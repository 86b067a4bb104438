// Package steps clusters chronologically sorted notes into practice steps.
//
// A cluster starts at a note and absorbs every following note that begins
// less than model.Epsilon after it. The fingering assigner uses Clusters so
// chords are fingered exactly as they are grouped here.
package steps

import (
	"sort"

	"github.com/james-see/pianosteps/pkg/model"
)

// Span is a half-open index range [Start, End) into a note list
type Span struct {
	Start int
	End   int
}

// Len returns the number of notes in the span
func (s Span) Len() int {
	return s.End - s.Start
}

// Clusters returns the simultaneity clusters of a sorted note list. Every
// span is non-empty and the spans cover the list in order.
func Clusters(notes []model.Note) []Span {
	var spans []Span
	start := 0
	for i := 1; i <= len(notes); i++ {
		if i == len(notes) || notes[i].Start-notes[start].Start >= model.Epsilon {
			if i > start {
				spans = append(spans, Span{Start: start, End: i})
			}
			start = i
		}
	}
	return spans
}

// Group builds the step list for a sorted note list. Each step's time is the
// start of its first note and its notes are ordered by ascending pitch.
func Group(notes []model.Note) []model.Step {
	spans := Clusters(notes)
	out := make([]model.Step, 0, len(spans))
	for _, span := range spans {
		members := make([]model.Note, span.Len())
		copy(members, notes[span.Start:span.End])
		sort.SliceStable(members, func(i, j int) bool {
			return members[i].Pitch < members[j].Pitch
		})
		out = append(out, model.Step{
			Time:  notes[span.Start].Start,
			Notes: members,
		})
	}
	return out
}
