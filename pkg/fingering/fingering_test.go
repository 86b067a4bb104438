package fingering

import (
	"testing"

	"github.com/james-see/pianosteps/pkg/model"
	"github.com/stretchr/testify/assert"
)

// melody builds notes one second apart so none of them cluster
func melody(hand model.Hand, pitches ...uint8) []model.Note {
	notes := make([]model.Note, len(pitches))
	for i, p := range pitches {
		notes[i] = model.Note{
			RawNote: model.RawNote{Pitch: p, Start: float64(i), Duration: 0.5, Velocity: 1},
			Hand:    hand,
		}
	}
	return notes
}

func fingers(notes []model.Note) []uint8 {
	out := make([]uint8, len(notes))
	for i, n := range notes {
		out[i] = n.Finger
	}
	return out
}

func TestAssignSingleNotes(t *testing.T) {
	tests := []struct {
		name    string
		hand    model.Hand
		pitches []uint8
		want    []uint8
	}{
		{"right scale up", model.Right, []uint8{60, 62, 64, 65, 67}, []uint8{1, 2, 3, 4, 5}},
		{"right clamps at pinky", model.Right, []uint8{60, 62, 64, 65, 67, 69}, []uint8{1, 2, 3, 4, 5, 5}},
		{"right scale down", model.Right, []uint8{67, 65, 64}, []uint8{1, 1, 1}},
		{"right skips", model.Right, []uint8{60, 64, 67}, []uint8{1, 3, 5}},
		{"right skip without room shifts", model.Right, []uint8{60, 64, 67, 71}, []uint8{1, 3, 5, 1}},
		{"right large jump down", model.Right, []uint8{72, 60}, []uint8{1, 5}},
		{"right large jump up", model.Right, []uint8{60, 62, 72}, []uint8{1, 2, 1}},
		{"repeated pitch", model.Right, []uint8{60, 62, 62, 62}, []uint8{1, 2, 2, 2}},
		{"left starts on pinky", model.Left, []uint8{48}, []uint8{5}},
		{"left ascending counts down", model.Left, []uint8{48, 50, 52}, []uint8{5, 4, 3}},
		{"left skip without room shifts", model.Left, []uint8{48, 50, 47}, []uint8{5, 4, 1}},
		{"left large jump down", model.Left, []uint8{48, 43}, []uint8{5, 1}},
		{"left large jump up", model.Left, []uint8{48, 46, 55}, []uint8{5, 5, 5}},
		{"left skip down", model.Left, []uint8{48, 52, 49}, []uint8{5, 3, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes := melody(tt.hand, tt.pitches...)
			Assign(tt.hand, notes)
			assert.Equal(t, tt.want, fingers(notes))
		})
	}
}

func TestAssignChordThenNote(t *testing.T) {
	notes := []model.Note{
		{RawNote: model.RawNote{Pitch: 60, Start: 0, Duration: 0.5}},
		{RawNote: model.RawNote{Pitch: 64, Start: 0, Duration: 0.5}},
		{RawNote: model.RawNote{Pitch: 65, Start: 1.0, Duration: 0.5}},
	}
	Assign(model.Right, notes)

	// Chord 1-3, then a step up from the top note on 3
	assert.Equal(t, []uint8{1, 3, 4}, fingers(notes))
}

func TestAssignChordUnsortedPitches(t *testing.T) {
	notes := []model.Note{
		{RawNote: model.RawNote{Pitch: 67, Start: 0}},
		{RawNote: model.RawNote{Pitch: 60, Start: 0.01}},
		{RawNote: model.RawNote{Pitch: 64, Start: 0.02}},
	}
	Assign(model.Right, notes)
	assert.Equal(t, []uint8{5, 1, 3}, fingers(notes))
}

func TestAssignLeftChordCursor(t *testing.T) {
	notes := []model.Note{
		{RawNote: model.RawNote{Pitch: 48, Start: 0}},
		{RawNote: model.RawNote{Pitch: 52, Start: 0}},
		{RawNote: model.RawNote{Pitch: 55, Start: 0}},
		{RawNote: model.RawNote{Pitch: 50, Start: 1}},
	}
	Assign(model.Left, notes)

	// Mirrored 1-3-5 shape; the cursor sits on the bottom note with 5
	assert.Equal(t, []uint8{5, 3, 1, 4}, fingers(notes))
}

func TestTemplate(t *testing.T) {
	tests := []struct {
		name string
		size int
		span int
		hand model.Hand
		want []uint8
	}{
		{"third", 2, 4, model.Right, []uint8{1, 3}},
		{"fifth", 2, 7, model.Right, []uint8{1, 5}},
		{"left third", 2, 3, model.Left, []uint8{3, 1}},
		{"triad", 3, 7, model.Right, []uint8{1, 3, 5}},
		{"left triad", 3, 7, model.Left, []uint8{5, 3, 1}},
		{"seventh", 4, 10, model.Right, []uint8{1, 2, 3, 5}},
		{"left seventh", 4, 10, model.Left, []uint8{5, 3, 2, 1}},
		{"five", 5, 12, model.Right, []uint8{1, 2, 3, 4, 5}},
		{"six", 6, 14, model.Right, []uint8{1, 2, 3, 4, 5, 5}},
		{"left six", 6, 14, model.Left, []uint8{5, 5, 4, 3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Template(tt.size, tt.span, tt.hand))
		})
	}
}

func TestAssignAlwaysInRange(t *testing.T) {
	pitches := []uint8{0, 127, 1, 126, 60, 61, 59, 72, 48, 100, 20}
	for _, hand := range []model.Hand{model.Left, model.Right} {
		notes := melody(hand, pitches...)
		Assign(hand, notes)
		for i, n := range notes {
			if n.Finger < model.Thumb || n.Finger > model.Pinky {
				t.Errorf("%v note %d finger = %d, want 1-5", hand, i, n.Finger)
			}
		}
	}
}

func TestAssignEmpty(t *testing.T) {
	Assign(model.Right, nil)
}
