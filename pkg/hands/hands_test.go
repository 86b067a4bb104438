package hands

import (
	"sort"
	"testing"

	"github.com/james-see/pianosteps/pkg/model"
	"github.com/stretchr/testify/assert"
)

func raw(pitch uint8, start float64, track int) model.RawNote {
	return model.RawNote{Pitch: pitch, Start: start, Duration: 0.5, Velocity: 0.8, Track: track}
}

func TestPitchSplit(t *testing.T) {
	split := NewPitchSplit()
	tests := []struct {
		pitch uint8
		want  model.Hand
	}{
		{0, model.Left},
		{59, model.Left},
		{60, model.Right},
		{127, model.Right},
	}
	for _, tt := range tests {
		if got := split.Classify(raw(tt.pitch, 0, 0)); got != tt.want {
			t.Errorf("Classify(%d) = %v, want %v", tt.pitch, got, tt.want)
		}
	}
}

func TestPartitionIsTotalAndDisjoint(t *testing.T) {
	notes := []model.RawNote{
		raw(48, 0, 0), raw(60, 0, 0), raw(64, 0, 0),
		raw(43, 0.5, 0), raw(67, 0.5, 0),
		raw(59, 1.0, 0), raw(72, 1.25, 0),
	}

	tracks := Partition(notes, NewPitchSplit())

	assert.Len(t, tracks.Left, 3)
	assert.Len(t, tracks.Right, 4)
	assert.Len(t, tracks.All, len(notes))
	for _, n := range tracks.Left {
		assert.Equal(t, model.Left, n.Hand)
	}
	for _, n := range tracks.Right {
		assert.Equal(t, model.Right, n.Hand)
	}

	var union, all []int
	for _, n := range append(append([]model.Note{}, tracks.Left...), tracks.Right...) {
		union = append(union, int(n.Pitch))
	}
	for _, n := range tracks.All {
		all = append(all, int(n.Pitch))
	}
	sort.Ints(union)
	sort.Ints(all)
	assert.Equal(t, all, union)

	// All keeps the input order
	for i, n := range tracks.All {
		assert.Equal(t, notes[i], n.RawNote)
	}
}

func TestTracksFor(t *testing.T) {
	tracks := Partition([]model.RawNote{raw(40, 0, 0), raw(70, 0, 0)}, NewPitchSplit())
	assert.Equal(t, tracks.Left, tracks.For(model.LeftOnly))
	assert.Equal(t, tracks.Right, tracks.For(model.RightOnly))
	assert.Equal(t, tracks.All, tracks.For(model.Both))
}

func TestByTrack(t *testing.T) {
	fallback := NewPitchSplit()

	single := []model.RawNote{raw(40, 0, 2), raw(70, 0, 2)}
	assert.Equal(t, fallback, ByTrack(single, fallback))

	multi := []model.RawNote{raw(40, 0, 1), raw(70, 0, 2), raw(30, 1, 2)}
	c := ByTrack(multi, fallback)
	assert.Equal(t, TrackSplit{RightTrack: 1}, c)

	tracks := Partition(multi, c)
	assert.Len(t, tracks.Right, 1)
	assert.Equal(t, uint8(40), tracks.Right[0].Pitch)
	assert.Len(t, tracks.Left, 2)
}

func TestClassifierFunc(t *testing.T) {
	allLeft := ClassifierFunc(func(model.RawNote) model.Hand { return model.Left })
	tracks := Partition([]model.RawNote{raw(100, 0, 0)}, allLeft)
	assert.Len(t, tracks.Left, 1)
	assert.Empty(t, tracks.Right)
}

func TestPartitionEmpty(t *testing.T) {
	tracks := Partition(nil, NewPitchSplit())
	assert.Empty(t, tracks.All)
	assert.Empty(t, tracks.Left)
	assert.Empty(t, tracks.Right)
}
