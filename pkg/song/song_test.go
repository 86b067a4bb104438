package song

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/james-see/pianosteps/pkg/hands"
	"github.com/james-see/pianosteps/pkg/midifile"
	"github.com/james-see/pianosteps/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, notes ...model.RawNote) []byte {
	t.Helper()
	data, err := midifile.Encode(notes, 120, model.CommonTime)
	require.NoError(t, err)
	return data
}

func chordThenNote(t *testing.T) []byte {
	return encode(t,
		model.RawNote{Pitch: 60, Start: 0, Duration: 0.5, Velocity: 0.8},
		model.RawNote{Pitch: 64, Start: 0, Duration: 0.5, Velocity: 0.8},
		model.RawNote{Pitch: 67, Start: 1.0, Duration: 0.5, Velocity: 0.8},
	)
}

func TestParseChordThenNote(t *testing.T) {
	s, err := Parse("scenario", chordThenNote(t))
	require.NoError(t, err)

	steps := s.Steps(model.Both)
	require.Len(t, steps, 2)
	assert.Equal(t, []uint8{60, 64}, steps[0].Pitches())
	assert.Equal(t, []uint8{67}, steps[1].Pitches())

	// Chord spans a major third
	assert.Equal(t, uint8(1), steps[0].Notes[0].Finger)
	assert.Equal(t, uint8(3), steps[0].Notes[1].Finger)

	assert.Equal(t, "scenario", s.Name)
	assert.InDelta(t, 120.0, s.Tempo, 1e-6)
	assert.InDelta(t, 1.5, s.TotalDuration, 1e-9)
	assert.Equal(t, 1, s.MeasureCount)
	assert.Empty(t, s.Tracks.Left)
	assert.Len(t, s.Tracks.Right, 3)
}

func TestStepsPerHandMode(t *testing.T) {
	s, err := Parse("hands", encode(t,
		model.RawNote{Pitch: 48, Start: 0, Duration: 1, Velocity: 0.5},
		model.RawNote{Pitch: 64, Start: 0, Duration: 0.5, Velocity: 0.5},
		model.RawNote{Pitch: 65, Start: 0.5, Duration: 0.5, Velocity: 0.5},
		model.RawNote{Pitch: 43, Start: 1, Duration: 1, Velocity: 0.5},
	))
	require.NoError(t, err)

	both := s.Steps(model.Both)
	require.Len(t, both, 3)
	assert.Equal(t, []uint8{48, 64}, both[0].Pitches())

	left := s.Steps(model.LeftOnly)
	require.Len(t, left, 2)
	assert.Equal(t, []uint8{48}, left[0].Pitches())
	assert.Equal(t, []uint8{43}, left[1].Pitches())
	assert.Equal(t, uint8(5), left[0].Notes[0].Finger)
	assert.Equal(t, uint8(1), left[1].Notes[0].Finger)

	right := s.Steps(model.RightOnly)
	require.Len(t, right, 2)

	// Fingers assigned per hand survive into the combined stream
	assert.Equal(t, model.Left, both[0].Notes[0].Hand)
	assert.Equal(t, uint8(5), both[0].Notes[0].Finger)
	assert.Equal(t, model.Right, both[0].Notes[1].Hand)
	assert.Equal(t, uint8(1), both[0].Notes[1].Finger)
}

func TestMeasureIndices(t *testing.T) {
	// 4/4 at 120 BPM: two seconds per measure
	s, err := Parse("measures", encode(t,
		model.RawNote{Pitch: 60, Start: 0, Duration: 0.5, Velocity: 0.5},
		model.RawNote{Pitch: 62, Start: 1.9, Duration: 0.5, Velocity: 0.5},
		model.RawNote{Pitch: 64, Start: 2.0, Duration: 0.5, Velocity: 0.5},
		model.RawNote{Pitch: 65, Start: 6.5, Duration: 0.5, Velocity: 0.5},
	))
	require.NoError(t, err)

	var measures []int
	for _, n := range s.Tracks.All {
		measures = append(measures, n.Measure)
	}
	assert.Equal(t, []int{0, 0, 1, 3}, measures)
	assert.Equal(t, 4, s.MeasureCount)
	assert.InDelta(t, 2.0, MeasureSeconds(120, model.CommonTime), 1e-9)
	assert.InDelta(t, 1.5, MeasureSeconds(120, model.TimeSignature{BeatsPerMeasure: 6, BeatUnit: 8}), 1e-9)
}

func TestParseIsIdempotent(t *testing.T) {
	data := chordThenNote(t)
	first, err := Parse("same", data)
	require.NoError(t, err)
	second, err := Parse("same", data)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEmptySong(t *testing.T) {
	s, err := Parse("empty", encode(t))
	require.NoError(t, err)
	assert.True(t, s.IsEmpty())
	assert.Empty(t, s.Steps(model.Both))
	assert.Equal(t, 0, s.MeasureCount)
}

func TestParseRejectsGarbage(t *testing.T) {
	s, err := Parse("bad", []byte("not a midi file"))
	assert.Nil(t, s)
	assert.ErrorIs(t, err, midifile.ErrBadSignature)
}

func TestSplitOptions(t *testing.T) {
	data := encode(t,
		model.RawNote{Pitch: 55, Start: 0, Duration: 0.5, Velocity: 0.5},
		model.RawNote{Pitch: 65, Start: 1, Duration: 0.5, Velocity: 0.5},
	)

	s, err := Parse("split", data, WithSplitPitch(50))
	require.NoError(t, err)
	assert.Empty(t, s.Tracks.Left)

	allLeft := hands.ClassifierFunc(func(model.RawNote) model.Hand { return model.Left })
	s, err = Parse("custom", data, WithClassifier(allLeft))
	require.NoError(t, err)
	assert.Len(t, s.Tracks.Left, 2)

	// A single-track file falls back to the pitch split
	s, err = Parse("track", data, WithTrackSplit())
	require.NoError(t, err)
	assert.Len(t, s.Tracks.Left, 1)
	assert.Len(t, s.Tracks.Right, 1)
}

func TestExportRoundTrip(t *testing.T) {
	s, err := Parse("export", encode(t,
		model.RawNote{Pitch: 40, Start: 0, Duration: 0.5, Velocity: 0.5},
		model.RawNote{Pitch: 72, Start: 0.5, Duration: 0.5, Velocity: 0.5},
	))
	require.NoError(t, err)

	data, err := s.Export(model.LeftOnly)
	require.NoError(t, err)
	left, err := Parse("left", data)
	require.NoError(t, err)
	require.Len(t, left.Tracks.All, 1)
	assert.Equal(t, uint8(40), left.Tracks.All[0].Pitch)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minuet.mid")
	require.NoError(t, os.WriteFile(path, chordThenNote(t), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "minuet", s.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.mid"))
	assert.Error(t, err)
}
