// Package song assembles decoded notes into an immutable, hand-separated and
// fingered Song.
package song

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/james-see/pianosteps/pkg/fingering"
	"github.com/james-see/pianosteps/pkg/hands"
	"github.com/james-see/pianosteps/pkg/midifile"
	"github.com/james-see/pianosteps/pkg/model"
	"github.com/james-see/pianosteps/pkg/steps"
)

// Song is the fully annotated piece. It is never mutated after Build returns.
type Song struct {
	Name          string
	TotalDuration float64 // Seconds
	Tempo         float64 // BPM
	TimeSignature model.TimeSignature
	MeasureCount  int
	Tracks        hands.Tracks
}

// Options controls how a song is built
type Options struct {
	// Classifier splits notes between hands. Nil selects a middle C pitch split.
	Classifier hands.Classifier
	// ByTrack prefers track-of-origin splitting when the file has several note tracks
	ByTrack bool
}

// Option is a function that modifies Options
type Option func(*Options)

// WithClassifier sets the hand classifier
func WithClassifier(c hands.Classifier) Option {
	return func(o *Options) {
		o.Classifier = c
	}
}

// WithSplitPitch splits hands at the given pitch
func WithSplitPitch(pitch uint8) Option {
	return func(o *Options) {
		o.Classifier = hands.PitchSplit{Threshold: pitch}
	}
}

// WithTrackSplit assigns hands by source track when possible
func WithTrackSplit() Option {
	return func(o *Options) {
		o.ByTrack = true
	}
}

// Parse decodes MIDI data and builds a Song from it
func Parse(name string, data []byte, opts ...Option) (*Song, error) {
	res, err := midifile.Decode(data)
	if err != nil {
		return nil, err
	}
	return Build(name, res, opts...), nil
}

// Load reads a MIDI file and builds a Song named after the file
func Load(filename string, opts ...Option) (*Song, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read song: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return Parse(name, data, opts...)
}

// Build partitions, fingers and indexes decoded notes
func Build(name string, res *midifile.Result, opts ...Option) *Song {
	options := Options{}
	for _, opt := range opts {
		opt(&options)
	}
	classifier := options.Classifier
	if classifier == nil {
		classifier = hands.NewPitchSplit()
	}
	if options.ByTrack {
		classifier = hands.ByTrack(res.Notes, classifier)
	}

	tempo := res.Tempo
	if tempo <= 0 {
		tempo = midifile.DefaultTempo
	}
	ts := res.TimeSignature
	if ts.BeatsPerMeasure <= 0 || ts.BeatUnit <= 0 {
		ts = model.CommonTime
	}

	tracks := hands.Partition(res.Notes, classifier)
	fingering.Assign(model.Left, tracks.Left)
	fingering.Assign(model.Right, tracks.Right)

	measure := MeasureSeconds(tempo, ts)
	measureCount := 0
	for _, stream := range [][]model.Note{tracks.Left, tracks.Right} {
		for i := range stream {
			stream[i].Measure = int(math.Floor(stream[i].Start / measure))
			if stream[i].Measure+1 > measureCount {
				measureCount = stream[i].Measure + 1
			}
		}
	}
	// All is rebuilt so it carries the fingers and measures
	tracks.All = hands.Merge(tracks.Left, tracks.Right)

	return &Song{
		Name:          name,
		TotalDuration: res.Duration(),
		Tempo:         tempo,
		TimeSignature: ts,
		MeasureCount:  measureCount,
		Tracks:        tracks,
	}
}

// MeasureSeconds returns the length of one measure
func MeasureSeconds(tempo float64, ts model.TimeSignature) float64 {
	beat := 60 / tempo * 4 / float64(ts.BeatUnit)
	return beat * float64(ts.BeatsPerMeasure)
}

// Steps derives the step sequence for a hand mode. The result is freshly
// allocated on every call.
func (s *Song) Steps(mode model.HandMode) []model.Step {
	return steps.Group(s.Tracks.For(mode))
}

// IsEmpty reports whether the song has no notes
func (s *Song) IsEmpty() bool {
	return len(s.Tracks.All) == 0
}

// Notes returns the raw notes of the selected hands, in time order
func (s *Song) Notes(mode model.HandMode) []model.RawNote {
	stream := s.Tracks.For(mode)
	out := make([]model.RawNote, len(stream))
	for i, n := range stream {
		out[i] = n.RawNote
	}
	return out
}

// Export encodes the selected hands as MIDI data
func (s *Song) Export(mode model.HandMode) ([]byte, error) {
	return midifile.Encode(s.Notes(mode), s.Tempo, s.TimeSignature)
}
