package midifile

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"math/bits"
	"os"
	"sort"

	"github.com/james-see/pianosteps/pkg/model"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Encoder writes note lists as single-track Standard MIDI Files
type Encoder struct {
	ticksPerQuarter uint16
}

// NewEncoder creates an encoder with 480 ticks per quarter note
func NewEncoder() *Encoder {
	return &Encoder{ticksPerQuarter: 480}
}

type noteEvent struct {
	tick     uint32
	on       bool
	channel  uint8
	key      uint8
	velocity uint8
}

// Encode creates MIDI data for notes at a constant tempo
func (e *Encoder) Encode(notes []model.RawNote, tempo float64, ts model.TimeSignature) ([]byte, error) {
	if tempo <= 0 {
		tempo = DefaultTempo
	}
	if ts.BeatsPerMeasure <= 0 || ts.BeatUnit <= 0 || bits.OnesCount(uint(ts.BeatUnit)) != 1 {
		return nil, fmt.Errorf("invalid time signature %s", ts)
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(e.ticksPerQuarter)

	var track smf.Track

	// Tempo meta event
	microsecondsPerBeat := uint32(60000000.0 / tempo)
	track.Add(0, smf.Message([]byte{
		0xFF, 0x51, 0x03,
		byte(microsecondsPerBeat >> 16),
		byte(microsecondsPerBeat >> 8),
		byte(microsecondsPerBeat),
	}))

	// Time signature meta event
	track.Add(0, smf.Message([]byte{
		0xFF, 0x58, 0x04,
		byte(ts.BeatsPerMeasure),
		byte(bits.TrailingZeros(uint(ts.BeatUnit))),
		0x18, 0x08,
	}))

	ticksPerSecond := tempo / 60 * float64(e.ticksPerQuarter)
	toTick := func(seconds float64) uint32 {
		return uint32(math.Round(seconds * ticksPerSecond))
	}

	events := make([]noteEvent, 0, len(notes)*2)
	for _, n := range notes {
		if n.Pitch > 127 || n.Channel > 15 {
			return nil, fmt.Errorf("note out of range: pitch %d channel %d", n.Pitch, n.Channel)
		}
		velocity := uint8(math.Max(1, math.Min(127, math.Round(n.Velocity*127))))
		start := toTick(n.Start)
		end := toTick(n.End())
		if end <= start {
			end = start + 1
		}
		events = append(events,
			noteEvent{tick: start, on: true, channel: n.Channel, key: n.Pitch, velocity: velocity},
			noteEvent{tick: end, channel: n.Channel, key: n.Pitch},
		)
	}

	// Releases sort ahead of attacks on the same tick so repeated pitches retrigger
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return !events[i].on && events[j].on
	})

	var currentTick uint32
	for _, ev := range events {
		delta := ev.tick - currentTick
		if ev.on {
			track.Add(delta, midi.NoteOn(ev.channel, ev.key, ev.velocity))
		} else {
			track.Add(delta, midi.NoteOff(ev.channel, ev.key))
		}
		currentTick = ev.tick
	}

	track.Close(0)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

// Encode writes notes with the default encoder
func Encode(notes []model.RawNote, tempo float64, ts model.TimeSignature) ([]byte, error) {
	return NewEncoder().Encode(notes, tempo, ts)
}

// WriteFile encodes notes and writes them to filename
func WriteFile(filename string, notes []model.RawNote, tempo float64, ts model.TimeSignature) error {
	if filename == "" {
		return errors.New("empty output filename")
	}
	data, err := Encode(notes, tempo, ts)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
