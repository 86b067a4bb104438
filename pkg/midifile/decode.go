package midifile

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/james-see/pianosteps/pkg/model"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	// DefaultTempo is used when a file carries no tempo meta event
	DefaultTempo = 120.0
	// MinNoteDuration is given to notes whose off event coincides with their on event
	MinNoteDuration = 0.01
)

// Result holds everything decoded from a file
type Result struct {
	Notes         []model.RawNote // Sorted by start time, then track, then pitch
	Tempo         float64         // First tempo event in BPM
	TimeSignature model.TimeSignature
	Tracks        int
}

// Duration returns the release time of the last sounding note
func (r *Result) Duration() float64 {
	var end float64
	for _, n := range r.Notes {
		if n.End() > end {
			end = n.End()
		}
	}
	return end
}

type pendingNote struct {
	tick     int64
	velocity uint8
}

type metaAt[T any] struct {
	tick  int64
	value T
	found bool
}

func (m *metaAt[T]) offer(tick int64, v T) {
	if !m.found || tick < m.tick {
		m.tick, m.value, m.found = tick, v, true
	}
}

// Decode parses Standard MIDI File data into a chronologically sorted note list
func Decode(data []byte) (res *Result, err error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	// gomidi can panic on malformed track data
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = decodeErr(ErrMalformed, "parser panic: %v", r)
		}
	}()

	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, decodeErr(fmt.Errorf("%w: %v", ErrMalformed, err), "failed to parse MIDI")
	}
	if _, ok := s.TimeFormat.(smf.MetricTicks); !ok {
		return nil, decodeErr(ErrUnsupportedFormat, "SMPTE time format")
	}

	seconds := func(tick int64) float64 {
		return float64(s.TimeAt(tick)) / 1e6
	}

	var (
		tempo metaAt[float64]
		meter metaAt[model.TimeSignature]
		notes []model.RawNote
	)

	for trackNum, track := range s.Tracks {
		var currentTick int64
		pending := make(map[uint16][]pendingNote)

		emit := func(channel, key uint8, p pendingNote, endTick int64) {
			start := seconds(p.tick)
			duration := seconds(endTick) - start
			if duration <= 0 {
				duration = MinNoteDuration
			}
			notes = append(notes, model.RawNote{
				Pitch:    key,
				Start:    start,
				Duration: duration,
				Velocity: float64(p.velocity) / 127,
				Track:    trackNum,
				Channel:  channel,
			})
		}

		for _, ev := range track {
			currentTick += int64(ev.Delta)
			msg := ev.Message

			// Tempo meta message (FF 51 03 tt tt tt)
			if len(msg) >= 6 && msg[0] == 0xFF && msg[1] == 0x51 && msg[2] == 0x03 {
				microsecondsPerBeat := uint32(msg[3])<<16 | uint32(msg[4])<<8 | uint32(msg[5])
				if microsecondsPerBeat > 0 {
					tempo.offer(currentTick, 60000000.0/float64(microsecondsPerBeat))
				}
				continue
			}

			// Time signature meta message (FF 58 04 nn dd cc bb), denominator is a power of two
			if len(msg) >= 5 && msg[0] == 0xFF && msg[1] == 0x58 && msg[2] == 0x04 {
				if msg[3] > 0 && msg[4] < 8 {
					meter.offer(currentTick, model.TimeSignature{
						BeatsPerMeasure: int(msg[3]),
						BeatUnit:        1 << msg[4],
					})
				}
				continue
			}

			var channel, key, velocity uint8
			switch {
			case msg.GetNoteStart(&channel, &key, &velocity):
				id := uint16(channel)<<8 | uint16(key)
				pending[id] = append(pending[id], pendingNote{tick: currentTick, velocity: velocity})
			case msg.GetNoteEnd(&channel, &key):
				id := uint16(channel)<<8 | uint16(key)
				queue := pending[id]
				if len(queue) == 0 {
					continue
				}
				emit(channel, key, queue[0], currentTick)
				pending[id] = queue[1:]
			}
		}

		// Notes never released end with their track
		ids := make([]uint16, 0, len(pending))
		for id := range pending {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			for _, p := range pending[id] {
				emit(uint8(id>>8), uint8(id), p, currentTick)
			}
		}
	}

	sort.SliceStable(notes, func(i, j int) bool {
		a, b := notes[i], notes[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Track != b.Track {
			return a.Track < b.Track
		}
		return a.Pitch < b.Pitch
	})

	res = &Result{
		Notes:         notes,
		Tempo:         DefaultTempo,
		TimeSignature: model.CommonTime,
		Tracks:        len(s.Tracks),
	}
	if tempo.found {
		res.Tempo = tempo.value
	}
	if meter.found {
		res.TimeSignature = meter.value
	}
	return res, nil
}
