package audio

import (
	"fmt"
	"math"
	"sync"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"go.uber.org/zap"
)

// MIDIOut plays notes on a MIDI output port
type MIDIOut struct {
	send     func(msg midi.Message) error
	channel  uint8
	log      *zap.Logger
	mu       sync.Mutex
	releases map[uint8]*time.Timer
	closed   bool
}

// MIDIOutOption configures a MIDIOut
type MIDIOutOption func(*MIDIOut)

// WithChannel sets the MIDI channel notes are sent on (0-15)
func WithChannel(channel uint8) MIDIOutOption {
	return func(m *MIDIOut) {
		m.channel = channel & 0x0F
	}
}

// WithLogger sets the logger used to report send failures
func WithLogger(log *zap.Logger) MIDIOutOption {
	return func(m *MIDIOut) {
		if log != nil {
			m.log = log.Named("midiout")
		}
	}
}

// NewMIDIOut wraps a send function, as returned by midi.SendTo
func NewMIDIOut(send func(msg midi.Message) error, opts ...MIDIOutOption) *MIDIOut {
	m := &MIDIOut{
		send:     send,
		log:      zap.NewNop(),
		releases: make(map[uint8]*time.Timer),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OpenMIDIOut connects to the named output port. A MIDI driver must be
// registered by the caller.
func OpenMIDIOut(portName string, opts ...MIDIOutOption) (*MIDIOut, error) {
	port, err := midi.FindOutPort(portName)
	if err != nil {
		return nil, fmt.Errorf("failed to find output port %q: %w", portName, err)
	}
	send, err := midi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("failed to open output port %q: %w", portName, err)
	}
	return NewMIDIOut(send, opts...), nil
}

func velocityByte(v float64) uint8 {
	return uint8(math.Max(1, math.Min(127, math.Round(v*127))))
}

func (m *MIDIOut) write(msg midi.Message) {
	if err := m.send(msg); err != nil {
		m.log.Warn("failed to send MIDI message", zap.Stringer("message", msg), zap.Error(err))
	}
}

// PlayNote starts a note that sounds until ReleaseNote
func (m *MIDIOut) PlayNote(pitch uint8, velocity float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || pitch > 127 {
		return
	}
	m.cancelRelease(pitch)
	m.write(midi.NoteOn(m.channel, pitch, velocityByte(velocity)))
}

// ReleaseNote stops a sounding note
func (m *MIDIOut) ReleaseNote(pitch uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || pitch > 127 {
		return
	}
	m.cancelRelease(pitch)
	m.write(midi.NoteOff(m.channel, pitch))
}

// PlayNoteForDuration starts a note and schedules its release
func (m *MIDIOut) PlayNoteForDuration(pitch uint8, duration time.Duration, velocity float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || pitch > 127 {
		return
	}
	m.cancelRelease(pitch)
	m.write(midi.NoteOn(m.channel, pitch, velocityByte(velocity)))

	var timer *time.Timer
	timer = time.AfterFunc(duration, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.closed || m.releases[pitch] != timer {
			return
		}
		delete(m.releases, pitch)
		m.write(midi.NoteOff(m.channel, pitch))
	})
	m.releases[pitch] = timer
}

func (m *MIDIOut) cancelRelease(pitch uint8) {
	if t, ok := m.releases[pitch]; ok {
		t.Stop()
		delete(m.releases, pitch)
	}
}

// Close releases every note with a pending release and stops accepting calls
func (m *MIDIOut) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	for pitch := range m.releases {
		m.cancelRelease(pitch)
		m.write(midi.NoteOff(m.channel, pitch))
	}
	m.closed = true
	return nil
}
