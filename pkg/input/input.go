// Package input turns MIDI devices and computer keyboards into normalized
// note events.
package input

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"go.uber.org/zap"
)

// Target receives normalized note events. *session.Session implements it.
type Target interface {
	OnNoteEvent(pitch int, velocity float64, on bool) error
}

// TargetFunc adapts a function to a Target
type TargetFunc func(pitch int, velocity float64, on bool) error

func (f TargetFunc) OnNoteEvent(pitch int, velocity float64, on bool) error {
	return f(pitch, velocity, on)
}

// Event is a note-on or note-off with velocity scaled to 0..1
type Event struct {
	Pitch    int
	Velocity float64
	On       bool
}

// Normalize converts a MIDI message into an Event. It reports false for
// anything that is not a note message. A note-on with zero velocity is a
// note-off.
func Normalize(msg midi.Message) (Event, bool) {
	var ch, key, vel uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		return Event{Pitch: int(key), Velocity: float64(vel) / 127, On: true}, true
	case msg.GetNoteEnd(&ch, &key):
		return Event{Pitch: int(key)}, true
	default:
		return Event{}, false
	}
}

// Forward normalizes msg and hands it to target
func Forward(msg midi.Message, target Target, log *zap.Logger) {
	ev, ok := Normalize(msg)
	if !ok {
		return
	}
	if err := target.OnNoteEvent(ev.Pitch, ev.Velocity, ev.On); err != nil {
		log.Warn("note event rejected", zap.Int("pitch", ev.Pitch), zap.Error(err))
	}
}

// Listener forwards note events from a MIDI input port
type Listener struct {
	port string
	log  *zap.Logger
	stop func()
}

// Option configures a Listener
type Option func(*Listener)

// WithLogger sets the logger
func WithLogger(log *zap.Logger) Option {
	return func(l *Listener) {
		if log != nil {
			l.log = log.Named("input")
		}
	}
}

// Listen opens the named input port, or the first port when name is empty,
// and forwards its note events to target until Stop. A MIDI driver must be
// registered by the caller.
func Listen(name string, target Target, opts ...Option) (*Listener, error) {
	l := &Listener{log: zap.NewNop()}
	for _, opt := range opts {
		opt(l)
	}

	var (
		port drivers.In
		err  error
	)
	if name == "" {
		port, err = midi.InPort(0)
	} else {
		port, err = midi.FindInPort(name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find input port %q: %w", name, err)
	}
	l.port = port.String()

	stop, err := midi.ListenTo(port, func(msg midi.Message, timestampms int32) {
		Forward(msg, target, l.log)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %q: %w", l.port, err)
	}
	l.stop = stop
	l.log.Info("listening for MIDI input", zap.String("port", l.port))
	return l, nil
}

// Port returns the name of the port being listened to
func (l *Listener) Port() string {
	return l.port
}

// Stop detaches from the port
func (l *Listener) Stop() {
	if l.stop != nil {
		l.stop()
		l.stop = nil
		l.log.Info("stopped MIDI input", zap.String("port", l.port))
	}
}

// Ports lists the available input and output port names
func Ports() (ins, outs []string) {
	for _, p := range midi.GetInPorts() {
		ins = append(ins, p.String())
	}
	for _, p := range midi.GetOutPorts() {
		outs = append(outs, p.String())
	}
	return ins, outs
}
