// Package audio defines the fire-and-forget sound output used by practice
// sessions and provides MIDI-out, logging and silent implementations.
package audio

import (
	"time"

	"go.uber.org/zap"
)

// Sink triggers notes on an external synthesizer. Calls must not block.
type Sink interface {
	PlayNote(pitch uint8, velocity float64)
	ReleaseNote(pitch uint8)
	PlayNoteForDuration(pitch uint8, duration time.Duration, velocity float64)
}

// Nop discards every call
type Nop struct{}

func (Nop) PlayNote(uint8, float64)                           {}
func (Nop) ReleaseNote(uint8)                                 {}
func (Nop) PlayNoteForDuration(uint8, time.Duration, float64) {}

// Logger writes every call to a zap logger at debug level
type Logger struct {
	log *zap.Logger
}

// NewLogger creates a logging sink
func NewLogger(log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{log: log.Named("audio")}
}

func (l *Logger) PlayNote(pitch uint8, velocity float64) {
	l.log.Debug("play", zap.Uint8("pitch", pitch), zap.Float64("velocity", velocity))
}

func (l *Logger) ReleaseNote(pitch uint8) {
	l.log.Debug("release", zap.Uint8("pitch", pitch))
}

func (l *Logger) PlayNoteForDuration(pitch uint8, duration time.Duration, velocity float64) {
	l.log.Debug("play for duration",
		zap.Uint8("pitch", pitch),
		zap.Duration("duration", duration),
		zap.Float64("velocity", velocity))
}

// Tee fans every call out to several sinks
type Tee []Sink

func (t Tee) PlayNote(pitch uint8, velocity float64) {
	for _, s := range t {
		s.PlayNote(pitch, velocity)
	}
}

func (t Tee) ReleaseNote(pitch uint8) {
	for _, s := range t {
		s.ReleaseNote(pitch)
	}
}

func (t Tee) PlayNoteForDuration(pitch uint8, duration time.Duration, velocity float64) {
	for _, s := range t {
		s.PlayNoteForDuration(pitch, duration, velocity)
	}
}

// Seconds converts a note length in seconds to a duration
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
