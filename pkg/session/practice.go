package session

import (
	"fmt"
	"time"

	"github.com/james-see/pianosteps/pkg/audio"
	"go.uber.org/zap"
)

// OnNoteEvent feeds one normalized input event into the session. Pitches
// outside 0..127 are rejected; note-off events are accepted and ignored.
func (s *Session) OnNoteEvent(pitch int, velocity float64, on bool) error {
	if pitch < 0 || pitch > 127 {
		return fmt.Errorf("pitch %d out of range", pitch)
	}
	if !on {
		return nil
	}
	p := uint8(pitch)
	s.update(func() {
		if s.learnMode != Practice {
			return
		}
		switch s.state {
		case Ready, AwaitingInput:
		default:
			return
		}
		step := s.steps[s.index]
		if note, ok := step.Note(p); ok {
			s.matched(p, note.Duration, note.Velocity)
			return
		}
		s.missed(p, velocity)
	})
	return nil
}

func (s *Session) matched(pitch uint8, duration, velocity float64) {
	s.correct[pitch] = true
	delete(s.wrong, pitch)
	s.play(pitch, audio.Seconds(duration), velocity)
	s.setState(AwaitingInput)
	s.emit(EventNoteCorrect, pitch)

	for _, p := range s.steps[s.index].Pitches() {
		if !s.correct[p] {
			return
		}
	}

	s.cancel(&s.feedback)
	clear(s.wrong)
	s.setState(StepAdvancing)
	s.emit(EventStepMatched, 0)
	s.after(&s.ack, s.ackDelay, s.acknowledge)
}

// acknowledge runs once the ack delay of a matched step has elapsed
func (s *Session) acknowledge() {
	clear(s.correct)
	if s.index+1 < len(s.steps) {
		s.index++
		s.setState(AwaitingInput)
		s.emit(EventStepChanged, 0)
		return
	}
	s.complete()
}

func (s *Session) complete() {
	s.setState(Completed)
	s.log.Info("song completed",
		zap.String("song", s.song.Name),
		zap.Int("steps", len(s.steps)))
	s.emit(EventCompleted, 0)
}

func (s *Session) missed(pitch uint8, velocity float64) {
	s.wrong[pitch] = true
	s.play(pitch, WrongNoteDuration, velocity*WrongNoteVelocity)
	s.emit(EventNoteWrong, pitch)
	s.after(&s.feedback, s.wrongDelay, func() {
		clear(s.wrong)
		s.emit(EventFeedbackCleared, 0)
	})
}

func (s *Session) play(pitch uint8, d time.Duration, velocity float64) {
	if !s.audioEnabled {
		return
	}
	s.sink.PlayNoteForDuration(pitch, d, velocity)
}
