package session

import (
	"time"

	"github.com/james-see/pianosteps/pkg/audio"
	"go.uber.org/zap"
)

// Play starts watch-mode playback from the current step. A completed song
// restarts from the first step.
func (s *Session) Play() error {
	var err error
	s.update(func() {
		switch {
		case s.song == nil:
			err = ErrNoSong
			return
		case s.learnMode != Watch:
			err = ErrNotWatching
			return
		case s.playing || len(s.steps) == 0:
			return
		}
		if s.state == Completed {
			s.index = 0
			s.emit(EventStepChanged, 0)
		}
		s.playing = true
		s.setState(Watching)
		s.startTicker()
		s.emit(EventPlaybackChanged, 0)
	})
	return err
}

// Pause stops watch-mode playback and keeps the current step
func (s *Session) Pause() {
	s.update(func() {
		if !s.playing {
			return
		}
		s.cancel(&s.ticker)
		s.playing = false
		s.setState(s.restState())
		s.emit(EventPlaybackChanged, 0)
	})
}

// Interval is the time between watch-mode steps at the current tempo
func (s *Session) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval()
}

func (s *Session) interval() time.Duration {
	tempo := 120.0
	if s.song != nil && s.song.Tempo > 0 {
		tempo = s.song.Tempo
	}
	ms := (60000 / tempo) * (100 / float64(s.tempoPercent))
	return time.Duration(ms * float64(time.Millisecond))
}

func (s *Session) startTicker() {
	d := s.interval()
	s.log.Debug("watch ticker", zap.Duration("interval", d), zap.Int("tempo_percent", s.tempoPercent))
	s.every(&s.ticker, d, s.tick)
}

// tick plays the current step and moves past it
func (s *Session) tick() {
	for _, n := range s.steps[s.index].Notes {
		s.play(n.Pitch, audio.Seconds(n.Duration), n.Velocity)
	}
	if s.index+1 < len(s.steps) {
		s.index++
		s.emit(EventStepChanged, 0)
		return
	}
	s.cancel(&s.ticker)
	s.playing = false
	s.complete()
}
