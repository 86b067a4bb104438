package main

import (
	"github.com/james-see/pianosteps/pkg/audio"
	"github.com/james-see/pianosteps/pkg/config"
	"github.com/james-see/pianosteps/pkg/input"
	"github.com/james-see/pianosteps/pkg/logging"
	"github.com/james-see/pianosteps/pkg/session"
	"github.com/james-see/pianosteps/pkg/song"
	"github.com/james-see/pianosteps/pkg/tui"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	"go.uber.org/zap"
)

// practiceLogger discards logs unless --log-file is set, since the
// practice screen owns the terminal
func practiceLogger(cfg config.Config) (*zap.Logger, error) {
	if logFile == "" {
		return zap.NewNop(), nil
	}
	return logging.New(cfg.LogLevel, true, logFile)
}

func runPractice(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := practiceLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	defer midi.CloseDriver()

	var s *song.Song
	if len(args) == 1 {
		if s, err = loadSong(cfg, args[0]); err != nil {
			return err
		}
	}

	sink := audio.Tee{audio.NewLogger(log)}
	if cfg.OutputPort != "" {
		out, err := audio.OpenMIDIOut(cfg.OutputPort, audio.WithLogger(log))
		if err != nil {
			return err
		}
		defer func() { _ = out.Close() }()
		sink = append(sink, out)
	}

	opts := append(cfg.SessionOptions(),
		session.WithAudio(sink),
		session.WithLogger(log),
	)
	m := tui.New(tui.Config{
		Song:        s,
		SongOptions: cfg.SongOptions(),
		Session:     opts,
	})

	if cfg.InputPort != "" {
		in, err := input.Listen(cfg.InputPort, m.Session(), input.WithLogger(log))
		if err != nil {
			return err
		}
		defer in.Stop()
	}

	return tui.Run(m)
}
