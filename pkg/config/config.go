// Package config loads pianosteps settings from YAML
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/james-see/pianosteps/pkg/hands"
	"github.com/james-see/pianosteps/pkg/model"
	"github.com/james-see/pianosteps/pkg/session"
	"github.com/james-see/pianosteps/pkg/song"
	"gopkg.in/yaml.v3"
)

const (
	PolicyPitch = "pitch"
	PolicyTrack = "track"
)

// Config holds user settings. Command line flags override file values.
type Config struct {
	Hand         string        `yaml:"hand"`
	Mode         string        `yaml:"mode"`
	TempoPercent int           `yaml:"tempo_percent"`
	SplitPitch   int           `yaml:"split_pitch"`
	HandPolicy   string        `yaml:"hand_policy"`
	AckDelay     time.Duration `yaml:"ack_delay"`
	WrongDelay   time.Duration `yaml:"wrong_delay"`
	InputPort    string        `yaml:"input_port"`
	OutputPort   string        `yaml:"output_port"`
	LogLevel     string        `yaml:"log_level"`
	Audio        bool          `yaml:"audio"`
	Fingering    bool          `yaml:"fingering"`
}

// Default returns the settings used when no file is given
func Default() Config {
	return Config{
		Hand:         model.Both.String(),
		Mode:         session.Practice.String(),
		TempoPercent: session.DefaultTempoPercent,
		SplitPitch:   int(hands.MiddleC),
		HandPolicy:   PolicyPitch,
		AckDelay:     session.DefaultAckDelay,
		WrongDelay:   session.DefaultWrongDelay,
		LogLevel:     "info",
		Audio:        true,
		Fingering:    true,
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field is within range
func (c Config) Validate() error {
	var errs []error
	if _, err := model.ParseHandMode(c.Hand); err != nil {
		errs = append(errs, err)
	}
	if _, err := session.ParseLearnMode(c.Mode); err != nil {
		errs = append(errs, err)
	}
	if c.TempoPercent < session.MinTempoPercent || c.TempoPercent > session.MaxTempoPercent {
		errs = append(errs, fmt.Errorf("tempo_percent %d outside [%d,%d]",
			c.TempoPercent, session.MinTempoPercent, session.MaxTempoPercent))
	}
	if c.SplitPitch < 0 || c.SplitPitch > 127 {
		errs = append(errs, fmt.Errorf("split_pitch %d outside [0,127]", c.SplitPitch))
	}
	if c.HandPolicy != PolicyPitch && c.HandPolicy != PolicyTrack {
		errs = append(errs, fmt.Errorf("unknown hand_policy %q", c.HandPolicy))
	}
	if c.AckDelay < 0 || c.WrongDelay < 0 {
		errs = append(errs, errors.New("delays must not be negative"))
	}
	return errors.Join(errs...)
}

// SongOptions returns the parse options for the configured hand policy
func (c Config) SongOptions() []song.Option {
	opts := []song.Option{song.WithSplitPitch(uint8(c.SplitPitch))}
	if c.HandPolicy == PolicyTrack {
		opts = append(opts, song.WithTrackSplit())
	}
	return opts
}

// SessionOptions returns the session options for the configured modes,
// tempo and delays. Call Validate first.
func (c Config) SessionOptions() []session.Option {
	hand, _ := model.ParseHandMode(c.Hand)
	mode, _ := session.ParseLearnMode(c.Mode)
	return []session.Option{
		session.WithHandMode(hand),
		session.WithLearnMode(mode),
		session.WithTempoPercent(c.TempoPercent),
		session.WithDelays(c.AckDelay, c.WrongDelay),
		session.WithFingering(c.Fingering),
		session.WithAudioEnabled(c.Audio),
	}
}
