package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/james-see/pianosteps/pkg/model"
	"github.com/james-see/pianosteps/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pianosteps.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "both", cfg.Hand)
	assert.Equal(t, "practice", cfg.Mode)
	assert.Equal(t, 100, cfg.TempoPercent)
	assert.Equal(t, 60, cfg.SplitPitch)
	assert.Equal(t, 300*time.Millisecond, cfg.AckDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.WrongDelay)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
hand: left
mode: watch
tempo_percent: 75
hand_policy: track
ack_delay: 150ms
input_port: Digital Piano
fingering: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "left", cfg.Hand)
	assert.Equal(t, "watch", cfg.Mode)
	assert.Equal(t, 75, cfg.TempoPercent)
	assert.Equal(t, PolicyTrack, cfg.HandPolicy)
	assert.Equal(t, 150*time.Millisecond, cfg.AckDelay)
	assert.Equal(t, "Digital Piano", cfg.InputPort)
	assert.False(t, cfg.Fingering)

	// Untouched keys keep their defaults
	assert.Equal(t, 60, cfg.SplitPitch)
	assert.Equal(t, 500*time.Millisecond, cfg.WrongDelay)
	assert.True(t, cfg.Audio)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "hand: [left"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "tempo_percent: 500"))
	assert.ErrorContains(t, err, "tempo_percent")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"hand", func(c *Config) { c.Hand = "feet" }, "hand mode"},
		{"mode", func(c *Config) { c.Mode = "listen" }, "learn mode"},
		{"slow tempo", func(c *Config) { c.TempoPercent = 24 }, "tempo_percent"},
		{"fast tempo", func(c *Config) { c.TempoPercent = 201 }, "tempo_percent"},
		{"split", func(c *Config) { c.SplitPitch = 128 }, "split_pitch"},
		{"policy", func(c *Config) { c.HandPolicy = "channel" }, "hand_policy"},
		{"delay", func(c *Config) { c.AckDelay = -time.Second }, "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestSessionOptions(t *testing.T) {
	cfg := Default()
	cfg.Hand = "right"
	cfg.Mode = "watch"
	cfg.TempoPercent = 50
	cfg.Audio = false

	snap := session.New(cfg.SessionOptions()...).Snapshot()
	assert.Equal(t, model.RightOnly, snap.HandMode)
	assert.Equal(t, session.Watch, snap.LearnMode)
	assert.Equal(t, 50, snap.TempoPercent)
	assert.False(t, snap.AudioEnabled)
	assert.True(t, snap.ShowFingering)
}

func TestSongOptions(t *testing.T) {
	assert.Len(t, Default().SongOptions(), 1)

	cfg := Default()
	cfg.HandPolicy = PolicyTrack
	assert.Len(t, cfg.SongOptions(), 2)
}
