package main

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Seednode/drawbox/draw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockedIntN is a seeded source that is safe to share between connections.
func lockedIntN(seed uint64) draw.IntN {
	var mu sync.Mutex
	r := rand.New(rand.NewPCG(seed, 0))

	return func(n int) int {
		mu.Lock()
		defer mu.Unlock()
		return r.IntN(n)
	}
}

func testConfig() *Config {
	return &Config{
		bind:            "127.0.0.1",
		historySize:     draw.DefaultHistorySize,
		maxOutcomes:     20,
		maxParticipants: 20,
		outcomes:        []string{"당번"},
		participants:    []string{"하니", "해린", "민지", "다니엘"},
		port:            8080,
		sessionTimeout:  time.Minute,
		intn:            lockedIntN(1),
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"valid", func(*Config) {}, ""},
		{"cert without key", func(c *Config) { c.tlsCert = "cert.pem" }, "--tls-key"},
		{"port too low", func(c *Config) { c.port = 0 }, "invalid port"},
		{"port too high", func(c *Config) { c.port = 70000 }, "invalid port"},
		{"history size", func(c *Config) { c.historySize = 0 }, "invalid history size"},
		{"max participants", func(c *Config) { c.maxParticipants = 0 }, "--max-participants"},
		{"negative timeout", func(c *Config) { c.sessionTimeout = -time.Second }, "invalid session timeout"},
		{"bad default entry", func(c *Config) { c.participants = []string{"a.b"} }, "invalid default lists"},
		{"too many default outcomes", func(c *Config) { c.outcomes = []string{"A", "B", "C", "D", "E"} }, "invalid default lists"},
		{"participants only allows more outcomes", func(c *Config) {
			c.participantsOnly = true
			c.outcomes = []string{"A", "B", "C", "D", "E"}
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.modify(cfg)

			err := cfg.validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfigScheme(t *testing.T) {
	cfg := testConfig()
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	assert.Equal(t, "https", cfg.scheme())
}

func TestNewCmdDefaults(t *testing.T) {
	cfg := &Config{}
	newCmd(cfg)

	assert.Equal(t, 8080, cfg.port)
	assert.Equal(t, draw.DefaultHistorySize, cfg.historySize)
	assert.Equal(t, []string{"하니", "해린", "민지", "다니엘"}, cfg.participants)
	assert.Equal(t, []string{"당번"}, cfg.outcomes)
	assert.Equal(t, draw.Paired, cfg.mode())
	assert.Equal(t, 60*time.Minute, cfg.sessionTimeout)
}

func TestNewCmdReadsEnvironment(t *testing.T) {
	t.Setenv("DRAWBOX_PORT", "9090")
	t.Setenv("DRAWBOX_PARTICIPANTS", "Alice,Bob,Carol")
	t.Setenv("DRAWBOX_OUTCOMES", "Dishes")
	t.Setenv("DRAWBOX_PARTICIPANTS_ONLY", "true")
	t.Setenv("DRAWBOX_SESSION_TIMEOUT", "5m")

	cfg := &Config{}
	newCmd(cfg)

	assert.Equal(t, 9090, cfg.port)
	assert.Equal(t, []string{"Alice", "Bob", "Carol"}, cfg.participants)
	assert.Equal(t, []string{"Dishes"}, cfg.outcomes)
	assert.Equal(t, draw.ParticipantsOnly, cfg.mode())
	assert.Equal(t, 5*time.Minute, cfg.sessionTimeout)
}

func TestNewCmdRejectsInvalidFlags(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)
	cmd.SetArgs([]string{"--port", "0"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")
}

func TestNewCmdRejectsMissingPresets(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)
	cmd.SetArgs([]string{"--presets", filepath.Join(t.TempDir(), "missing.yaml")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigLoadPresets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("presets:\n  lunch:\n    participants: [Alice, Bob]\n    outcomes: [Pays]\n"), 0o600))

	cfg := testConfig()
	require.NoError(t, cfg.loadPresets())
	assert.Empty(t, cfg.presets)

	cfg.presetsFile = path
	require.NoError(t, cfg.loadPresets())
	assert.Equal(t, []string{"lunch"}, cfg.presets.Names())
}
