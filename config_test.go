package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		bind:         "127.0.0.1",
		messageBurst: 10,
		messageRate:  5,
		pairTurns:    6,
		port:         8080,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "cert without key", mutate: func(c *Config) { c.tlsCert = "cert.pem" }, wantErr: "tls-key"},
		{name: "key without cert", mutate: func(c *Config) { c.tlsKey = "key.pem" }, wantErr: "tls-cert"},
		{name: "port too low", mutate: func(c *Config) { c.port = 0 }, wantErr: "invalid port"},
		{name: "port too high", mutate: func(c *Config) { c.port = 70000 }, wantErr: "invalid port"},
		{name: "no pair turns", mutate: func(c *Config) { c.pairTurns = 0 }, wantErr: "pair turns"},
		{name: "zero rate", mutate: func(c *Config) { c.messageRate = 0 }, wantErr: "message rate"},
		{name: "zero burst", mutate: func(c *Config) { c.messageBurst = 0 }, wantErr: "message burst"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigScheme(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	assert.Equal(t, "https", cfg.scheme())
}

func TestEnvFileFromArgs(t *testing.T) {
	t.Setenv("GUESSBOX_ENV_FILE", "")

	assert.Equal(t, ".env", envFileFromArgs(nil))
	assert.Equal(t, "a.env", envFileFromArgs([]string{"--env-file", "a.env"}))
	assert.Equal(t, "b.env", envFileFromArgs([]string{"-v", "--env-file=b.env"}))
	assert.Equal(t, ".env", envFileFromArgs([]string{"--env-file"}))

	t.Setenv("GUESSBOX_ENV_FILE", "from-env.env")
	assert.Equal(t, "from-env.env", envFileFromArgs(nil))
	assert.Equal(t, "flag.env", envFileFromArgs([]string{"--env-file", "flag.env"}))
}

func TestLoadEnvFile(t *testing.T) {
	assert.NoError(t, loadEnvFile(""))
	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	t.Setenv("GUESSBOX_TEST_VALUE", "")
	require.NoError(t, os.Unsetenv("GUESSBOX_TEST_VALUE"))
	t.Setenv("GUESSBOX_TEST_KEPT", "from-shell")

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("GUESSBOX_TEST_VALUE=loaded\nGUESSBOX_TEST_KEPT=overridden\n"), 0o600))

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "loaded", os.Getenv("GUESSBOX_TEST_VALUE"))
	assert.Equal(t, "from-shell", os.Getenv("GUESSBOX_TEST_KEPT"))
}

func TestNewCmdReadsEnvironment(t *testing.T) {
	t.Setenv("GUESSBOX_ENV_FILE", filepath.Join(t.TempDir(), "none.env"))
	t.Setenv("GUESSBOX_PORT", "9090")
	t.Setenv("GUESSBOX_PAIR_TURNS", "3")
	t.Setenv("GUESSBOX_MESSAGE_RATE", "2.5")

	cfg := &Config{}
	cmd, err := newCmd(cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.port)
	assert.Equal(t, 3, cfg.pairTurns)
	assert.InDelta(t, 2.5, cfg.messageRate, 0.0001)
	assert.Equal(t, 10, cfg.messageBurst)

	require.NoError(t, cmd.ParseFlags([]string{"--port", "7000"}))
	assert.Equal(t, 7000, cfg.port)
	assert.NoError(t, cfg.validate())
}
