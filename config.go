package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind         string
	envFile      string
	messageBurst int
	messageRate  float64
	pairTurns    int
	port         int
	prefix       string
	profile      bool
	tlsCert      string
	tlsKey       string
	verbose      bool
	version      bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.pairTurns < 1 {
		return fmt.Errorf("invalid pair turns (must be at least 1): %d", c.pairTurns)
	}
	if c.messageRate <= 0 {
		return fmt.Errorf("invalid message rate (must be greater than 0): %v", c.messageRate)
	}
	if c.messageBurst < 1 {
		return fmt.Errorf("invalid message burst (must be at least 1): %d", c.messageBurst)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// loadEnvFile reads a dotenv file into the environment without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// envFileFromArgs finds --env-file before cobra parses flags, since the file
// has to be loaded before flags pick up their environment values.
func envFileFromArgs(args []string) string {
	path := ".env"
	if env := os.Getenv("GUESSBOX_ENV_FILE"); env != "" {
		path = env
	}
	for i, arg := range args {
		switch {
		case strings.HasPrefix(arg, "--env-file="):
			path = strings.TrimPrefix(arg, "--env-file=")
		case arg == "--env-file" && i+1 < len(args):
			path = args[i+1]
		}
	}
	return path
}

func newCmd(cfg *Config, args []string) (*cobra.Command, error) {
	if err := loadEnvFile(envFileFromArgs(args)); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("GUESSBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "guessbox",
		Short:         "A real-time multiplayer deduction game, served as a single webapp.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: GUESSBOX_BIND)")
	fs.StringVar(&cfg.envFile, "env-file", ".env", "dotenv file to load before reading the environment (env: GUESSBOX_ENV_FILE)")
	fs.IntVar(&cfg.messageBurst, "message-burst", 10, "messages a connection may send at once before rate limiting (env: GUESSBOX_MESSAGE_BURST)")
	fs.Float64Var(&cfg.messageRate, "message-rate", 5, "sustained messages per second allowed per connection (env: GUESSBOX_MESSAGE_RATE)")
	fs.IntVar(&cfg.pairTurns, "pair-turns", 6, "questions each pair asks in paired mode before rotating (env: GUESSBOX_PAIR_TURNS)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: GUESSBOX_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: GUESSBOX_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: GUESSBOX_PROFILE)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: GUESSBOX_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: GUESSBOX_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: GUESSBOX_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: GUESSBOX_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("guessbox v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd, nil
}
