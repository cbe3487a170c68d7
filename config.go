package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Seednode/drawbox/draw"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind             string
	historySize      int
	maxOutcomes      int
	maxParticipants  int
	outcomes         []string
	participants     []string
	participantsOnly bool
	port             int
	prefix           string
	presetsFile      string
	profile          bool
	sessionTimeout   time.Duration
	tlsCert          string
	tlsKey           string
	verbose          bool
	version          bool

	presets draw.Presets
	intn    draw.IntN
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.historySize < 1 {
		return fmt.Errorf("invalid history size (must be at least 1): %d", c.historySize)
	}
	if c.maxParticipants < 1 || c.maxOutcomes < 1 {
		return errors.New("--max-participants and --max-outcomes must be at least 1")
	}
	if c.sessionTimeout < 0 {
		return fmt.Errorf("invalid session timeout (must not be negative): %s", c.sessionTimeout)
	}
	if err := draw.Validate(c.participants, c.outcomes, c.limits(), c.mode()); err != nil {
		return fmt.Errorf("invalid default lists: %w", err)
	}
	return nil
}

// loadPresets reads the preset file, if one was configured.
func (c *Config) loadPresets() error {
	c.presets = draw.Presets{}

	if c.presetsFile == "" {
		return nil
	}

	presets, err := draw.LoadPresets(c.presetsFile, c.limits(), c.mode())
	if err != nil {
		return err
	}
	c.presets = presets

	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

func (c *Config) limits() draw.Limits {
	return draw.Limits{
		MaxParticipants: c.maxParticipants,
		MaxOutcomes:     c.maxOutcomes,
	}
}

func (c *Config) mode() draw.Mode {
	if c.participantsOnly {
		return draw.ParticipantsOnly
	}
	return draw.Paired
}

func (c *Config) defaults() draw.Preset {
	return draw.Preset{
		Participants: c.participants,
		Outcomes:     c.outcomes,
	}
}

func (c *Config) newSession(lists draw.Preset) *draw.Session {
	return draw.NewSession(lists.Participants, lists.Outcomes,
		draw.WithMode(c.mode()),
		draw.WithHistorySize(c.historySize),
		draw.WithIntN(c.intn),
	)
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("DRAWBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "drawbox",
		Short:         "Draws random participant and outcome pairings, without repeats, in the browser.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			if err := cfg.loadPresets(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: DRAWBOX_BIND)")
	fs.IntVar(&cfg.historySize, "history-size", draw.DefaultHistorySize, "number of recent draws to display (env: DRAWBOX_HISTORY_SIZE)")
	fs.IntVar(&cfg.maxOutcomes, "max-outcomes", 20, "maximum number of outcomes per game (env: DRAWBOX_MAX_OUTCOMES)")
	fs.IntVar(&cfg.maxParticipants, "max-participants", 20, "maximum number of participants per game (env: DRAWBOX_MAX_PARTICIPANTS)")
	fs.StringSliceVar(&cfg.outcomes, "outcomes", []string{"당번"}, "default outcomes, when none are given in the URL (env: DRAWBOX_OUTCOMES)")
	fs.StringSliceVar(&cfg.participants, "participants", []string{"하니", "해린", "민지", "다니엘"}, "default participants, when none are given in the URL (env: DRAWBOX_PARTICIPANTS)")
	fs.BoolVar(&cfg.participantsOnly, "participants-only", false, "only draw participants; the first outcome is reused for every draw (env: DRAWBOX_PARTICIPANTS_ONLY)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: DRAWBOX_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: DRAWBOX_PREFIX)")
	fs.StringVar(&cfg.presetsFile, "presets", "", "path to a yaml file of named participant/outcome lists (env: DRAWBOX_PRESETS)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: DRAWBOX_PROFILE)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle game sessions are ended, 0 to disable (env: DRAWBOX_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: DRAWBOX_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: DRAWBOX_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: DRAWBOX_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: DRAWBOX_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("drawbox v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
