// Package config resolves kiosk settings from flags, an optional YAML
// file, and the environment. Precedence: flags beat the file beat
// environment variables beat built-in defaults.
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Defaults mirror the backend the kiosk ships against.
const (
	DefaultStreamURL     = "ws://localhost:8000/ws"
	DefaultApprovalURL   = "http://localhost:8000/approve"
	DefaultThreshold     = 70.0
	DefaultReportHold    = 3 * time.Second
	DefaultResultHold    = 3 * time.Second
	DefaultIntroDuration = 4 * time.Second
	DefaultSmoothing     = 10.0
	DefaultClickDistance = 30.0
)

// Config carries everything the kiosk program needs at startup.
type Config struct {
	// StreamURL is the persistent telemetry channel (ws:// or wss://).
	StreamURL string `yaml:"stream_url"`
	// ApprovalURL receives the one-shot approval decision.
	ApprovalURL string `yaml:"approval_url"`

	// Threshold is the minimum aggregate score for approval.
	Threshold float64 `yaml:"threshold"`
	// ReportHold is the on-screen dwell before a report is classified.
	ReportHold time.Duration `yaml:"report_hold"`
	// ResultHold is the dwell between classification and the decision.
	ResultHold time.Duration `yaml:"result_hold"`
	// IntroDuration is the length of the boot sequence.
	IntroDuration time.Duration `yaml:"intro_duration"`

	// Initial backend tuning, adjustable at runtime from the HUD.
	Smoothing     float64 `yaml:"smoothing"`
	ClickDistance float64 `yaml:"click_distance"`

	// LogFile receives JSON log records. Logging to stderr would
	// corrupt the alt-screen display, so the default is discard.
	LogFile string `yaml:"log_file"`

	// SessionID identifies this run to the backend. Generated, never
	// configured.
	SessionID string `yaml:"-"`
}

func defaults() Config {
	return Config{
		StreamURL:     DefaultStreamURL,
		ApprovalURL:   DefaultApprovalURL,
		Threshold:     DefaultThreshold,
		ReportHold:    DefaultReportHold,
		ResultHold:    DefaultResultHold,
		IntroDuration: DefaultIntroDuration,
		Smoothing:     DefaultSmoothing,
		ClickDistance: DefaultClickDistance,
	}
}

// Load resolves the configuration from the given argument list
// (normally os.Args[1:]).
func Load(args []string) (Config, error) {
	cfg := defaults()

	flags := pflag.NewFlagSet("kiosk", pflag.ContinueOnError)
	configPath := flags.String("config", "", "path to a YAML config file")
	flags.StringVar(&cfg.StreamURL, "stream-url", cfg.StreamURL, "websocket telemetry endpoint")
	flags.StringVar(&cfg.ApprovalURL, "approval-url", cfg.ApprovalURL, "approval decision endpoint")
	flags.Float64Var(&cfg.Threshold, "threshold", cfg.Threshold, "minimum aggregate score for approval")
	flags.DurationVar(&cfg.ReportHold, "report-hold", cfg.ReportHold, "dwell before a report is classified")
	flags.DurationVar(&cfg.ResultHold, "result-hold", cfg.ResultHold, "dwell between classification and decision")
	flags.DurationVar(&cfg.IntroDuration, "intro-duration", cfg.IntroDuration, "length of the boot sequence")
	flags.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "write JSON log records to this file")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	path := *configPath
	if path == "" {
		path = os.Getenv("KIOSK_CONFIG")
	}
	if path != "" {
		fileCfg := defaults()
		if err := loadFile(path, &fileCfg); err != nil {
			return Config{}, err
		}
		// The file overrides defaults but not explicit flags.
		cfg = overlay(cfg, fileCfg, flags)
	}

	applyEnv(&cfg, flags)

	cfg.SessionID = uuid.NewString()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, into *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, into); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// overlay merges file values into the flag-resolved config, keeping
// any value the user set explicitly on the command line.
func overlay(flagCfg, fileCfg Config, flags *pflag.FlagSet) Config {
	out := fileCfg
	if flags.Changed("stream-url") {
		out.StreamURL = flagCfg.StreamURL
	}
	if flags.Changed("approval-url") {
		out.ApprovalURL = flagCfg.ApprovalURL
	}
	if flags.Changed("threshold") {
		out.Threshold = flagCfg.Threshold
	}
	if flags.Changed("report-hold") {
		out.ReportHold = flagCfg.ReportHold
	}
	if flags.Changed("result-hold") {
		out.ResultHold = flagCfg.ResultHold
	}
	if flags.Changed("intro-duration") {
		out.IntroDuration = flagCfg.IntroDuration
	}
	if flags.Changed("log-file") {
		out.LogFile = flagCfg.LogFile
	}
	return out
}

// applyEnv fills endpoint settings from the environment when neither
// flag nor file provided them.
func applyEnv(cfg *Config, flags *pflag.FlagSet) {
	if !flags.Changed("stream-url") && cfg.StreamURL == DefaultStreamURL {
		if url := os.Getenv("KIOSK_STREAM_URL"); url != "" {
			cfg.StreamURL = url
		}
	}
	if !flags.Changed("approval-url") && cfg.ApprovalURL == DefaultApprovalURL {
		if url := os.Getenv("KIOSK_APPROVAL_URL"); url != "" {
			cfg.ApprovalURL = url
		}
	}
	if !flags.Changed("log-file") && cfg.LogFile == "" {
		cfg.LogFile = os.Getenv("KIOSK_LOG_FILE")
	}
}

// StreamEndpoint returns the stream URL with the session ID on the
// query string, so the backend can correlate the persistent channel
// with this run's approval requests.
func (c Config) StreamEndpoint() string {
	u, err := url.Parse(c.StreamURL)
	if err != nil {
		return c.StreamURL
	}
	q := u.Query()
	q.Set("session", c.SessionID)
	u.RawQuery = q.Encode()
	return u.String()
}

func (c Config) validate() error {
	if c.StreamURL == "" {
		return fmt.Errorf("stream URL must not be empty")
	}
	if c.ApprovalURL == "" {
		return fmt.Errorf("approval URL must not be empty")
	}
	if c.Threshold < 0 || c.Threshold > 100 {
		return fmt.Errorf("threshold %v out of range [0,100]", c.Threshold)
	}
	if c.ReportHold <= 0 || c.ResultHold <= 0 {
		return fmt.Errorf("presentation holds must be positive")
	}
	if c.IntroDuration <= 0 {
		return fmt.Errorf("intro duration must be positive")
	}
	return nil
}
