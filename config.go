package textback

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the web server
type ServerConfig struct {
	Addr       string  `yaml:"addr"`
	SessionKey string  `yaml:"session_key"`
	RateLimit  float64 `yaml:"rate_limit"` // question requests per second per client
	Burst      int     `yaml:"burst"`
}

// DatabaseConfig configures the message store
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// GeneratorConfig configures question generation and every variant
type GeneratorConfig struct {
	MaxAttempts int       `yaml:"max_attempts"`
	CacheSize   int       `yaml:"cache_size"`
	TimeZone    string    `yaml:"time_zone"`
	Disabled    []Variant `yaml:"disabled"`

	// RequireReactions refuses a corpus without reactions instead of disabling the react variant
	RequireReactions bool `yaml:"require_reactions"`

	Duration DurationConfig `yaml:"duration"`
	Platform PlatformConfig `yaml:"platform"`
	Who      WhoConfig      `yaml:"who"`
	React    ReactConfig    `yaml:"react"`
	Continue TextConfig     `yaml:"continue"`
	Next     TextConfig     `yaml:"next"`
	When     WhenConfig     `yaml:"when"`
}

// DefaultGeneratorConfig returns the default generator config
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		MaxAttempts: 1000,
		CacheSize:   256,
		TimeZone:    "UTC",
		Duration:    DefaultDurationConfig(),
		Platform:    DefaultPlatformConfig(),
		Who:         DefaultWhoConfig(),
		React:       DefaultReactConfig(),
		Continue:    DefaultContinueConfig(),
		Next:        DefaultNextConfig(),
		When:        DefaultWhenConfig(),
	}
}

// Location resolves the time zone dates are rendered in
func (c GeneratorConfig) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// IsDisabled reports whether v is switched off in the config
func (c GeneratorConfig) IsDisabled(v Variant) bool {
	for _, d := range c.Disabled {
		if d == v {
			return true
		}
	}
	return false
}

// Validate checks the generator config for values that cannot work
func (c GeneratorConfig) Validate() error {
	if c.MaxAttempts <= 0 {
		return fmt.Errorf("max_attempts must be positive, got %d", c.MaxAttempts)
	}
	for _, d := range c.Disabled {
		if _, err := ParseVariant(string(d)); err != nil {
			return fmt.Errorf("disabled variant %q: %w", d, err)
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	checks := []error{
		c.Duration.validate(),
		minWordsValid(VariantPlatform, c.Platform.WindowConfig, c.Platform.MinWords),
		minWordsValid(VariantWho, c.Who.WindowConfig, c.Who.MinWords),
		c.React.WindowConfig.validate(VariantReact),
		minWordsValid(VariantContinue, c.Continue.WindowConfig, c.Continue.MinWords),
		minWordsValid(VariantNext, c.Next.WindowConfig, c.Next.MinWords),
		c.When.validate(),
	}
	for _, err := range checks {
		if err != nil {
			return fmt.Errorf("invalid generator config: %w", err)
		}
	}
	return nil
}

func minWordsValid(v Variant, window WindowConfig, minWords int) error {
	if err := window.validate(v); err != nil {
		return err
	}
	if minWords < 0 {
		return fmt.Errorf("%s: min_words must not be negative", v)
	}
	return nil
}

// Config is the full configuration of the text-back binaries
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Model     ModelConfig     `yaml:"model"`
	Generator GeneratorConfig `yaml:"generator"`

	// LogPath is where model transcripts are appended; empty disables the transcript
	LogPath string `yaml:"log_path"`
	Verbose bool   `yaml:"verbose"`
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:      ":8080",
			RateLimit: 2,
			Burst:     5,
		},
		Database:  DatabaseConfig{Path: "textback.db"},
		Model:     DefaultModelConfig(),
		Generator: DefaultGeneratorConfig(),
	}
}

// LoadConfig reads a YAML config file over the defaults. Fields missing from the file keep
// their default values. An empty path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("config file not found: %s", path)
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides config values from the environment. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	parseList := func(v string) []string {
		var parts []string
		for _, p := range strings.Split(v, ",") {
			if s := strings.TrimSpace(p); s != "" {
				parts = append(parts, s)
			}
		}
		return parts
	}

	if v := getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}
	if v := getenv("TEXTBACK_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := getenv("TEXTBACK_SESSION_KEY"); v != "" {
		c.Server.SessionKey = v
	}
	if v := getenv("TEXTBACK_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			c.Server.RateLimit = f
		}
	}
	if v := getenv("TEXTBACK_DB"); v != "" {
		c.Database.Path = v
	}
	if v := getenv("OPENAI_API_KEY"); v != "" {
		c.Model.APIKey = v
	}
	if v := getenv("TEXTBACK_MODEL"); v != "" {
		c.Model.Model = v
	}
	if v := getenv("TEXTBACK_MODEL_URL"); v != "" {
		c.Model.BaseURL = v
	}
	if v := getenv("TEXTBACK_TIME_ZONE"); v != "" {
		c.Generator.TimeZone = v
	}
	if v := getenv("TEXTBACK_DISABLED"); v != "" {
		c.Generator.Disabled = nil
		for _, name := range parseList(v) {
			c.Generator.Disabled = append(c.Generator.Disabled, Variant(name))
		}
	}
	if v := getenv("TEXTBACK_LOG_PATH"); v != "" {
		c.LogPath = v
	}
	if v := strings.ToLower(strings.TrimSpace(getenv("TEXTBACK_VERBOSE"))); v != "" {
		c.Verbose = v == "1" || v == "true" || v == "yes"
	}
}

// Validate checks the whole config
func (c Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Server.RateLimit < 0 || c.Server.Burst < 0 {
		return fmt.Errorf("rate limit and burst must not be negative")
	}
	return c.Generator.Validate()
}
