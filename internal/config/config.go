// Package config loads and validates scraper configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. YOWEB_SCRAPER_DELAY=2s.
const EnvPrefix = "YOWEB"

// DefaultRootURL is the flag roster scraped when none is configured.
const DefaultRootURL = "https://emerald.puzzlepirates.com/yoweb/flag/info.wm?flagid=10007105"

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Scraper ScraperConfig `mapstructure:"scraper"`
	Output  OutputConfig  `mapstructure:"output"`
	PubSub  PubSubConfig  `mapstructure:"pubsub"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ScraperConfig governs what is fetched and how politely.
type ScraperConfig struct {
	RootURL        string        `mapstructure:"root_url"`
	BaseURL        string        `mapstructure:"base_url"`
	UserAgent      string        `mapstructure:"user_agent"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Delay          time.Duration `mapstructure:"delay"`
	RespectRobots  bool          `mapstructure:"respect_robots"`
	// MaxRPS caps requests per second per host on top of Delay. Zero disables it.
	MaxRPS float64 `mapstructure:"max_rps"`
}

// OutputConfig selects where tables are written. The local directory is
// always written; GCS and Postgres are optional mirrors.
type OutputConfig struct {
	Dir            string `mapstructure:"dir"`
	GCSBucket      string `mapstructure:"gcs_bucket"`
	GCSPrefix      string `mapstructure:"gcs_prefix"`
	PostgresDSN    string `mapstructure:"postgres_dsn"`
	PostgresSchema string `mapstructure:"postgres_schema"`
}

// PubSubConfig holds the run-completion notification target.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// MetricsConfig controls the Prometheus endpoint and push gateway.
type MetricsConfig struct {
	ListenAddr     string `mapstructure:"listen_addr"`
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"root-url":     "scraper.root_url",
	"output-dir":   "output.dir",
	"delay":        "scraper.delay",
	"timeout":      "scraper.request_timeout",
	"metrics-addr": "metrics.listen_addr",
}

// Load builds a Config from defaults, an optional file, the environment, and
// any flags in flags that were set on the command line.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// OUTPUT_DIR predates the prefixed variables.
	if err := v.BindEnv("output.dir", EnvPrefix+"_OUTPUT_DIR", "OUTPUT_DIR"); err != nil {
		return Config{}, fmt.Errorf("bind env: %w", err)
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scraper.root_url", DefaultRootURL)
	v.SetDefault("scraper.base_url", "")
	v.SetDefault("scraper.user_agent", "Mozilla/5.0 (compatible; GitHubActionsScraper/1.0)")
	v.SetDefault("scraper.request_timeout", 30*time.Second)
	v.SetDefault("scraper.delay", time.Second)
	v.SetDefault("scraper.respect_robots", false)
	v.SetDefault("scraper.max_rps", 0.0)
	v.SetDefault("output.dir", "data")
	v.SetDefault("output.gcs_bucket", "")
	v.SetDefault("output.gcs_prefix", "")
	v.SetDefault("output.postgres_dsn", "")
	v.SetDefault("output.postgres_schema", "public")
	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic", "")
	v.SetDefault("metrics.listen_addr", "")
	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "yoweb_scraper")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Scraper.RootURL) == "" {
		return errors.New("scraper.root_url must be set")
	}
	if _, err := c.BaseURL(); err != nil {
		return err
	}
	if c.Scraper.RequestTimeout <= 0 {
		return errors.New("scraper.request_timeout must be > 0")
	}
	if c.Scraper.Delay < 0 {
		return errors.New("scraper.delay must be >= 0")
	}
	if c.Scraper.MaxRPS < 0 {
		return errors.New("scraper.max_rps must be >= 0")
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		return errors.New("output.dir must be set")
	}
	if c.PubSub.Topic != "" && c.PubSub.ProjectID == "" {
		return errors.New("pubsub.project_id must be set when pubsub.topic is set")
	}
	if c.Metrics.PushgatewayURL != "" && c.Metrics.Job == "" {
		return errors.New("metrics.job must be set when metrics.pushgateway_url is set")
	}
	return nil
}

// BaseURL returns the configured site base, or the scheme and host of the
// root URL when none is configured.
func (c Config) BaseURL() (string, error) {
	if c.Scraper.BaseURL != "" {
		return strings.TrimRight(c.Scraper.BaseURL, "/"), nil
	}
	u, err := url.Parse(c.Scraper.RootURL)
	if err != nil {
		return "", fmt.Errorf("parse scraper.root_url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("scraper.root_url %q must be absolute", c.Scraper.RootURL)
	}
	return u.Scheme + "://" + u.Host, nil
}
