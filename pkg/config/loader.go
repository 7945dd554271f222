package config

import (
	"net/url"
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/abel123/zeus/pkg/debounce"
	"github.com/abel123/zeus/pkg/types"
	"github.com/abel123/zeus/pkg/util"
	"github.com/abel123/zeus/pkg/zen"
	"github.com/abel123/zeus/pkg/zenapi"
)

var ErrInvalidConfig = errors.New("invalid config")

type AnalyticsConfig struct {
	BaseURL   string         `json:"baseURL" yaml:"baseURL"`
	Timeout   types.Duration `json:"timeout" yaml:"timeout"`
	RateLimit string         `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"`
}

type SchedulerConfig struct {
	QuietPeriod types.Duration `json:"quietPeriod" yaml:"quietPeriod"`
	MaxWait     types.Duration `json:"maxWait" yaml:"maxWait"`

	// Disabled starts every chart with refreshing turned off.
	Disabled bool `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

type StudiesConfig struct {
	Volume         bool  `json:"volume" yaml:"volume"`
	MovingAverages []int `json:"movingAverages" yaml:"movingAverages"`
}

type ServerConfig struct {
	Bind         string      `json:"bind" yaml:"bind"`
	AllowOrigins StringSlice `json:"allowOrigins,omitempty" yaml:"allowOrigins,omitempty"`
}

type LoggingConfig struct {
	File       string `json:"file,omitempty" yaml:"file,omitempty"`
	MaxSizeMB  int    `json:"maxSizeMB,omitempty" yaml:"maxSizeMB,omitempty"`
	MaxBackups int    `json:"maxBackups,omitempty" yaml:"maxBackups,omitempty"`
	MaxAgeDays int    `json:"maxAgeDays,omitempty" yaml:"maxAgeDays,omitempty"`
}

type Config struct {
	Analytics  AnalyticsConfig         `json:"analytics" yaml:"analytics"`
	Scheduler  SchedulerConfig         `json:"scheduler" yaml:"scheduler"`
	Indicators []types.IndicatorConfig `json:"indicators" yaml:"indicators"`
	Studies    StudiesConfig           `json:"studies" yaml:"studies"`
	Server     ServerConfig            `json:"server" yaml:"server"`
	Logging    LoggingConfig           `json:"logging" yaml:"logging"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Analytics: AnalyticsConfig{
			BaseURL: zenapi.DefaultBaseURL,
			Timeout: types.Duration(15 * time.Second),
		},
		Scheduler: SchedulerConfig{
			QuietPeriod: types.Duration(debounce.DefaultQuietPeriod),
			MaxWait:     types.Duration(debounce.DefaultMaxWait),
		},
		Indicators: []types.IndicatorConfig{
			{Fast: 12, Slow: 26, Signal: 9},
			{Fast: 4, Slow: 9, Signal: 9, Source: types.PriceSourceVolume},
		},
		Studies: StudiesConfig{
			Volume:         true,
			MovingAverages: append([]int(nil), zen.DefaultMovingAverages...),
		},
		Server: ServerConfig{
			Bind: ":8010",
		},
		Logging: LoggingConfig{
			File:       "log/zeus.log",
			MaxSizeMB:  50,
			MaxBackups: 5,
		},
	}
}

// Load reads a yaml config file over the defaults and validates the result.
func Load(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read config %s", configFile)
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, "malformed config")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate reports every problem of the config at once.
func (c *Config) Validate() (err error) {
	if c.Analytics.BaseURL == "" {
		err = multierr.Append(err, errors.Wrap(ErrInvalidConfig, "analytics.baseURL is required"))
	} else if u, parseErr := url.Parse(c.Analytics.BaseURL); parseErr != nil || u.Scheme == "" || u.Host == "" {
		err = multierr.Append(err, errors.Wrapf(ErrInvalidConfig, "analytics.baseURL %q is not an absolute url", c.Analytics.BaseURL))
	}

	if c.Analytics.Timeout < 0 {
		err = multierr.Append(err, errors.Wrap(ErrInvalidConfig, "analytics.timeout can not be negative"))
	}

	if c.Analytics.RateLimit != "" {
		if _, parseErr := util.ParseRateLimitSyntax(c.Analytics.RateLimit); parseErr != nil {
			err = multierr.Append(err, errors.Wrapf(ErrInvalidConfig, "analytics.rateLimit: %v", parseErr))
		}
	}

	if c.Scheduler.QuietPeriod <= 0 {
		err = multierr.Append(err, errors.Wrap(ErrInvalidConfig, "scheduler.quietPeriod must be positive"))
	}

	if c.Scheduler.MaxWait > 0 && c.Scheduler.MaxWait < c.Scheduler.QuietPeriod {
		err = multierr.Append(err, errors.Wrap(ErrInvalidConfig, "scheduler.maxWait must not be shorter than scheduler.quietPeriod"))
	}

	if len(c.Indicators) == 0 {
		err = multierr.Append(err, errors.Wrap(ErrInvalidConfig, "at least one indicator is required"))
	}

	for i, indicator := range c.Indicators {
		if vErr := indicator.Validate(); vErr != nil {
			err = multierr.Append(err, errors.Wrapf(vErr, "indicators[%d]", i))
		}
	}

	for _, period := range c.Studies.MovingAverages {
		if period <= 0 {
			err = multierr.Append(err, errors.Wrapf(ErrInvalidConfig, "studies.movingAverages: invalid period %d", period))
		}
	}

	if len(c.Studies.MovingAverages) > len(zen.DefaultMovingAverages) {
		err = multierr.Append(err, errors.Wrapf(ErrInvalidConfig, "studies.movingAverages supports at most %d periods", len(zen.DefaultMovingAverages)))
	}

	return err
}

// ControllerOptions returns the per-chart controller options of the config.
func (c *Config) ControllerOptions() zen.Options {
	return zen.Options{
		Indicators:     append([]types.IndicatorConfig(nil), c.Indicators...),
		QuietPeriod:    c.Scheduler.QuietPeriod.Duration(),
		MaxWait:        c.Scheduler.MaxWait.Duration(),
		Disabled:       c.Scheduler.Disabled,
		Volume:         c.Studies.Volume,
		MovingAverages: append([]int(nil), c.Studies.MovingAverages...),
	}
}

// NewClient builds the analytics client the config describes.
func (c *Config) NewClient() (*zenapi.RestClient, error) {
	client, err := zenapi.NewClient(c.Analytics.BaseURL)
	if err != nil {
		return nil, err
	}

	client.SetTimeout(c.Analytics.Timeout.Duration())

	limiter, err := util.ParseRateLimitSyntax(c.Analytics.RateLimit)
	if err != nil {
		return nil, errors.Wrap(err, "analytics.rateLimit")
	}
	client.SetRateLimiter(limiter)

	return client, nil
}
