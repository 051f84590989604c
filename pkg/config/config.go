package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/travigo/wienerlinien/pkg/util"
	"github.com/travigo/wienerlinien/pkg/wienerlinien"
	"gopkg.in/yaml.v3"
)

const environmentPrefix = "WIENERLINIEN_"

const (
	DefaultFirstNext    = "first"
	DefaultScanInterval = 30 * time.Second
	DefaultListen       = ":8080"
	DefaultQueueName    = "wienerlinien-sensor-updates"
)

type Config struct {
	Stops []string `yaml:"stops" validate:"required,min=1,dive,required"`

	// FirstNext selects the tracked departures: first and next track the next
	// departure, following the one after it. both creates a sensor for each,
	// which is what the Home Assistant integration always did.
	FirstNext string `yaml:"firstnext" validate:"required,oneof=first next following both"`

	// APIKey is accepted for compatibility but not sent with requests
	APIKey string `yaml:"apikey"`

	BaseURL      string        `yaml:"base_url" validate:"required,endpoint_template"`
	Timeout      time.Duration `yaml:"timeout" validate:"gt=0"`
	ScanInterval time.Duration `yaml:"scan_interval" validate:"gt=0"`
	UserAgent    string        `yaml:"user_agent" validate:"required"`

	Listen string `yaml:"listen"`

	Redis RedisConfig `yaml:"redis"`
	NATS  NATSConfig  `yaml:"nats"`
}

type RedisConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Address    string        `yaml:"address" validate:"required_if=Enabled true"`
	Password   string        `yaml:"password"`
	Database   int           `yaml:"database" validate:"gte=0"`
	Expiration time.Duration `yaml:"expiration" validate:"gte=0"`
	Queue      string        `yaml:"queue"`
}

type NATSConfig struct {
	URL     string `yaml:"url" validate:"omitempty,url"`
	Subject string `yaml:"subject"`
}

func Default() *Config {
	return &Config{
		FirstNext:    DefaultFirstNext,
		BaseURL:      wienerlinien.DefaultBaseURL,
		Timeout:      wienerlinien.DefaultTimeout,
		ScanInterval: DefaultScanInterval,
		UserAgent:    wienerlinien.DefaultUserAgent,
		Listen:       DefaultListen,
		Redis: RedisConfig{
			Address: "localhost:6379",
			Queue:   DefaultQueueName,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at path
// and WIENERLINIEN_* environment variables, in that order, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvironment(util.GetEnvironmentVariables(environmentPrefix)); err != nil {
		return nil, err
	}

	cfg.Stops = util.RemoveDuplicateStrings(trimAll(cfg.Stops), nil)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnvironment(env map[string]string) error {
	if v := env["WIENERLINIEN_STOPS"]; v != "" {
		c.Stops = util.SplitList(v)
	}
	if v := env["WIENERLINIEN_FIRSTNEXT"]; v != "" {
		c.FirstNext = v
	}
	if v := env["WIENERLINIEN_APIKEY"]; v != "" {
		c.APIKey = v
	}
	if v := env["WIENERLINIEN_BASE_URL"]; v != "" {
		c.BaseURL = v
	}
	if v := env["WIENERLINIEN_USER_AGENT"]; v != "" {
		c.UserAgent = v
	}
	if v := env["WIENERLINIEN_LISTEN"]; v != "" {
		c.Listen = v
	}

	durations := map[string]*time.Duration{
		"WIENERLINIEN_TIMEOUT":          &c.Timeout,
		"WIENERLINIEN_SCAN_INTERVAL":    &c.ScanInterval,
		"WIENERLINIEN_REDIS_EXPIRATION": &c.Redis.Expiration,
	}
	for key, target := range durations {
		if v := env[key]; v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*target = d
		}
	}

	if v := env["WIENERLINIEN_REDIS_ENABLED"]; v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid WIENERLINIEN_REDIS_ENABLED: %w", err)
		}
		c.Redis.Enabled = enabled
	}
	if v := env["WIENERLINIEN_REDIS_ADDRESS"]; v != "" {
		c.Redis.Address = v
	}
	if v := env["WIENERLINIEN_REDIS_PASSWORD"]; v != "" {
		c.Redis.Password = v
	}
	if v := env["WIENERLINIEN_REDIS_DATABASE"]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid WIENERLINIEN_REDIS_DATABASE: %w", err)
		}
		c.Redis.Database = n
	}
	if v := env["WIENERLINIEN_REDIS_QUEUE"]; v != "" {
		c.Redis.Queue = v
	}

	if v := env["WIENERLINIEN_NATS_URL"]; v != "" {
		c.NATS.URL = v
	}
	if v := env["WIENERLINIEN_NATS_SUBJECT"]; v != "" {
		c.NATS.Subject = v
	}

	return nil
}

func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.RegisterValidation("endpoint_template", validateEndpointTemplate); err != nil {
		return err
	}

	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

// endpoint templates take the stop identifier through exactly one %s verb
func validateEndpointTemplate(fl validator.FieldLevel) bool {
	template := fl.Field().String()

	return strings.Count(template, "%s") == 1 && strings.Count(template, "%") == 1
}

func trimAll(values []string) []string {
	trimmed := make([]string, 0, len(values))
	for _, value := range values {
		trimmed = append(trimmed, strings.TrimSpace(value))
	}

	return trimmed
}
