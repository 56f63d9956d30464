package config

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/analyticskit/consent"
	"github.com/kbukum/analyticskit/dispatch"
	"github.com/kbukum/analyticskit/logger"
	"github.com/kbukum/analyticskit/queue"
)

// QueueConfig bounds the pre-registration event buffer.
type QueueConfig struct {
	MaxPerTarget int `yaml:"max_per_target" mapstructure:"max_per_target" validate:"gte=0"`
}

// ApplyDefaults fills the buffer bound when unset.
func (c *QueueConfig) ApplyDefaults() {
	if c.MaxPerTarget == 0 {
		c.MaxPerTarget = queue.DefaultMaxPerTarget
	}
}

// ObservabilityConfig wires the optional OTLP exporters. Disabled by
// default; the manager runs fine with no instruments attached.
type ObservabilityConfig struct {
	Enabled         bool   `yaml:"enabled" mapstructure:"enabled"`
	MetricsEndpoint string `yaml:"metrics_endpoint" mapstructure:"metrics_endpoint"`
	TracesEndpoint  string `yaml:"traces_endpoint" mapstructure:"traces_endpoint"`
}

// Config is the root configuration for the orchestration layer.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging       logger.Config       `yaml:"logging" mapstructure:"logging"`
	Consent       consent.Settings    `yaml:"consent" mapstructure:"consent"`
	Queue         QueueConfig         `yaml:"queue" mapstructure:"queue"`
	Providers     dispatch.Plan       `yaml:"providers" mapstructure:"providers"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults applies default values to every section.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	c.Logging.ApplyDefaults()
	c.Queue.ApplyDefaults()
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	if err := validateStruct(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	seen := make(map[string]bool)
	for _, act := range append(append([]dispatch.Activation{}, c.Providers.Analytics...), c.Providers.ErrorTracking...) {
		if act.ID == "" {
			return fmt.Errorf("config.providers: activation with empty id")
		}
		if seen[act.ID] {
			return fmt.Errorf("config.providers: duplicate activation %q", act.ID)
		}
		seen[act.ID] = true
	}
	return nil
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report mapstructure key names, matching what users wrote in YAML.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

func validateStruct(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	messages := make([]string, 0, len(verrs))
	for _, e := range verrs {
		messages = append(messages, fmt.Sprintf("%s failed %q", e.Field(), e.Tag()))
	}
	return fmt.Errorf("config validation: %s", strings.Join(messages, "; "))
}
