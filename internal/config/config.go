package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "INFLUENCER_OPS_CONFIG"

	serverPortEnv     = "SERVER_PORT"
	databasePathEnv   = "DATABASE_PATH"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	openAIAPIKeyEnv   = "OPENAI_API_KEY"
	openAIModelEnv    = "OPENAI_MODEL"
	destinationURLEnv = "CONTRACTS_DESTINATION_URL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Database  DatabaseConfig  `yaml:"database"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Contracts ContractsConfig `yaml:"contracts"`
	Payments  PaymentsConfig  `yaml:"payments"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes the warehouse SQLite file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// TelegramConfig wires all data required to exchange messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
}

// OpenAIConfig defines how to contact the completion API.
type OpenAIConfig struct {
	Endpoint      string `yaml:"endpoint"`
	Model         string `yaml:"model"`
	ResolverModel string `yaml:"resolverModel"`
	APIKey        string `yaml:"apiKey"`
}

// ContractsConfig controls the contract intake handler.
type ContractsConfig struct {
	DestinationURL string `yaml:"destinationUrl"`
}

// PaymentsConfig defines when and how the payment workflow runs.
type PaymentsConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	BatchSize      int            `yaml:"batchSize"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the payment scheduler timezone string to a time.Location.
func (p PaymentsConfig) Location() *time.Location {
	if p.location != nil {
		return p.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(serverPortEnv); v != "" {
		c.Server.Port = v
	}

	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}

	if v := os.Getenv(openAIModelEnv); v != "" {
		c.OpenAI.Model = v
	}

	if v := os.Getenv(destinationURLEnv); v != "" {
		c.Contracts.DestinationURL = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Payments.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Payments.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Server.Port != "" {
		base.Server.Port = override.Server.Port
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Database.Path != "" {
		base.Database.Path = override.Database.Path
	}

	if override.Telegram.BotToken != "" {
		base.Telegram.BotToken = override.Telegram.BotToken
	}

	if override.OpenAI.Endpoint != "" {
		base.OpenAI.Endpoint = override.OpenAI.Endpoint
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.ResolverModel != "" {
		base.OpenAI.ResolverModel = override.OpenAI.ResolverModel
	}
	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}

	if override.Contracts.DestinationURL != "" {
		base.Contracts.DestinationURL = override.Contracts.DestinationURL
	}

	if override.Payments.CronExpression != "" {
		base.Payments.CronExpression = override.Payments.CronExpression
	}
	if override.Payments.Timezone != "" {
		base.Payments.Timezone = override.Payments.Timezone
	}
	if override.Payments.BatchSize > 0 {
		base.Payments.BatchSize = override.Payments.BatchSize
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Server:   ServerConfig{Port: "8080"},
		Logging:  LoggingConfig{Level: "info"},
		Database: DatabaseConfig{Path: "influencerops.db"},
		OpenAI: OpenAIConfig{
			Endpoint:      "https://api.openai.com/v1/chat/completions",
			Model:         "gpt-4",
			ResolverModel: "gpt-3.5-turbo",
		},
		Payments: PaymentsConfig{
			CronExpression: "0 6 * * *",
			Timezone:       defaultTimezone,
			BatchSize:      5,
			location:       tz,
		},
	}
}
