package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	defaultExternalHTTPTimeoutSeconds = 90
	defaultRateLimitPerMinute         = 300
	defaultLLMModel                   = "claude-sonnet-4-5-20250929"
)

type Config struct {
	Env        string `yaml:"env"`
	LogLevel   string `yaml:"log_level"`
	ListenAddr string `yaml:"listen_addr"`

	DBPath      string `yaml:"db_path"`
	AgentsPath  string `yaml:"agents_path"`
	ActionsPath string `yaml:"actions_path"`
	Timezone    string `yaml:"timezone"`

	CORSOrigins                []string `yaml:"cors_origins"`
	RateLimitPerMinute         *int     `yaml:"rate_limit_per_minute"`
	ExternalHTTPTimeoutSeconds int      `yaml:"external_http_timeout_seconds"`

	SlackBotToken   string `yaml:"slack_bot_token"`
	DigestChannelID string `yaml:"digest_channel_id"`
	DigestSchedule  string `yaml:"digest_schedule"`

	LLMSummaryEnabled bool   `yaml:"llm_summary_enabled"`
	AnthropicAPIKey   string `yaml:"anthropic_api_key"`
	LLMModel          string `yaml:"llm_model"`

	Location *time.Location `yaml:"-"` // computed from Timezone, not from YAML
}

// LoadConfig reads path (or CONFIG_PATH, or ./config.yaml), applies
// environment overrides and defaults, and exits on invalid values.
func LoadConfig(path string) Config {
	var cfg Config

	configPath := path
	if configPath == "" {
		configPath = "config.yaml"
		if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
			configPath = envPath
		}
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatal().Err(err).Str("path", configPath).Msg("error parsing config file")
		}
		log.Info().Str("path", configPath).Msg("loaded config file")
	} else if path != "" {
		log.Fatal().Err(err).Str("path", configPath).Msg("config file not readable")
	}

	envOverride(&cfg.Env, "APP_ENV")
	envOverride(&cfg.LogLevel, "LOG_LEVEL")
	envOverride(&cfg.ListenAddr, "LISTEN_ADDR")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.AgentsPath, "AGENTS_PATH")
	envOverrideAllowEmpty(&cfg.ActionsPath, "ACTIONS_PATH")
	envOverride(&cfg.Timezone, "TIMEZONE")
	envOverrideList(&cfg.CORSOrigins, "CORS_ORIGINS")
	if val := os.Getenv("RATE_LIMIT_PER_MINUTE"); val != "" {
		n := 0
		envOverrideInt(&n, "RATE_LIMIT_PER_MINUTE")
		cfg.RateLimitPerMinute = &n
	}
	envOverrideInt(&cfg.ExternalHTTPTimeoutSeconds, "EXTERNAL_HTTP_TIMEOUT_SECONDS")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.DigestChannelID, "DIGEST_CHANNEL_ID")
	envOverrideAllowEmpty(&cfg.DigestSchedule, "DIGEST_SCHEDULE")
	envOverrideBool(&cfg.LLMSummaryEnabled, "LLM_SUMMARY_ENABLED")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.LLMModel, "LLM_MODEL")

	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./backoffice.db"
	}
	if cfg.AgentsPath == "" {
		cfg.AgentsPath = "./data/agents.json"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}
	if cfg.RateLimitPerMinute == nil {
		n := defaultRateLimitPerMinute
		cfg.RateLimitPerMinute = &n
	}
	if cfg.ExternalHTTPTimeoutSeconds == 0 {
		cfg.ExternalHTTPTimeoutSeconds = defaultExternalHTTPTimeoutSeconds
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = defaultLLMModel
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatal().Err(err).Msgf("invalid timezone '%s'", cfg.Timezone)
		}
		cfg.Location = loc
	}

	if *cfg.RateLimitPerMinute < 0 {
		log.Fatal().Msgf("invalid rate_limit_per_minute '%d': must be >= 0", *cfg.RateLimitPerMinute)
	}
	if cfg.ExternalHTTPTimeoutSeconds < 5 {
		log.Fatal().Msgf("invalid external_http_timeout_seconds '%d': must be >= 5", cfg.ExternalHTTPTimeoutSeconds)
	}
	if cfg.DigestSchedule != "" {
		if _, err := ParseSchedule(cfg.DigestSchedule); err != nil {
			log.Fatal().Err(err).Msgf("invalid digest_schedule '%s'", cfg.DigestSchedule)
		}
		if !cfg.DigestConfigured() {
			log.Warn().Msg("digest_schedule is set but slack_bot_token or digest_channel_id is missing; digest disabled")
		}
	}
	if cfg.LLMSummaryEnabled && cfg.AnthropicAPIKey == "" {
		log.Fatal().Msg("anthropic_api_key is required when llm_summary_enabled=true")
	}

	return cfg
}

// ParseSchedule parses a standard 5-field cron expression.
func ParseSchedule(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return parser.Parse(strings.TrimSpace(expr))
}

// DigestConfigured reports whether the scheduled digest has everything it
// needs to run.
func (c Config) DigestConfigured() bool {
	return c.DigestSchedule != "" && c.SlackBotToken != "" && c.DigestChannelID != ""
}

func (c Config) RateLimit() int {
	if c.RateLimitPerMinute == nil {
		return defaultRateLimitPerMinute
	}
	return *c.RateLimitPerMinute
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideAllowEmpty(field *string, envKey string) {
	if val, ok := os.LookupEnv(envKey); ok {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatal().Err(err).Msgf("invalid %s '%s'", envKey, val)
		}
		*field = parsed
	}
}

func envOverrideBool(field *bool, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = strings.EqualFold(val, "true") || val == "1"
	}
}

func envOverrideList(field *[]string, envKey string) {
	val := os.Getenv(envKey)
	if val == "" {
		return
	}
	*field = nil
	for _, item := range strings.Split(val, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			*field = append(*field, item)
		}
	}
}
