// Package config loads and validates the coach's configuration from file,
// environment, and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configName = ".aimcoach"
	envPrefix  = "AIMCOACH"
)

// validate is a single instance; it caches struct info.
var validate = validator.New()

// Config is the full application configuration.
type Config struct {
	Verbose    bool             `mapstructure:"verbose"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Data       DataConfig       `mapstructure:"data"`
	Checkpoint CheckpointConfig `mapstructure:"checkpoint"`
}

// LLMConfig selects the generative-model provider.
type LLMConfig struct {
	Provider string `mapstructure:"provider" validate:"omitempty,oneof=openai ollama anthropic gemini"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url" validate:"omitempty,url"`
}

// DataConfig locates local storage and prompt overrides.
type DataConfig struct {
	Dir          string `mapstructure:"dir" validate:"required"`
	TemplatesDir string `mapstructure:"templates_dir"`
}

// CheckpointConfig selects where conversation checkpoints live.
type CheckpointConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=memory file sqlite"`
	Dir     string `mapstructure:"dir"`
}

// Load reads .env, the optional config file, and AIMCOACH_* environment
// variables, then validates the result. cfgFile may be empty, in which case
// .aimcoach.yaml is searched in the working directory and home.
func Load(cfgFile string) (*Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so every
	// config key is bound explicitly or AIMCOACH_* values without a default
	// would be dropped on Unmarshal.
	for _, key := range []string{
		"verbose",
		"llm.provider", "llm.model", "llm.api_key", "llm.base_url",
		"data.dir", "data.templates_dir",
		"checkpoint.backend", "checkpoint.dir",
	} {
		_ = v.BindEnv(key)
	}

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("data.dir", ".aimcoach")
	v.SetDefault("checkpoint.backend", "sqlite")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// No config file anywhere; defaults plus env are enough.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Checkpoint.Dir == "" {
		cfg.Checkpoint.Dir = cfg.Data.Dir
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}
