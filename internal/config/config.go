// Package config loads service configuration from files and environment
// variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds all service configuration
type Config struct {
	HTTPAddress string

	MongoURI      string
	MongoDatabase string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	SuggestNextQuestions bool
	SnapshotTTL          time.Duration
}

// Load reads configuration from config files and environment variables
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envMappings := map[string]string{
		"HTTPAddress":          "HTTP_ADDRESS",
		"MongoURI":             "MONGO_URI",
		"MongoDatabase":        "MONGO_DATABASE",
		"RedisAddr":            "REDIS_ADDR",
		"RedisPassword":        "REDIS_PASSWORD",
		"RedisDB":              "REDIS_DB",
		"LLMAPIKey":            "LLM_API_KEY",
		"LLMBaseURL":           "LLM_BASE_URL",
		"LLMModel":             "LLM_MODEL",
		"SuggestNextQuestions": "SUGGEST_NEXT_QUESTIONS",
		"SnapshotTTL":          "SNAPSHOT_TTL",
	}

	for configKey, envVar := range envMappings {
		if err := v.BindEnv(configKey, envVar); err != nil {
			log.Warn().Err(err).Msgf("Failed to bind environment variable %s for %s", envVar, configKey)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug().Msg("Config file not found, using environment variables and defaults")
	} else {
		log.Info().Msgf("Using config file: %s", v.ConfigFileUsed())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTPAddress", ":8080")
	v.SetDefault("MongoDatabase", "social_project")
	v.SetDefault("RedisAddr", "localhost:6379")
	v.SetDefault("RedisDB", 0)
	v.SetDefault("LLMModel", "gpt-4o-mini")
	v.SetDefault("SuggestNextQuestions", false)
	v.SetDefault("SnapshotTTL", time.Hour)
}

func validate(config *Config) error {
	var missingVars []string

	if config.MongoURI == "" {
		missingVars = append(missingVars, "MONGO_URI")
	}

	if config.LLMAPIKey == "" {
		missingVars = append(missingVars, "LLM_API_KEY")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missingVars, ", "))
	}

	return nil
}
