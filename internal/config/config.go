package config

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}
	cfg, err := FromEnv(os.LookupEnv)
	if err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}
	return cfg
}

// FromEnv builds a Config from a lookup function such as os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	var missing []string
	// A helper function to get a required env var.
	getEnv := func(key string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		missing = append(missing, key)
		return ""
	}
	optional := func(key string) string {
		value, _ := lookup(key)
		return value
	}

	cfg := Config{
		DBName:     getEnv("DB_NAME"),
		Port:       getEnv("PORT"),
		AdminToken: getEnv("ADMIN_TOKEN"),
		Slack: SlackConfig{
			Token:         optional("SLACK_BOT_TOKEN"),
			ChannelID:     optional("SLACK_CHANNEL_ID"),
			SigningSecret: optional("SLACK_SIGNING_SECRET"),
		},
		SES: SESConfig{
			Region:          optional("SES_REGION"),
			AccessKeyID:     optional("SES_ACCESS_KEY_ID"),
			SecretAccessKey: optional("SES_SECRET_ACCESS_KEY"),
			Sender:          optional("SES_SENDER"),
		},
		Turso: TursoConfig{
			PrimaryURL: optional("TURSO_PRIMARY_URL"),
			AuthToken:  optional("TURSO_AUTH_TOKEN"),
		},
		ProjectID: optional("GCP_PROJECT"),
		PushToken: optional("PUBSUB_PUSH_TOKEN"),
		SweepCron: optional("SWEEP_CRON"),
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %v", missing)
	}

	if v := optional("SEASON_START"); v != "" {
		start, err := time.ParseInLocation(time.DateOnly, v, time.UTC)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SEASON_START %q: %w", v, err)
		}
		if start.Weekday() != time.Monday {
			return Config{}, fmt.Errorf("SEASON_START %s is a %s, expected a Monday", v, start.Weekday())
		}
		cfg.SeasonStart = start
	}
	return cfg, nil
}
