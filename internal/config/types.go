package config

import "time"

// Config holds all configuration for the application.
type Config struct {
	DBName     string
	Port       string
	AdminToken string
	Slack      SlackConfig
	SES        SESConfig
	Turso      TursoConfig
	ProjectID  string
	// PushToken must accompany Pub/Sub push deliveries as the "token" query parameter.
	PushToken string
	// SweepCron enables the background deadline sweep when set.
	SweepCron string
	// SeasonStart is the Monday of league round 1. Zero when unset.
	SeasonStart time.Time
}
type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}
type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Sender          string
}

// Enabled reports whether enough is configured to send e-mail.
func (c SESConfig) Enabled() bool {
	return c.Region != "" && c.AccessKeyID != "" && c.SecretAccessKey != "" && c.Sender != ""
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
