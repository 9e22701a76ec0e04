package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration loaded from environment variables
type Config struct {
	// AWS
	AWSRegion string

	// Discord
	DiscordApplicationID string
	DiscordBotToken      string
	DiscordPublicKey     string // hex-encoded Ed25519 public key

	// ChatGPT
	ChatGPTAPIKey string
	ChatGPTModel  string

	// DynamoDB
	CommandsTable string

	// Streaming relay
	StreamBatchSize     int
	RelayTimeoutSeconds int

	// Environment
	Environment string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		AWSRegion:            getEnv("AWS_REGION", "us-east-1"),
		DiscordApplicationID: getEnv("DISCORD_APPLICATION_ID", ""),
		DiscordBotToken:      getEnv("DISCORD_BOT_TOKEN", ""),
		DiscordPublicKey:     getEnv("DISCORD_BOT_PUBLIC_KEY", ""),
		ChatGPTAPIKey:        getEnv("CHATGPT_API_KEY", ""),
		ChatGPTModel:         getEnv("CHATGPT_MODEL", "gpt-3.5-turbo"),
		CommandsTable:        getEnv("COMMANDS_TABLE", "discord-commands"),
		StreamBatchSize:      getEnvInt("STREAM_BATCH_SIZE", 10),
		RelayTimeoutSeconds:  getEnvInt("RELAY_TIMEOUT_SECONDS", 600),
		Environment:          getEnv("ENVIRONMENT", "dev"),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present
func (c *Config) Validate() error {
	if c.DiscordApplicationID == "" {
		return fmt.Errorf("DISCORD_APPLICATION_ID is required")
	}
	if c.DiscordBotToken == "" {
		return fmt.Errorf("DISCORD_BOT_TOKEN is required")
	}
	if c.CommandsTable == "" {
		return fmt.Errorf("COMMANDS_TABLE is required")
	}
	return nil
}

// ValidateWebhook checks configuration specific to the interactions webhook
func (c *Config) ValidateWebhook() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DiscordPublicKey == "" {
		return fmt.Errorf("DISCORD_BOT_PUBLIC_KEY is required for the interactions webhook")
	}
	return nil
}

// ValidateStream checks configuration specific to the stream consumer
func (c *Config) ValidateStream() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ChatGPTAPIKey == "" {
		return fmt.Errorf("CHATGPT_API_KEY is required for the stream consumer")
	}
	return nil
}

// GetRelayTimeout returns the per-command relay deadline as a duration
func (c *Config) GetRelayTimeout() time.Duration {
	return time.Duration(c.RelayTimeoutSeconds) * time.Second
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
