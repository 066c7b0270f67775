package config

import (
	"net"
	"strconv"
	"time"
)

// SchemaVersion is the configuration schema version.
const SchemaVersion = "1"

// Config represents ~/.pulse/config.yaml.
type Config struct {
	Version   string          `yaml:"version" json:"version"`
	Webhook   WebhookConfig   `yaml:"webhook" json:"webhook"`
	Assistant AssistantConfig `yaml:"assistant" json:"assistant"`
	Server    ServerConfig    `yaml:"server" json:"server"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// WebhookConfig describes the assistant endpoint.
type WebhookConfig struct {
	URL     string        `yaml:"url" json:"url" env:"PULSE_WEBHOOK_URL"`
	Action  string        `yaml:"action" json:"action" env:"PULSE_WEBHOOK_ACTION"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" env:"PULSE_WEBHOOK_TIMEOUT"`
}

// AssistantConfig holds the fixed strings shown by every view.
type AssistantConfig struct {
	Title         string `yaml:"title" json:"title" env:"PULSE_ASSISTANT_TITLE"`
	Subtitle      string `yaml:"subtitle" json:"subtitle" env:"PULSE_ASSISTANT_SUBTITLE"`
	Greeting      string `yaml:"greeting" json:"greeting" env:"PULSE_ASSISTANT_GREETING"`
	FallbackReply string `yaml:"fallback_reply" json:"fallback_reply" env:"PULSE_ASSISTANT_FALLBACK_REPLY"`
	Apology       string `yaml:"apology" json:"apology" env:"PULSE_ASSISTANT_APOLOGY"`
	ErrorBanner   string `yaml:"error_banner" json:"error_banner" env:"PULSE_ASSISTANT_ERROR_BANNER"`
	Placeholder   string `yaml:"placeholder" json:"placeholder" env:"PULSE_ASSISTANT_PLACEHOLDER"`
	Disclaimer    string `yaml:"disclaimer" json:"disclaimer" env:"PULSE_ASSISTANT_DISCLAIMER"`
}

// ServerConfig configures `pulse serve`.
type ServerConfig struct {
	Host string `yaml:"host" json:"host" env:"PULSE_SERVER_HOST"`
	Port int    `yaml:"port" json:"port" env:"PULSE_SERVER_PORT"`
	// IdleTimeout unmounts conversations with no activity and no live
	// websocket. Zero disables the sweeper.
	IdleTimeout time.Duration `yaml:"idle_timeout" json:"idle_timeout" env:"PULSE_SERVER_IDLE_TIMEOUT"`
}

// LoggingConfig controls the default log level.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level" env:"PULSE_LOG_LEVEL"`
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
