package config

import "github.com/pulse-chat/pulse/internal/constants"

// DefaultConfig returns a config with every field but the webhook URL set.
func DefaultConfig() *Config {
	return &Config{
		Version: SchemaVersion,
		Webhook: WebhookConfig{
			Action:  constants.DefaultWebhookAction,
			Timeout: constants.DefaultWebhookTimeout,
		},
		Assistant: AssistantConfig{
			Title:         constants.DefaultAssistantTitle,
			Subtitle:      constants.DefaultAssistantSubtitle,
			Greeting:      constants.DefaultGreeting,
			FallbackReply: constants.DefaultFallbackReply,
			Apology:       constants.DefaultApology,
			ErrorBanner:   constants.DefaultErrorBanner,
			Placeholder:   constants.DefaultPlaceholder,
			Disclaimer:    constants.Disclaimer,
		},
		Server: ServerConfig{
			Host:        constants.DefaultServerHost,
			Port:        constants.DefaultServerPort,
			IdleTimeout: constants.DefaultIdleTimeout,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
