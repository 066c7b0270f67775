// Package constants defines shared configuration constants.
package constants

import "time"

var (
	ConfigFile = "config.yaml"

	DefaultDir = ".pulse"

	// ConfigDirEnv overrides the base directory that holds DefaultDir.
	ConfigDirEnv = "PULSE_CONFIG"

	// DotEnvFile is loaded from the working directory when present.
	DotEnvFile = ".env"
)

// Webhook defaults.
const (
	// DefaultWebhookAction is the "send a chat message" action literal.
	DefaultWebhookAction = "sendMessage"

	DefaultWebhookTimeout = 60 * time.Second

	// MaxReplyBytes caps how much of a webhook response body is read.
	MaxReplyBytes = 1 << 20
)

// Widget server defaults.
const (
	DefaultServerHost = "127.0.0.1"

	DefaultServerPort = 3000

	// DefaultIdleTimeout unmounts browser conversations nobody is watching.
	DefaultIdleTimeout = 30 * time.Minute

	DefaultSweepInterval = time.Minute

	DefaultShutdownTimeout = 10 * time.Second
)

// Assistant texts, taken from the hypertension assistant widget.
const (
	DefaultAssistantTitle = "Hypertension Health Assistant"

	DefaultAssistantSubtitle = "AI-powered blood pressure management support"

	DefaultGreeting = "Hello! 👋 I'm your AI Health Assistant specializing in hypertension management. " +
		"I can help you understand blood pressure readings, provide lifestyle recommendations, " +
		"discuss medications, and answer questions about managing high blood pressure. " +
		"How can I assist you today?"

	DefaultFallbackReply = "I received your message but had trouble generating a response."

	DefaultApology = "I apologize, but I'm having trouble connecting right now. " +
		"Please check your connection and try again in a moment."

	DefaultErrorBanner = "Unable to connect to the health assistant. Please try again."

	DefaultPlaceholder = "Ask about blood pressure, medications, diet, exercise, or hypertension management..."

	Disclaimer = "Powered by Advanced AI • For educational purposes only • Always consult healthcare professionals"
)

// TimeFormat renders message timestamps as 24h hours and minutes.
const TimeFormat = "15:04"
