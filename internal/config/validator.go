package config

import (
	"fmt"
	"strings"

	"github.com/pulse-chat/pulse/internal/logging"
	"github.com/pulse-chat/pulse/internal/webhook"
)

// Validator is the interface for validating configuration.
type Validator interface {
	Validate() error
}

// ValidationError represents a single validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MultiValidationError represents multiple validation errors.
type MultiValidationError struct {
	Errors []ValidationError
}

// Error implements the error interface.
func (e *MultiValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("validation failed with %d errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		builder.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return builder.String()
}

// Validate validates the whole configuration.
func (c *Config) Validate() error {
	var errors []ValidationError
	add := func(field, msg string) {
		errors = append(errors, ValidationError{Field: field, Message: msg})
	}

	if c.Version == "" {
		add("version", "version is required")
	}

	// Webhook
	if c.Webhook.URL == "" {
		add("webhook.url", "webhook url is required (set it in the config file, PULSE_WEBHOOK_URL or --webhook)")
	} else if err := webhook.ValidateURL(c.Webhook.URL); err != nil {
		add("webhook.url", err.Error())
	}
	if strings.TrimSpace(c.Webhook.Action) == "" {
		add("webhook.action", "webhook action is required")
	}
	if c.Webhook.Timeout <= 0 {
		add("webhook.timeout", "webhook timeout must be positive")
	}

	// Assistant texts
	texts := []struct{ field, value string }{
		{"assistant.greeting", c.Assistant.Greeting},
		{"assistant.fallback_reply", c.Assistant.FallbackReply},
		{"assistant.apology", c.Assistant.Apology},
		{"assistant.error_banner", c.Assistant.ErrorBanner},
	}
	for _, t := range texts {
		if strings.TrimSpace(t.value) == "" {
			add(t.field, "text must not be empty")
		}
	}

	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		add("server.port", fmt.Sprintf("invalid port %d (must be 1-65535)", c.Server.Port))
	}
	if c.Server.IdleTimeout < 0 {
		add("server.idle_timeout", "idle timeout must not be negative")
	}

	if !logging.ValidLevel(c.Logging.Level) {
		add("logging.level", fmt.Sprintf("unknown level %q (want one of %s)", c.Logging.Level, strings.Join(logging.Levels, ", ")))
	}

	if len(errors) > 0 {
		return &MultiValidationError{Errors: errors}
	}
	return nil
}
