// Package helpers holds the plumbing shared by pulse commands.
package helpers

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/pulse-chat/pulse/internal/config"
	"github.com/pulse-chat/pulse/internal/conversation"
	"github.com/pulse-chat/pulse/internal/logging"
	"github.com/pulse-chat/pulse/internal/webhook"
)

// Globals are the persistent root flags.
type Globals struct {
	LogLevel string
	LogFile  string
	Debug    bool
}

// level resolves the effective log level, flags first.
func (g *Globals) level(cfg *config.Config) string {
	switch {
	case g == nil:
		return cfg.Logging.Level
	case g.Debug:
		return "debug"
	case g.LogLevel != "":
		return g.LogLevel
	}
	return cfg.Logging.Level
}

// Env is what a command has after startup: the layered configuration and a
// logger.
type Env struct {
	Config *config.Config
	Layers []config.Layer
	Logger zerolog.Logger

	logFile io.Closer
}

// Bootstrap loads configuration and builds the logger. Logs go to --log-file
// when set, otherwise to logOut. The TUI passes io.Discard so logs never
// draw over the widget.
func Bootstrap(g *Globals, overrides *config.Overrides, logOut io.Writer) (*Env, error) {
	loader, err := config.NewLoader()
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return bootstrapWith(loader, g, overrides, logOut)
}

func bootstrapWith(loader *config.Loader, g *Globals, overrides *config.Overrides, logOut io.Writer) (*Env, error) {
	cfg, layers, err := loader.LoadLayered(overrides)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := g.level(cfg)
	if !logging.ValidLevel(level) {
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	env := &Env{Config: cfg, Layers: layers}

	logCfg := logging.Config{Level: level, Output: logOut}
	if g != nil && g.LogFile != "" {
		f, err := logging.OpenFile(g.LogFile)
		if err != nil {
			return nil, err
		}
		env.logFile = f
		logCfg.Output = f
	} else if f, ok := logOut.(*os.File); ok {
		logCfg.Pretty = term.IsTerminal(int(f.Fd()))
	}
	env.Logger = logging.New(logCfg)

	env.Logger.Debug().
		Interface("layers", layers).
		Str("level", level).
		Msg("Configuration loaded")

	return env, nil
}

// Close releases the log file, if any.
func (e *Env) Close() error {
	if e.logFile == nil {
		return nil
	}
	return e.logFile.Close()
}

// NewClient validates the configuration and builds the webhook client.
func (e *Env) NewClient() (*webhook.Client, error) {
	if err := e.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return webhook.NewClient(e.Config.Webhook.URL,
		webhook.WithAction(e.Config.Webhook.Action),
		webhook.WithTimeout(e.Config.Webhook.Timeout),
		webhook.WithFallbackReply(e.Config.Assistant.FallbackReply),
		webhook.WithLogger(e.Logger),
	)
}

// Texts returns the controller strings from the configuration.
func (e *Env) Texts() conversation.Texts {
	return conversation.Texts{
		Greeting:    e.Config.Assistant.Greeting,
		Apology:     e.Config.Assistant.Apology,
		ErrorBanner: e.Config.Assistant.ErrorBanner,
	}
}

// NewController mounts a fresh conversation.
func (e *Env) NewController(sender conversation.Sender) *conversation.Controller {
	return conversation.New(sender,
		conversation.WithTexts(e.Texts()),
		conversation.WithLogger(e.Logger),
	)
}
