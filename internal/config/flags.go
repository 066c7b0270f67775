package config

import (
	"time"

	"github.com/spf13/pflag"
)

// Flag names shared by the commands that accept config overrides.
const (
	FlagWebhook = "webhook"
	FlagTimeout = "timeout"
	FlagHost    = "host"
	FlagPort    = "port"
)

// Overrides are command-line values that take precedence over every other
// layer. Only flags the user actually set are applied.
type Overrides struct {
	fs *pflag.FlagSet

	webhook string
	timeout time.Duration
	host    string
	port    int
}

// BindWebhookFlags registers --webhook and --timeout on fs.
func BindWebhookFlags(fs *pflag.FlagSet) *Overrides {
	o := &Overrides{fs: fs}
	o.bindWebhook()
	return o
}

// BindServerFlags registers --webhook, --timeout, --host and --port on fs.
func BindServerFlags(fs *pflag.FlagSet) *Overrides {
	o := &Overrides{fs: fs}
	o.bindWebhook()
	fs.StringVar(&o.host, FlagHost, "", "Address to listen on (default from config)")
	fs.IntVar(&o.port, FlagPort, 0, "Port to listen on (default from config)")
	return o
}

func (o *Overrides) bindWebhook() {
	o.fs.StringVar(&o.webhook, FlagWebhook, "", "Assistant webhook URL")
	o.fs.DurationVar(&o.timeout, FlagTimeout, 0, "Webhook request timeout (e.g. 30s)")
}

// Apply copies changed flags into cfg and reports whether any was applied.
func (o *Overrides) Apply(cfg *Config) bool {
	if o == nil || o.fs == nil {
		return false
	}

	applied := false
	if o.changed(FlagWebhook) {
		cfg.Webhook.URL = o.webhook
		applied = true
	}
	if o.changed(FlagTimeout) {
		cfg.Webhook.Timeout = o.timeout
		applied = true
	}
	if o.changed(FlagHost) {
		cfg.Server.Host = o.host
		applied = true
	}
	if o.changed(FlagPort) {
		cfg.Server.Port = o.port
		applied = true
	}
	return applied
}

func (o *Overrides) changed(name string) bool {
	f := o.fs.Lookup(name)
	return f != nil && f.Changed
}
