package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/pulse-chat/pulse/internal/cli/helpers"
	"github.com/pulse-chat/pulse/internal/config"
	"github.com/pulse-chat/pulse/internal/constants"
)

func newTestLoader(t *testing.T) (*config.Loader, string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(constants.ConfigDirEnv, dir)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	loader, err := config.NewLoader()
	require.NoError(t, err)
	return loader, dir
}

func TestNewConfigCmd(t *testing.T) {
	cmd := NewConfigCmd()
	assert.Equal(t, "config", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"init", "view", "validate", "path"}, names)
}

func TestRunInit(t *testing.T) {
	loader, dir := newTestLoader(t)

	var out bytes.Buffer
	require.NoError(t, runInit(loader, "https://hooks.example.com/chat", false, &out))
	assert.Contains(t, out.String(), filepath.Join(dir, ".pulse", "config.yaml"))

	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "https://hooks.example.com/chat", cfg.Webhook.URL)
	assert.NoError(t, cfg.Validate())

	err = runInit(loader, "", false, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	out.Reset()
	require.NoError(t, runInit(loader, "", true, &out))
	assert.Contains(t, out.String(), "PULSE_WEBHOOK_URL")
}

func TestRunInit_InvalidWebhook(t *testing.T) {
	loader, _ := newTestLoader(t)
	err := runInit(loader, "hooks.example.com/chat", false, &bytes.Buffer{})
	require.Error(t, err)
	assert.NoFileExists(t, loader.ConfigPath())
}

func TestRunView_AnnotatedYAML(t *testing.T) {
	loader, _ := newTestLoader(t)
	t.Setenv("PULSE_WEBHOOK_URL", "https://env.example.com/chat")

	var out bytes.Buffer
	require.NoError(t, runView(loader, helpers.FormatYAML, false, &out))

	text := out.String()
	assert.Contains(t, text, "# Config file: ")
	assert.Contains(t, text, "(not present)")
	assert.Contains(t, text, "# Layers applied: defaults, env")
	assert.Contains(t, text, "# Config dir override: PULSE_CONFIG=")

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &cfg))
	assert.Equal(t, "https://env.example.com/chat", cfg.Webhook.URL)
	assert.Equal(t, constants.DefaultWebhookTimeout, cfg.Webhook.Timeout)
}

func TestRunView_RawAndJSON(t *testing.T) {
	loader, _ := newTestLoader(t)

	var out bytes.Buffer
	require.NoError(t, runView(loader, helpers.FormatYAML, true, &out))
	assert.NotContains(t, out.String(), "#")

	out.Reset()
	require.NoError(t, runView(loader, helpers.FormatJSON, false, &out))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Contains(t, decoded, "webhook")
	assert.Contains(t, decoded, "assistant")
}

func TestRunValidate(t *testing.T) {
	loader, _ := newTestLoader(t)

	var out bytes.Buffer
	err := runValidate(loader, helpers.FormatText, &out)
	require.Error(t, err)
	assert.Contains(t, out.String(), "webhook.url")

	require.NoError(t, os.MkdirAll(filepath.Dir(loader.ConfigPath()), 0755))
	require.NoError(t, os.WriteFile(loader.ConfigPath(), []byte("webhook:\n  url: https://hooks.example.com/chat\n"), 0600))

	out.Reset()
	require.NoError(t, runValidate(loader, helpers.FormatText, &out))
	assert.Contains(t, out.String(), "Configuration is valid.")
}

func TestRunValidate_JSON(t *testing.T) {
	loader, _ := newTestLoader(t)
	t.Setenv("PULSE_SERVER_PORT", "0")

	var out bytes.Buffer
	err := runValidate(loader, helpers.FormatJSON, &out)
	require.Error(t, err)

	var report validationReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.False(t, report.Valid)
	assert.Len(t, report.Errors, 2)
	assert.Equal(t, loader.ConfigPath(), report.Path)
}
