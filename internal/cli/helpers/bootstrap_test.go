package helpers

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulse-chat/pulse/internal/config"
	"github.com/pulse-chat/pulse/internal/constants"
	"github.com/pulse-chat/pulse/internal/testutil"
)

func newLoader(t *testing.T) *config.Loader {
	t.Helper()
	t.Setenv(constants.ConfigDirEnv, t.TempDir())
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	loader, err := config.NewLoader()
	require.NoError(t, err)
	return loader
}

func TestBootstrap_LogLevelPrecedence(t *testing.T) {
	loader := newLoader(t)
	t.Setenv("PULSE_LOG_LEVEL", "warn")

	var out bytes.Buffer
	env, err := bootstrapWith(loader, &Globals{}, nil, &out)
	require.NoError(t, err)
	env.Logger.Info().Msg("hidden")
	assert.Empty(t, out.String())

	env, err = bootstrapWith(loader, &Globals{Debug: true}, nil, &out)
	require.NoError(t, err)
	env.Logger.Debug().Msg("shown")
	assert.Contains(t, out.String(), "shown")
}

func TestBootstrap_UnknownLevel(t *testing.T) {
	loader := newLoader(t)
	_, err := bootstrapWith(loader, &Globals{LogLevel: "loud"}, nil, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown log level "loud"`)
}

func TestBootstrap_LogFile(t *testing.T) {
	loader := newLoader(t)
	path := filepath.Join(t.TempDir(), "logs", "pulse.log")

	var out bytes.Buffer
	env, err := bootstrapWith(loader, &Globals{LogFile: path, Debug: true}, nil, &out)
	require.NoError(t, err)
	env.Logger.Info().Msg("to file")
	require.NoError(t, env.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
	assert.Empty(t, out.String())
}

func TestEnv_NewClientRequiresWebhook(t *testing.T) {
	loader := newLoader(t)
	env, err := bootstrapWith(loader, nil, nil, &bytes.Buffer{})
	require.NoError(t, err)

	_, err = env.NewClient()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook url is required")
}

func TestEnv_ControllerUsesConfiguredTexts(t *testing.T) {
	server := testutil.NewWebhookServer(t, 200, `{"message":"Try less salt."}`)
	loader := newLoader(t)
	t.Setenv("PULSE_WEBHOOK_URL", server.URL)
	t.Setenv("PULSE_WEBHOOK_ACTION", "chat")
	t.Setenv("PULSE_ASSISTANT_GREETING", "Welcome to the clinic")

	env, err := bootstrapWith(loader, nil, nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Contains(t, env.Layers, config.LayerEnv)

	client, err := env.NewClient()
	require.NoError(t, err)
	ctrl := env.NewController(client)
	assert.Equal(t, "Welcome to the clinic", ctrl.State().Last().Content)

	require.True(t, ctrl.Submit(context.Background(), "diet tips"))
	assert.Equal(t, "Try less salt.", ctrl.State().Last().Content)
	assert.Equal(t, "chat", server.Requests()[0].Action)
}
