// Package config implements the 'pulse config' command family.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pulse-chat/pulse/internal/cli/helpers"
	"github.com/pulse-chat/pulse/internal/config"
	"github.com/pulse-chat/pulse/internal/constants"
)

// NewConfigCmd creates the config command and its subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage pulse configuration",
		Long: `Manage pulse configuration.

Configuration Priority (highest first):
  1. Command-line flags (--webhook, --timeout, --host, --port)
  2. Environment variables (PULSE_*)
  3. .env file in the current directory
  4. Config file (~/.pulse/config.yaml)
  5. Built-in defaults

Environment Variables:
  PULSE_CONFIG       Override the directory holding .pulse/ (default: ~)
  PULSE_WEBHOOK_URL  Assistant webhook URL`,
	}

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newViewCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newPathCmd())

	return cmd
}

// newInitCmd creates the 'config init' command.
func newInitCmd() *cobra.Command {
	var (
		webhookURL string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Long: `Write ~/.pulse/config.yaml with every setting at its default.

Examples:
  pulse config init --webhook https://n8n.example.com/webhook/abc/chat`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := config.NewLoader()
			if err != nil {
				return fmt.Errorf("failed to create config loader: %w", err)
			}
			return runInit(loader, webhookURL, force, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&webhookURL, "webhook", "", "Assistant webhook URL to store")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

func runInit(loader *config.Loader, webhookURL string, force bool, out io.Writer) error {
	path := loader.ConfigPath()
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	}

	cfg := config.DefaultConfig()
	cfg.Webhook.URL = webhookURL
	if webhookURL != "" {
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	if err := loader.Save(cfg); err != nil {
		return err
	}

	fmt.Fprintf(out, "Wrote %s\n", path)
	if webhookURL == "" {
		fmt.Fprintln(out, "Set webhook.url in that file, or PULSE_WEBHOOK_URL, before chatting.")
	}
	return nil
}

// newViewCmd creates the 'config view' command.
func newViewCmd() *cobra.Command {
	var (
		format string
		raw    bool
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the effective configuration",
		Long: `Display the configuration after all layers are merged.

The YAML output starts with comments naming the config file and the layers
that contributed. Use --raw to omit them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := helpers.ValidateFormat(format, viewFormats); err != nil {
				return err
			}
			loader, err := config.NewLoader()
			if err != nil {
				return fmt.Errorf("failed to create config loader: %w", err)
			}
			return runView(loader, helpers.OutputFormat(format), raw, cmd.OutOrStdout())
		},
	}

	helpers.AddFormatFlag(cmd, &format, helpers.FormatYAML, viewFormats)
	cmd.Flags().BoolVar(&raw, "raw", false, "Output raw YAML without annotations")

	return cmd
}

var viewFormats = []helpers.OutputFormat{helpers.FormatYAML, helpers.FormatJSON}

func runView(loader *config.Loader, format helpers.OutputFormat, raw bool, out io.Writer) error {
	cfg, layers, err := loader.LoadLayered(nil)
	if err != nil {
		return err
	}

	if format == helpers.FormatYAML && !raw {
		fmt.Fprintf(out, "# Config file: %s (%s)\n", loader.ConfigPath(), presence(loader.ConfigPath()))
		fmt.Fprintf(out, "# Dotenv file: %s (%s)\n", loader.DotEnvPath(), presence(loader.DotEnvPath()))
		fmt.Fprintf(out, "# Layers applied: %s\n", joinLayers(layers))
		if hint := configDirHint(); hint != "" {
			fmt.Fprintf(out, "# Config dir override: %s\n", hint)
		}
		fmt.Fprintln(out)
	}

	formatter, err := helpers.NewFormatter(format)
	if err != nil {
		return err
	}
	return formatter.Format(cfg, out)
}

// newValidateCmd creates the 'config validate' command.
func newValidateCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the effective configuration",
		Long: `Validate the merged configuration and report every error.

Checks:
- webhook.url is an absolute http(s) URL
- webhook.action is set and webhook.timeout is positive
- assistant texts are not empty
- server.port is 1-65535 and server.idle_timeout is not negative
- logging.level is a known level`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := helpers.ValidateFormat(format, validateFormats); err != nil {
				return err
			}
			loader, err := config.NewLoader()
			if err != nil {
				return fmt.Errorf("failed to create config loader: %w", err)
			}
			return runValidate(loader, helpers.OutputFormat(format), cmd.OutOrStdout())
		},
	}

	helpers.AddFormatFlag(cmd, &format, helpers.FormatText, validateFormats)

	return cmd
}

var validateFormats = []helpers.OutputFormat{helpers.FormatText, helpers.FormatJSON}

type validationReport struct {
	Path   string   `json:"path"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func runValidate(loader *config.Loader, format helpers.OutputFormat, out io.Writer) error {
	cfg, _, err := loader.LoadLayered(nil)
	if err != nil {
		return err
	}

	report := validationReport{Path: loader.ConfigPath(), Valid: true, Errors: []string{}}
	verr := cfg.Validate()
	if verr != nil {
		report.Valid = false
		var multi *config.MultiValidationError
		if errors.As(verr, &multi) {
			for _, e := range multi.Errors {
				report.Errors = append(report.Errors, e.Error())
			}
		} else {
			report.Errors = append(report.Errors, verr.Error())
		}
	}

	if format == helpers.FormatJSON {
		formatter, err := helpers.NewFormatter(format)
		if err != nil {
			return err
		}
		if err := formatter.Format(report, out); err != nil {
			return err
		}
	} else {
		for _, e := range report.Errors {
			fmt.Fprintf(out, "  %s\n", e)
		}
		if report.Valid {
			fmt.Fprintln(out, "Configuration is valid.")
		}
	}

	if !report.Valid {
		return fmt.Errorf("validation failed with %d errors", len(report.Errors))
	}
	return nil
}

// newPathCmd creates the 'config path' command.
func newPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := config.NewLoader()
			if err != nil {
				return fmt.Errorf("failed to create config loader: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), loader.ConfigPath())
			return nil
		},
	}
}

func presence(path string) string {
	if _, err := os.Stat(path); err == nil {
		return "present"
	}
	return "not present"
}

func joinLayers(layers []config.Layer) string {
	names := make([]string, len(layers))
	for i, l := range layers {
		names[i] = string(l)
	}
	return strings.Join(names, ", ")
}

// configDirHint is shown when PULSE_CONFIG is set.
func configDirHint() string {
	if dir := os.Getenv(constants.ConfigDirEnv); dir != "" {
		return fmt.Sprintf("%s=%s", constants.ConfigDirEnv, dir)
	}
	return ""
}
