package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vaultsens/vaultsens-go/apierr"
	"github.com/vaultsens/vaultsens-go/client"
	"github.com/vaultsens/vaultsens-go/internal/config"
	"github.com/vaultsens/vaultsens-go/internal/dotenv"
)

// app is the state shared by every command once PersistentPreRunE ran.
type app struct {
	cfgFile string
	envFile string

	cfg    *config.Config
	logger zerolog.Logger
	api    *client.Client

	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string) int {
	return runWith(ctx, args, os.Stdout, os.Stderr)
}

func runWith(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, logger: zerolog.Nop()}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		a.reportError(err)
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vaultsens",
		Short: "Command-line client for the VaultSens file storage API",
		Long: `vaultsens uploads, lists, updates and deletes files and folders stored in
VaultSens. Settings come from flags, VAULTSENS_* environment variables
(a .env file is honored), or a config.yaml file.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initialize,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is ./config.yaml)")
	pf.StringVar(&a.envFile, "env-file", "", ".env file to load (default: ./.env or the project root's)")
	pf.String("base-url", "", "VaultSens server URL (default "+config.DefaultBaseURL+")")
	pf.String("api-key", "", "API key")
	pf.String("api-secret", "", "API secret")
	pf.Duration("timeout", 0, "HTTP timeout per request (0 = none)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: console or json")

	root.AddCommand(
		a.uploadCmd(),
		a.filesCmd(),
		a.foldersCmd(),
		a.metricsCmd(),
	)
	return root
}

// initialize loads configuration and builds the API client.
func (a *app) initialize(cmd *cobra.Command, _ []string) error {
	var envErr error
	if a.envFile != "" {
		envErr = dotenv.LoadDotEnv(a.envFile)
	} else {
		envErr = dotenv.LoadDotEnv()
	}

	cfg, err := config.Load(a.cfgFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg
	a.logger = setupLogger(cfg.Logging, a.stderr)

	if envErr != nil {
		if a.envFile != "" {
			return fmt.Errorf("load env file: %w", envErr)
		}
		a.logger.Debug().Err(envErr).Msg("no .env file loaded")
	}

	api, err := client.NewClient(cfg.API.BaseURL,
		client.WithCredentials(cfg.API.Key, cfg.API.Secret),
		client.WithHTTPTimeout(cfg.API.Timeout),
		client.WithUserAgent("vaultsens-cli/"+version),
		client.WithLogger(a.logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	a.api = api

	a.logger.Debug().
		Str("base_url", api.BaseURL).
		Bool("credentials", cfg.API.HasCredentials()).
		Msg("client ready")
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig, out io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	if cfg.Format == "json" {
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color,
	}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// printJSON writes v to stdout as indented JSON.
func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func asAPIError(err error) *apierr.APIError {
	var ae *apierr.APIError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// reportError prints err on stderr. API failures use the
// "<KIND> (<status>): <message>" form.
func (a *app) reportError(err error) {
	if ae := asAPIError(err); ae != nil {
		fmt.Fprintf(a.stderr, "%s (%d): %s\n", ae.Kind, ae.Status, ae.Error())
		if apierr.IsTransient(err) {
			fmt.Fprintln(a.stderr, "the failure looks transient; retrying may succeed")
		}
		return
	}
	fmt.Fprintln(a.stderr, "Error:", err)
}
