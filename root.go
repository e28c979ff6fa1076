package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/scrapsync/scrapsync/internal/config"
	"github.com/scrapsync/scrapsync/internal/scrapbox"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagJSON       bool
	flagVerbose    bool
	flagQuiet      bool
)

// httpClientTimeout bounds every request. Project exports can be multiple
// megabytes, so this is generous compared to a typical API timeout.
const httpClientTimeout = 5 * time.Minute

// defaultHTTPClient returns an HTTP client with a sensible timeout.
func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: httpClientTimeout}
}

// CLIContext carries the resolved configuration and logger to subcommands
// through the command context.
type CLIContext struct {
	Cfg    *config.Resolved
	Logger *slog.Logger
	JSON   bool
	Quiet  bool
}

// cliContextKey is the context key for the CLIContext.
type cliContextKey struct{}

// mustCLIContext retrieves the CLIContext installed by PersistentPreRunE.
// Panics if called before the pre-run phase — a programming error.
func mustCLIContext(ctx context.Context) *CLIContext {
	cc, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok {
		panic("CLIContext not initialized — command ran without root pre-run")
	}

	return cc
}

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "scrapsync",
		Short:   "One-way incremental Scrapbox project sync",
		Long:    "Replicate new and changed pages from a source Scrapbox project to a destination project.",
		Version: version,
		// Silence Cobra's default error/usage printing — we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
		// PersistentPreRunE resolves configuration and installs the
		// CLIContext before every subcommand.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return installCLIContext(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newVerifyCmd())

	return cmd
}

// installCLIContext resolves the effective configuration from the override
// chain and stores a CLIContext in the command context for subcommands.
func installCLIContext(cmd *cobra.Command) error {
	cli := config.CLIOverrides{
		ConfigPath: flagConfigPath,
	}

	env := config.ReadEnvOverrides()

	resolved, err := config.Resolve(env, cli)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cc := &CLIContext{
		Cfg:    resolved,
		Logger: buildLogger(resolved),
		JSON:   flagJSON,
		Quiet:  flagQuiet,
	}

	cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cc))

	return nil
}

// buildLogger creates an slog.Logger configured by the resolved config and
// CLI flags. Config-file log level provides the baseline; --verbose and
// --quiet override it because CLI flags always win.
func buildLogger(cfg *config.Resolved) *slog.Logger {
	level := slog.LevelInfo

	if cfg != nil {
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// baseURL returns the configured API endpoint, defaulting to production.
func baseURL(cfg *config.Resolved) string {
	if cfg.BaseURL != "" {
		return cfg.BaseURL
	}

	return scrapbox.DefaultBaseURL
}
