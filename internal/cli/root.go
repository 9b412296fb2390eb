package cli

import (
	"fmt"
	"os"
	"strings"

	"complaint-desk/internal/config"
	"complaint-desk/internal/format"
	"complaint-desk/internal/logging"
	"complaint-desk/internal/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type App struct {
	ConfigPath  string
	EnvFile     string
	ServerURL   string
	Format      string
	PrettyJSON  bool
	LogLevel    string
	LogFile     string
	SessionFile string
	Live        bool

	cfg config.Config
	log *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{log: zap.NewNop()}

	cmd := &cobra.Command{
		Use:          "complaint-desk",
		Short:        "Complaint dashboard: TUI, CLI and development backend",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the backend and create an admin
  complaint-desk users create admin@example.com --admin --password secret
  complaint-desk serve

  # Log in and open the dashboard
  complaint-desk login --email admin@example.com
  complaint-desk

  # Scriptable commands
  complaint-desk complaints list --format json
  complaint-desk complaints resolve <id>
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive dashboard.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.load(cmd)
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		_ = app.log.Sync()
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr(config.EnvPrefix+"CONFIG", ""), "Path to the YAML config file (default: "+config.DefaultPath()+")")
	cmd.PersistentFlags().StringVar(&app.EnvFile, "env-file", "", "Dotenv file to overlay (default: .env)")
	cmd.PersistentFlags().StringVar(&app.ServerURL, "server", "", "Backend base URL (overrides server_url)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", "", "Output format (table|json)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", "", "Write JSON logs to this file")
	cmd.PersistentFlags().StringVar(&app.SessionFile, "session-file", config.SessionPath(), "Where the login session is kept")
	_ = cmd.PersistentFlags().MarkHidden("session-file")
	cmd.Flags().BoolVar(&app.Live, "live", true, "Reload the dashboard when the backend reports changes")

	cmd.AddCommand(newServeCmd(app))
	cmd.AddCommand(newUsersCmd(app))
	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newSignupCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newComplaintsCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// load resolves the configuration (flags win over everything config.Load
// merges) and builds the logger for the command about to run.
func (app *App) load(cmd *cobra.Command) error {
	cfg, err := config.Load(config.LoadOptions{Path: app.ConfigPath, EnvFile: app.EnvFile})
	if err != nil {
		return writeErr(cmd, err)
	}
	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.ServerURL = app.ServerURL
	}
	if flags.Changed("format") {
		cfg.Format = app.Format
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = app.LogLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = app.LogFile
	}
	if err := cfg.Validate(); err != nil {
		return writeErr(cmd, fmt.Errorf("config: %w", err))
	}
	app.cfg = cfg

	// The dashboard owns the terminal; other commands only log to stderr
	// when asked for debug output.
	interactive := cmd == cmd.Root()
	log, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		File:   cfg.LogFile,
		Stderr: !interactive && (cmd.Name() == "serve" || strings.EqualFold(cfg.LogLevel, "debug")),
	})
	if err != nil {
		return writeErr(cmd, fmt.Errorf("logging: %w", err))
	}
	app.log = log
	cmd.SetContext(logging.WithLogger(cmd.Context(), log))
	return nil
}

func runTUI(cmd *cobra.Command, app *App) error {
	ctx := cmd.Context()
	client, user, err := app.session(ctx)
	if err != nil {
		return writeErr(cmd, err)
	}
	return tui.Run(ctx, tui.Options{
		Service:         client,
		User:            user,
		NotificationTTL: app.cfg.NotificationTTL,
		Logger:          app.log.Named("tui"),
		Live:            app.Live,
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.cfg.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
