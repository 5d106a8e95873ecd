package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"calpersonal/internal/format"
	"calpersonal/internal/google"
	"calpersonal/internal/store"
)

type App struct {
	ConfigPath   string
	Timezone     string
	CacheDir     string
	CacheBackend string
	LogFile      string
	LogLevel     string

	cfg     *store.Config
	loc     *time.Location
	log     *logrus.Entry
	logFile io.Closer
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "calpersonal",
		Short:        "Personal calendar and tasks in the terminal",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive calendar
  calpersonal

  # Grant access to Google Calendar and Google Tasks (once per kind)
  calpersonal auth

  # Print the next week from the local cache
  calpersonal agenda --days 7

  # Export cached events
  calpersonal export --out personal.ics
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		app.close()
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("CALPERSONAL_CONFIG", ""), "Path to config.yaml (default ~/.config/calpersonal/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.Timezone, "tz", "", "Display timezone (IANA name or Local)")
	cmd.PersistentFlags().StringVar(&app.CacheDir, "cache-dir", "", "Directory holding the local cache")
	cmd.PersistentFlags().StringVar(&app.CacheBackend, "cache-backend", "", "Cache backend (files|sqlite)")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", envOr("CALPERSONAL_LOG_FILE", ""), "Log file (default <cache-dir>/calpersonal.log; - for stderr)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")

	cmd.AddCommand(newAgendaCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newAuthCmd(app))
	cmd.AddCommand(newCacheCmd(app))

	return cmd
}

// setup resolves configuration (file, then environment, then flags) and opens
// the log.
func (app *App) setup(cmd *cobra.Command) error {
	cfg, err := store.LoadConfig(app.ConfigPath)
	if err != nil {
		return err
	}
	override := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	override(&cfg.Timezone, app.Timezone)
	override(&cfg.CacheDir, app.CacheDir)
	override(&cfg.CacheBackend, app.CacheBackend)
	override(&cfg.LogLevel, app.LogLevel)
	if err := cfg.Normalize(); err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	log, closer, err := openLog(cfg, app.LogFile, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	app.cfg = cfg
	app.loc = loc
	app.log = log
	app.logFile = closer
	return nil
}

func (app *App) close() {
	if app.logFile != nil {
		_ = app.logFile.Close()
		app.logFile = nil
	}
}

// openLog builds the process logger. The TUI owns the terminal, so logs go to
// a file unless path is "-".
func openLog(cfg *store.Config, path string, stderr io.Writer) (*logrus.Entry, io.Closer, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.JSONFormatter{})

	var closer io.Closer
	switch path = strings.TrimSpace(path); path {
	case "-":
		logger.SetOutput(stderr)
	default:
		if path == "" {
			path = cfg.LogPath()
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log: %w", err)
		}
		logger.SetOutput(f)
		closer = f
	}
	return logrus.NewEntry(logger).WithField("component", "calpersonal"), closer, nil
}

func (app *App) provider() *google.Provider {
	return &google.Provider{
		ClientSecretFile: app.cfg.ClientSecret,
		TokenDir:         app.cfg.TokenDir,
		Log:              app.log,
	}
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, f string, pretty bool, v any, tables ...format.Rows) error {
	return format.Write(cmd.OutOrStdout(), f, v, pretty, tables...)
}
