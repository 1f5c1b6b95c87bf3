package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/timetrack/internal/config"
)

var (
	configPath string
	logLevel   string

	// cfg is loaded before every command runs.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "timetrack",
	Short: "Overtime reports from Google and iCalendar calendars",
	Long: `timetrack compares the time you are expected to work (a "working" calendar)
with the time you actually worked (a "tracked" calendar) and reports daily
and cumulative overtime. Only events whose title starts with the marker
(default "#") are counted.

Configuration is read from ~/.timetrack/config.yaml.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.timetrack/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default $LOG_LEVEL or info)")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(calendarsCmd)
	rootCmd.AddCommand(syncCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	level := logLevel
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if level == "" {
		level = "info"
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(parsed)
	log.SetOutput(os.Stderr)

	path := configPath
	if path == "" {
		if path, err = config.DefaultPath(); err != nil {
			return err
		}
	}
	if cfg, err = config.Load(path); err != nil {
		return err
	}
	log.WithField("path", path).Debug("configuration loaded")
	return nil
}
