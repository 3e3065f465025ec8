package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/menta2k/microscope-measure/internal/config"
)

var (
	logLevel     = "info"
	configPath   = ""
	settingsPath = ""
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

// loadConfig merges the defaults with an optional config file and the
// --settings override.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()

	path := configPath
	if path == "" {
		path = config.GetConfigPath()
		if _, err := os.Stat(path); err != nil {
			path = ""
		}
	}
	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if settingsPath != "" {
		cfg.Scale.SettingsPath = settingsPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "micromeasure",
		Short: "micromeasure converts drawn shapes on microscope images to physical lengths",
		Long: `micromeasure converts drawn shapes on microscope images to physical lengths.

Draw a line or circle over a micrograph (as canvas JSON), and micromeasure
reports its length or diameter in micrometers using a calibrated scale
factor. Drawing a line over a feature of known length calibrates the factor,
which persists between sessions.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", "", "config file path (default: ~/.config/micromeasure/config.json)")
	globalFlags.StringVar(&settingsPath, "settings", "", "scale settings file path (default: settings.json)")

	cmd.AddCommand(
		NewMeasureCommand(),
		NewCalibrateCommand(),
		NewScaleCommand(),
		NewDetectCommand(),
		NewVersionCommand(),
	)

	return cmd
}
