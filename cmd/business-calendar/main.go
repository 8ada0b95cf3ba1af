package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/username/business-calendar/internal/calendar"
	"github.com/username/business-calendar/internal/config"
)

var (
	configPath string
	stateFlag  string
	jsonOutput bool
	logger     *zap.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "business-calendar",
		Short:         "German business calendar",
		Long:          "Public holidays, business days, opening hours and appointment slots for a German business",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err != nil {
					initLogger(cfg.Log.Level) // Fallback to console
				}
			} else {
				level := "warn"
				if cfg != nil {
					level = cfg.Log.Level
				}
				initLogger(level)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (default: ./config.yaml if present)")
	rootCmd.PersistentFlags().StringVarP(&stateFlag, "state", "s", "", "German state code, overrides calendar.state")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of text")

	rootCmd.AddCommand(
		holidaysCmd(),
		dayCmd(),
		nextCmd(),
		monthCmd(),
		hoursCmd(),
		lunchCmd(),
		slotsCmd(),
		verifyCmd(),
		serveCmd(),
	)

	return rootCmd
}

// loadConfig loads the config and applies the --state override
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if stateFlag != "" {
		j, err := calendar.ParseJurisdiction(stateFlag)
		if err != nil {
			return nil, err
		}
		cfg.Calendar.State = j.State
	}

	return cfg, nil
}

// initializeCalendar builds the computed calendar and, if configured, the override layer on top
func initializeCalendar(cfg *config.Config) (*calendar.GermanCalendar, calendar.Calendar) {
	german := calendar.NewGermanCalendar(cfg.Calendar.Jurisdiction(), cfg.Hours.Policy())

	if cfg.Calendar.OverridesFile == "" {
		return german, german
	}

	overrides := calendar.NewFileCalendar(cfg.Calendar.OverridesFile, logger)
	composite := calendar.NewCompositeCalendar(overrides, german, logger)

	if err := composite.LoadPrimary(); err != nil {
		logger.Warn("Failed to load override calendar, continuing with public holidays only",
			zap.Error(err))
		return german, german
	}

	return german, composite
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func initLogger(level string) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	// Setup encoder
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	// Parse log level
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	// Create core with lumberjack writer
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
