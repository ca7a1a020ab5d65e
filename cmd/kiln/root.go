package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ARTM2000/kiln/config"
)

// app carries the global flags and what is built from them before a
// subcommand runs.
type app struct {
	configPath string
	storePath  string
	encoding   string
	logLevel   string

	settings config.Settings
	logger   *zap.Logger
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "kiln",
		Short: "Inspect and maintain kiln definition files",
		Long: `kiln works on the definition files read by a kiln Factory.

Settings come from --config and are overridden by the other global flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "settings file (YAML)")
	flags.StringVar(&a.storePath, "store", "", "definition file; overrides the settings path")
	flags.StringVar(&a.encoding, "encoding", "", "definition encoding: nested or flat")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newListCmd(a),
		newGetCmd(a),
		newDeleteCmd(a),
		newValidateCmd(a),
		newConvertCmd(a),
		newWatchCmd(a),
	)
	return root
}

func (a *app) setup(logOut io.Writer) error {
	s := config.DefaultSettings()
	if a.configPath != "" {
		loaded, err := config.LoadSettings(a.configPath)
		if err != nil {
			return err
		}
		s = loaded
	}
	if a.storePath != "" {
		s.Path = a.storePath
	}
	if a.encoding != "" {
		s.Encoding = a.encoding
	}
	if a.logLevel != "" {
		s.LogLevel = a.logLevel
	}
	if err := s.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(s.LogLevel, logOut)
	if err != nil {
		return err
	}
	a.settings = s
	a.logger = logger
	return nil
}

// newLogger builds a production JSON logger writing to w.
func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg.EncoderConfig), zapcore.AddSync(w), cfg.Level)
	return zap.New(core), nil
}

func (a *app) open() (*config.FileStore, error) {
	return a.settings.Open(config.WithLogger(a.logger))
}
