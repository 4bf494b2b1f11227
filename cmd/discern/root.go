package main

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"discern/imagedrive"
	"discern/paranoia"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     Config
	configErr  error
}

func (c *commandContext) ensureConfig() (Config, error) {
	c.configOnce.Do(func() {
		c.config, c.configErr = loadConfig(strings.TrimSpace(*c.configFlag))
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() *slog.Logger {
	cfg, _ := c.ensureConfig()
	level := cfg.LogLevel
	if *c.logLevelFlag != "" {
		level = *c.logLevelFlag
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openSession maps the disc image named by the first positional arg
// and wraps it in a verifying session.
func (c *commandContext) openSession(args []string) (*paranoia.Paranoia, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	drive, err := imagedrive.Open(args[0])
	if err != nil {
		return nil, err
	}
	pcfg := cfg.paranoiaConfig()
	pcfg.Logger = c.logger()
	return paranoia.New(drive, pcfg), nil
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string

	ctx := &commandContext{configFlag: &configFlag, logLevelFlag: &logLevelFlag}

	rootCmd := &cobra.Command{
		Use:           "discern",
		Short:         "Verified CD audio extraction",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newTOCCommand(ctx))
	rootCmd.AddCommand(newRipCommand(ctx))
	rootCmd.AddCommand(newExportCommand(ctx))
	rootCmd.AddCommand(newPlayCommand(ctx))

	return rootCmd
}
