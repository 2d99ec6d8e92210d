package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tessro/showcase/internal/config"
	apperr "github.com/tessro/showcase/internal/errors"
	"github.com/tessro/showcase/internal/log"
)

var (
	cfgFile string
	jsonOut bool
	verbose bool

	cfg      *config.Config
	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "showcase",
	Short: "Play the UIU talent showcase from the terminal",
	Long: `Showcase browses the student talent showcase and plays its audio and video.

One audio session and one video session live for the whole program; every
page, mini player and remote client drives the same two sessions.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfig(); err != nil {
			return err
		}
		return initLogging(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.showcaserc)")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func initConfig() error {
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// initLogging sends logs to stderr, or nowhere for the full-screen UI
// unless a log file is configured.
func initLogging(cmd *cobra.Command) error {
	var fallback io.Writer = os.Stderr
	if cmd == tuiCmd {
		fallback = io.Discard
	}

	closer, err := log.Setup(cfg.Log, fallback)
	if err != nil {
		return err
	}
	closeLog = closer

	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, apperr.Format(err))
		os.Exit(1)
	}
}

// Config returns the loaded configuration.
func Config() *config.Config {
	return cfg
}

// JSONOutput returns true if JSON output is requested.
func JSONOutput() bool {
	return jsonOut
}

// Verbose returns true if verbose output is requested.
func Verbose() bool {
	return verbose
}
