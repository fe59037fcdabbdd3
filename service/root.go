// Package service implements the feedgram command line.
package service

import (
	"fmt"
	"os"

	"feedgram/app/config"
	"feedgram/app/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is overridden at build time with -ldflags "-X feedgram/service.Version=...".
var Version = "0.1.0"

// cli holds what the subcommands share once flags are parsed.
type cli struct {
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "feedgram",
		Short: "feedgram - a small photo feed",
		Long: `feedgram serves a photo feed where signed in users share posts with
media and tags, comment on them, and like them.

Configuration is read from feedgram.yaml (see --config), a .env file next
to it, and FEEDGRAM_* environment variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Logging)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", config.DefaultPath, "path to the YAML config file")

	root.AddCommand(
		c.serveCmd(),
		c.initCmd(),
		c.cleanCmd(),
		c.backupCmd(),
		c.restoreCmd(),
		versionCmd(),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "feedgram version %s\n", Version)
		},
	}
}
