package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"infrautilx/internal/logging"
)

func main() {
	var debug bool
	var configPath string

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Load .env file if present (optional — CI and shells should set env vars directly)
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "infrautilx",
		Short: "InfraUtilX - stack access and AWS profile management",
		Long:  "Manages SSH access to Pulumi-deployed stacks and the AWS credential profiles configured on this machine",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetLogLevel(logging.LogLevelWarn)
			if debug {
				logging.SetLogLevel(logging.LogLevelDebug)
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging (verbose output)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML settings override file")

	rootCmd.AddCommand(newAccessCmd(ctx, &configPath))
	rootCmd.AddCommand(newProfileCmd(ctx, &configPath))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
