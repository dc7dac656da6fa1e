// root_cmd.go
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ahzs645/spartandb/config"
)

func newRootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:           "spartandb",
		Short:         "Build a relational store from SPARTAN FTIR and HIPS laboratory exports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadConfig(configPath); err != nil {
				return err
			}
			level, err := log.ParseLevel(config.AppConfig.LogLevel)
			if err != nil {
				level = log.InfoLevel
			}
			if verbose {
				level = log.DebugLevel
			}
			log.SetLevel(level)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: config.yaml, then config/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newStatsCmd())
	return cmd
}

func execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
