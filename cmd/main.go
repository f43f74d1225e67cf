package main

import (
	"fmt"
	"os"

	"surveyor/pkg/config"

	"github.com/spf13/cobra"
)

var (
	configPath string
	jsonOutput bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "surveyor",
		Short: "Administer psychometric instruments to LLM personas",
		Long: `Surveyor expands factorial experiment designs into work units,
dispatches them to rate-limited LLM providers, scores the answers and
serves the results for analysis.`,
		SilenceUsage: true,
	}

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "config/config.yaml"
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfig, "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	rootCmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newCreateCmd(),
		newStatusCmd(),
		newCancelCmd(),
		newProfilesCmd(),
	)
	return rootCmd
}

// loadConfig reads the --config file and publishes it globally
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", configPath, err)
	}
	config.GlobalConfig = cfg
	return cfg, nil
}
