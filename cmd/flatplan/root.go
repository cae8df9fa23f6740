package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"flatplan/internal/client"
	"flatplan/internal/config"
	"flatplan/internal/events"
)

var (
	cfgFile    string
	jsonOutput bool
	verbose    bool

	cfg       *config.Config
	logger    *events.Logger
	apiClient *client.Client
)

var rootCmd = &cobra.Command{
	Use:   "flatplan",
	Short: "Manage flats and floor-plan layouts",
	Long: `Flatplan is a client for the flats and floor-plan layout API.

It manages flat records, their floor-plan layouts and geometry
documents, and runs location analysis for a flat's address.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		cfg, err = config.NewLoader(cfgFile).Load()
		if err != nil {
			return err
		}

		if verbose {
			cfg.Log.Level = "debug"
		}
		if jsonOutput {
			// Keep stdout clean for the JSON result.
			cfg.Log.Level = "error"
		}

		logger, err = events.NewLogger(&cfg.Log)
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}

		apiClient, err = client.New(cfg, logger)
		if err != nil {
			return fmt.Errorf("create client: %w", err)
		}

		return apiClient.Initialize(cmd.Context())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if apiClient != nil {
			return apiClient.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Config file path (default: flatplan.json in ., ~/.config/flatplan, ~/.flatplan)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Output results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")
}
