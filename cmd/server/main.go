package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/fridgeshare/internal/app"
	"github.com/mmynk/fridgeshare/internal/config"
	"github.com/mmynk/fridgeshare/pkg/logging"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "fridgeshare",
	Short:        "Shared fridge cost splitting server",
	SilenceUsage: true,
}

// loadConfig reads --config (or FRIDGESHARE_CONFIG) and installs the logger.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("FRIDGESHARE_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	logging.Setup(os.Stderr, cfg.LogLevel)
	return cfg, nil
}

// newApp loads the config and creates an App. The caller must defer a.Close().
func newApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.New(cmd.Context(), cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default: FRIDGESHARE_CONFIG, or built-in defaults)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().String("path", "fridgeshare.toml", "where to write the config file")

	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenIssueCmd)

	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)
	userCreateCmd.Flags().String("id", "", "user ID (default: random UUID)")
	userCreateCmd.Flags().String("email", "", "email address")
	userCreateCmd.Flags().String("first-name", "", "first name")
	userCreateCmd.Flags().String("last-name", "", "last name")
	userCreateCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(fridgeCmd)
	fridgeCmd.AddCommand(fridgeCreateCmd)
	fridgeCmd.AddCommand(fridgeRepairCmd)

	rootCmd.AddCommand(memberCmd)
	memberCmd.AddCommand(memberAddCmd)
	memberCmd.AddCommand(memberRemoveCmd)

	rootCmd.AddCommand(purchaseCmd)
	purchaseCmd.AddCommand(purchaseAddCmd)
	purchaseCmd.AddCommand(purchaseListCmd)
	purchaseCmd.AddCommand(purchaseRemoveCmd)
	purchaseAddCmd.Flags().String("by", "", "user ID of the purchaser")
	purchaseAddCmd.Flags().String("title", "", "item name")
	purchaseAddCmd.Flags().Float64("price", 0, "price paid")
	purchaseAddCmd.Flags().StringSlice("shared-by", nil, "user IDs sharing the item (default: every member)")
	purchaseAddCmd.MarkFlagRequired("by")
	purchaseAddCmd.MarkFlagRequired("title")

	rootCmd.AddCommand(balancesCmd)
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().String("as", "", "user ID recording the settlement (default: the cleared user)")
}
