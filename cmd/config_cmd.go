package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/reconai/pkg/ai"
	"github.com/user/reconai/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration (provider, model, keys)",
}

var configStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and validation status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			errLine("[ERROR] Failed to load config: %v\n", err)
			return err
		}

		res := cfg.Validate()
		fmt.Println("Configuration Status:")
		fmt.Printf("Valid: %s\n", yesNo(res.Valid))
		fmt.Printf("Provider: %s\n", cfg.AI.Provider)
		fmt.Printf("Model: %s\n", cfg.AI.Model)
		fmt.Printf("API Key: %s\n", yesNo(cfg.APIKey(cfg.AI.Provider) != ""))
		fmt.Printf("Output Directory: %s\n", cfg.General.OutputDir)
		fmt.Printf("Log Level: %s\n", cfg.General.LogLevel)

		if len(res.Warnings) > 0 {
			fmt.Println("\nWarnings:")
			for _, w := range res.Warnings {
				warnLine("  %s\n", w)
			}
		}
		if len(res.Errors) > 0 {
			fmt.Println("\nErrors:")
			for _, e := range res.Errors {
				errLine("  %s\n", e)
			}
			return fmt.Errorf("configuration invalid")
		}
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.CreateExample()
		if err != nil {
			errLine("[ERROR] Failed to create example config: %v\n", err)
			return err
		}
		okLine("[+] Created example configuration file: %s\n", path)
		fmt.Println("[!] Edit the file and copy to config.yaml to activate")
		return nil
	},
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Set the API key for a provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, _ := cmd.Flags().GetString("provider")
		key, _ := cmd.Flags().GetString("key")
		if provider == "" || key == "" {
			return fmt.Errorf("--provider and --key are required")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		cfg.SetAPIKey(strings.ToLower(provider), key)
		if err := config.Save(cfg); err != nil {
			errLine("[ERROR] Failed to save config: %v\n", err)
			return err
		}
		okLine("[+] API key saved for provider: %s\n", provider)
		return nil
	},
}

var configListModelsCmd = &cobra.Command{
	Use:   "list-models",
	Short: "List available models from the configured provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		providerName := cfg.AI.Provider
		apiKey := cfg.APIKey(providerName)
		if apiKey == "" {
			errLine("[ERROR] No API key found for %s\n", providerName)
			return fmt.Errorf("missing api key")
		}

		fmt.Printf("Fetching models for %s...\n", providerName)
		ctx := context.Background()
		p, err := ai.NewProvider(ctx, providerName, apiKey, cfg.AI.Model)
		if err != nil {
			errLine("[ERROR] %v\n", err)
			return err
		}
		defer p.Close()
		models, err := p.ListModels(ctx)
		if err != nil {
			errLine("[ERROR] Failed to fetch models: %v\n", err)
			return err
		}

		fmt.Printf("\nAvailable Models (%s):\n", providerName)
		for _, m := range models {
			mark := " "
			if m == cfg.AI.Model {
				mark = "*"
			}
			fmt.Printf("%s %s\n", mark, m)
		}
		return nil
	},
}

func init() {
	configSetKeyCmd.Flags().StringP("provider", "p", "", "Provider (gemini, openai)")
	configSetKeyCmd.Flags().StringP("key", "k", "", "API key")

	configCmd.AddCommand(configStatusCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetKeyCmd)
	configCmd.AddCommand(configListModelsCmd)
	rootCmd.AddCommand(configCmd)
}
