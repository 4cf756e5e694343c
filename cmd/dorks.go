package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/user/reconai/pkg/ai"
	"github.com/user/reconai/pkg/config"
	"github.com/user/reconai/pkg/logging"
	"github.com/user/reconai/pkg/target"
)

var (
	dorkTarget string
	dorkStyle  string
)

var dorksCmd = &cobra.Command{
	Use:   "dorks",
	Short: "Generate search-engine dorks for a target",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			errLine("[ERROR] Failed to load config: %v\n", err)
			return err
		}

		desc := target.Validate(dorkTarget)
		for _, w := range desc.Warnings {
			warnLine("[WARNING] %s\n", w)
		}
		if !desc.Valid() {
			errLine("[ERROR] Invalid target: %s\n", dorkTarget)
			return fmt.Errorf("invalid target")
		}

		outputDir := OutputDir
		if outputDir == "" {
			outputDir = cfg.General.OutputDir
		}

		log := logging.New("dork_generator", Verbose)
		ctx := context.Background()

		// AI-backed generation when a key is configured; templates otherwise.
		var provider ai.Provider
		if key := cfg.APIKey(cfg.AI.Provider); key != "" {
			p, err := ai.NewProvider(ctx, cfg.AI.Provider, key, cfg.AI.Model)
			if err != nil {
				warnLine("[WARNING] AI provider unavailable, using template dorks: %v\n", err)
			} else {
				provider = p
				defer provider.Close()
			}
		} else {
			warnLine("[WARNING] No API key configured, using template dorks\n")
		}

		gen := ai.NewDorkGenerator(provider, cfg.AI.Model, outputDir, log)
		dorks := gen.Generate(ctx, desc.Normalized, dorkStyle)

		total := 0
		categories := make([]string, 0, len(dorks))
		for cat, list := range dorks {
			total += len(list)
			categories = append(categories, cat)
		}
		sort.Strings(categories)

		okLine("[+] Generated %d dorks across %d categories for %s\n\n", total, len(dorks), desc.Normalized)
		for _, cat := range categories {
			fmt.Printf("%s (%d):\n", cat, len(dorks[cat]))
			for _, d := range dorks[cat] {
				fmt.Printf("  %s\n", d)
			}
			fmt.Println()
		}

		path, err := gen.Save(desc.Normalized, dorks)
		if err != nil {
			warnLine("[WARNING] Failed to save dorks: %v\n", err)
			return nil
		}
		okLine("[+] Dorks saved to: %s\n", path)
		return nil
	},
}

func init() {
	dorksCmd.Flags().StringVarP(&dorkTarget, "target", "t", "", "Target domain or organization")
	dorksCmd.Flags().StringVar(&dorkStyle, "style", "aggressive", "Reconnaissance style biasing dork generation")
	_ = dorksCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(dorksCmd)
}
