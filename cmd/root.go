package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reconai",
	Short: "Automated Reconnaissance with AI Analysis",
	Long: `ReconAI orchestrates external reconnaissance scanners, forwards their
findings to a language-model API for analysis, and writes formatted reports.`,
	SilenceUsage: true,
}

var (
	Verbose   bool
	OutputDir string
)

// Execute runs the root command. Exit code 1 covers validation failures,
// scan failures, and unexpected errors alike.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&OutputDir, "output-dir", "", "Directory to store results (default from config)")
}
