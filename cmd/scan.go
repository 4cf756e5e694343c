package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/user/reconai/pkg/config"
	"github.com/user/reconai/pkg/logging"
	"github.com/user/reconai/pkg/orchestrator"
	"github.com/user/reconai/pkg/report"
)

var (
	scanTarget  string
	scanTool    string
	scanStyle   string
	scanAnalyze bool
	scanDorks   bool
	scanFormat  string
)

var (
	okLine   = color.New(color.FgGreen).PrintfFunc()
	warnLine = color.New(color.FgYellow).PrintfFunc()
	errLine  = color.New(color.FgRed).PrintfFunc()
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a reconnaissance scan against a target",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			errLine("[ERROR] Failed to load config: %v\n", err)
			return err
		}

		format, err := report.ParseFormat(scanFormat)
		if err != nil {
			errLine("[ERROR] %v\n", err)
			return err
		}

		outputDir := OutputDir
		if outputDir == "" {
			outputDir = cfg.General.OutputDir
		}

		okLine("[+] ReconAI\n")
		okLine("[+] Target: %s\n", scanTarget)
		okLine("[+] Tool: %s\n", scanTool)
		okLine("[+] Style: %s\n", scanStyle)
		okLine("[+] AI Analysis: %s\n", enabledWord(scanAnalyze))
		okLine("[+] Output Directory: %s\n", outputDir)

		log := logging.New("orchestrator", Verbose)
		orch := orchestrator.New(cfg, outputDir, log)
		defer orch.Close()

		record := orch.Run(context.Background(), orchestrator.Request{
			Target:    scanTarget,
			Tool:      scanTool,
			StyleName: scanStyle,
			Analyze:   scanAnalyze,
			Dorks:     scanDorks,
		})

		for _, w := range record.Target.Warnings {
			warnLine("[WARNING] %s\n", w)
		}
		if !record.Target.Valid() {
			errLine("[ERROR] Invalid target: %s\n", scanTarget)
			return errors.New("invalid target")
		}

		formatter := report.NewFormatter(outputDir)
		var outputFiles []string
		if format == report.FormatAll {
			paths, err := formatter.SaveAll(record)
			if err != nil {
				warnLine("[WARNING] Some reports failed to save: %v\n", err)
			}
			outputFiles = paths
		} else {
			path, err := formatter.Save(record, format)
			if err != nil {
				warnLine("[WARNING] Failed to save report: %v\n", err)
			} else {
				outputFiles = append(outputFiles, path)
			}
		}

		if format == report.FormatText || format == report.FormatAll {
			fmt.Println(report.RenderText(record))
		} else {
			fmt.Println(orch.Summary(record))
		}

		if len(outputFiles) > 0 {
			okLine("\n[+] Results saved to:\n")
			for _, p := range outputFiles {
				fmt.Printf("    %s\n", p)
			}
		}

		if !record.Succeeded {
			errLine("\n[!] Reconnaissance failed: %s\n", record.ErrorMessage)
			return errors.New("reconnaissance failed")
		}
		okLine("\n[+] Reconnaissance completed successfully!\n")
		return nil
	},
}

func enabledWord(on bool) string {
	if on {
		return "Enabled"
	}
	return "Disabled"
}

func init() {
	scanCmd.Flags().StringVarP(&scanTarget, "target", "t", "", "Target to scan (domain, IP, CIDR, or organization name)")
	scanCmd.Flags().StringVar(&scanTool, "tool", "bbot", "Reconnaissance tool to use")
	scanCmd.Flags().StringVar(&scanStyle, "style", "quick", "Reconnaissance style (stealth, aggressive, phishing, quick)")
	scanCmd.Flags().BoolVar(&scanAnalyze, "analyze", false, "Enable AI analysis of results")
	scanCmd.Flags().BoolVar(&scanDorks, "dorks", false, "Generate search dorks for the target")
	scanCmd.Flags().StringVar(&scanFormat, "format", "text", "Output format (text, json, html, csv, all)")
	_ = scanCmd.MarkFlagRequired("target")
	rootCmd.AddCommand(scanCmd)
}
