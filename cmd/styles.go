package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/user/reconai/pkg/styles"
)

var stylesCmd = &cobra.Command{
	Use:   "styles",
	Short: "List the available reconnaissance styles",
	Run: func(cmd *cobra.Command, args []string) {
		bold := color.New(color.Bold).SprintFunc()
		fmt.Println("Available Reconnaissance Styles:")
		fmt.Println(strings.Repeat("=", 60))
		for _, p := range styles.List() {
			fmt.Printf("\n%s\n", bold(strings.ToUpper(p.Name)))
			fmt.Printf("   Description: %s\n", p.Description)
			fmt.Printf("   Flags: %s\n", strings.Join(p.ToolFlags, ", "))
			fmt.Printf("   Intensity: %s\n", p.Intensity)
			fmt.Printf("   Timeout: %ds\n", p.TimeoutSeconds)
			fmt.Printf("   Include Dorks: %s\n", yesNo(p.IncludeDorks))
		}
		fmt.Println("\n" + strings.Repeat("=", 60))
		fmt.Println("Usage: reconai scan -t target.com --style <name>")
	},
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func init() {
	rootCmd.AddCommand(stylesCmd)
}
