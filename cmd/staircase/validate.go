package main

import (
	"fmt"
	"os"

	"github.com/perceptlab/staircase/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <conditions.yaml>",
	Short: "Check a conditions file for consistency",
	Long:  `Parses the conditions file and applies the same validation the scheduler runs at construction, reporting missing fields before any experiment starts.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		stairType, _ := cmd.Flags().GetString("type")
		if err := cli.RunValidate(args[0], stairType); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("type", "quest", "Staircase type to validate against")
}
