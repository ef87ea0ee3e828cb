package main

import (
	"fmt"
	"os"

	"github.com/perceptlab/staircase/internal/cli"
	"github.com/spf13/cobra"
)

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate <conditions.yaml>",
	Short: "Run a full session against a simulated observer",
	Long:  `Loads a conditions file, interleaves one staircase per condition and answers every trial with a logistic simulated observer, then prints a run report.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		varName, _ := cmd.Flags().GetString("var")
		name, _ := cmd.Flags().GetString("name")
		method, _ := cmd.Flags().GetString("method")
		nTrials, _ := cmd.Flags().GetInt("trials")
		seed, _ := cmd.Flags().GetInt64("seed")
		threshold, _ := cmd.Flags().GetFloat64("threshold")
		slope, _ := cmd.Flags().GetFloat64("slope")
		jsonMode, _ := cmd.Flags().GetBool("json")
		debug, _ := cmd.Flags().GetBool("debug")

		err := cli.RunSimulate(cli.SimulateOptions{
			ConditionsPath: args[0],
			VarName:        varName,
			Name:           name,
			Method:         method,
			NTrials:        nTrials,
			Seed:           seed,
			SeedSet:        cmd.Flags().Changed("seed"),
			Threshold:      threshold,
			Slope:          slope,
			JSON:           jsonMode,
			Debug:          debug,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().String("var", "intensity", "Stimulus variable name")
	simulateCmd.Flags().String("name", "", "Scheduler name used in exported data keys")
	simulateCmd.Flags().String("method", "sequential", "Selection policy: sequential, random or fullRandom")
	simulateCmd.Flags().Int("trials", 0, "Total trial cap (0 uses the engine default)")
	simulateCmd.Flags().Int64("seed", 0, "Deterministic random seed")
	simulateCmd.Flags().Float64("threshold", 0.5, "Simulated observer threshold")
	simulateCmd.Flags().Float64("slope", 10, "Simulated observer psychometric slope")
	simulateCmd.Flags().Bool("json", false, "Emit trial rows as NDJSON instead of a report")
	simulateCmd.Flags().Bool("debug", false, "Enable debug logging to stderr")
}
