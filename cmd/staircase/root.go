package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "staircase",
	Short: "Staircase is an adaptive trial-sequencing engine",
	Long:  `Staircase interleaves adaptive psychophysical procedures into a single trial stream, with simulation, validation and serving modes.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
