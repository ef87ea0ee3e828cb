package main

import (
	"fmt"
	"strings"

	"github.com/perceptlab/staircase"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of staircase",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("staircase version %s\n", strings.TrimSpace(staircase.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
