package main

import (
	"fmt"
	"os"

	"github.com/perceptlab/staircase/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP session server",
	Long:  `Exposes the engine as a JSON session API with Prometheus metrics on /metrics. With --redis, trial data is persisted to a Redis list per session.`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetString("port")
		redisAddr, _ := cmd.Flags().GetString("redis")
		redisPassword, _ := cmd.Flags().GetString("redis-password")
		redisDB, _ := cmd.Flags().GetInt("redis-db")
		debug, _ := cmd.Flags().GetBool("debug")

		err := cli.RunServe(cli.ServeOptions{
			Addr:          ":" + port,
			RedisAddr:     redisAddr,
			RedisPassword: redisPassword,
			RedisDB:       redisDB,
			Debug:         debug,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for data persistence (e.g. localhost:6379)")
	serveCmd.Flags().String("redis-password", "", "Redis password")
	serveCmd.Flags().Int("redis-db", 0, "Redis database index")
	serveCmd.Flags().Bool("debug", false, "Enable debug logging")
}
