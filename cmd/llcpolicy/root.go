package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "llcpolicy",
	Short: "llcpolicy drives last-level-cache replacement policies over access traces.",
	Long: `llcpolicy drives last-level-cache replacement policies over access traces. ` +
		`The run subcommand replays a CSV trace, or a synthetic workload when no ` +
		`trace is given, against a configured engine and records heartbeat ` +
		`statistics into a SQLite database.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	// A .env file can predefine LLCPOLICY_DB and friends; missing files are
	// fine.
	_ = godotenv.Load()

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
