package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

const app = "interview-coach"

var (
	// Used for flags.
	jsonLogs  bool
	debugLogs bool

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "interview-coach runs live AI interviews and analyzes them after the call",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&jsonLogs, "json", "j", false, "json format for logging (overrides LOG_JSON)")
	rootCmd.PersistentFlags().BoolVarP(&debugLogs, "debug", "d", false, "verbose/debug output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("%s: %v", app, err)
		os.Exit(1)
	}
}
