package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vtcal/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "vtcal",
	Short: "Convert Vilnius Tech PDF timetables to ICS calendars",
	Long: `vtcal parses the Vilnius Tech timetable PDF layout and emits a standard
ICS calendar with one weekly-recurring event per scheduled lecture,
bounded by the semester date range found in the document.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (optional)")
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig loads the configured file, or in-memory defaults when no
// --config was given.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(configPath)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
