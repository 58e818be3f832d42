package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"vtcal/internal/convert"
)

var (
	convertInput  string
	convertOutput string
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a timetable PDF to an ICS file",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		conv, err := convert.New(cfg)
		if err != nil {
			return err
		}

		icsBytes, stats, err := conv.File(convertInput)
		if err != nil {
			return fmt.Errorf("convert %s: %w", convertInput, err)
		}

		out := convertOutput
		if out == "" {
			out = strings.TrimSuffix(convertInput, filepath.Ext(convertInput)) + "_schedule.ics"
		}

		if err := os.WriteFile(out, icsBytes, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}

		fmt.Printf("Converted %d events, calendar saved as %s\n", stats.Events, out)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVarP(&convertInput, "input", "i", "", "input PDF file path")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "output ICS file path (default: <input>_schedule.ics)")
	_ = convertCmd.MarkFlagRequired("input")
}
