package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/careerbase/internal/observability"
	"github.com/jonathan/careerbase/internal/store"
)

var (
	findDupUser string
	findDupJSON bool
)

var findDuplicatesCmd = &cobra.Command{
	Use:   "find-duplicates",
	Short: "Scan a user's career records for duplicates",
	Long:  `Score every record pair, cluster matches into duplicate groups, and print the groups with merge recommendations.`,
	RunE:  runFindDuplicates,
}

func init() {
	findDuplicatesCmd.Flags().StringVar(&findDupUser, "user", "", "User UUID to scan (required)")
	findDuplicatesCmd.Flags().BoolVar(&findDupJSON, "json", false, "Print the full report as JSON")
	_ = findDuplicatesCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(findDuplicatesCmd)
}

func runFindDuplicates(cmd *cobra.Command, _ []string) error {
	userID, err := uuid.Parse(findDupUser)
	if err != nil {
		return fmt.Errorf("invalid --user: %w", err)
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.records.Select(cmd.Context(), store.Filter{UserID: &userID})
	if err != nil {
		return err
	}
	report, err := a.detector.FindDuplicates(cmd.Context(), records)
	if err != nil {
		return err
	}

	if findDupJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	observability.NewPrinter(os.Stdout).PrintDuplicateReport(report)
	return nil
}
