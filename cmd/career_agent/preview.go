package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/careerbase/internal/observability"
	"github.com/jonathan/careerbase/internal/types"
)

var (
	previewType       string
	previewParams     string
	previewParamsFile string
	previewJSON       bool
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview a bulk operation without applying it",
	Long:  `Plan an operation and print the intended changes, conflicts, and a size estimate. Nothing is mutated.`,
	RunE:  runPreview,
}

func init() {
	previewCmd.Flags().StringVar(&previewType, "type", "", "Operation type: update-skills | fix-dates | merge-duplicates (required)")
	previewCmd.Flags().StringVar(&previewParams, "params", "", "Operation params as inline JSON")
	previewCmd.Flags().StringVar(&previewParamsFile, "params-file", "", "Path to a JSON file with operation params")
	previewCmd.Flags().BoolVar(&previewJSON, "json", false, "Print the preview as JSON")
	_ = previewCmd.MarkFlagRequired("type")
	rootCmd.AddCommand(previewCmd)
}

// loadParams reads operation params from --params or --params-file.
func loadParams(inline, file string) (json.RawMessage, error) {
	switch {
	case inline != "" && file != "":
		return nil, fmt.Errorf("--params and --params-file are mutually exclusive")
	case inline != "":
		return json.RawMessage(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read params file: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("either --params or --params-file is required")
	}
}

func runPreview(cmd *cobra.Command, _ []string) error {
	params, err := loadParams(previewParams, previewParamsFile)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	preview, err := a.engine.Preview(cmd.Context(), types.OperationType(previewType), params)
	if err != nil {
		return err
	}

	if previewJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(preview)
	}
	observability.NewPrinter(os.Stdout).PrintPreview(preview)
	return nil
}
