package main

import (
	"encoding/json"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/careerbase/internal/observability"
	"github.com/jonathan/careerbase/internal/types"
)

var (
	executeID         string
	executeType       string
	executeParams     string
	executeParamsFile string
	executeJSON       bool
)

var executeCmd = &cobra.Command{
	Use:   "execute",
	Short: "Execute a bulk operation",
	Long:  `Run an operation to a terminal state and print the outcome. Per-item failures are reported but do not abort the batch.`,
	RunE:  runExecute,
}

func init() {
	executeCmd.Flags().StringVar(&executeID, "id", "", "Operation id (default: random UUID)")
	executeCmd.Flags().StringVar(&executeType, "type", "", "Operation type: update-skills | fix-dates | merge-duplicates (required)")
	executeCmd.Flags().StringVar(&executeParams, "params", "", "Operation params as inline JSON")
	executeCmd.Flags().StringVar(&executeParamsFile, "params-file", "", "Path to a JSON file with operation params")
	executeCmd.Flags().BoolVar(&executeJSON, "json", false, "Print the result as JSON")
	_ = executeCmd.MarkFlagRequired("type")
	rootCmd.AddCommand(executeCmd)
}

func runExecute(cmd *cobra.Command, _ []string) error {
	params, err := loadParams(executeParams, executeParamsFile)
	if err != nil {
		return err
	}
	id := executeID
	if id == "" {
		id = uuid.NewString()
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	result, execErr := a.engine.Execute(cmd.Context(), id, types.OperationType(executeType), params)
	if result != nil {
		if executeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(result)
		} else {
			observability.NewPrinter(os.Stdout).PrintResult(result)
		}
	}
	return execErr
}
