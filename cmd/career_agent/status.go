package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/careerbase/internal/observability"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status <operation-id>",
	Short: "Show the status of a bulk operation",
	Long:  `Read an operation snapshot from the operation registry. With a shared Redis registry this works across processes; otherwise only operations run by a server sharing this registry are visible.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the snapshot as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	op, err := a.engine.Status(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if op == nil {
		return fmt.Errorf("operation %q not found", args[0])
	}

	if statusJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(op)
	}
	observability.NewPrinter(os.Stdout).PrintOperationStatus(op)
	return nil
}
