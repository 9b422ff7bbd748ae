package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var (
	cancelServer string
	cancelToken  string
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <operation-id>",
	Short: "Cancel a running bulk operation",
	Long:  `Request cooperative cancellation of an operation running in a career_agent server. The in-flight item completes, then everything applied so far is rolled back.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCancel,
}

func init() {
	cancelCmd.Flags().StringVar(&cancelServer, "server", "http://localhost:8080", "Base URL of the career_agent server")
	cancelCmd.Flags().StringVar(&cancelToken, "token", "", "API bearer token (required)")
	_ = cancelCmd.MarkFlagRequired("token")
	rootCmd.AddCommand(cancelCmd)
}

// Cancellation flags live in the process running the operation, so cancel
// goes through the server's API rather than a local engine.
func runCancel(cmd *cobra.Command, args []string) error {
	url := fmt.Sprintf("%s/operations/%s/cancel", cancelServer, args[0])
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, url, bytes.NewReader(nil))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+cancelToken)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	var out struct {
		Cancelled bool   `json:"cancelled"`
		Error     string `json:"error"`
	}
	_ = json.Unmarshal(body, &out)

	switch {
	case resp.StatusCode == http.StatusOK && out.Cancelled:
		fmt.Printf("operation %s cancellation requested\n", args[0])
		return nil
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("operation %s is not running", args[0])
	default:
		if out.Error != "" {
			return fmt.Errorf("cancel failed: %s", out.Error)
		}
		return fmt.Errorf("cancel failed: HTTP %d", resp.StatusCode)
	}
}
