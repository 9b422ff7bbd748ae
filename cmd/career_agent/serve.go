package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/careerbase/internal/config"
	"github.com/jonathan/careerbase/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the data quality endpoints: record browsing, similarity analysis, duplicate scans, and bulk operations.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	authCfg, err := config.NewAuthConfig()
	if err != nil {
		return err
	}

	port := a.cfg.Port
	if servePort != 0 {
		port = servePort
	}

	srv, err := server.New(server.Config{
		Port:     port,
		Records:  a.records,
		Chunks:   a.chunks,
		Scorer:   a.scorer,
		Detector: a.detector,
		Engine:   a.engine,
		Auth:     authCfg,
		Logger:   a.logger,
		Metrics:  a.metrics,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
