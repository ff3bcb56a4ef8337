package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"docscan/internal/config"
	"docscan/internal/logger"
	"docscan/internal/ocr"
	"docscan/internal/pipeline"
	"docscan/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the document processing HTTP service",
	Long: `Start the HTTP service exposing the document pipeline.

Endpoints:
  POST /process  multipart image upload, returns extracted data as JSON
  GET  /health   liveness plus recognition engine availability

Configuration is environment-sourced (OCR_HOST, OCR_PORT, OCR_ENGINE,
TESSERACT_LANG, MAX_IMAGE_SIZE, PROCESSING_TIMEOUT, LOG_LEVEL, ...);
flags override the bind address.`,
	Example: `  # Serve on the configured host and port
  docscan serve

  # Override the bind address
  docscan serve --host 127.0.0.1 --port 9000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "Bind host (overrides OCR_HOST)")
	serveCmd.Flags().Int("port", 0, "Bind port (overrides OCR_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("serve")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Port = port
	}

	engine, err := ocr.NewEngine(context.Background(), cfg.Engine, cfg.TesseractLang, cfg.TessdataPrefix)
	if err != nil {
		return fmt.Errorf("failed to create recognition engine: %w", err)
	}

	log.Info().
		Str("engine", engine.Name()).
		Str("addr", cfg.Addr()).
		Msg("service configured")

	srv := server.New(cfg, pipeline.New(engine), version)
	return srv.Run()
}
