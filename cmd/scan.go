package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"docscan/internal/config"
	"docscan/internal/logger"
	"docscan/internal/ocr"
	"docscan/internal/pipeline"
)

var scanCmd = &cobra.Command{
	Use:   "scan [image-file]",
	Short: "Extract structured data from a single document image",
	Long: `Run one image through the full document pipeline: normalization,
recognition, classification and field extraction. The result is printed as
JSON.

The tesseract engine requires libtesseract and language training data on the
host; set OCR_ENGINE=vision to use Google Cloud Vision instead.`,
	Example: `  # Scan an invoice photo
  docscan scan invoice.jpg

  # Write the result to a file, with deskewing enabled
  docscan scan receipt.png --deskew -o result.json

  # Process with a custom timeout
  docscan scan large-scan.tiff --timeout 600`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	scanCmd.Flags().Bool("deskew", false, "Straighten slightly rotated scans")
	scanCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("scan")

	outputPath, _ := cmd.Flags().GetString("output")
	deskew, _ := cmd.Flags().GetBool("deskew")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	imagePath := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	raw, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image file: %w", err)
	}
	if int64(len(raw)) > cfg.MaxImageSize {
		return fmt.Errorf("file too large: %d bytes, maximum is %d", len(raw), cfg.MaxImageSize)
	}

	ctx, cancel := signalContext(time.Duration(timeoutSecs) * time.Second)
	defer cancel()

	engine, err := ocr.NewEngine(ctx, cfg.Engine, cfg.TesseractLang, cfg.TessdataPrefix)
	if err != nil {
		return fmt.Errorf("failed to create recognition engine: %w", err)
	}

	log.Info().
		Str("file", imagePath).
		Str("engine", engine.Name()).
		Bool("deskew", deskew).
		Msg("processing document")

	start := time.Now()
	result, err := pipeline.New(engine).Process(ctx, raw, pipeline.Options{Deskew: deskew})
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	log.Info().
		Dur("duration", time.Since(start)).
		Bool("success", result.Success).
		Str("document_type", string(result.DocumentType)).
		Msg("processing complete")

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if outputPath == "" {
		fmt.Println(string(encoded))
		return nil
	}
	if err := os.WriteFile(outputPath, append(encoded, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	log.Info().Str("output", outputPath).Msg("result written")
	return nil
}

// signalContext returns a context bounded by the timeout and canceled on
// SIGINT/SIGTERM.
func signalContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
