// Package pipeline runs one document through the full understanding chain:
// normalize, recognize, gate on confidence, classify, extract.
package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"docscan/internal/classify"
	"docscan/internal/extract"
	"docscan/internal/logger"
	"docscan/internal/ocr"
	"docscan/internal/preprocess"
	"docscan/pkg/models"
)

// MinConfidence is the gate below which recognized text is considered too
// unreliable to classify or parse.
const MinConfidence = 0.10

// lowConfidenceMessage is returned on gated results; it is a designed
// fallback, not an error condition.
const lowConfidenceMessage = "No text detected in image or confidence too low"

// Options tunes per-document processing.
type Options struct {
	// MaxDimension caps the longer image side before recognition; zero
	// means the default.
	MaxDimension int

	// Deskew straightens slightly rotated scans.
	Deskew bool
}

// Pipeline is stateless across documents and safe to share between
// concurrent requests; each stage is a pure function except the recognition
// call.
type Pipeline struct {
	engine     ocr.Engine
	classifier *classify.Classifier
	log        zerolog.Logger
}

// New builds a pipeline around the given recognition engine.
func New(engine ocr.Engine) *Pipeline {
	return &Pipeline{
		engine:     engine,
		classifier: classify.New(),
		log:        logger.WithComponent("pipeline"),
	}
}

// Engine exposes the recognition engine, for health probes.
func (p *Pipeline) Engine() ocr.Engine { return p.engine }

// Process runs raw image bytes through the pipeline. A recognition engine
// failure is returned as an error and ends the request; low-confidence
// recognition instead produces an unsuccessful result that preserves the raw
// text. Nothing is retried.
func (p *Pipeline) Process(ctx context.Context, raw []byte, opts Options) (*models.ProcessResult, error) {
	img, err := preprocess.Normalize(raw, preprocess.Options{
		MaxDimension: opts.MaxDimension,
		Deskew:       opts.Deskew,
	})
	if err != nil {
		return nil, err
	}

	recognized, err := p.engine.ExtractWithConfidence(ctx, img)
	if err != nil {
		return nil, err
	}

	p.log.Debug().
		Str("engine", p.engine.Name()).
		Float64("confidence", recognized.Confidence).
		Int("text_len", len(recognized.Text)).
		Msg("recognition complete")

	if recognized.Text == "" || recognized.Confidence < MinConfidence {
		p.log.Info().
			Float64("confidence", recognized.Confidence).
			Msg("confidence gate rejected document")
		return &models.ProcessResult{
			Success:       false,
			Confidence:    recognized.Confidence,
			DocumentType:  models.DocumentTypeUnknown,
			ExtractedData: models.NewExtractedData(),
			RawText:       recognized.Text,
			Error:         lowConfidenceMessage,
		}, nil
	}

	docType := p.classifier.Classify(recognized.Text)
	data := extract.Extract(recognized.Text)

	p.log.Info().
		Str("document_type", string(docType)).
		Float64("confidence", recognized.Confidence).
		Msg("document processed")

	return &models.ProcessResult{
		Success:       true,
		Confidence:    recognized.Confidence,
		DocumentType:  docType,
		ExtractedData: data,
		RawText:       recognized.Text,
	}, nil
}
