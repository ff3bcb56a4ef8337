// Package ocr adapts external recognition engines behind a small capability
// interface: an image goes in, text and an aggregate confidence come out.
//
// Two engines are provided:
//   - Tesseract via gosseract (the default; requires libtesseract and the
//     language training data installed on the host)
//   - Google Cloud Vision document text detection
//
// Confidence is the arithmetic mean of per-token confidences strictly
// greater than zero, rescaled to [0,1]. Tokens the engine marks as non-text
// carry a negative sentinel confidence and are excluded from the mean, not
// averaged in as zero.
package ocr

import (
	"context"
	"image"
)

// Result is the output of one recognition call.
type Result struct {
	// Text is the recognized text, trimmed of surrounding whitespace.
	Text string `json:"text"`

	// Confidence is the mean per-token confidence in [0,1].
	Confidence float64 `json:"confidence"`
}

// Engine is the recognition capability contract. Implementations must be
// safe for concurrent use by independent requests.
type Engine interface {
	// Name identifies the engine, e.g. "tesseract".
	Name() string

	// ExtractText recognizes text in the image.
	ExtractText(ctx context.Context, img image.Image) (string, error)

	// ExtractWithConfidence recognizes text and reports the aggregate
	// per-token confidence.
	ExtractWithConfidence(ctx context.Context, img image.Image) (*Result, error)

	// Ping verifies the engine is usable, for health reporting.
	Ping(ctx context.Context) error
}

// NewEngine constructs the engine selected by name. Language and
// tessdataPrefix only apply to the tesseract engine; the vision engine takes
// its credentials from the environment.
func NewEngine(ctx context.Context, name, language, tessdataPrefix string) (Engine, error) {
	switch name {
	case "", "tesseract":
		opts := []TesseractOption{}
		if language != "" {
			opts = append(opts, WithLanguage(language))
		}
		if tessdataPrefix != "" {
			opts = append(opts, WithTessdataPrefix(tessdataPrefix))
		}
		return NewTesseractEngine(opts...), nil
	case "vision":
		return NewGoogleVisionEngine(ctx)
	default:
		return nil, NewEngineError("NewEngine", ErrUnknownEngine, name)
	}
}

// meanConfidence averages confidences strictly greater than zero and rescales
// from the engine's 0-100 integer scale to [0,1].
func meanConfidence(confidences []float64) float64 {
	var sum float64
	var count int
	for _, c := range confidences {
		if c > 0 {
			sum += c
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count) / 100
}
