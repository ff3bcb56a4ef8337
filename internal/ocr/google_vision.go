package ocr

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"

	vision "cloud.google.com/go/vision/apiv1"
	"google.golang.org/api/option"
)

// GoogleVisionEngine implements Engine using Google Cloud Vision document
// text detection. It is the alternative to the local tesseract engine for
// hosts without a tesseract installation.
//
// Credentials resolve in order: GOOGLE_CREDENTIALS (inline JSON),
// GOOGLE_APPLICATION_CREDENTIALS (file path), then the default chain.
type GoogleVisionEngine struct {
	client *vision.ImageAnnotatorClient
}

// NewGoogleVisionEngine creates a Vision-backed engine with credentials from
// the environment.
func NewGoogleVisionEngine(ctx context.Context) (*GoogleVisionEngine, error) {
	const op = "NewGoogleVisionEngine"

	var client *vision.ImageAnnotatorClient
	var err error

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
	} else {
		client, err = vision.NewImageAnnotatorClient(ctx)
	}
	if err != nil {
		return nil, WrapEngineError(op, ErrEngineUnavailable, err.Error())
	}

	return &GoogleVisionEngine{client: client}, nil
}

func (g *GoogleVisionEngine) Name() string { return "vision" }

// ExtractText recognizes text in the image.
func (g *GoogleVisionEngine) ExtractText(ctx context.Context, img image.Image) (string, error) {
	result, err := g.ExtractWithConfidence(ctx, img)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// ExtractWithConfidence recognizes text and averages the per-word confidence
// reported by the Vision API. Vision scores are already in [0,1].
func (g *GoogleVisionEngine) ExtractWithConfidence(ctx context.Context, img image.Image) (*Result, error) {
	const op = "ExtractWithConfidence"

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, WrapEngineError(op, err, "failed to encode image")
	}

	visionImg, err := vision.NewImageFromReader(&buf)
	if err != nil {
		return nil, WrapEngineError(op, ErrEngineFailed, err.Error())
	}

	annotation, err := g.client.DetectDocumentText(ctx, visionImg, nil)
	if err != nil {
		return nil, WrapEngineError(op, ErrEngineFailed, err.Error())
	}
	if annotation == nil {
		return &Result{}, nil
	}

	var sum float64
	var count int
	for _, page := range annotation.Pages {
		for _, block := range page.Blocks {
			for _, paragraph := range block.Paragraphs {
				for _, word := range paragraph.Words {
					if word.Confidence > 0 {
						sum += float64(word.Confidence)
						count++
					}
				}
			}
		}
	}
	var confidence float64
	if count > 0 {
		confidence = sum / float64(count)
	}

	return &Result{
		Text:       strings.TrimSpace(annotation.Text),
		Confidence: confidence,
	}, nil
}

// Ping runs a recognition pass over a small blank image so health checks
// reflect usable credentials, not just client construction.
func (g *GoogleVisionEngine) Ping(ctx context.Context) error {
	const op = "Ping"

	if g.client == nil {
		return NewEngineError(op, ErrEngineUnavailable, "vision client not initialized")
	}

	blank := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			blank.Set(x, y, color.White)
		}
	}
	if _, err := g.ExtractWithConfidence(ctx, blank); err != nil {
		return NewEngineError(op, ErrEngineUnavailable, err.Error())
	}
	return nil
}

// Close releases the underlying Vision client.
func (g *GoogleVisionEngine) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
