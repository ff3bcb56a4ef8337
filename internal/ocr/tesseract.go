package ocr

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// DefaultWhitelist constrains recognition to alphanumerics and the
// punctuation that appears on business documents, trading recall for
// precision on noisy scans.
const DefaultWhitelist = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz.,$/-:() "

// DefaultLanguage is the tesseract language tag used when none is configured.
const DefaultLanguage = "eng"

// TesseractEngine implements Engine on top of the gosseract client. A fresh
// client is created per call; gosseract clients are not safe to share across
// goroutines.
type TesseractEngine struct {
	language       string
	tessdataPrefix string
	pageSegMode    gosseract.PageSegMode
	whitelist      string
	variables      map[string]string

	clientFactory func() *gosseract.Client
}

// TesseractOption customizes a TesseractEngine.
type TesseractOption func(*TesseractEngine)

// WithLanguage selects the tesseract training data language tag.
func WithLanguage(lang string) TesseractOption {
	return func(e *TesseractEngine) { e.language = lang }
}

// WithTessdataPrefix points the engine at a non-default training data
// directory.
func WithTessdataPrefix(prefix string) TesseractOption {
	return func(e *TesseractEngine) { e.tessdataPrefix = prefix }
}

// WithPageSegMode overrides the page segmentation mode.
func WithPageSegMode(mode gosseract.PageSegMode) TesseractOption {
	return func(e *TesseractEngine) { e.pageSegMode = mode }
}

// WithWhitelist overrides the recognized character set. An empty string
// removes the restriction.
func WithWhitelist(chars string) TesseractOption {
	return func(e *TesseractEngine) { e.whitelist = chars }
}

// WithVariable sets an arbitrary tesseract variable on every call.
func WithVariable(key, value string) TesseractOption {
	return func(e *TesseractEngine) {
		if e.variables == nil {
			e.variables = make(map[string]string)
		}
		e.variables[key] = value
	}
}

// NewTesseractEngine constructs the default recognition engine: single
// uniform text block segmentation with the document character whitelist.
func NewTesseractEngine(opts ...TesseractOption) *TesseractEngine {
	e := &TesseractEngine{
		language:      DefaultLanguage,
		pageSegMode:   gosseract.PSM_SINGLE_BLOCK,
		whitelist:     DefaultWhitelist,
		clientFactory: gosseract.NewClient,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// ExtractText recognizes text in the image using the configured settings.
func (e *TesseractEngine) ExtractText(ctx context.Context, img image.Image) (string, error) {
	const op = "ExtractText"

	client, err := e.prepare(ctx, op, img)
	if err != nil {
		return "", err
	}
	defer client.Close()

	text, err := client.Text()
	if err != nil {
		return "", WrapEngineError(op, ErrEngineFailed, err.Error())
	}
	return strings.TrimSpace(text), nil
}

// ExtractWithConfidence recognizes text and averages the per-word confidence
// scores tesseract reports on its word bounding boxes.
func (e *TesseractEngine) ExtractWithConfidence(ctx context.Context, img image.Image) (*Result, error) {
	const op = "ExtractWithConfidence"

	client, err := e.prepare(ctx, op, img)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	text, err := client.Text()
	if err != nil {
		return nil, WrapEngineError(op, ErrEngineFailed, err.Error())
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, WrapEngineError(op, ErrEngineFailed, err.Error())
	}
	confidences := make([]float64, 0, len(boxes))
	for _, box := range boxes {
		confidences = append(confidences, box.Confidence)
	}

	return &Result{
		Text:       strings.TrimSpace(text),
		Confidence: meanConfidence(confidences),
	}, nil
}

// Ping runs a recognition pass over a small blank image to confirm the
// tesseract installation and training data are usable.
func (e *TesseractEngine) Ping(ctx context.Context) error {
	blank := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			blank.Set(x, y, color.White)
		}
	}
	if _, err := e.ExtractText(ctx, blank); err != nil {
		return WrapEngineError("Ping", ErrEngineUnavailable, err.Error())
	}
	return nil
}

// prepare builds a configured client with the image loaded. The caller owns
// closing the returned client.
func (e *TesseractEngine) prepare(ctx context.Context, op string, img image.Image) (*gosseract.Client, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, WrapEngineError(op, err, "failed to encode image")
	}

	client := e.clientFactory()
	if e.tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(e.tessdataPrefix); err != nil {
			client.Close()
			return nil, WrapEngineError(op, ErrEngineFailed, err.Error())
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		client.Close()
		return nil, WrapEngineError(op, ErrEngineFailed, err.Error())
	}
	if err := client.SetLanguage(e.language); err != nil {
		client.Close()
		return nil, WrapEngineError(op, ErrEngineFailed, err.Error())
	}
	if err := client.SetPageSegMode(e.pageSegMode); err != nil {
		client.Close()
		return nil, WrapEngineError(op, ErrEngineFailed, err.Error())
	}
	if e.whitelist != "" {
		if err := client.SetWhitelist(e.whitelist); err != nil {
			client.Close()
			return nil, WrapEngineError(op, ErrEngineFailed, err.Error())
		}
	}
	for key, value := range e.variables {
		if err := client.SetVariable(gosseract.SettableVariable(key), value); err != nil {
			client.Close()
			return nil, WrapEngineError(op, ErrEngineFailed, err.Error())
		}
	}
	return client, nil
}
