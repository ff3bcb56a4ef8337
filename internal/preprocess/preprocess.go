// Package preprocess normalizes scanned document images before recognition:
// orientation correction from EXIF metadata, bounded resizing, and a
// grayscale/denoise/contrast/binarize chain tuned for uneven lighting.
package preprocess

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"

	// imaging registers JPEG, PNG, GIF, TIFF and BMP decoders; WEBP needs
	// an explicit registration.
	_ "golang.org/x/image/webp"
)

// DefaultMaxDimension bounds the longer side of an image before recognition.
const DefaultMaxDimension = 2000

// Options controls normalization.
type Options struct {
	// MaxDimension caps the longer image side; zero means DefaultMaxDimension.
	MaxDimension int

	// Deskew straightens slightly rotated scans after binarization.
	Deskew bool
}

// Normalize decodes raw image bytes and produces a black/white image ready
// for recognition.
func Normalize(raw []byte, opts Options) (image.Image, error) {
	maxDim := opts.MaxDimension
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}

	img, err := CorrectOrientation(raw)
	if err != nil {
		return nil, err
	}

	img = Resize(img, maxDim)

	binary := Enhance(img)
	if opts.Deskew {
		binary = Deskew(binary)
	}
	return binary, nil
}

// CorrectOrientation decodes raw bytes and rotates the image according to its
// EXIF orientation tag. Tags 3, 6 and 8 map to 180, 270 and 90 degree
// rotations; any other tag, or any failure to read the metadata, leaves the
// image as decoded.
func CorrectOrientation(raw []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return applyOrientation(img, readOrientation(raw)), nil
}

// readOrientation extracts the EXIF orientation tag, returning 0 when the
// metadata is absent or unreadable.
func readOrientation(raw []byte) int {
	meta, err := exif.Decode(bytes.NewReader(raw))
	if err != nil {
		return 0
	}
	tag, err := meta.Get(exif.Orientation)
	if err != nil {
		return 0
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 0
	}
	return orientation
}

func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 3:
		return imaging.Rotate180(img)
	case 6:
		return imaging.Rotate270(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// Resize scales the image down so that its longer side equals maxDimension,
// preserving aspect ratio. Images already within bounds pass through
// unchanged.
func Resize(img image.Image, maxDimension int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() <= maxDimension && bounds.Dy() <= maxDimension {
		return img
	}
	return imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
}
