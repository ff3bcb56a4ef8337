package preprocess

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestApplyOrientationRotations(t *testing.T) {
	// 3x2 image with a single black pixel in the top-left corner.
	img := testImage(3, 2)
	img.Set(0, 0, color.Black)

	tests := []struct {
		name        string
		orientation int
		wantW       int
		wantH       int
		wantBlack   image.Point
	}{
		{"tag 3 rotates 180", 3, 3, 2, image.Pt(2, 1)},
		{"tag 6 rotates 270", 6, 2, 3, image.Pt(1, 0)},
		{"tag 8 rotates 90", 8, 2, 3, image.Pt(0, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := applyOrientation(img, tt.orientation)
			bounds := out.Bounds()
			assert.Equal(t, tt.wantW, bounds.Dx())
			assert.Equal(t, tt.wantH, bounds.Dy())

			r, g, b, _ := out.At(tt.wantBlack.X, tt.wantBlack.Y).RGBA()
			assert.Zero(t, r+g+b, "black pixel should land at %v", tt.wantBlack)
		})
	}
}

func TestApplyOrientationPassThrough(t *testing.T) {
	img := testImage(3, 2)
	for _, orientation := range []int{0, 1, 2, 4, 5, 7, 9} {
		out := applyOrientation(img, orientation)
		assert.Same(t, image.Image(img), out, "orientation %d must not modify the image", orientation)
	}
}

func TestCorrectOrientationWithoutMetadata(t *testing.T) {
	// PNG carries no EXIF block, so pixels must come back unchanged.
	src := testImage(4, 3)
	src.Set(1, 2, color.Black)

	img, err := CorrectOrientation(encodePNG(t, src))
	require.NoError(t, err)

	bounds := img.Bounds()
	require.Equal(t, 4, bounds.Dx())
	require.Equal(t, 3, bounds.Dy())
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			wantR, wantG, wantB, _ := src.At(x, y).RGBA()
			gotR, gotG, gotB, _ := img.At(x, y).RGBA()
			assert.Equal(t, wantR, gotR)
			assert.Equal(t, wantG, gotG)
			assert.Equal(t, wantB, gotB)
		}
	}
}

func TestCorrectOrientationRejectsGarbage(t *testing.T) {
	_, err := CorrectOrientation([]byte("not an image"))
	assert.Error(t, err)
}

func TestResizeIdentityWithinBounds(t *testing.T) {
	img := testImage(800, 600)
	out := Resize(img, 2000)
	assert.Same(t, image.Image(img), out)
}

func TestResizeCapsLongerSide(t *testing.T) {
	tests := []struct {
		name  string
		w, h  int
		wantW int
		wantH int
	}{
		{"wide landscape", 4000, 2000, 2000, 1000},
		{"tall portrait", 1000, 4000, 500, 2000},
		{"slightly over", 2001, 2001, 2000, 2000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Resize(testImage(tt.w, tt.h), 2000)
			bounds := out.Bounds()
			assert.InDelta(t, tt.wantW, bounds.Dx(), 1)
			assert.InDelta(t, tt.wantH, bounds.Dy(), 1)
		})
	}
}

func TestEnhanceProducesBinaryImage(t *testing.T) {
	// Gradient with dark "text" marks, to exercise both threshold outcomes.
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			v := uint8(100 + x*2)
			img.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	for i := 10; i < 20; i++ {
		img.Set(i, 30, color.NRGBA{A: 255})
	}

	out := Enhance(img)
	bounds := out.Bounds()
	require.Equal(t, 64, bounds.Dx())
	require.Equal(t, 64, bounds.Dy())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := out.GrayAt(x, y).Y
			if v != 0 && v != 255 {
				t.Fatalf("pixel (%d,%d) = %d, want 0 or 255", x, y, v)
			}
		}
	}
}

func TestDeskewLeavesStraightImageAlone(t *testing.T) {
	// A horizontal bar of ink has a principal axis along x: no correction.
	img := image.NewGray(image.Rect(0, 0, 100, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 100; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	for x := 10; x < 90; x++ {
		img.SetGray(x, 20, color.Gray{Y: 0})
	}

	out := Deskew(img)
	assert.Same(t, img, out)
}

func TestDeskewHandlesBlankImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 50, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	out := Deskew(img)
	assert.Same(t, img, out)
}

func TestNormalizeEndToEnd(t *testing.T) {
	raw := encodePNG(t, testImage(2400, 1200))

	img, err := Normalize(raw, Options{})
	require.NoError(t, err)

	bounds := img.Bounds()
	assert.Equal(t, 2000, bounds.Dx())
	assert.Equal(t, 1000, bounds.Dy())
}

func TestNormalizeRejectsUndecodableInput(t *testing.T) {
	_, err := Normalize([]byte{0x00, 0x01}, Options{})
	assert.Error(t, err)
}
