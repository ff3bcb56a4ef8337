package preprocess

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// minSkewDegrees is the smallest angle worth correcting; tiny estimates are
// usually noise from the angle fit rather than a real skew.
const minSkewDegrees = 0.5

// Deskew straightens a binarized document image. The skew angle is estimated
// from the principal axis of the ink (black) pixel distribution; images with
// an estimated angle at or below half a degree are returned unchanged.
func Deskew(src *image.Gray) *image.Gray {
	angle := skewAngle(src)
	if math.Abs(angle) <= minSkewDegrees {
		return src
	}
	rotated := imaging.Rotate(src, angle, color.White)
	return toGray(rotated)
}

// skewAngle fits the dominant text direction via the covariance of ink pixel
// coordinates and returns the correction angle in degrees.
func skewAngle(src *image.Gray) float64 {
	bounds := src.Bounds()

	var n float64
	var sumX, sumY float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if src.GrayAt(x, y).Y < 128 {
				n++
				sumX += float64(x)
				sumY += float64(y)
			}
		}
	}
	if n < 2 {
		return 0
	}
	meanX, meanY := sumX/n, sumY/n

	var covXX, covYY, covXY float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if src.GrayAt(x, y).Y < 128 {
				dx, dy := float64(x)-meanX, float64(y)-meanY
				covXX += dx * dx
				covYY += dy * dy
				covXY += dx * dy
			}
		}
	}
	if covXX == 0 && covXY == 0 {
		return 0
	}

	// Orientation of the major eigenvector of the covariance matrix.
	theta := 0.5 * math.Atan2(2*covXY, covXX-covYY)
	degrees := theta * 180 / math.Pi

	// Text runs horizontally; fold the estimate into [-45, 45] so a portrait
	// dominant axis is not mistaken for extreme skew.
	if degrees > 45 {
		degrees -= 90
	} else if degrees < -45 {
		degrees += 90
	}
	return -degrees
}
