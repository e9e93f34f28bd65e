package testutil

import (
	"fmt"
	"testing"

	"gocv.io/x/gocv"
)

// ImageSimilarity compares two equally-sized images and returns the
// fraction of pixels whose every channel agrees within pixelTolerance.
func ImageSimilarity(img1, img2 *gocv.Mat, pixelTolerance int) float64 {
	if img1.Rows() != img2.Rows() || img1.Cols() != img2.Cols() {
		return 0.0
	}

	totalPixels := img1.Rows() * img1.Cols() * img1.Channels()
	matchingPixels := 0

	for y := 0; y < img1.Rows(); y++ {
		for x := 0; x < img1.Cols(); x++ {
			pixel1 := img1.GetVecbAt(y, x)
			pixel2 := img2.GetVecbAt(y, x)

			channelMatches := 0
			for c := 0; c < img1.Channels(); c++ {
				diff := int(pixel1[c]) - int(pixel2[c])
				if diff < 0 {
					diff = -diff
				}
				if diff <= pixelTolerance {
					channelMatches++
				}
			}

			if channelMatches == img1.Channels() {
				matchingPixels += img1.Channels()
			}
		}
	}

	return float64(matchingPixels) / float64(totalPixels)
}

// CompareToGoldenImage fails t if actual isn't at least similarity
// similar to the image at goldenPath, writing a diff image alongside
// the golden on failure.
func CompareToGoldenImage(t *testing.T, actual *gocv.Mat, goldenPath string, similarity float64) {
	t.Helper()

	golden := gocv.IMRead(goldenPath, gocv.IMReadColor)
	if golden.Empty() {
		t.Fatalf("failed to load golden image: %s", goldenPath)
	}
	defer golden.Close()

	if actual.Rows() != golden.Rows() || actual.Cols() != golden.Cols() {
		t.Errorf("image dimensions mismatch: got %dx%d, want %dx%d",
			actual.Rows(), actual.Cols(), golden.Rows(), golden.Cols())
		return
	}

	pixelTolerance := 5
	actualSimilarity := ImageSimilarity(actual, &golden, pixelTolerance)

	if actualSimilarity < similarity {
		t.Errorf("image similarity %.2f%% below threshold %.2f%%",
			actualSimilarity*100, similarity*100)

		diffPath := goldenPath + ".diff.png"
		diff := gocv.NewMat()
		defer diff.Close()
		gocv.AbsDiff(*actual, golden, &diff)
		gocv.IMWrite(diffPath, diff)
		t.Logf("saved diff to: %s", diffPath)
	}
}

// SaveGoldenImage writes img to path as a new golden reference.
func SaveGoldenImage(path string, img *gocv.Mat) error {
	if !gocv.IMWrite(path, *img) {
		return fmt.Errorf("failed to write image to %s", path)
	}
	return nil
}
