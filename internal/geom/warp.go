package geom

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"
)

// PaddedWarp applies a 3x3 projective transform to img, expanding the
// output canvas so that no warped content is clipped. It returns the
// warped image and the translation matrix S used to shift the warped
// content into the new canvas' coordinate frame — callers that need to
// re-express other points (or compose a further transform) in the new
// canvas use this translation directly.
func PaddedWarp(img gocv.Mat, transform *mat.Dense) (warped gocv.Mat, translation *mat.Dense) {
	h, w := img.Rows(), img.Cols()
	corners := Corners(w, h)

	warpedCorners := make([]Point2D, 4)
	for i, c := range corners {
		warpedCorners[i] = ApplyProjective(transform, c)
	}

	xMin, yMin, xMax, yMax := BoundingBox(warpedCorners)
	translation = Translation3x3(xMin, yMin)

	var full mat.Dense
	full.Mul(translation, transform)

	dst := gocv.NewMat()
	size := image.Pt(xMax-xMin, yMax-yMin)
	fullMat := DenseTo3x3Mat(&full)
	gocv.WarpPerspectiveWithParams(img, &dst, fullMat, size,
		gocv.InterpolationLinear, gocv.BorderConstant, color.RGBA{})
	fullMat.Close()

	return dst, translation
}

// DenseTo3x3Mat converts a gonum 3x3 *mat.Dense into a gocv.Mat (CV_64F)
// suitable for WarpPerspective / PerspectiveTransform.
func DenseTo3x3Mat(m *mat.Dense) gocv.Mat {
	out := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.SetDoubleAt(i, j, m.At(i, j))
		}
	}
	return out
}

// DenseTo2x3Mat converts a gonum 2x3 *mat.Dense into a gocv.Mat (CV_64F)
// suitable for WarpAffine.
func DenseTo2x3Mat(m *mat.Dense) gocv.Mat {
	out := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			out.SetDoubleAt(i, j, m.At(i, j))
		}
	}
	return out
}
