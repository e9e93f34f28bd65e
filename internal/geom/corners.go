package geom

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Point2D is a planar point.
type Point2D struct {
	X, Y float64
}

// Corners returns the four corners of a w x h rectangle in top-left,
// bottom-left, bottom-right, top-right winding order.
func Corners(w, h int) [4]Point2D {
	return [4]Point2D{
		{0, 0},
		{0, float64(h)},
		{float64(w), float64(h)},
		{float64(w), 0},
	}
}

// ApplyProjective maps a point through a 3x3 projective transform,
// performing the perspective division.
func ApplyProjective(m *mat.Dense, p Point2D) Point2D {
	x := m.At(0, 0)*p.X + m.At(0, 1)*p.Y + m.At(0, 2)
	y := m.At(1, 0)*p.X + m.At(1, 1)*p.Y + m.At(1, 2)
	w := m.At(2, 0)*p.X + m.At(2, 1)*p.Y + m.At(2, 2)
	if w == 0 {
		w = 1e-10
	}
	return Point2D{X: x / w, Y: y / w}
}

// ApplyAffine maps a point through a 2x3 affine transform.
func ApplyAffine(m *mat.Dense, p Point2D) Point2D {
	x := m.At(0, 0)*p.X + m.At(0, 1)*p.Y + m.At(0, 2)
	y := m.At(1, 0)*p.X + m.At(1, 1)*p.Y + m.At(1, 2)
	return Point2D{X: x, Y: y}
}

// BoundingBox computes the integer pixel bounding box of a set of
// points, flooring the minimum and ceiling the maximum. Truncating
// `min - 0.5`/`max + 0.5` toward zero instead would not always contain
// the corners (a minimum of -3.2 truncates to -3, a maximum of 5.3 to
// 5); floor/ceil always contains the real-valued corners and adds no
// margin when they are already integer (the identity-transform case).
func BoundingBox(points []Point2D) (xMin, yMin, xMax, yMax int) {
	fxMin, fyMin := points[0].X, points[0].Y
	fxMax, fyMax := points[0].X, points[0].Y
	for _, p := range points[1:] {
		if p.X < fxMin {
			fxMin = p.X
		}
		if p.X > fxMax {
			fxMax = p.X
		}
		if p.Y < fyMin {
			fyMin = p.Y
		}
		if p.Y > fyMax {
			fyMax = p.Y
		}
	}
	xMin = int(math.Floor(fxMin))
	yMin = int(math.Floor(fyMin))
	xMax = int(math.Ceil(fxMax))
	yMax = int(math.Ceil(fyMax))
	return
}

// Translation3x3 builds the translation matrix S = [[1,0,-x],[0,1,-y],[0,0,1]]
// used to shift a canvas origin to (0,0) after bounding-box expansion.
func Translation3x3(x, y int) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		1, 0, -float64(x),
		0, 1, -float64(y),
		0, 0, 1,
	})
}
